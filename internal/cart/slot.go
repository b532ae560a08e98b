package cart

import (
	"context"
	"sync"
)

// Slot 单键持久化存储，只由 Store 读写
type Slot interface {
	// Get 返回已存储的数据，条目不存在时 ok 为 false
	Get(ctx context.Context) (data []byte, ok bool, err error)
	Set(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

// MemorySlots 进程内的多会话槽位，Redis 不可用时使用
type MemorySlots struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemorySlots 创建内存槽位集合
func NewMemorySlots() *MemorySlots {
	return &MemorySlots{data: make(map[string][]byte)}
}

// Slot 返回某个会话的槽位
func (m *MemorySlots) Slot(sessionID string) Slot {
	return &memorySlot{owner: m, key: sessionID}
}

// Len 当前持有条目的会话数
func (m *MemorySlots) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

type memorySlot struct {
	owner *MemorySlots
	key   string
}

func (s *memorySlot) Get(ctx context.Context) ([]byte, bool, error) {
	s.owner.mu.RLock()
	defer s.owner.mu.RUnlock()
	data, ok := s.owner.data[s.key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (s *memorySlot) Set(ctx context.Context, data []byte) error {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	s.owner.data[s.key] = append([]byte(nil), data...)
	return nil
}

func (s *memorySlot) Delete(ctx context.Context) error {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	delete(s.owner.data, s.key)
	return nil
}
