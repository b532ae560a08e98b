// Package cart 实现按会话持久化的购物车。
//
// 每次变更都同步写回 Slot：非空购物车写入 JSON 数组，空购物车删除条目。
// 写入失败时内存状态保持不变，保证内存与存储一致。同一会话的多个 Store
// 实例之间不做合并，以最后一次写入为准。
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/tinythreads/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrItemIDRequired 添加的商品缺少 ID
var ErrItemIDRequired = errors.New("cart item id is required")

// Store 单个会话的购物车
type Store struct {
	mu     sync.Mutex
	slot   Slot
	log    *zap.SugaredLogger
	items  []LineItem
	loaded bool
}

// New 创建购物车，首次读写时从 slot 加载
func New(slot Slot, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{slot: slot, log: log}
}

// Open 创建并立即加载购物车
func Open(ctx context.Context, slot Slot, log *zap.SugaredLogger) *Store {
	s := New(slot, log)
	s.Load(ctx)
	return s
}

// Load 从存储恢复购物车，只执行一次。读取或解析失败时记录日志并从空购物车开始
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true
	s.items = nil

	data, ok, err := s.slot.Get(ctx)
	if err != nil {
		s.log.Warnw("cart_load_failed", "error", err)
		return
	}
	if !ok || len(data) == 0 {
		return
	}
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.Warnw("cart_parse_failed", "error", err)
		return
	}
	s.items = normalizeLoaded(items)
}

// normalizeLoaded 丢弃存储中不满足约束的行，并合并重复 ID
func normalizeLoaded(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if item.ID == "" || item.Quantity < 1 {
			continue
		}
		if i, ok := index[item.ID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}

// Add 添加商品，已存在时累加数量。未指定数量（<=0）按 1 计
func (s *Store) Add(ctx context.Context, item LineItem) error {
	if item.ID == "" {
		return ErrItemIDRequired
	}
	incoming := item.Quantity
	if incoming < 1 {
		incoming = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)

	next := cloneItems(s.items)
	for i := range next {
		if next[i].ID == item.ID {
			next[i].Quantity += incoming
			return s.commitLocked(ctx, next)
		}
	}
	added := item.clone()
	added.Quantity = incoming
	return s.commitLocked(ctx, append(next, added))
}

// Remove 移除商品，不存在时无操作
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
	return s.removeLocked(ctx, id)
}

func (s *Store) removeLocked(ctx context.Context, id string) error {
	next := make([]LineItem, 0, len(s.items))
	for _, item := range s.items {
		if item.ID != id {
			next = append(next, item.clone())
		}
	}
	if len(next) == len(s.items) {
		return nil
	}
	return s.commitLocked(ctx, next)
}

// UpdateQuantity 设置数量；quantity < 1 等同于 Remove，ID 不存在时无操作
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)

	if quantity < 1 {
		return s.removeLocked(ctx, id)
	}
	next := cloneItems(s.items)
	for i := range next {
		if next[i].ID == id {
			if next[i].Quantity == quantity {
				return nil
			}
			next[i].Quantity = quantity
			return s.commitLocked(ctx, next)
		}
	}
	return nil
}

// Clear 清空购物车并删除存储条目
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
	return s.commitLocked(ctx, nil)
}

// Items 返回按加入顺序排列的副本
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(context.Background())
	return cloneItems(s.items)
}

// TotalItems 所有行数量之和
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(context.Background())
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// Subtotal 始终为 0：价格只做展示，金额由人工报价确定
func (s *Store) Subtotal() models.Money {
	return models.NewMoneyFromDecimal(decimal.Zero)
}

// IsEmpty 购物车是否为空
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(context.Background())
	return len(s.items) == 0
}

func (s *Store) commitLocked(ctx context.Context, next []LineItem) error {
	if len(next) == 0 {
		if err := s.slot.Delete(ctx); err != nil {
			return err
		}
		s.items = nil
		return nil
	}
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := s.slot.Set(ctx, data); err != nil {
		return err
	}
	s.items = next
	return nil
}
