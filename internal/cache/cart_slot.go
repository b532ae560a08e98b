package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tinythreads/internal/cart"
	"github.com/tinythreads/internal/constants"

	"github.com/redis/go-redis/v9"
)

// CartSlots 基于 Redis 的购物车槽位，每个会话一个键
type CartSlots struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCartSlots 创建 Redis 槽位集合，ttl 为 0 表示不过期
func NewCartSlots(client *redis.Client, prefix string, ttl time.Duration) *CartSlots {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &CartSlots{client: client, prefix: prefix, ttl: ttl}
}

// Slot 返回某个会话的槽位
func (s *CartSlots) Slot(sessionID string) cart.Slot {
	return &cartSlot{
		client: s.client,
		key:    buildKeyWith(s.prefix, fmt.Sprintf(constants.CacheKeyCartFmt, sessionID)),
		ttl:    s.ttl,
	}
}

type cartSlot struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func (s *cartSlot) Get(ctx context.Context) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *cartSlot) Set(ctx context.Context, data []byte) error {
	return s.client.Set(ctx, s.key, data, s.ttl).Err()
}

func (s *cartSlot) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
