package store

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/brewrec/core"
)

// GetJSON 读取 key 并反序列化到 v。key 不存在时返回 core.ErrStoreNotFound。
func GetJSON(ctx context.Context, s core.Store, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON 把 v 序列化为 JSON 写入 key。
func SetJSON(ctx context.Context, s core.Store, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data, ttl)
}
