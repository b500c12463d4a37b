package filter

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/rushteam/brewrec/core"
)

// SeenBloom 在 core.Store 中为每个用户维护一个已读布隆过滤器，覆盖比行为日志查询更长的周期。
//
// key 格式：{KeyPrefix}:{userID}，value 为 bloom.BloomFilter 的二进制序列化结果。
// Add 是"读-改-写"，同一进程内串行；多进程同时写同一用户时可能丢失少量 ID。
type SeenBloom struct {
	Store core.Store

	// KeyPrefix 默认 "brewrec:seen"
	KeyPrefix string
	// Capacity 预期元素数量，默认 10000
	Capacity uint
	// FalsePositiveRate 期望误判率，默认 0.01
	FalsePositiveRate float64
	// TTL 默认 180 天，每次写入刷新
	TTL time.Duration

	mu sync.Mutex
}

const (
	defaultSeenKeyPrefix = "brewrec:seen"
	defaultSeenCapacity  = 10000
	defaultSeenFPRate    = 0.01
	defaultSeenTTL       = 180 * 24 * time.Hour
)

func NewSeenBloom(s core.Store) *SeenBloom {
	return &SeenBloom{Store: s}
}

func (b *SeenBloom) key(userID int64) string {
	prefix := b.KeyPrefix
	if prefix == "" {
		prefix = defaultSeenKeyPrefix
	}
	return prefix + ":" + strconv.FormatInt(userID, 10)
}

func (b *SeenBloom) newFilter() *bloom.BloomFilter {
	capacity, rate := b.Capacity, b.FalsePositiveRate
	if capacity == 0 {
		capacity = defaultSeenCapacity
	}
	if rate <= 0 || rate >= 1 {
		rate = defaultSeenFPRate
	}
	return bloom.NewWithEstimates(capacity, rate)
}

func bloomKey(id int64) []byte {
	return strconv.AppendInt(nil, id, 10)
}

// Load 读取用户的布隆过滤器，不存在时返回 nil, nil。
func (b *SeenBloom) Load(ctx context.Context, userID int64) (*bloom.BloomFilter, error) {
	data, err := b.Store.Get(ctx, b.key(userID))
	if core.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get seen bloom of user %d: %w", userID, err)
	}
	bf := b.newFilter()
	if _, err := bf.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("decode seen bloom of user %d: %w", userID, err)
	}
	return bf, nil
}

// Add 把 ids 写入用户的布隆过滤器。
func (b *SeenBloom) Add(ctx context.Context, userID int64, ids ...int64) error {
	if userID == 0 || len(ids) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	bf, err := b.Load(ctx, userID)
	if err != nil {
		return err
	}
	if bf == nil {
		bf = b.newFilter()
	}
	for _, id := range ids {
		bf.Add(bloomKey(id))
	}

	var buf bytes.Buffer
	if _, err := bf.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode seen bloom of user %d: %w", userID, err)
	}
	ttl := b.TTL
	if ttl <= 0 {
		ttl = defaultSeenTTL
	}
	if err := b.Store.Set(ctx, b.key(userID), buf.Bytes(), ttl); err != nil {
		return fmt.Errorf("save seen bloom of user %d: %w", userID, err)
	}
	return nil
}
