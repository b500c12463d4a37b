package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rushteam/brewrec/core"
)

// MemoryStore 是内存实现的 KeyValueStore，用于测试/开发/单机部署。
// 支持 TTL（过期时间），但进程重启后数据丢失。
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]*entry
	zsets map[string]*zset
	clean *time.Ticker
	done  chan struct{}
	once  sync.Once
}

type entry struct {
	value  []byte
	expire time.Time // 零值表示不过期
}

type zset struct {
	members map[string]float64
	expire  time.Time
}

func expired(expire, now time.Time) bool {
	return !expire.IsZero() && now.After(expire)
}

func expireAt(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		data:  make(map[string]*entry),
		zsets: make(map[string]*zset),
		clean: time.NewTicker(10 * time.Second),
		done:  make(chan struct{}),
	}
	go ms.cleanup()
	return ms
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok || expired(e.expire, time.Now()) {
		return nil, core.ErrStoreNotFound
	}
	return e.value, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := make([]byte, len(value))
	copy(buf, value)
	m.data[key] = &entry{value: buf, expire: expireAt(ttl)}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	delete(m.zsets, key)
	return nil
}

func (m *MemoryStore) Close() error {
	m.once.Do(func() {
		m.clean.Stop()
		close(m.done)
	})
	return nil
}

func (m *MemoryStore) cleanup() {
	for {
		select {
		case <-m.done:
			return
		case <-m.clean.C:
		}
		m.mu.Lock()
		now := time.Now()
		for k, e := range m.data {
			if expired(e.expire, now) {
				delete(m.data, k)
			}
		}
		for k, z := range m.zsets {
			if expired(z.expire, now) {
				delete(m.zsets, k)
			}
		}
		m.mu.Unlock()
	}
}

var _ core.KeyValueStore = (*MemoryStore)(nil)

func (m *MemoryStore) ZReplace(ctx context.Context, key string, members []core.ScoredMember, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(members) == 0 {
		delete(m.zsets, key)
		return nil
	}
	z := &zset{members: make(map[string]float64, len(members)), expire: expireAt(ttl)}
	for _, sm := range members {
		z.members[sm.Member] = sm.Score
	}
	m.zsets[key] = z
	return nil
}

// ZRange 按分数降序返回 [start, stop]，同分按 member 降序（与 Redis ZREVRANGE 一致）。
func (m *MemoryStore) ZRange(ctx context.Context, key string, start, stop int64) ([]core.ScoredMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	z, ok := m.zsets[key]
	if !ok || expired(z.expire, time.Now()) || len(z.members) == 0 {
		return nil, nil
	}

	pairs := make([]core.ScoredMember, 0, len(z.members))
	for member, score := range z.members {
		pairs = append(pairs, core.ScoredMember{Member: member, Score: score})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Score != pairs[j].Score {
			return pairs[i].Score > pairs[j].Score
		}
		return pairs[i].Member > pairs[j].Member
	})

	// 处理范围
	if start < 0 {
		start = 0
	}
	if stop < 0 || stop >= int64(len(pairs)) {
		stop = int64(len(pairs)) - 1
	}
	if start > stop {
		return nil, nil
	}
	out := make([]core.ScoredMember, stop-start+1)
	copy(out, pairs[start:stop+1])
	return out, nil
}

func (m *MemoryStore) ZScore(ctx context.Context, key string, member string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	z, ok := m.zsets[key]
	if !ok || expired(z.expire, time.Now()) {
		return 0, core.ErrStoreNotFound
	}
	score, ok := z.members[member]
	if !ok {
		return 0, core.ErrStoreNotFound
	}
	return score, nil
}
