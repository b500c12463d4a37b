package store

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pkg/logging"
)

// BreakerConfig 是熔断器配置。
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32        // 半开状态下允许通过的请求数
	Interval         time.Duration // 闭合状态下计数清零周期
	Timeout          time.Duration // 打开状态持续时间
	FailureThreshold uint32        // 连续失败多少次后打开
}

// DefaultBreakerConfig 返回默认熔断配置。
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerStore 用熔断器包装远程 KeyValueStore（通常是 Redis）。
// 熔断打开时直接返回 UNAVAILABLE，调用方按缓存缺失处理。
// key 不存在不计为失败。
type BreakerStore struct {
	next core.KeyValueStore
	cb   *gobreaker.CircuitBreaker[any]
}

func NewBreakerStore(next core.KeyValueStore, cfg BreakerConfig) *BreakerStore {
	log := logging.Component("store")
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || core.IsStoreNotFound(err) || core.IsNotSupported(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}
	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

// State 返回熔断器当前状态（closed / half-open / open）。
func (b *BreakerStore) State() string { return b.cb.State().String() }

func (b *BreakerStore) Name() string { return "breaker(" + b.next.Name() + ")" }

func (b *BreakerStore) execute(fn func() (any, error)) (any, error) {
	v, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, core.WrapUnavailable(core.ModuleStore, b.next.Name()+" circuit open", err)
	}
	return v, err
}

func (b *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := b.execute(func() (any, error) { return b.next.Get(ctx, key) })
	if err != nil {
		return nil, err
	}
	data, _ := v.([]byte)
	return data, nil
}

func (b *BreakerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.execute(func() (any, error) { return nil, b.next.Set(ctx, key, value, ttl) })
	return err
}

func (b *BreakerStore) Delete(ctx context.Context, key string) error {
	_, err := b.execute(func() (any, error) { return nil, b.next.Delete(ctx, key) })
	return err
}

func (b *BreakerStore) ZReplace(ctx context.Context, key string, members []core.ScoredMember, ttl time.Duration) error {
	_, err := b.execute(func() (any, error) { return nil, b.next.ZReplace(ctx, key, members, ttl) })
	return err
}

func (b *BreakerStore) ZRange(ctx context.Context, key string, start, stop int64) ([]core.ScoredMember, error) {
	v, err := b.execute(func() (any, error) { return b.next.ZRange(ctx, key, start, stop) })
	if err != nil {
		return nil, err
	}
	members, _ := v.([]core.ScoredMember)
	return members, nil
}

func (b *BreakerStore) ZScore(ctx context.Context, key string, member string) (float64, error) {
	v, err := b.execute(func() (any, error) { return b.next.ZScore(ctx, key, member) })
	if err != nil {
		return 0, err
	}
	score, _ := v.(float64)
	return score, nil
}

func (b *BreakerStore) Close() error { return b.next.Close() }

var _ core.KeyValueStore = (*BreakerStore)(nil)
