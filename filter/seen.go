package filter

import (
	"context"
	"fmt"
	"time"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pkg/logging"
)

// SeenFilter 过滤掉用户已经有过任意行为的目标。
// 支持两种数据源：
//  1. 行为日志（Window 内的精确集合）
//  2. 可选的 SeenBloom（更长周期，存在误判，误判的结果按已读处理）
type SeenFilter struct {
	Behaviors core.BehaviorReader

	// TargetType 默认 POST
	TargetType core.TargetType
	// Window 为 0 表示不限时间
	Window time.Duration

	Bloom *SeenBloom
}

func NewSeenFilter(behaviors core.BehaviorReader, window time.Duration, seen *SeenBloom) *SeenFilter {
	return &SeenFilter{Behaviors: behaviors, Window: window, Bloom: seen}
}

func (f *SeenFilter) Name() string {
	return "filter.seen"
}

// ShouldFilter 单独使用时不做预加载，永远保留；应当经由 FilterNode 使用。
func (f *SeenFilter) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return false, nil
}

// ForRequest 加载用户的已读集合与布隆过滤器。
// 布隆过滤器读取失败只记录日志，不影响精确集合的过滤。
func (f *SeenFilter) ForRequest(ctx context.Context, rctx *core.RecommendContext) (Filter, error) {
	if rctx == nil || rctx.UserID == 0 {
		return seenSet{name: f.Name()}, nil
	}
	targetType := f.TargetType
	if targetType == "" {
		targetType = core.TargetPost
	}
	var since time.Time
	if f.Window > 0 {
		since = rctx.Clock().Add(-f.Window)
	}
	ids, err := SeenIDs(ctx, f.Behaviors, rctx.UserID, targetType, since)
	if err != nil {
		return nil, err
	}
	out := seenSet{name: f.Name(), ids: ids}
	if f.Bloom != nil {
		bf, err := f.Bloom.Load(ctx, rctx.UserID)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int64("user_id", rctx.UserID).Msg("seen bloom unavailable")
		}
		out.bloom = bf
	}
	return out, nil
}

// SeenIDs 返回用户在 since 之后有过行为的目标 ID 集合，since 为零值表示不限时间。
func SeenIDs(ctx context.Context, r core.BehaviorReader, userID int64, targetType core.TargetType, since time.Time) (map[int64]struct{}, error) {
	events, err := r.Behaviors(ctx, userID, targetType, since)
	if err != nil {
		return nil, fmt.Errorf("load seen targets of user %d: %w", userID, err)
	}
	ids := make(map[int64]struct{}, len(events))
	for _, ev := range events {
		ids[ev.TargetID] = struct{}{}
	}
	return ids, nil
}

type seenSet struct {
	name  string
	ids   map[int64]struct{}
	bloom *bloom.BloomFilter
}

func (s seenSet) Name() string { return s.name }

func (s seenSet) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if _, ok := s.ids[item.ID]; ok {
		return true, nil
	}
	if s.bloom != nil && s.bloom.Test(bloomKey(item.ID)) {
		return true, nil
	}
	return false, nil
}
