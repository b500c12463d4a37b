package recall

import (
	"context"
	"strconv"
	"time"

	"github.com/rushteam/brewrec/behavior"
	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pipeline"
	"github.com/rushteam/brewrec/pkg/logging"
)

// 热度基础分的互动系数
const (
	HotViewWeight     = 0.1
	HotLikeWeight     = 2.0
	HotFavoriteWeight = 3.0
	HotCommentWeight  = 1.5
)

// HotBaseScore 是未衰减的热度基础分。
func HotBaseScore(p core.Post) float64 {
	return float64(p.ViewCount)*HotViewWeight +
		float64(p.LikeCount)*HotLikeWeight +
		float64(p.FavoriteCount)*HotFavoriteWeight +
		float64(p.CommentCount)*HotCommentWeight
}

// HotScore = 基础分 × 双曲时间衰减。纯函数，只依赖计数与发布时间。
func HotScore(p core.Post, now time.Time) float64 {
	return HotBaseScore(p) * behavior.HyperbolicDecay(p.CreatedAt, now)
}

// RankByHotScore 按热度对动态排序（稳定排序，同分保持输入顺序），截断到 limit（<=0 不截断）。
// 热度为 0 的动态同样保留，热门榜需要兜底内容。
func RankByHotScore(posts []core.Post, now time.Time, limit int) []*core.Item {
	out := make([]*core.Item, 0, len(posts))
	for _, p := range posts {
		out = append(out, newResult(p.ID, HotScore(p, now), core.ReasonTrending, "recall.hot"))
	}
	return sortAndTruncate(out, limit)
}

// Hot 是热度打分策略。
//   - 有候选集时，对候选集实时计算热度
//   - 没有候选集且配置了 Store 时，从有序集合读取预先发布的热门榜
//
// Hot 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Hot struct {
	Store core.KeyValueStore
	Key   string // 热门榜有序集合的 key，例如 "trending:posts"
}

func (r *Hot) Name() string        { return "recall.hot" }
func (r *Hot) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口：结果追加到已有 items 之后。
func (r *Hot) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	hot, err := r.Recall(ctx, rctx)
	if err != nil {
		return nil, err
	}
	return append(items, hot...), nil
}

// Recall 实现 Source 接口
func (r *Hot) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil {
		return nil, nil
	}
	if len(rctx.Candidates) > 0 {
		return RankByHotScore(rctx.Candidates, rctx.Clock(), rctx.Limit()), nil
	}
	if r.Store == nil || r.Key == "" {
		return nil, nil
	}
	return r.published(ctx, rctx.Limit())
}

// published 读取预先发布的热门榜；榜单不存在时返回空。
func (r *Hot) published(ctx context.Context, limit int) ([]*core.Item, error) {
	members, err := r.Store.ZRange(ctx, r.Key, 0, int64(limit)-1)
	if err != nil {
		return nil, err
	}
	out := make([]*core.Item, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m.Member, 10, 64)
		if err != nil {
			logging.Ctx(ctx).Warn().Str("key", r.Key).Str("member", m.Member).Msg("skip malformed trending member")
			continue
		}
		out = append(out, newResult(id, m.Score, core.ReasonTrending, r.Name()))
	}
	return out, nil
}
