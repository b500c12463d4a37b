package recall

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/brewrec/behavior"
	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pkg/logging"
	"github.com/rushteam/brewrec/pkg/sparse"
)

// Neighbor 是一个相似用户。
type Neighbor struct {
	UserID     int64
	Similarity float64
}

// UserBasedCF 是基于用户的协同过滤打分策略（User-based Collaborative Filtering, User-CF）。
//
// 核心思想："兴趣相似的用户，喜欢相似的物品"
//
// 算法流程：
//  1. 用户 → 交互向量（按打分权重表累加，不做衰减）
//  2. 与窗口内其他活跃用户计算余弦相似度，取 TopK 相似用户
//  3. 收集这些用户点赞/收藏/评论过、而目标用户没有任何行为的动态
//  4. 分数 = Σ 相似度 × 行为权重
//
// 邻居相似度计算是主要开销，按用户并行（Parallelism 限制并发数）。
type UserBasedCF struct {
	Behaviors core.BehaviorReader

	// Weights 行为打分权重表，默认 behavior.DefaultPostWeights
	Weights behavior.WeightTable

	// Window 邻居发现与交互向量的回看窗口，默认 30 天
	Window time.Duration

	// TopK 相似用户数量，默认 10
	TopK int

	// Parallelism 相似度计算的最大并发数，默认 GOMAXPROCS
	Parallelism int
}

func (r *UserBasedCF) Name() string {
	return "recall.u2i" // 工业标准命名：u2i (User-to-Item)
}

func (r *UserBasedCF) builder() *behavior.VectorBuilder {
	return behavior.NewVectorBuilder(r.Behaviors, r.Weights)
}

// Neighbors 返回与 userID 最相似的 TopK 个用户，按相似度降序。
// 相似度相同的用户保持按用户 ID 升序（邻居池的遍历顺序）。
func (r *UserBasedCF) Neighbors(ctx context.Context, userID int64, now time.Time) ([]Neighbor, error) {
	window := r.Window
	if window <= 0 {
		window = core.DefaultBehaviorWindow
	}
	topK := r.TopK
	if topK <= 0 {
		topK = core.DefaultTopKNeighbors
	}
	since := now.Add(-window)
	b := r.builder()

	target, err := b.UserVector(ctx, userID, core.TargetPost, since)
	if err != nil {
		return nil, err
	}
	if len(target) == 0 {
		return nil, nil
	}

	pool, err := r.Behaviors.DistinctUserIDs(ctx, core.TargetPost, since)
	if err != nil {
		return nil, fmt.Errorf("load neighbor pool: %w", err)
	}
	others := make([]int64, 0, len(pool))
	for _, id := range pool {
		if id != userID {
			others = append(others, id)
		}
	}
	if len(others) == 0 {
		return nil, nil
	}

	vectors, err := b.UserVectors(ctx, others, core.TargetPost, since)
	if err != nil {
		return nil, err
	}

	// 按下标写入预分配切片，保证结果顺序与并发调度无关
	sims := make([]Neighbor, len(others))
	g, gctx := errgroup.WithContext(ctx)
	limit := r.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)
	for i, id := range others {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sims[i] = Neighbor{UserID: id, Similarity: sparse.Cosine(target, vectors[id])}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := sims[:0]
	for _, n := range sims {
		if n.Similarity > 0 {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (r *UserBasedCF) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || rctx.UserID == 0 || len(rctx.Candidates) == 0 {
		return nil, nil
	}
	log := logging.Ctx(ctx)

	neighbors, err := r.Neighbors(ctx, rctx.UserID, rctx.Clock())
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		log.Debug().Int64("user_id", rctx.UserID).Str("strategy", r.Name()).Msg("no similar users, skip")
		return nil, nil
	}

	// 目标用户有过任何行为（不限时间）的动态都不再推荐
	own, err := r.Behaviors.Behaviors(ctx, rctx.UserID, core.TargetPost, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("load own behaviors: %w", err)
	}
	seen := make(map[int64]struct{}, len(own))
	for _, ev := range own {
		seen[ev.TargetID] = struct{}{}
	}

	similarity := make(map[int64]float64, len(neighbors))
	neighborIDs := make([]int64, len(neighbors))
	for i, n := range neighbors {
		similarity[n.UserID] = n.Similarity
		neighborIDs[i] = n.UserID
	}
	liked, err := r.Behaviors.BehaviorsOf(ctx, core.BehaviorQuery{
		UserIDs:       neighborIDs,
		TargetType:    core.TargetPost,
		BehaviorTypes: core.PositiveBehaviorTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("load neighbor behaviors: %w", err)
	}

	weights := r.Weights
	if weights == nil {
		weights = behavior.DefaultPostWeights()
	}
	scores := make(map[int64]float64)
	for _, ev := range liked {
		if _, skip := seen[ev.TargetID]; skip {
			continue
		}
		scores[ev.TargetID] += similarity[ev.UserID] * weights.Weight(ev.BehaviorType)
	}

	out := make([]*core.Item, 0, len(scores))
	for _, post := range rctx.Candidates {
		if s := scores[post.ID]; s > 0 {
			out = append(out, newResult(post.ID, s, core.ReasonSimilar, r.Name()))
		}
	}
	log.Debug().Int64("user_id", rctx.UserID).Int("neighbors", len(neighbors)).Int("results", len(out)).
		Msg("collaborative filtering done")
	return sortAndTruncate(out, rctx.Limit()), nil
}
