package recall

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rushteam/brewrec/behavior"
	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pkg/logging"
	"github.com/rushteam/brewrec/pkg/sparse"
)

// ContentProfile 是用户的内容偏好画像，两个向量各自归一化为和为 1。
type ContentProfile struct {
	Tags      sparse.Vector
	Locations sparse.Vector
}

// Empty 判断画像是否为空（冷启动）。
func (p *ContentProfile) Empty() bool {
	return p == nil || (len(p.Tags) == 0 && len(p.Locations) == 0)
}

// ContentRecall 是基于内容的打分策略（Content-Based Recommendation）。
//
// 核心思想："用户喜欢具有某些特征的物品，推荐具有相似特征的其他物品"
//
// 算法流程：
//  1. 用户近期互动过的动态 → 标签 / 地点偏好（按动态的行为总权重累加并归一化）
//  2. 候选动态的标签向量（N 个标签各 1/N）与地点指示向量
//  3. 分别计算余弦相似度，按 TagWeight / LocationWeight 线性组合
type ContentRecall struct {
	Behaviors core.BehaviorReader
	Catalog   core.CatalogReader

	// Weights 行为打分权重表，默认 behavior.DefaultPostWeights
	Weights behavior.WeightTable

	// Window 画像回看窗口，默认 30 天
	Window time.Duration

	// TagWeight / LocationWeight 标签与地点的组合权重，默认 0.7 / 0.3，和必须为 1
	TagWeight      float64
	LocationWeight float64
}

const (
	DefaultTagWeight      = 0.7
	DefaultLocationWeight = 0.3
)

// NewContentRecall 创建内容策略并校验标签/地点权重。
// tagWeight 与 locationWeight 同时为 0 时使用默认值。
func NewContentRecall(behaviors core.BehaviorReader, catalog core.CatalogReader, tagWeight, locationWeight float64) (*ContentRecall, error) {
	if tagWeight == 0 && locationWeight == 0 {
		tagWeight, locationWeight = DefaultTagWeight, DefaultLocationWeight
	}
	if err := validateSplit(core.ModuleRecall, "content", tagWeight, locationWeight); err != nil {
		return nil, err
	}
	return &ContentRecall{
		Behaviors:      behaviors,
		Catalog:        catalog,
		TagWeight:      tagWeight,
		LocationWeight: locationWeight,
	}, nil
}

func (r *ContentRecall) Name() string { return "recall.content" }

func (r *ContentRecall) weights() behavior.WeightTable {
	if r.Weights == nil {
		return behavior.DefaultPostWeights()
	}
	return r.Weights
}

func (r *ContentRecall) split() (float64, float64) {
	if r.TagWeight == 0 && r.LocationWeight == 0 {
		return DefaultTagWeight, DefaultLocationWeight
	}
	return r.TagWeight, r.LocationWeight
}

// BuildProfile 构建用户在回看窗口内的内容偏好画像。
// 每个互动过的动态以其行为总权重计入一次。没有行为时返回空画像。
func (r *ContentRecall) BuildProfile(ctx context.Context, userID int64, now time.Time) (*ContentProfile, error) {
	window := r.Window
	if window <= 0 {
		window = core.DefaultBehaviorWindow
	}
	events, err := r.Behaviors.Behaviors(ctx, userID, core.TargetPost, now.Add(-window))
	if err != nil {
		return nil, fmt.Errorf("load behaviors: %w", err)
	}
	profile := &ContentProfile{Tags: sparse.Vector{}, Locations: sparse.Vector{}}
	if len(events) == 0 {
		return profile, nil
	}

	postWeights := behavior.NewVectorBuilder(nil, r.weights()).FromEvents(events)
	postIDs := make([]int64, 0, len(postWeights))
	seen := make(map[int64]struct{}, len(postWeights))
	for _, ev := range events {
		if _, dup := seen[ev.TargetID]; !dup {
			seen[ev.TargetID] = struct{}{}
			postIDs = append(postIDs, ev.TargetID)
		}
	}

	tags, err := r.Catalog.Tags(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	posts, err := r.Catalog.Posts(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}

	for _, id := range postIDs {
		w := postWeights[id]
		for _, tag := range tags[id] {
			profile.Tags[tag] += w
		}
	}
	for _, p := range posts {
		if loc := strings.TrimSpace(p.Location); loc != "" {
			profile.Locations[loc] += postWeights[p.ID]
		}
	}
	sparse.NormalizeSum(profile.Tags)
	sparse.NormalizeSum(profile.Locations)
	return profile, nil
}

// Score 计算候选动态与画像的内容相似度，结果在 [0,1]。
func (r *ContentRecall) Score(profile *ContentProfile, post core.Post, tags []string) float64 {
	if profile.Empty() {
		return 0
	}
	tagWeight, locationWeight := r.split()

	var tagScore, locationScore float64
	if len(tags) > 0 {
		tagScore = sparse.Cosine(profile.Tags, sparse.Uniform(tags))
	}
	if loc := strings.TrimSpace(post.Location); loc != "" {
		locationScore = sparse.Cosine(profile.Locations, sparse.Indicator(loc))
	}
	return sparse.Clamp01(tagWeight*tagScore + locationWeight*locationScore)
}

func (r *ContentRecall) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || rctx.UserID == 0 || len(rctx.Candidates) == 0 {
		return nil, nil
	}
	profile, err := r.BuildProfile(ctx, rctx.UserID, rctx.Clock())
	if err != nil {
		return nil, err
	}
	if profile.Empty() {
		logging.Ctx(ctx).Debug().Int64("user_id", rctx.UserID).Str("strategy", r.Name()).
			Msg("no content profile, skip")
		return nil, nil
	}

	tags, err := r.Catalog.Tags(ctx, candidateIDs(rctx.Candidates))
	if err != nil {
		return nil, fmt.Errorf("load candidate tags: %w", err)
	}

	out := make([]*core.Item, 0, len(rctx.Candidates))
	for _, post := range rctx.Candidates {
		score := r.Score(profile, post, tags[post.ID])
		if score > 0 && !math.IsNaN(score) {
			out = append(out, newResult(post.ID, score, core.ReasonContent, r.Name()))
		}
	}
	return sortAndTruncate(out, rctx.Limit()), nil
}

// validateSplit 校验一组组合权重：每个都在 [0,1]，和在 1±WeightEpsilon 内。
func validateSplit(module, name string, weights ...float64) error {
	var sum float64
	for _, w := range weights {
		if w < 0 || w > 1 || math.IsNaN(w) {
			return core.NewInvalidInput(module, fmt.Sprintf("%s weight %v out of [0,1]", name, w))
		}
		sum += w
	}
	if math.Abs(sum-1.0) > core.WeightEpsilon {
		return core.NewInvalidInput(module, fmt.Sprintf("%s weights sum to %v, want 1.0", name, sum))
	}
	return nil
}
