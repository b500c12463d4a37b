package profile

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rushteam/brewrec/behavior"
	"github.com/rushteam/brewrec/core"
)

// DefaultPopularityWindow 热门度的行为统计窗口
const DefaultPopularityWindow = 30 * 24 * time.Hour

// 热门度组合权重：行为 / 评分 / 浏览
const (
	popularityBehaviorShare = 0.4
	popularityRatingShare   = 0.3
	popularityViewShare     = 0.3
)

// PopularityScorer 计算酒类热门度。
//
//	score = Σ(权重×指数衰减)×0.4 + rating/5×0.3 + min(log1p(views)/10, 1)×0.3
//
// 行为分不做截断，因此热门度没有上界。
type PopularityScorer struct {
	Behaviors core.BehaviorReader
	Catalog   core.CatalogReader
	Weights   behavior.WeightTable
	Window    time.Duration
	Clock     func() time.Time
}

func NewPopularityScorer(behaviors core.BehaviorReader, catalog core.CatalogReader) *PopularityScorer {
	return &PopularityScorer{Behaviors: behaviors, Catalog: catalog}
}

// Popularity 返回单个酒类的热门度，酒类不存在时为 0。
func (s *PopularityScorer) Popularity(ctx context.Context, beverageID int64) (float64, error) {
	scores, err := s.Popularities(ctx, []int64{beverageID})
	if err != nil {
		return 0, err
	}
	return scores[beverageID], nil
}

// Popularities 批量计算热门度，只包含存在的酒类。
func (s *PopularityScorer) Popularities(ctx context.Context, beverageIDs []int64) (map[int64]float64, error) {
	out := make(map[int64]float64, len(beverageIDs))
	if len(beverageIDs) == 0 {
		return out, nil
	}
	beverages, err := s.Catalog.Beverages(ctx, beverageIDs)
	if err != nil {
		return nil, fmt.Errorf("load beverages: %w", err)
	}
	now := time.Now()
	if s.Clock != nil {
		now = s.Clock()
	}
	window := s.Window
	if window <= 0 {
		window = DefaultPopularityWindow
	}
	weights := s.Weights
	if weights == nil {
		weights = behavior.DefaultBeverageWeights()
	}

	for _, b := range beverages {
		events, err := s.Behaviors.BehaviorsOf(ctx, core.BehaviorQuery{
			TargetType: core.TargetBeverage,
			TargetID:   b.ID,
			Since:      now.Add(-window),
		})
		if err != nil {
			return nil, fmt.Errorf("load behaviors of beverage %d: %w", b.ID, err)
		}
		var behaviorScore float64
		for _, ev := range events {
			behaviorScore += weights.Weight(ev.BehaviorType) * behavior.ExponentialDecay(ev.CreatedAt, now)
		}
		out[b.ID] = PopularityScore(behaviorScore, b.Rating, b.ViewCount)
	}
	return out, nil
}

// PopularityScore 组合行为分、评分与浏览数。
func PopularityScore(behaviorScore, rating float64, views int64) float64 {
	viewScore := math.Min(math.Log1p(float64(max(views, 0)))/10.0, 1.0)
	return behaviorScore*popularityBehaviorShare + rating/5.0*popularityRatingShare + viewScore*popularityViewShare
}
