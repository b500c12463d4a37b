package rank

import (
	"math"
	"sort"
	"time"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pkg/geo"
	"github.com/rushteam/brewrec/pkg/metrics"
)

const (
	// MaxScoringDistanceKm 以外的酒吧按"最远"计分，但不会被排除
	MaxScoringDistanceKm = 50.0

	// 质量分中评价数量的封顶值
	reviewCountCap = 100

	ratingShare = 0.7
	reviewShare = 0.3
)

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// QualityScore = rating/5×0.7 + min(reviews,100)/100×0.3，截断到 [0,1]。
// 缺失的评分与评价数按 0 处理。
func QualityScore(rating float64, reviewCount int) float64 {
	if math.IsNaN(rating) {
		rating = 0
	}
	reviews := min(max(reviewCount, 0), reviewCountCap)
	return clamp01(rating/5.0*ratingShare + float64(reviews)/reviewCountCap*reviewShare)
}

// NormalizeDistance = min(d/50, 1)。
func NormalizeDistance(distanceKm float64) float64 {
	return clamp01(distanceKm / MaxScoringDistanceKm)
}

// CompositeScore = 距离权重×(1-归一化距离) + 质量权重×质量分，截断到 [0,1]。
func CompositeScore(normalizedDistance, quality float64, p Profile) float64 {
	return clamp01(p.DistanceWeight*(1-normalizedDistance) + p.QualityWeight*quality)
}

// VenueRanker 按地理-质量综合分排序酒吧。
// 调用方必须先确认用户位置存在，没有位置时使用 RankByRating。
type VenueRanker struct {
	Profile Profile
}

// NewVenueRanker 按预置名称创建排序器。
func NewVenueRanker(profileName string) (*VenueRanker, error) {
	p, err := ProfileByName(profileName)
	if err != nil {
		return nil, err
	}
	return &VenueRanker{Profile: p}, nil
}

// Rank 计算每个酒吧的距离、质量分与综合分，按综合分降序（同分保持输入顺序）。
// 零值 Profile 视为综合排序；其余 Profile 不合法时返回 INVALID_INPUT。
func (r *VenueRanker) Rank(bars []core.Bar, origin core.Location) ([]core.BarResult, error) {
	profile := r.Profile
	if profile.DistanceWeight == 0 && profile.QualityWeight == 0 {
		profile = DefaultProfile()
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, nil
	}
	start := time.Now()
	defer func() { metrics.VenueRankDuration.Observe(time.Since(start).Seconds()) }()

	out := make([]core.BarResult, 0, len(bars))
	for _, b := range bars {
		d := geo.Haversine(origin.Latitude, origin.Longitude, b.Latitude, b.Longitude)
		q := QualityScore(b.AvgRating, b.ReviewCount)
		out = append(out, core.BarResult{
			Bar:            b,
			DistanceKm:     d,
			QualityScore:   q,
			CompositeScore: CompositeScore(NormalizeDistance(d), q, profile),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompositeScore > out[j].CompositeScore })
	return out, nil
}

// RankByRating 是没有用户位置时的排序：平均评分降序，其次评价数降序（稳定排序）。
// 结果的 DistanceKm 为 0，CompositeScore 取质量分。
func RankByRating(bars []core.Bar) []core.BarResult {
	out := make([]core.BarResult, 0, len(bars))
	for _, b := range bars {
		q := QualityScore(b.AvgRating, b.ReviewCount)
		out = append(out, core.BarResult{Bar: b, QualityScore: q, CompositeScore: q})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Bar.AvgRating != out[j].Bar.AvgRating {
			return out[i].Bar.AvgRating > out[j].Bar.AvgRating
		}
		return out[i].Bar.ReviewCount > out[j].Bar.ReviewCount
	})
	return out
}

// FilterByRadius 只保留 radiusKm 之内的结果，保持顺序。
func FilterByRadius(results []core.BarResult, radiusKm float64) []core.BarResult {
	out := results[:0:0]
	for _, r := range results {
		if r.DistanceKm <= radiusKm {
			out = append(out, r)
		}
	}
	return out
}
