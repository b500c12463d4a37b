package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pkg/geo"
	"github.com/rushteam/brewrec/pkg/logging"
	"github.com/rushteam/brewrec/rank"
)

// VenueService 是酒吧推荐入口。
type VenueService struct {
	Catalog core.CatalogReader
	Ranker  *rank.VenueRanker

	// RadiusKm 是矩形初筛半径，默认 50
	RadiusKm float64
	// DefaultLimit 默认 5
	DefaultLimit int
}

// NewVenueService 使用预置权重方案 profileName 创建服务。
func NewVenueService(catalog core.CatalogReader, profileName string) (*VenueService, error) {
	r, err := rank.NewVenueRanker(profileName)
	if err != nil {
		return nil, err
	}
	return &VenueService{Catalog: catalog, Ranker: r}, nil
}

func (s *VenueService) limit(limit int) int {
	if limit > 0 {
		return limit
	}
	if s.DefaultLimit > 0 {
		return s.DefaultLimit
	}
	return core.DefaultVenueLimit
}

func (s *VenueService) ranker() *rank.VenueRanker {
	if s.Ranker == nil {
		return &rank.VenueRanker{Profile: rank.DefaultProfile()}
	}
	return s.Ranker
}

// ValidateLocation 校验经纬度范围。
func ValidateLocation(loc core.Location) error {
	if math.IsNaN(loc.Latitude) || math.IsNaN(loc.Longitude) ||
		loc.Latitude < -90 || loc.Latitude > 90 ||
		loc.Longitude < -180 || loc.Longitude > 180 {
		return core.NewInvalidInput(core.ModuleService,
			fmt.Sprintf("invalid location (%v, %v)", loc.Latitude, loc.Longitude))
	}
	return nil
}

// Recommend 返回 origin 附近的推荐酒吧：按矩形范围取出营业中的酒吧，再按地理-质量综合分排序。
// origin 为 nil 时按评分排序。
func (s *VenueService) Recommend(ctx context.Context, origin *core.Location, limit int) ([]core.BarResult, error) {
	if origin == nil {
		return s.RecommendWithoutLocation(ctx, limit)
	}
	if err := ValidateLocation(*origin); err != nil {
		return nil, err
	}
	radius := s.RadiusKm
	if radius <= 0 {
		radius = core.DefaultVenueRadiusKm
	}
	box := geo.BoundingBox(*origin, radius)
	bars, err := s.Catalog.Bars(ctx, core.BarQuery{Box: &box, ActiveOnly: true})
	if err != nil {
		return nil, core.WrapUnavailable(core.ModuleService, "load bars", err)
	}
	ranked, err := s.ranker().Rank(bars, *origin)
	if err != nil {
		return nil, err
	}
	results := truncateBars(ranked, s.limit(limit))
	logging.Ctx(ctx).Debug().
		Int("candidates", len(bars)).
		Int("results", len(results)).
		Str("profile", s.ranker().Profile.Name).
		Msg("venues ranked")
	return results, nil
}

// Nearby 返回 radiusKm 内的全部酒吧，按 profileName 指定的权重方案排序（为空时使用服务的方案）。
func (s *VenueService) Nearby(ctx context.Context, origin core.Location, radiusKm float64, profileName string) ([]core.BarResult, error) {
	if err := ValidateLocation(origin); err != nil {
		return nil, err
	}
	if radiusKm <= 0 || math.IsNaN(radiusKm) {
		return nil, core.NewInvalidInput(core.ModuleService, "radius must be positive")
	}
	ranker := s.ranker()
	if profileName != "" {
		r, err := rank.NewVenueRanker(profileName)
		if err != nil {
			return nil, err
		}
		ranker = r
	}
	box := geo.BoundingBox(origin, radiusKm)
	bars, err := s.Catalog.Bars(ctx, core.BarQuery{Box: &box, ActiveOnly: true})
	if err != nil {
		return nil, core.WrapUnavailable(core.ModuleService, "load bars", err)
	}
	ranked, err := ranker.Rank(bars, origin)
	if err != nil {
		return nil, err
	}
	return rank.FilterByRadius(ranked, radiusKm), nil
}

// RecommendWithoutLocation 在没有用户位置时按评分推荐。
func (s *VenueService) RecommendWithoutLocation(ctx context.Context, limit int) ([]core.BarResult, error) {
	bars, err := s.Catalog.Bars(ctx, core.BarQuery{ActiveOnly: true})
	if err != nil {
		return nil, core.WrapUnavailable(core.ModuleService, "load bars", err)
	}
	return truncateBars(rank.RankByRating(bars), s.limit(limit)), nil
}

func truncateBars(results []core.BarResult, limit int) []core.BarResult {
	if results == nil {
		return []core.BarResult{}
	}
	if len(results) > limit {
		return results[:limit]
	}
	return results
}
