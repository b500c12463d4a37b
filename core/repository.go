package core

import (
	"context"
	"time"
)

// BehaviorQuery 是批量行为查询条件（邻居打分使用）。
type BehaviorQuery struct {
	UserIDs       []int64
	TargetType    TargetType
	BehaviorTypes []BehaviorType // 为空表示不过滤
	TargetID      int64          // 0 表示不过滤
	Since         time.Time      // 零值表示不限时间
}

// BehaviorReader 是行为日志的读接口。
//
// 定义在领域层，由 store 包实现（内存 / SQLite），遵循依赖倒置。
// 实现必须支持并发读。
type BehaviorReader interface {
	// Behaviors 获取用户在 since 之后对某类目标的全部行为
	Behaviors(ctx context.Context, userID int64, targetType TargetType, since time.Time) ([]BehaviorEvent, error)

	// BehaviorsOf 按条件批量获取行为
	BehaviorsOf(ctx context.Context, q BehaviorQuery) ([]BehaviorEvent, error)

	// DistinctUserIDs 获取 since 之后对某类目标有过行为的所有用户
	DistinctUserIDs(ctx context.Context, targetType TargetType, since time.Time) ([]int64, error)
}

// BehaviorWriter 是行为日志的写接口（只追加）。
type BehaviorWriter interface {
	RecordBehavior(ctx context.Context, ev BehaviorEvent) error
}

// CandidateQuery 是候选动态查询条件。
type CandidateQuery struct {
	Since      time.Time
	ExcludeIDs []int64
	Limit      int
}

// BoundingBox 是经纬度矩形范围（度）。MinLon > MaxLon 表示矩形跨越 ±180° 经线。
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// CrossesAntimeridian 判断矩形是否跨越 ±180° 经线。
func (b BoundingBox) CrossesAntimeridian() bool { return b.MinLon > b.MaxLon }

// Contains 判断坐标是否落在矩形内（含边界）。
func (b BoundingBox) Contains(lat, lon float64) bool {
	if lat < b.MinLat || lat > b.MaxLat {
		return false
	}
	if b.CrossesAntimeridian() {
		return lon >= b.MinLon || lon <= b.MaxLon
	}
	return lon >= b.MinLon && lon <= b.MaxLon
}

// BarQuery 是酒吧查询条件。
type BarQuery struct {
	Box        *BoundingBox // 为 nil 表示不限范围
	ActiveOnly bool
}

// CatalogReader 是目标元数据（动态、标签、酒吧、酒类）的读接口。
type CatalogReader interface {
	// Tags 获取动态的标签，返回 postID -> 标签名列表
	Tags(ctx context.Context, postIDs []int64) (map[int64][]string, error)

	// Posts 批量获取动态元数据，缺失的 ID 直接跳过
	Posts(ctx context.Context, postIDs []int64) ([]Post, error)

	// CandidatePosts 获取候选动态（按创建时间倒序）
	CandidatePosts(ctx context.Context, q CandidateQuery) ([]Post, error)

	// PostsByTags 获取与给定标签有交集的动态，返回 postID -> 共同标签数
	PostsByTags(ctx context.Context, tags []string, excludeID int64) (map[int64]int, error)

	// Bars 获取酒吧，结果按 ID 升序
	Bars(ctx context.Context, q BarQuery) ([]Bar, error)

	// Beverages 批量获取酒类，缺失的 ID 直接跳过
	Beverages(ctx context.Context, ids []int64) ([]Beverage, error)
}

// Repository 聚合了推荐引擎所需的全部存储协作方。
type Repository interface {
	BehaviorReader
	BehaviorWriter
	CatalogReader
	Close() error
}
