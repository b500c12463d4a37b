package core

import "time"

// Post 是动态（分享帖）的打分所需元数据：地点与互动计数。
type Post struct {
	ID            int64
	AuthorID      int64
	Location      string
	ViewCount     int64
	LikeCount     int64
	FavoriteCount int64
	CommentCount  int64
	CreatedAt     time.Time
}

// Bar 是酒吧（场所）。AvgRating 取值 1-5，缺失时为 0。
type Bar struct {
	ID            int64
	Name          string
	City          string
	Latitude      float64
	Longitude     float64
	AvgRating     float64
	ReviewCount   int
	MainBeverages string
	Active        bool
}

// Beverage 是酒类条目，供偏好画像与热门度计算使用。
type Beverage struct {
	ID         int64
	Name       string
	Type       string
	Origin     string
	TasteNotes string
	Rating     float64
	ViewCount  int64
}

// Result 是单个推荐结果。Reason 只用于前端解释，不参与排序。
type Result struct {
	ItemID int64   `json:"item_id"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// 推荐理由标签
const (
	ReasonContent  = "content match"
	ReasonSimilar  = "similar users liked"
	ReasonTrending = "trending"
	ReasonTags     = "similar tags"
	ReasonLatest   = "latest"
)

// BarResult 是酒吧排序结果。
type BarResult struct {
	Bar            Bar     `json:"bar"`
	DistanceKm     float64 `json:"distance_km"`
	QualityScore   float64 `json:"quality_score"`
	CompositeScore float64 `json:"composite_score"`
}

// Location 是经纬度坐标（度）。
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
