package core

import "time"

// 推荐引擎的默认参数。各组件在对应字段为零值时回落到这些值。
const (
	DefaultTopKNeighbors   = 10
	DefaultBehaviorWindow  = 30 * 24 * time.Hour
	DefaultCandidateWindow = 90 * 24 * time.Hour
	DefaultCandidateLimit  = 1000
	DefaultFeedSize        = 20

	// 酒吧推荐：初筛半径与默认返回数量
	DefaultVenueRadiusKm = 50.0
	DefaultVenueLimit    = 5
)

// WeightEpsilon 是权重之和与 1.0 比较时允许的误差。
const WeightEpsilon = 0.01
