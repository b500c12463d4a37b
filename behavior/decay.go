package behavior

import (
	"math"
	"time"
)

// MinExponentialDecay 是指数衰减的下限，再久远的行为也保留 10% 的权重。
const MinExponentialDecay = 0.1

// HyperbolicDecay 返回热度使用的双曲衰减系数 1/(1+hours/24)。
//
// hours 取整小时（向下截断）。未来时间与零值时间返回 1.0。
func HyperbolicDecay(createdAt, now time.Time) float64 {
	if createdAt.IsZero() || !now.After(createdAt) {
		return 1.0
	}
	hours := math.Floor(now.Sub(createdAt).Hours())
	return clamp01(1.0 / (1.0 + hours/24.0))
}

// ExponentialDecay 返回偏好画像使用的指数衰减系数 max(0.1, exp(-days/30))。
//
// days 取整天（向下截断）。未来时间与零值时间返回 1.0。
func ExponentialDecay(createdAt, now time.Time) float64 {
	if createdAt.IsZero() || !now.After(createdAt) {
		return 1.0
	}
	days := math.Floor(now.Sub(createdAt).Hours() / 24)
	return math.Max(MinExponentialDecay, math.Exp(-days/30.0))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
