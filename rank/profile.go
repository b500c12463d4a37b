// Package rank 实现酒吧（场所）的地理-质量排序。
package rank

import (
	"fmt"
	"math"
	"sort"

	"github.com/rushteam/brewrec/core"
)

// Profile 是距离与质量的权重组合。
type Profile struct {
	Name           string  `json:"name"`
	DistanceWeight float64 `json:"distance_weight"`
	QualityWeight  float64 `json:"quality_weight"`
}

// 预置排序方式
const (
	ProfileComprehensive = "comprehensive"
	ProfileDistanceFirst = "distance_first"
	ProfileRatingFirst   = "rating_first"
	ProfileDistanceOnly  = "distance_only"
	ProfileRatingOnly    = "rating_only"
)

var presets = map[string]Profile{
	ProfileComprehensive: {ProfileComprehensive, 0.5, 0.5},
	ProfileDistanceFirst: {ProfileDistanceFirst, 0.7, 0.3},
	ProfileRatingFirst:   {ProfileRatingFirst, 0.3, 0.7},
	ProfileDistanceOnly:  {ProfileDistanceOnly, 1.0, 0.0},
	ProfileRatingOnly:    {ProfileRatingOnly, 0.0, 1.0},
}

// Validate 要求每个权重在 [0,1]，且两者之和在 1±WeightEpsilon 之内；不做静默截断。
func (p Profile) Validate() error {
	d, q := p.DistanceWeight, p.QualityWeight
	if !(d >= 0 && d <= 1 && q >= 0 && q <= 1) {
		return core.NewInvalidInput(core.ModuleRank,
			fmt.Sprintf("profile %q: weights must be within [0,1], got %v/%v", p.Name, d, q))
	}
	if math.Abs(d+q-1.0) > core.WeightEpsilon {
		return core.NewInvalidInput(core.ModuleRank,
			fmt.Sprintf("profile %q: weights must sum to 1.0, got %v", p.Name, d+q))
	}
	return nil
}

// NewProfile 创建并校验自定义权重组合。
func NewProfile(name string, distanceWeight, qualityWeight float64) (Profile, error) {
	p := Profile{Name: name, DistanceWeight: distanceWeight, QualityWeight: qualityWeight}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// DefaultProfile 返回综合排序（0.5 / 0.5）。
func DefaultProfile() Profile { return presets[ProfileComprehensive] }

// ProfileByName 返回预置的排序方式，名称为空时返回综合排序。
func ProfileByName(name string) (Profile, error) {
	if name == "" {
		return DefaultProfile(), nil
	}
	p, ok := presets[name]
	if !ok {
		return Profile{}, core.NewInvalidInput(core.ModuleRank,
			fmt.Sprintf("unknown ranking profile %q (supported: %v)", name, ProfileNames()))
	}
	return p, nil
}

// ProfileNames 返回所有预置排序方式名称（排序后）。
func ProfileNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
