// Package behavior 定义行为权重、时间衰减和交互向量构建。
package behavior

import (
	"fmt"
	"math"

	"github.com/rushteam/brewrec/core"
)

// WeightTable 是行为类型到权重的映射。未知行为类型的权重为 1.0。
type WeightTable map[core.BehaviorType]float64

// DefaultPostWeights 是动态打分使用的权重表。
func DefaultPostWeights() WeightTable {
	return WeightTable{
		core.BehaviorView:     1.0,
		core.BehaviorLike:     2.0,
		core.BehaviorFavorite: 3.0,
		core.BehaviorComment:  1.5,
		core.BehaviorShare:    2.0,
	}
}

// DefaultBeverageWeights 是酒类偏好使用的权重表，同时也是行为写入时固化到记录里的权重。
func DefaultBeverageWeights() WeightTable {
	return WeightTable{
		core.BehaviorView:     1,
		core.BehaviorLike:     3,
		core.BehaviorFavorite: 5,
		core.BehaviorComment:  4,
		core.BehaviorShare:    2,
	}
}

// Weight 返回行为类型的权重。
func (t WeightTable) Weight(b core.BehaviorType) float64 {
	if w, ok := t[b]; ok {
		return w
	}
	return 1.0
}

// Validate 校验权重表：不允许负数、NaN、无穷大或未知的行为类型。
func (t WeightTable) Validate() error {
	for b, w := range t {
		if _, err := core.ParseBehaviorType(string(b)); err != nil {
			return err
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return core.NewInvalidInput(core.ModuleBehavior, fmt.Sprintf("invalid weight %v for %s", w, b))
		}
	}
	return nil
}

// Override 返回以 overrides 覆盖后的新表，key 为大小写不敏感的行为类型名。
// overrides 为空时返回原表的拷贝。
func (t WeightTable) Override(overrides map[string]float64) (WeightTable, error) {
	out := make(WeightTable, len(t)+len(overrides))
	for b, w := range t {
		out[b] = w
	}
	for name, w := range overrides {
		b, err := core.ParseBehaviorType(name)
		if err != nil {
			return nil, err
		}
		out[b] = w
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Sum 按权重表累加一组行为的总权重。
func (t WeightTable) Sum(events []core.BehaviorEvent) float64 {
	var total float64
	for _, ev := range events {
		total += t.Weight(ev.BehaviorType)
	}
	return total
}
