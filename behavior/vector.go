package behavior

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pkg/sparse"
)

// Vector 是用户交互向量：目标 ID -> 累计行为权重。
type Vector map[int64]float64

// VectorBuilder 从行为日志构建交互向量，权重取自 Weights（不做时间衰减）。
type VectorBuilder struct {
	Reader  core.BehaviorReader
	Weights WeightTable
}

// NewVectorBuilder 创建 VectorBuilder，weights 为 nil 时使用 DefaultPostWeights。
func NewVectorBuilder(reader core.BehaviorReader, weights WeightTable) *VectorBuilder {
	if weights == nil {
		weights = DefaultPostWeights()
	}
	return &VectorBuilder{Reader: reader, Weights: weights}
}

// UserVector 构建用户在 since 之后对 targetType 的交互向量。
func (b *VectorBuilder) UserVector(ctx context.Context, userID int64, targetType core.TargetType, since time.Time) (Vector, error) {
	events, err := b.Reader.Behaviors(ctx, userID, targetType, since)
	if err != nil {
		return nil, fmt.Errorf("load behaviors of user %d: %w", userID, err)
	}
	return b.FromEvents(events), nil
}

// UserVectors 一次批量读取多个用户的行为并按用户分组构建向量。
// 没有行为的用户不会出现在结果中。
func (b *VectorBuilder) UserVectors(ctx context.Context, userIDs []int64, targetType core.TargetType, since time.Time) (map[int64]Vector, error) {
	out := make(map[int64]Vector, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	events, err := b.Reader.BehaviorsOf(ctx, core.BehaviorQuery{
		UserIDs:    userIDs,
		TargetType: targetType,
		Since:      since,
	})
	if err != nil {
		return nil, fmt.Errorf("load behaviors of %d users: %w", len(userIDs), err)
	}
	for _, ev := range events {
		v, ok := out[ev.UserID]
		if !ok {
			v = make(Vector)
			out[ev.UserID] = v
		}
		v[ev.TargetID] += b.Weights.Weight(ev.BehaviorType)
	}
	return out, nil
}

// FromEvents 把一组行为折叠成交互向量。
func (b *VectorBuilder) FromEvents(events []core.BehaviorEvent) Vector {
	v := make(Vector, len(events))
	for _, ev := range events {
		v[ev.TargetID] += b.Weights.Weight(ev.BehaviorType)
	}
	return v
}

// DecayedFeatureVector 把行为映射到目标的特征上，按 权重×指数衰减 累加。
// features 返回目标的特征列表（类型、产地、口味关键词等），返回空则跳过该行为。
func DecayedFeatureVector(events []core.BehaviorEvent, weights WeightTable, features func(targetID int64) []string, now time.Time) sparse.Vector {
	out := make(sparse.Vector)
	for _, ev := range events {
		feats := features(ev.TargetID)
		if len(feats) == 0 {
			continue
		}
		score := weights.Weight(ev.BehaviorType) * ExponentialDecay(ev.CreatedAt, now)
		for _, f := range feats {
			out[f] += score
		}
	}
	return out
}
