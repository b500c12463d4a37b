package service

import (
	"context"
	"time"

	"github.com/rushteam/brewrec/behavior"
	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/filter"
	"github.com/rushteam/brewrec/pkg/logging"
)

// BehaviorService 记录用户行为。行为写入时按 Weights 固化权重。
type BehaviorService struct {
	Writer  core.BehaviorWriter
	Weights behavior.WeightTable

	// Seen 可选：对动态的行为同时写入长周期已读布隆过滤器
	Seen *filter.SeenBloom

	Clock func() time.Time
}

// NewBehaviorService 使用默认的记录权重表。
func NewBehaviorService(w core.BehaviorWriter) *BehaviorService {
	return &BehaviorService{Writer: w, Weights: behavior.DefaultBeverageWeights()}
}

// Record 记录一次行为。行为记录不能影响主流程：
// 失败只记录日志，不返回错误；userID 或 targetID 不为正时直接忽略。
func (s *BehaviorService) Record(ctx context.Context, userID int64, targetType core.TargetType, targetID int64, behaviorType core.BehaviorType) {
	if userID <= 0 || targetID <= 0 {
		return
	}
	if err := s.RecordEvent(ctx, userID, targetType, targetID, behaviorType); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Int64("user_id", userID).
			Str("target_type", string(targetType)).
			Int64("target_id", targetID).
			Str("behavior", string(behaviorType)).
			Msg("record behavior failed")
	}
}

// RecordEvent 与 Record 相同，但返回错误。
func (s *BehaviorService) RecordEvent(ctx context.Context, userID int64, targetType core.TargetType, targetID int64, behaviorType core.BehaviorType) error {
	if userID <= 0 || targetID <= 0 {
		return core.NewInvalidInput(core.ModuleService, "user id and target id must be positive")
	}
	weights := s.Weights
	if weights == nil {
		weights = behavior.DefaultBeverageWeights()
	}
	now := time.Now()
	if s.Clock != nil {
		now = s.Clock()
	}
	ev := core.BehaviorEvent{
		UserID:       userID,
		TargetType:   targetType,
		TargetID:     targetID,
		BehaviorType: behaviorType,
		Weight:       weights.Weight(behaviorType),
		CreatedAt:    now,
	}
	if err := s.Writer.RecordBehavior(ctx, ev); err != nil {
		return core.WrapUnavailable(core.ModuleService, "record behavior", err)
	}
	if s.Seen != nil && targetType == core.TargetPost {
		if err := s.Seen.Add(ctx, userID, targetID); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("update seen bloom failed")
		}
	}
	return nil
}
