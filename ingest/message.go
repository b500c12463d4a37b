// Package ingest 从消息队列消费行为事件并写入行为日志。
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/brewrec/core"
)

// BehaviorMessage 是行为事件的消息格式（JSON）。
type BehaviorMessage struct {
	UserID     int64  `json:"user_id"`
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id"`
	Behavior   string `json:"behavior"`
	Timestamp  int64  `json:"timestamp,omitempty"` // Unix 秒，仅用于日志
}

// Recorder 是行为写入方，service.BehaviorService 实现了它。
type Recorder interface {
	RecordEvent(ctx context.Context, userID int64, targetType core.TargetType, targetID int64, behaviorType core.BehaviorType) error
}

// Decode 解析并校验一条消息。
func Decode(data []byte) (*BehaviorMessage, core.TargetType, core.BehaviorType, error) {
	var msg BehaviorMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, "", "", core.NewInvalidInput(core.ModuleBehavior, fmt.Sprintf("decode message: %v", err))
	}
	if msg.UserID <= 0 || msg.TargetID <= 0 {
		return nil, "", "", core.NewInvalidInput(core.ModuleBehavior, "user_id and target_id must be positive")
	}
	tt, err := core.ParseTargetType(msg.TargetType)
	if err != nil {
		return nil, "", "", err
	}
	bt, err := core.ParseBehaviorType(msg.Behavior)
	if err != nil {
		return nil, "", "", err
	}
	return &msg, tt, bt, nil
}

// Handle 解析一条消息并写入 rec。
func Handle(ctx context.Context, rec Recorder, data []byte) error {
	msg, tt, bt, err := Decode(data)
	if err != nil {
		return err
	}
	return rec.RecordEvent(ctx, msg.UserID, tt, msg.TargetID, bt)
}

// Encode 序列化一条行为消息，ts 为零值时使用当前时间。
func Encode(userID int64, tt core.TargetType, targetID int64, bt core.BehaviorType, ts time.Time) ([]byte, error) {
	if ts.IsZero() {
		ts = time.Now()
	}
	return json.Marshal(BehaviorMessage{
		UserID:     userID,
		TargetType: string(tt),
		TargetID:   targetID,
		Behavior:   string(bt),
		Timestamp:  ts.Unix(),
	})
}
