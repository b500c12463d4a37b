package core

import (
	"fmt"
	"strings"
	"time"
)

// TargetType 是行为作用的目标类型。
type TargetType string

const (
	TargetPost     TargetType = "POST"
	TargetBeverage TargetType = "BEVERAGE"
	TargetWiki     TargetType = "WIKI"
	TargetBar      TargetType = "BAR"
)

// BehaviorType 是用户行为类型。
type BehaviorType string

const (
	BehaviorView     BehaviorType = "VIEW"
	BehaviorLike     BehaviorType = "LIKE"
	BehaviorFavorite BehaviorType = "FAVORITE"
	BehaviorComment  BehaviorType = "COMMENT"
	BehaviorShare    BehaviorType = "SHARE"
)

// AllBehaviorTypes 按固定顺序列出全部行为类型。
var AllBehaviorTypes = []BehaviorType{
	BehaviorView, BehaviorLike, BehaviorFavorite, BehaviorComment, BehaviorShare,
}

// PositiveBehaviorTypes 是协同过滤中视为"喜欢"的行为（不含浏览和分享）。
var PositiveBehaviorTypes = []BehaviorType{
	BehaviorLike, BehaviorFavorite, BehaviorComment,
}

// ParseTargetType 解析目标类型（大小写不敏感）。
func ParseTargetType(s string) (TargetType, error) {
	t := TargetType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case TargetPost, TargetBeverage, TargetWiki, TargetBar:
		return t, nil
	}
	return "", NewInvalidInput(ModuleBehavior, fmt.Sprintf("unknown target type %q", s))
}

// ParseBehaviorType 解析行为类型（大小写不敏感）。
func ParseBehaviorType(s string) (BehaviorType, error) {
	b := BehaviorType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllBehaviorTypes {
		if b == known {
			return b, nil
		}
	}
	return "", NewInvalidInput(ModuleBehavior, fmt.Sprintf("unknown behavior type %q", s))
}

// BehaviorEvent 是一条用户行为记录，只追加、不可修改。
// Weight 在写入时按记录权重表确定，之后不会回溯重算。
type BehaviorEvent struct {
	ID           int64
	UserID       int64
	TargetType   TargetType
	TargetID     int64
	BehaviorType BehaviorType
	Weight       float64
	CreatedAt    time.Time
}
