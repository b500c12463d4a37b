package core

import (
	"time"

	"github.com/rushteam/brewrec/pkg/utils"
)

// RecommendContext 承载单次请求的用户/候选集/时间信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	RequestID string
	UserID    int64 // 0 表示未登录
	Scene     string

	// Size 是请求的结果数量
	Size int

	// Now 是本次打分使用的统一时间点，保证同一请求内衰减一致
	Now time.Time

	// Candidates 是本次请求的候选动态，由调用方按请求获取，不跨请求缓存
	Candidates []Post

	// Location 是用户位置，为 nil 时酒吧排序退化为按评分排序
	Location *Location

	// Labels 是用户级标签，例如 cold_start
	Labels map[string]utils.Label

	// Params 请求级参数
	Params map[string]any
}

// Clock 返回本次请求的时间点；未设置时使用当前时间。
func (rctx *RecommendContext) Clock() time.Time {
	if rctx == nil || rctx.Now.IsZero() {
		return time.Now()
	}
	return rctx.Now
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// Limit 返回请求的结果数量，未设置时使用 DefaultFeedSize。
func (rctx *RecommendContext) Limit() int {
	if rctx == nil || rctx.Size <= 0 {
		return DefaultFeedSize
	}
	return rctx.Size
}

// WithSize 返回替换了 Size 的浅拷贝，供并发执行的策略各自使用。
func (rctx *RecommendContext) WithSize(n int) *RecommendContext {
	c := *rctx
	c.Size = n
	return &c
}
