// Package filter 提供候选过滤：已读过滤、黑名单与表达式过滤。
package filter

import (
	"context"

	"github.com/rushteam/brewrec/core"
)

// Filter 是过滤器的抽象接口，用于判断一个 Item 是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// RequestScoped 是需要按请求预加载数据的过滤器（例如用户已读集合）。
// FilterNode 在逐个判断之前调用一次 ForRequest，用返回的过滤器处理本次请求。
type RequestScoped interface {
	Filter
	ForRequest(ctx context.Context, rctx *core.RecommendContext) (Filter, error)
}

// FilterFunc 把普通函数适配为 Filter。
type FilterFunc struct {
	FilterName string
	Fn         func(item *core.Item) bool
}

func (f FilterFunc) Name() string { return f.FilterName }

func (f FilterFunc) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	return f.Fn(item), nil
}
