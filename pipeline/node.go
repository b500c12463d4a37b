package pipeline

import (
	"context"

	"github.com/rushteam/brewrec/core"
)

// Kind 标记 Node 所处阶段，用于分阶段打点。
type Kind string

// 动态推荐固定为 召回融合 → 过滤 → 重排 三个阶段。
const (
	KindRecall Kind = "recall"
	KindFilter Kind = "filter"
	KindReRank Kind = "rerank"
)

// Node 接收上一阶段的候选，返回处理后的候选。
// 返回的切片可以复用入参的底层数组；Item 指针在节点间共享。
type Node interface {
	Name() string
	Kind() Kind
	Process(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error)
}

// ProcessFunc 是 Node.Process 的函数形态。
type ProcessFunc func(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error)

// NodeFunc 把一个函数包装成 Node，适合临时的业务规则（例如运营置顶）。
func NodeFunc(name string, kind Kind, fn ProcessFunc) Node {
	return &funcNode{name: name, kind: kind, fn: fn}
}

type funcNode struct {
	name string
	kind Kind
	fn   ProcessFunc
}

func (n *funcNode) Name() string { return n.name }
func (n *funcNode) Kind() Kind   { return n.kind }

func (n *funcNode) Process(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if n.fn == nil {
		return items, nil
	}
	return n.fn(ctx, rctx, items)
}
