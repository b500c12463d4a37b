// Package rerank 提供过滤之后的截断与打散节点。
package rerank

import (
	"context"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pipeline"
)

// DefaultDiversityLabel 是 Diversity 默认读取的 Label。
const DefaultDiversityLabel = "recall_source"

// TopNNode 截取前 N 个动态；N <= 0 时取请求的 Size。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string        { return "rerank.topn" }
func (n *TopNNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopNNode) Process(_ context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 {
		limit = rctx.Limit()
	}
	return items[:min(limit, len(items))], nil
}

// Diversity 限制同一来源连续占据结果的数量。
//
// 每个取值（合并过的 Label 取首个值）最多保留 MaxPerValue 个，超出的默认丢弃；
// Demote 为 true 时改为按原顺序移到末尾，结果数量不变。没有该 Label 的动态不受限制。
type Diversity struct {
	LabelKey    string // 默认 recall_source
	MaxPerValue int    // 默认 1
	Demote      bool
}

func (n *Diversity) Name() string        { return "rerank.diversity" }
func (n *Diversity) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *Diversity) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	key := n.LabelKey
	if key == "" {
		key = DefaultDiversityLabel
	}
	maxPer := max(n.MaxPerValue, 1)

	seen := make(map[string]int)
	kept := make([]*core.Item, 0, len(items))
	var overflow []*core.Item
	for _, it := range items {
		if it == nil {
			continue
		}
		lbl, ok := it.Labels[key]
		if !ok || lbl.Value == "" {
			kept = append(kept, it)
			continue
		}
		v := lbl.Primary()
		if seen[v] < maxPer {
			seen[v]++
			kept = append(kept, it)
		} else if n.Demote {
			overflow = append(overflow, it)
		}
	}
	return append(kept, overflow...), nil
}
