// Package recall 实现动态推荐的打分策略（内容 / 协同过滤 / 热度）以及多策略融合。
package recall

import (
	"context"
	"sort"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pkg/utils"
)

// Source 表示一个可复用的打分策略（内容/CF/热度/...）。
// 你可以把它理解为“可并发 fan-out 的策略单元”。
//
// Recall 只对 rctx.Candidates 打分，最多返回 rctx.Limit() 个结果，按分数降序。
// 数据稀疏（冷启动、无邻居）时返回空列表而不是错误。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// LabelSource 记录结果来自哪个策略。
const LabelSource = "recall_source"

func newResult(id int64, score float64, reason, source string) *core.Item {
	it := core.NewItem(id)
	it.Score = score
	it.Reason = reason
	it.PutLabel(LabelSource, utils.Label{Value: source, Source: "recall"})
	return it
}

// sortAndTruncate 按分数降序稳定排序（同分保持原顺序）并截断到 limit。
func sortAndTruncate(items []*core.Item, limit int) []*core.Item {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func candidateIDs(posts []core.Post) []int64 {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

// Results 把 Item 列表转为推荐结果。
func Results(items []*core.Item) []core.Result {
	out := make([]core.Result, len(items))
	for i, it := range items {
		out[i] = it.Result()
	}
	return out
}
