package core

import "github.com/rushteam/brewrec/pkg/utils"

// Item 是 Pipeline 中的统一承载结构：打分结果 + 可解释标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Item struct {
	ID     int64
	Score  float64
	Reason string
	Labels map[string]utils.Label
}

func NewItem(id int64) *Item {
	return &Item{
		ID:     id,
		Labels: make(map[string]utils.Label),
	}
}

// ItemFromResult 把策略结果转换为 Pipeline Item。
func ItemFromResult(r Result) *Item {
	it := NewItem(r.ItemID)
	it.Score = r.Score
	it.Reason = r.Reason
	return it
}

// Result 转回推荐结果。
func (it *Item) Result() Result {
	return Result{ItemID: it.ID, Score: it.Score, Reason: it.Reason}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
