package recall

import "github.com/rushteam/brewrec/core"

// MergeStrategy 把多个策略的（已加权的）结果合并为一个列表。
// lists 按策略顺序排列，下标即优先级（越小越高）。
type MergeStrategy interface {
	Name() string
	Merge(lists [][]*core.Item, limit int) []*core.Item
}

// MergeStrategyByName 按名称返回合并策略：max（默认）/ priority / union。
func MergeStrategyByName(name string) (MergeStrategy, error) {
	switch name {
	case "", "max":
		return MaxMerge{}, nil
	case "priority":
		return PriorityMerge{}, nil
	case "union":
		return UnionMerge{}, nil
	}
	return nil, core.NewInvalidInput(core.ModuleRecall, "unknown merge strategy "+name)
}

// MaxMerge 按 ID 去重并保留最高分（连同其推荐理由），不做累加：
// 一个强信号不会因为被多个策略同时命中而被放大。
// 同分按首次出现的顺序（策略顺序、策略内顺序）排列。
type MaxMerge struct{}

func (MaxMerge) Name() string { return "max" }

func (MaxMerge) Merge(lists [][]*core.Item, limit int) []*core.Item {
	best := make(map[int64]*core.Item)
	order := make([]int64, 0)
	for _, list := range lists {
		for _, it := range list {
			if it == nil {
				continue
			}
			old, ok := best[it.ID]
			if !ok {
				best[it.ID] = it
				order = append(order, it.ID)
				continue
			}
			if it.Score > old.Score {
				mergeLabels(it, old)
				best[it.ID] = it
			} else {
				mergeLabels(old, it)
			}
		}
	}
	out := make([]*core.Item, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	return sortAndTruncate(out, limit)
}

// PriorityMerge 按优先级合并：相同 ID 时保留优先级更高（策略下标更小）的结果。
type PriorityMerge struct{}

func (PriorityMerge) Name() string { return "priority" }

func (PriorityMerge) Merge(lists [][]*core.Item, limit int) []*core.Item {
	seen := make(map[int64]*core.Item)
	out := make([]*core.Item, 0)
	for _, list := range lists {
		for _, it := range list {
			if it == nil {
				continue
			}
			if old, ok := seen[it.ID]; ok {
				mergeLabels(old, it)
				continue
			}
			seen[it.ID] = it
			out = append(out, it)
		}
	}
	return sortAndTruncate(out, limit)
}

// UnionMerge 轮流从每个策略的列表中取下一个结果（各策略内部保持原顺序），按 ID 去重，
// 先出现的保留，后出现的只合并 label。结果不按分数重排，每个策略都能进入前列。
type UnionMerge struct{}

func (UnionMerge) Name() string { return "union" }

func (UnionMerge) Merge(lists [][]*core.Item, limit int) []*core.Item {
	seen := make(map[int64]*core.Item)
	out := make([]*core.Item, 0)
	for i := 0; ; i++ {
		more := false
		for _, list := range lists {
			if i >= len(list) {
				continue
			}
			more = true
			it := list[i]
			if it == nil {
				continue
			}
			if old, ok := seen[it.ID]; ok {
				mergeLabels(old, it)
				continue
			}
			seen[it.ID] = it
			out = append(out, it)
		}
		if !more {
			break
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// mergeLabels 把 from 的 label 合并进 into，保留来源可追踪。
func mergeLabels(into, from *core.Item) {
	for k, v := range from.Labels {
		into.PutLabel(k, v)
	}
}
