package filter

import (
	"context"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pipeline"
	"github.com/rushteam/brewrec/pkg/logging"
	"github.com/rushteam/brewrec/pkg/metrics"
	"github.com/rushteam/brewrec/pkg/utils"
)

// FilteredLabel 记录命中的过滤器名（Source），被剔除的 Item 不会出现在结果里，仅用于调试。
const FilteredLabel = "filtered"

// FilterNode 依次应用 Filters，任一命中即剔除。
// 预加载失败的过滤器本次请求跳过；单个 Item 判断出错视为不命中。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string        { return "filter" }
func (n *FilterNode) Kind() pipeline.Kind { return pipeline.KindFilter }

// prepare 为本次请求展开 RequestScoped 过滤器。
func (n *FilterNode) prepare(ctx context.Context, rctx *core.RecommendContext) []Filter {
	out := make([]Filter, 0, len(n.Filters))
	for _, f := range n.Filters {
		scoped, ok := f.(RequestScoped)
		if !ok {
			out = append(out, f)
			continue
		}
		rf, err := scoped.ForRequest(ctx, rctx)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("filter", f.Name()).Msg("filter unavailable, skipped")
			continue
		}
		out = append(out, rf)
	}
	return out
}

// match 返回第一个命中的过滤器名，未命中返回空串。
func match(ctx context.Context, rctx *core.RecommendContext, filters []Filter, item *core.Item) string {
	for _, f := range filters {
		hit, err := f.ShouldFilter(ctx, rctx, item)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("filter", f.Name()).Int64("item", item.ID).Msg("filter error")
			continue
		}
		if hit {
			return f.Name()
		}
	}
	return ""
}

func (n *FilterNode) Process(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}
	filters := n.prepare(ctx, rctx)

	kept := make([]*core.Item, 0, len(items))
	dropped := make(map[string]int)
	for _, item := range items {
		if item == nil {
			continue
		}
		by := match(ctx, rctx, filters, item)
		if by == "" {
			kept = append(kept, item)
			continue
		}
		item.PutLabel(FilteredLabel, utils.Label{Value: "true", Source: by})
		dropped[by]++
	}

	if len(dropped) > 0 {
		ev := logging.Ctx(ctx).Debug().Int("kept", len(kept))
		for name, c := range dropped {
			metrics.FilteredTotal.WithLabelValues(name).Add(float64(c))
			ev = ev.Int(name, c)
		}
		ev.Msg("items filtered")
	}
	return kept, nil
}
