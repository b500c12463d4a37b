package filter

import (
	"context"
	"slices"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/store"
)

// BlacklistFilter 是黑名单过滤器，过滤掉黑名单中的动态（例如被下架的内容）。
type BlacklistFilter struct {
	// ItemIDs 是内存中的黑名单
	ItemIDs []int64

	// Store / Key 可选：从存储读取 JSON 数组形式的黑名单，每个请求读取一次
	Store core.Store
	Key   string
}

func NewBlacklistFilter(itemIDs []int64, s core.Store, key string) *BlacklistFilter {
	return &BlacklistFilter{ItemIDs: itemIDs, Store: s, Key: key}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	return slices.Contains(f.ItemIDs, item.ID), nil
}

// ForRequest 合并内存黑名单与存储中的黑名单；存储中没有该 key 时只使用内存黑名单。
func (f *BlacklistFilter) ForRequest(ctx context.Context, _ *core.RecommendContext) (Filter, error) {
	set := make(map[int64]struct{}, len(f.ItemIDs))
	for _, id := range f.ItemIDs {
		set[id] = struct{}{}
	}
	if f.Store != nil && f.Key != "" {
		var ids []int64
		err := store.GetJSON(ctx, f.Store, f.Key, &ids)
		if err != nil && !core.IsNotFound(err) {
			return nil, err
		}
		for _, id := range ids {
			set[id] = struct{}{}
		}
	}
	return idSetFilter{name: f.Name(), ids: set}, nil
}

type idSetFilter struct {
	name string
	ids  map[int64]struct{}
}

func (f idSetFilter) Name() string { return f.name }

func (f idSetFilter) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	_, ok := f.ids[item.ID]
	return ok, nil
}
