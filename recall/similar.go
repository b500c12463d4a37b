package recall

import (
	"context"
	"fmt"
	"slices"

	"github.com/rushteam/brewrec/core"
)

// SimilarPosts 按共同标签召回与某条动态相似的动态。
//
// 分数 = 共同标签数 / 源动态标签数，排序等价于按共同标签数降序；同分按动态 ID 升序。
type SimilarPosts struct {
	Catalog core.CatalogReader
}

func (r *SimilarPosts) Name() string { return "recall.i2i.tags" }

// Similar 返回与 postID 相似的动态（不含自身）。源动态没有标签时返回空，由调用方回落到最新动态。
func (r *SimilarPosts) Similar(ctx context.Context, postID int64, limit int) ([]*core.Item, error) {
	tagMap, err := r.Catalog.Tags(ctx, []int64{postID})
	if err != nil {
		return nil, fmt.Errorf("load tags of post %d: %w", postID, err)
	}
	tags := slices.Compact(slices.Sorted(slices.Values(tagMap[postID])))
	if len(tags) == 0 {
		return nil, nil
	}

	shared, err := r.Catalog.PostsByTags(ctx, tags, postID)
	if err != nil {
		return nil, fmt.Errorf("load posts by tags: %w", err)
	}
	ids := make([]int64, 0, len(shared))
	for id := range shared {
		if id != postID {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		score := float64(shared[id]) / float64(len(tags))
		out = append(out, newResult(id, score, core.ReasonTags, r.Name()))
	}
	return sortAndTruncate(out, limit), nil
}
