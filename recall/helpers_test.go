package recall

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/store"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t    *testing.T
	ctx  context.Context
	repo *store.MemoryRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, ctx: context.Background(), repo: store.NewMemoryRepository()}
}

func (f *fixture) post(id int64, location string, tags ...string) core.Post {
	f.t.Helper()
	p := core.Post{ID: id, Location: location, CreatedAt: testNow.Add(-time.Duration(id) * time.Hour)}
	if err := f.repo.AddPost(f.ctx, p, tags...); err != nil {
		f.t.Fatal(err)
	}
	return p
}

func (f *fixture) act(user, post int64, b core.BehaviorType) {
	f.t.Helper()
	err := f.repo.RecordBehavior(f.ctx, core.BehaviorEvent{
		UserID: user, TargetType: core.TargetPost, TargetID: post, BehaviorType: b,
		CreatedAt: testNow.Add(-time.Hour),
	})
	if err != nil {
		f.t.Fatal(err)
	}
}

func ids(items []*core.Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// staticSource 返回固定结果，用于测试融合。
type staticSource struct {
	name  string
	items []core.Result
	err   error
	got   *core.RecommendContext
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Recall(_ context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	s.got = rctx
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*core.Item, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, core.ItemFromResult(r))
	}
	return out, nil
}
