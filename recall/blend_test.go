package recall

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rushteam/brewrec/core"
)

func TestBlendWeights_Validate(t *testing.T) {
	tests := []struct {
		name    string
		w       BlendWeights
		wantErr bool
	}{
		{"default", DefaultBlendWeights(), false},
		{"within epsilon", BlendWeights{0.4, 0.4, 0.205}, false},
		{"popularity only", BlendWeights{0, 0, 1}, false},
		{"sum too large", BlendWeights{0.5, 0.5, 0.2}, true},
		{"negative", BlendWeights{0.6, 0.6, -0.2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !core.IsInvalidInput(err) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestBlend_DedupByMax(t *testing.T) {
	content := &staticSource{name: "content", items: []core.Result{{ItemID: 1, Score: 0.75, Reason: core.ReasonContent}}}
	cf := &staticSource{name: "cf", items: []core.Result{{ItemID: 1, Score: 1.25, Reason: core.ReasonSimilar}}}
	hot := &staticSource{name: "hot", items: []core.Result{{ItemID: 2, Score: 1.0, Reason: core.ReasonTrending}}}

	b, err := NewDefaultBlend(content, cf, hot, DefaultBlendWeights(), nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := b.Recall(context.Background(), &core.RecommendContext{UserID: 1, Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	// 0.75×0.4=0.3 与 1.25×0.4=0.5 去重后保留 0.5，而不是 0.8
	if got[0].ID != 1 || math.Abs(got[0].Score-0.5) > 1e-9 {
		t.Errorf("first = %d/%v, want 1/0.5", got[0].ID, got[0].Score)
	}
	if got[0].Reason != core.ReasonSimilar {
		t.Errorf("Reason = %q, want the max-scoring strategy's reason", got[0].Reason)
	}
	if got[1].ID != 2 || math.Abs(got[1].Score-0.2) > 1e-9 {
		t.Errorf("second = %d/%v, want 2/0.2", got[1].ID, got[1].Score)
	}
}

func TestBlend_AsksForDoubleSize(t *testing.T) {
	s := &staticSource{name: "only"}
	b, err := NewBlend([]WeightedSource{{Source: s, Weight: 1}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	rctx := &core.RecommendContext{Size: 7}
	if _, err := b.Recall(context.Background(), rctx); err != nil {
		t.Fatal(err)
	}
	if s.got == nil || s.got.Size != 14 {
		t.Errorf("strategy size = %+v, want 14", s.got)
	}
	if rctx.Size != 7 {
		t.Errorf("caller context mutated: size = %d", rctx.Size)
	}
}

func TestBlend_ColdStart(t *testing.T) {
	f := newFixture(t)
	p1 := f.post(1, "Beijing", "whisky")
	p1.LikeCount = 3
	p2 := f.post(2, "Shanghai", "gin")

	content, _ := NewContentRecall(f.repo, f.repo, 0, 0)
	cf := &UserBasedCF{Behaviors: f.repo}
	b, err := NewDefaultBlend(content, cf, &Hot{}, DefaultBlendWeights(), nil)
	if err != nil {
		t.Fatal(err)
	}
	rctx := &core.RecommendContext{UserID: 99, Now: testNow, Size: 10, Candidates: []core.Post{p2, p1}}
	got, err := b.Recall(f.ctx, rctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{1, 2}; !equalIDs(ids(got), want) {
		t.Fatalf("cold start = %v, want %v", ids(got), want)
	}
	want := HotScore(p1, testNow) * 0.2
	if math.Abs(got[0].Score-want) > 1e-9 {
		t.Errorf("score = %v, want popularity-only %v", got[0].Score, want)
	}
}

func TestBlend_AllEmpty(t *testing.T) {
	empty := func(n string) *staticSource { return &staticSource{name: n} }
	b, _ := NewDefaultBlend(empty("a"), empty("b"), empty("c"), DefaultBlendWeights(), nil)
	got, err := b.Recall(context.Background(), &core.RecommendContext{Size: 5})
	if err != nil || len(got) != 0 {
		t.Errorf("all empty = %v, %v; want empty, nil", got, err)
	}
}

func TestBlend_FailingStrategyDegrades(t *testing.T) {
	bad := &staticSource{name: "bad", err: errors.New("db down")}
	good := &staticSource{name: "good", items: []core.Result{{ItemID: 3, Score: 1}}}
	b, err := NewBlend([]WeightedSource{{Source: bad, Weight: 0.5}, {Source: good, Weight: 0.5}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := b.Recall(context.Background(), &core.RecommendContext{Size: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalIDs(ids(got), []int64{3}) {
		t.Errorf("got %v, want [3]", ids(got))
	}
}

func TestBlend_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bad := &staticSource{name: "bad", err: context.Canceled}
	b, _ := NewBlend([]WeightedSource{{Source: bad, Weight: 1}}, nil)
	if _, err := b.Recall(ctx, &core.RecommendContext{Size: 5}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestNewBlend_Invalid(t *testing.T) {
	s := &staticSource{name: "s"}
	if _, err := NewBlend(nil, nil); !core.IsInvalidInput(err) {
		t.Errorf("empty sources err = %v", err)
	}
	if _, err := NewBlend([]WeightedSource{{Source: s, Weight: 0.5}}, nil); !core.IsInvalidInput(err) {
		t.Errorf("bad sum err = %v", err)
	}
}

func TestBlend_UnionHasNoDuplicates(t *testing.T) {
	shared := []core.Result{{ItemID: 1, Score: 0.9}, {ItemID: 2, Score: 0.5}}
	content := &staticSource{name: "content", items: shared}
	cf := &staticSource{name: "cf", items: shared}
	hot := &staticSource{name: "hot", items: shared}

	b, err := NewDefaultBlend(content, cf, hot, DefaultBlendWeights(), UnionMerge{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := b.Recall(context.Background(), &core.RecommendContext{UserID: 1, Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	if !equalIDs(ids(got), []int64{1, 2}) {
		t.Errorf("union blend = %v, want [1 2]", ids(got))
	}
}

func TestBlend_KeepAll(t *testing.T) {
	results := []core.Result{{ItemID: 1, Score: 0.9}, {ItemID: 2, Score: 0.8}, {ItemID: 3, Score: 0.7}, {ItemID: 4, Score: 0.6}}
	tests := []struct {
		name    string
		keepAll bool
		want    int
	}{
		{"truncate to size", false, 2},
		{"keep merged", true, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBlend([]WeightedSource{{Source: &staticSource{name: "s", items: results}, Weight: 1}}, nil)
			if err != nil {
				t.Fatal(err)
			}
			b.KeepAll = tt.keepAll
			got, err := b.Recall(context.Background(), &core.RecommendContext{Size: 2})
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}
