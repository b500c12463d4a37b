package recall

import (
	"math"
	"testing"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pkg/sparse"
)

func TestNewContentRecall_Validation(t *testing.T) {
	tests := []struct {
		name       string
		tag, loc   float64
		wantErr    bool
		wantTag    float64
	}{
		{"defaults", 0, 0, false, DefaultTagWeight},
		{"custom", 0.5, 0.5, false, 0.5},
		{"sum too small", 0.5, 0.3, true, 0},
		{"negative", 1.2, -0.2, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewContentRecall(nil, nil, tt.tag, tt.loc)
			if tt.wantErr {
				if !core.IsInvalidInput(err) {
					t.Fatalf("err = %v, want INVALID_INPUT", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if r.TagWeight != tt.wantTag {
				t.Errorf("TagWeight = %v, want %v", r.TagWeight, tt.wantTag)
			}
		})
	}
}

func TestContentRecall_BuildProfile(t *testing.T) {
	f := newFixture(t)
	f.post(1, "Beijing", "whisky", "peat")
	f.post(2, "Shanghai", "whisky")
	f.act(7, 1, core.BehaviorLike)     // 2.0
	f.act(7, 2, core.BehaviorView)     // 1.0
	f.act(7, 2, core.BehaviorFavorite) // 3.0

	r, _ := NewContentRecall(f.repo, f.repo, 0, 0)
	p, err := r.BuildProfile(f.ctx, 7, testNow)
	if err != nil {
		t.Fatal(err)
	}
	// tags: whisky=2+4=6, peat=2 → 0.75 / 0.25
	if math.Abs(p.Tags["whisky"]-0.75) > 1e-9 || math.Abs(p.Tags["peat"]-0.25) > 1e-9 {
		t.Errorf("tag profile = %v", p.Tags)
	}
	// locations: Beijing=2, Shanghai=4
	if math.Abs(p.Locations["Shanghai"]-2.0/3.0) > 1e-9 {
		t.Errorf("location profile = %v", p.Locations)
	}
}

func TestContentRecall_Score(t *testing.T) {
	r := &ContentRecall{}
	profile := &ContentProfile{
		Tags:      sparse.Vector{"whisky": 0.5, "gin": 0.5},
		Locations: sparse.Vector{"Beijing": 1},
	}
	tests := []struct {
		name string
		post core.Post
		tags []string
		want float64
	}{
		{"full match", core.Post{Location: "Beijing"}, []string{"whisky", "gin"}, 1.0},
		{"tags only", core.Post{Location: "Chengdu"}, []string{"whisky", "gin"}, 0.7},
		{"location only", core.Post{Location: "Beijing"}, []string{"beer"}, 0.3},
		{"no overlap", core.Post{}, []string{"beer"}, 0},
		{"no tags no location", core.Post{}, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Score(profile, tt.post, tt.tags)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("Score out of [0,1]: %v", got)
			}
		})
	}
}

func TestContentRecall_Recall(t *testing.T) {
	f := newFixture(t)
	f.post(1, "Beijing", "whisky")
	c1 := f.post(2, "Beijing", "whisky")
	c2 := f.post(3, "Shanghai", "gin")
	c3 := f.post(4, "Shanghai", "whisky")
	f.act(7, 1, core.BehaviorLike)

	r, _ := NewContentRecall(f.repo, f.repo, 0, 0)
	rctx := &core.RecommendContext{UserID: 7, Now: testNow, Size: 10, Candidates: []core.Post{c2, c3, c1}}
	got, err := r.Recall(f.ctx, rctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{2, 4}; !equalIDs(ids(got), want) {
		t.Fatalf("Recall = %v, want %v", ids(got), want)
	}
	if got[0].Reason != core.ReasonContent {
		t.Errorf("Reason = %q", got[0].Reason)
	}
}

func TestContentRecall_ColdStart(t *testing.T) {
	f := newFixture(t)
	c := f.post(1, "Beijing", "whisky")
	r, _ := NewContentRecall(f.repo, f.repo, 0, 0)

	got, err := r.Recall(f.ctx, &core.RecommendContext{UserID: 42, Now: testNow, Candidates: []core.Post{c}})
	if err != nil || len(got) != 0 {
		t.Errorf("cold start = %v, %v; want empty, nil", got, err)
	}
}
