package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pkg/utils"
)

func newItems(n int) []*core.Item {
	out := make([]*core.Item, n)
	for i := range out {
		out[i] = core.NewItem(int64(i + 1))
	}
	return out
}

func TestTopNNode(t *testing.T) {
	tests := []struct {
		name string
		n    int
		size int
		in   int
		want int
	}{
		{"explicit", 3, 0, 10, 3},
		{"fewer items", 5, 0, 2, 2},
		{"request size", 0, 4, 10, 4},
		{"default size", 0, 0, 30, core.DefaultFeedSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := (&TopNNode{N: tt.n}).Process(context.Background(), &core.RecommendContext{Size: tt.size}, newItems(tt.in))
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestDiversity(t *testing.T) {
	tests := []struct {
		name string
		node Diversity
		want []int64
	}{
		{"drop overflow", Diversity{MaxPerValue: 2}, []int64{1, 2, 3, 4}},
		{"default one per value", Diversity{}, []int64{1, 3, 4}},
		{"demote overflow", Diversity{MaxPerValue: 1, Demote: true}, []int64{1, 3, 4, 2, 5}},
		{"merged label counts primary", Diversity{LabelKey: "merged"}, []int64{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := newItems(5)
			for i, src := range []string{"hot", "hot", "content", "", "hot"} {
				if src != "" {
					items[i].PutLabel("recall_source", utils.Label{Value: src})
				}
				items[i].PutLabel("merged", utils.Label{Value: []string{"a", "b", "c", "d", "e"}[i]})
				items[i].PutLabel("merged", utils.Label{Value: "hot"})
			}
			got, err := tt.node.Process(context.Background(), nil, items)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d items, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("got[%d] = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}
