package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/brewrec/core"
)

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get(missing) err = %v, want not found", err)
	}
	if err := s.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := s.Set(ctx, "short", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, err := s.Get(ctx, "short"); !core.IsStoreNotFound(err) {
		t.Errorf("expired key err = %v, want not found", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("deleted key err = %v, want not found", err)
	}
}

func TestMemoryStore_ZReplace(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	members := []core.ScoredMember{
		{Member: "1", Score: 3},
		{Member: "2", Score: 9},
		{Member: "3", Score: 5},
	}
	if err := s.ZReplace(ctx, "hot", members, time.Hour); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		start, stop int64
		want        []string
	}{
		{"all", 0, -1, []string{"2", "3", "1"}},
		{"top2", 0, 1, []string{"2", "3"}},
		{"tail", 2, 10, []string{"1"}},
		{"out of range", 5, 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ZRange(ctx, "hot", tt.start, tt.stop)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ZRange = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i].Member != tt.want[i] {
					t.Errorf("ZRange[%d] = %s, want %s", i, got[i].Member, tt.want[i])
				}
			}
		})
	}

	if score, err := s.ZScore(ctx, "hot", "3"); err != nil || score != 5 {
		t.Errorf("ZScore = %v, %v", score, err)
	}

	// 替换语义：旧成员不保留
	if err := s.ZReplace(ctx, "hot", []core.ScoredMember{{Member: "4", Score: 1}}, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ZScore(ctx, "hot", "1"); !core.IsStoreNotFound(err) {
		t.Errorf("replaced member still present, err = %v", err)
	}
}
