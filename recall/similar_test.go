package recall

import "testing"

func TestSimilarPosts(t *testing.T) {
	f := newFixture(t)
	f.post(1, "", "whisky", "peat", "islay")
	f.post(2, "", "whisky")
	f.post(3, "", "peat", "islay")
	f.post(4, "", "gin")
	f.post(5, "", "islay", "whisky")

	s := &SimilarPosts{Catalog: f.repo}
	got, err := s.Similar(f.ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{3, 5, 2}; !equalIDs(ids(got), want) {
		t.Errorf("Similar = %v, want %v", ids(got), want)
	}

	none, err := s.Similar(f.ctx, 99, 10)
	if err != nil || len(none) != 0 {
		t.Errorf("untagged source = %v, %v", none, err)
	}
}
