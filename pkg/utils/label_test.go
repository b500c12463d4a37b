package utils

import "testing"

func TestMergeLabel(t *testing.T) {
	tests := []struct {
		name     string
		existing Label
		incoming Label
		want     Label
	}{
		{"empty existing", Label{}, Label{Value: "recall.hot", Source: "recall"}, Label{Value: "recall.hot", Source: "recall"}},
		{"empty incoming", Label{Value: "a", Source: "recall"}, Label{}, Label{Value: "a", Source: "recall"}},
		{"accumulate", Label{Value: "recall.content", Source: "recall"}, Label{Value: "recall.hot", Source: "recall"},
			Label{Value: "recall.content|recall.hot", Source: "recall"}},
		{"different source", Label{Value: "true", Source: "filter.seen"}, Label{Value: "x", Source: "filter.expr"},
			Label{Value: "true|x", Source: "filter.seen,filter.expr"}},
		{"duplicate value", Label{Value: "a|b", Source: "recall"}, Label{Value: "b", Source: "recall"}, Label{Value: "a|b", Source: "recall"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeLabel(tt.existing, tt.incoming); got != tt.want {
				t.Errorf("MergeLabel() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLabel_Primary(t *testing.T) {
	l := Label{Value: "recall.cf|recall.hot"}
	if l.Primary() != "recall.cf" {
		t.Errorf("Primary() = %q", l.Primary())
	}
	if got := l.Values(); len(got) != 2 || got[1] != "recall.hot" {
		t.Errorf("Values() = %v", got)
	}
	if (Label{}).Values() != nil {
		t.Error("empty label should have no values")
	}
}
