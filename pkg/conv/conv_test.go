package conv

import (
	"testing"
	"time"
)

func TestConfigGet(t *testing.T) {
	m := map[string]any{
		"name":    "blend",
		"n":       3,
		"ratio":   1,
		"window":  "720h",
		"timeout": 2,
		"ids":     []any{1, 2.0, "x", int64(4)},
		"weights": map[string]any{"content": 0.5},
	}
	if got := ConfigGet(m, "name", ""); got != "blend" {
		t.Errorf("ConfigGet(name) = %q", got)
	}
	if got := ConfigGet(m, "n", "fallback"); got != "fallback" {
		t.Errorf("ConfigGet with wrong type = %q", got)
	}
	if got := ConfigGetInt64(m, "n", 0); got != 3 {
		t.Errorf("ConfigGetInt64(n) = %d", got)
	}
	if got := ConfigGetFloat64(m, "ratio", 0); got != 1.0 {
		t.Errorf("ConfigGetFloat64(ratio) = %v", got)
	}
	if got := ConfigGetDuration(m, "window", 0); got != 720*time.Hour {
		t.Errorf("ConfigGetDuration(window) = %v", got)
	}
	if got := ConfigGetDuration(m, "timeout", 0); got != 2*time.Second {
		t.Errorf("ConfigGetDuration(timeout) = %v", got)
	}
	if got := ConfigGetDuration(m, "missing", time.Minute); got != time.Minute {
		t.Errorf("ConfigGetDuration(missing) = %v", got)
	}
	ids := ConfigGetInt64Slice(m, "ids")
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 4 {
		t.Errorf("ConfigGetInt64Slice(ids) = %v", ids)
	}
	if w := MapToFloat64(ConfigGetMap(m, "weights")); w["content"] != 0.5 {
		t.Errorf("weights = %v", w)
	}
	if ConfigGetMap(m, "name") != nil {
		t.Error("ConfigGetMap on non-map should be nil")
	}
}

func TestConfigGet_Edges(t *testing.T) {
	tests := []struct {
		name string
		m    map[string]any
		want time.Duration
	}{
		{"nil map", nil, time.Minute},
		{"bad string", map[string]any{"d": "soon"}, time.Minute},
		{"bool", map[string]any{"d": true}, time.Minute},
		{"fractional seconds", map[string]any{"d": 0.5}, 500 * time.Millisecond},
		{"uint64", map[string]any{"d": uint64(3)}, 3 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConfigGetDuration(tt.m, "d", time.Minute); got != tt.want {
				t.Errorf("ConfigGetDuration() = %v, want %v", got, tt.want)
			}
		})
	}
	if got := ConfigGetInt64(map[string]any{"n": 7.9}, "n", 0); got != 7 {
		t.Errorf("ConfigGetInt64(7.9) = %d", got)
	}
	if MapToFloat64(nil) != nil {
		t.Error("MapToFloat64(nil) should be nil")
	}
	if ConfigGetInt64Slice(nil, "ids") != nil {
		t.Error("ConfigGetInt64Slice(nil) should be nil")
	}
}
