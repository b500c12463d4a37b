package behavior

import (
	"math"
	"testing"

	"github.com/rushteam/brewrec/core"
)

func TestWeightTable(t *testing.T) {
	post := DefaultPostWeights()
	if got := post.Weight(core.BehaviorFavorite); got != 3.0 {
		t.Errorf("post favorite = %v, want 3", got)
	}
	if got := post.Weight(core.BehaviorType("UNKNOWN")); got != 1.0 {
		t.Errorf("unknown behavior = %v, want 1", got)
	}
	bev := DefaultBeverageWeights()
	if got := bev.Weight(core.BehaviorComment); got != 4 {
		t.Errorf("beverage comment = %v, want 4", got)
	}
}

func TestWeightTableOverride(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]float64
		wantErr   bool
		check     core.BehaviorType
		want      float64
	}{
		{"empty keeps defaults", nil, false, core.BehaviorLike, 2.0},
		{"case insensitive", map[string]float64{"like": 4}, false, core.BehaviorLike, 4},
		{"negative rejected", map[string]float64{"VIEW": -1}, true, "", 0},
		{"unknown rejected", map[string]float64{"CLICK": 1}, true, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DefaultPostWeights().Override(tt.overrides)
			if tt.wantErr {
				if !core.IsInvalidInput(err) {
					t.Fatalf("err = %v, want INVALID_INPUT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Weight(tt.check) != tt.want {
				t.Errorf("%s = %v, want %v", tt.check, got.Weight(tt.check), tt.want)
			}
		})
	}
}

func TestWeightTableSum(t *testing.T) {
	events := []core.BehaviorEvent{
		{BehaviorType: core.BehaviorView},
		{BehaviorType: core.BehaviorLike},
		{BehaviorType: core.BehaviorComment},
	}
	if got := DefaultPostWeights().Sum(events); got != 4.5 {
		t.Errorf("Sum = %v, want 4.5", got)
	}
}

func TestWeightTableOverride_NonFinite(t *testing.T) {
	tests := []struct {
		name string
		w    float64
	}{
		{"nan", math.NaN()},
		{"+inf", math.Inf(1)},
		{"-inf", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DefaultPostWeights().Override(map[string]float64{"like": tt.w}); !core.IsInvalidInput(err) {
				t.Errorf("Override(like=%v) err = %v, want INVALID_INPUT", tt.w, err)
			}
		})
	}
}
