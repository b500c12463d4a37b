package geo

import (
	"math"
	"testing"

	"github.com/rushteam/brewrec/core"
)

func TestHaversineKnownDistance(t *testing.T) {
	// 北京 -> 上海 约 1068km
	d := Haversine(39.9042, 116.4074, 31.2304, 121.4737)
	if d < 1060 || d > 1080 {
		t.Errorf("Beijing-Shanghai = %.2f km, want 1060-1080", d)
	}
}

func TestHaversineSymmetryAndIdentity(t *testing.T) {
	points := []core.Location{
		{Latitude: 39.9042, Longitude: 116.4074},
		{Latitude: 31.2304, Longitude: 121.4737},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 51.5074, Longitude: -0.1278},
	}
	for _, a := range points {
		if d := Distance(a, a); d != 0 {
			t.Errorf("Distance(a,a) = %v, want 0", d)
		}
		for _, b := range points {
			ab, ba := Distance(a, b), Distance(b, a)
			if math.Abs(ab-ba) > 1e-9 {
				t.Errorf("asymmetric distance %v vs %v", ab, ba)
			}
		}
	}
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	origin := core.Location{Latitude: 40, Longitude: 116}
	box := BoundingBox(origin, 50)
	if !box.Contains(40.4, 116) {
		t.Error("point ~44km north should be inside the box")
	}
	if box.Contains(40.6, 116) {
		t.Error("point ~67km north should be outside the box")
	}
	if !box.Contains(origin.Latitude, origin.Longitude) {
		t.Error("origin must be inside the box")
	}
}

func TestBoundingBoxEdges(t *testing.T) {
	tests := []struct {
		name    string
		origin  core.Location
		inside  []core.Location
		outside []core.Location
	}{
		{
			name:    "north pole",
			origin:  core.Location{Latitude: 90, Longitude: 0},
			inside:  []core.Location{{Latitude: 89.8, Longitude: 179}, {Latitude: 89.8, Longitude: -120}},
			outside: []core.Location{{Latitude: 88, Longitude: 0}},
		},
		{
			name:    "east of antimeridian",
			origin:  core.Location{Latitude: -17.7, Longitude: 179.9},
			inside:  []core.Location{{Latitude: -17.7, Longitude: -179.9}, {Latitude: -17.7, Longitude: 179.5}},
			outside: []core.Location{{Latitude: -17.7, Longitude: 0}, {Latitude: -17.7, Longitude: 178}},
		},
		{
			name:    "west of antimeridian",
			origin:  core.Location{Latitude: 65, Longitude: -179.8},
			inside:  []core.Location{{Latitude: 65, Longitude: 179.8}},
			outside: []core.Location{{Latitude: 65, Longitude: 170}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := BoundingBox(tt.origin, 50)
			for _, v := range []float64{box.MinLat, box.MaxLat, box.MinLon, box.MaxLon} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("box has non-finite bound: %+v", box)
				}
			}
			if box.MinLat < -90 || box.MaxLat > 90 || box.MinLon < -180 || box.MaxLon > 180 {
				t.Errorf("box out of range: %+v", box)
			}
			for _, p := range tt.inside {
				if !box.Contains(p.Latitude, p.Longitude) {
					t.Errorf("%+v should be inside %+v", p, box)
				}
			}
			for _, p := range tt.outside {
				if box.Contains(p.Latitude, p.Longitude) {
					t.Errorf("%+v should be outside %+v", p, box)
				}
			}
		})
	}
}
