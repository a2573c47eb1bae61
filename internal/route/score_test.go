package route

import (
	"testing"

	"backend-safewalk/internal/shared/geo"

	"github.com/twpayne/go-polyline"
)

func encode(points ...geo.Point) string {
	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Lat, p.Lng})
	}
	return string(polyline.EncodeCoords(coords))
}

func TestNormalize(t *testing.T) {
	if Normalize(5, 0, 10) != 0.5 {
		t.Fatalf("expected midpoint")
	}
	if Normalize(-1, 0, 10) != 0 || Normalize(20, 0, 10) != 1 {
		t.Fatalf("expected clamping")
	}
	if Normalize(3, 4, 4) != 1 {
		t.Fatalf("expected 1 for empty range")
	}
}

func TestDecodeAndSample(t *testing.T) {
	encoded := encode(geo.Point{Lat: 47.6553, Lng: -122.3035}, geo.Point{Lat: 47.66, Lng: -122.31})
	path := DecodePath(encoded)
	if len(path) != 2 || path[1].Lat != 47.66 {
		t.Fatalf("unexpected path %+v", path)
	}
	if DecodePath("") != nil || DecodePath("\x01") != nil {
		t.Fatalf("expected nil for bad input")
	}

	long := make([]geo.Point, 175)
	if got := len(Sample(long)); got != 50 {
		t.Fatalf("expected 50 samples, got %d", got)
	}
	if got := len(Sample(long[:30])); got != 30 {
		t.Fatalf("expected short paths untouched, got %d", got)
	}
}

func TestScoreRouteModerate(t *testing.T) {
	got := ScoreRoute(Candidate{DistanceMeters: 300, DurationSeconds: 240, Polyline: "abc"}, Weather{Visibility: 7000, Condition: "Cloudy"})

	if got.SafetyScore != 71 {
		t.Fatalf("expected 71, got %d", got.SafetyScore)
	}
	if got.EtaMinutes != 4 || got.DistanceMeters != 300 || got.Polyline != "abc" {
		t.Fatalf("unexpected route fields %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "Short route" {
		t.Fatalf("unexpected tags %v", got.Tags)
	}
	want := []string{
		"This is a short route of 300m, taking approximately 4 minutes.",
		"Moderate visibility (7000m) is acceptable for walking.",
		"The short distance minimizes exposure time.",
		"This route has a moderate safety score.",
	}
	if len(got.Explanation) != len(want) {
		t.Fatalf("unexpected explanation %v", got.Explanation)
	}
	for i := range want {
		if got.Explanation[i] != want[i] {
			t.Fatalf("sentence %d: got %q want %q", i, got.Explanation[i], want[i])
		}
	}
}

func TestScoreRoutePoor(t *testing.T) {
	got := ScoreRoute(Candidate{DistanceMeters: 2500, DurationSeconds: 1800}, Weather{Visibility: 1500, Condition: "Fog"})

	if got.SafetyScore != 0 {
		t.Fatalf("expected floor of 0, got %d", got.SafetyScore)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "Poor visibility" || got.Tags[1] != "Low visibility conditions" {
		t.Fatalf("unexpected tags %v", got.Tags)
	}
	if got.Explanation[0] != "This is a longer route of 2500m, taking approximately 30 minutes." {
		t.Fatalf("unexpected first sentence %q", got.Explanation[0])
	}
	if got.Explanation[2] != "The longer distance increases overall risk." {
		t.Fatalf("unexpected length sentence %q", got.Explanation[2])
	}
}

func TestScoreRouteExplanationBounds(t *testing.T) {
	for _, d := range []int{0, 800, 1500, 1900, 5000} {
		for _, v := range []int{0, 3000, 6000, 12000} {
			got := ScoreRoute(Candidate{DistanceMeters: d, DurationSeconds: d}, Weather{Visibility: v})
			if n := len(got.Explanation); n < 2 || n > 4 {
				t.Fatalf("d=%d v=%d: %d sentences", d, v, n)
			}
			if got.SafetyScore < 0 || got.SafetyScore > 100 {
				t.Fatalf("d=%d v=%d: score %d out of range", d, v, got.SafetyScore)
			}
		}
	}
}
