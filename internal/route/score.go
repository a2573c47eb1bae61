package route

import (
	"fmt"

	"backend-safewalk/internal/shared/geo"

	"github.com/twpayne/go-polyline"
)

const (
	maxSamples        = 50
	maxScoredDistance = 2000.0
	minVisibility     = 2000.0
	maxVisibility     = 10000.0
	lowVisibility     = 4000
)

func Normalize(value, lo, hi float64) float64 {
	if hi == lo {
		return 1
	}
	n := (value - lo) / (hi - lo)
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// DecodePath decodes an encoded polyline. Malformed input yields no points.
func DecodePath(encoded string) []geo.Point {
	if encoded == "" {
		return nil
	}
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil
	}
	out := make([]geo.Point, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		out = append(out, geo.Point{Lat: c[0], Lng: c[1]})
	}
	return out
}

// Sample keeps at most maxSamples points, evenly strided.
func Sample(points []geo.Point) []geo.Point {
	if len(points) <= maxSamples {
		return points
	}
	step := len(points) / maxSamples
	out := make([]geo.Point, 0, maxSamples)
	for i := 0; i < len(points) && len(out) < maxSamples; i += step {
		out = append(out, points[i])
	}
	return out
}

// ScoreRoute rates a candidate from its length and the current visibility.
func ScoreRoute(c Candidate, w Weather) ScoredRoute {
	distance := float64(c.DistanceMeters)
	visibility := float64(w.Visibility)
	eta := c.DurationSeconds / 60

	visScore := Normalize(visibility, minVisibility, maxVisibility)
	lenScore := 0.0
	if distance <= maxScoredDistance {
		lenScore = Normalize(maxScoredDistance-distance, 0, maxScoredDistance)
	}

	risk := 0.6*(1-visScore) + 0.4*(1-lenScore)
	score := int(100 - risk*100)
	if score < 0 {
		score = 0
	}

	tags := []string{}
	if visScore > 0.7 {
		tags = append(tags, "Good visibility")
	} else if visScore < 0.3 {
		tags = append(tags, "Poor visibility")
	}
	if lenScore > 0.7 {
		tags = append(tags, "Short route")
	}
	if w.Visibility < lowVisibility {
		tags = append(tags, "Low visibility conditions")
	}

	var explanation []string
	switch {
	case c.DistanceMeters <= 1000:
		explanation = append(explanation, fmt.Sprintf("This is a short route of %dm, taking approximately %d minutes.", c.DistanceMeters, eta))
	case c.DistanceMeters <= 2000:
		explanation = append(explanation, fmt.Sprintf("This route is %dm long and takes approximately %d minutes.", c.DistanceMeters, eta))
	default:
		explanation = append(explanation, fmt.Sprintf("This is a longer route of %dm, taking approximately %d minutes.", c.DistanceMeters, eta))
	}

	switch {
	case visScore > 0.7:
		explanation = append(explanation, fmt.Sprintf("Excellent visibility conditions (%dm) make this route safer.", w.Visibility))
	case visScore > 0.3:
		explanation = append(explanation, fmt.Sprintf("Moderate visibility (%dm) is acceptable for walking.", w.Visibility))
	default:
		explanation = append(explanation, fmt.Sprintf("Poor visibility (%dm) reduces safety, especially at night.", w.Visibility))
	}

	if lenScore > 0.7 {
		explanation = append(explanation, "The short distance minimizes exposure time.")
	} else if lenScore < 0.3 {
		explanation = append(explanation, "The longer distance increases overall risk.")
	}

	switch {
	case score >= 80:
		explanation = append(explanation, "Overall, this route has a high safety score.")
	case score >= 60:
		explanation = append(explanation, "This route has a moderate safety score.")
	default:
		explanation = append(explanation, "This route has a lower safety score due to visibility and distance factors.")
	}
	if len(explanation) > 4 {
		explanation = explanation[:4]
	}

	return ScoredRoute{
		SafetyScore:    score,
		DistanceMeters: c.DistanceMeters,
		EtaMinutes:     eta,
		Polyline:       c.Polyline,
		Explanation:    explanation,
		Tags:           tags,
	}
}
