package route

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	weightCallbox    = 0.35
	weightVisibility = 0.25
	weightTimeOfDay  = 0.10
	weightLength     = 0.05

	callboxOptimalM = 50.0
	callboxMaxM     = 200.0
	visibilityGood  = 10000.0
	visibilityPoor  = 1000.0
	preferredLength = 500.0
	maxAlertPenalty = 50.0
)

var severityPenalty = map[string]float64{
	"low":      5,
	"medium":   15,
	"high":     30,
	"critical": 50,
}

var poorConditions = []string{"fog", "mist", "haze", "rain", "snow", "storm"}

// Scorer produces the multi-factor assessment: callbox coverage, visibility,
// time of day, route length, and a penalty for active campus alerts.
type Scorer struct{}

type AssessInput struct {
	DistanceM float64
	Callboxes []Callbox
	Weather   Weather
	Alerts    []Alert
	At        time.Time
}

func (Scorer) Assess(in AssessInput) Assessment {
	if in.At.IsZero() {
		in.At = time.Now()
	}
	factors := Factors{
		CallboxProximity:  callboxScore(in.Callboxes),
		WeatherVisibility: visibilityScore(in.Weather),
		AlertsPenalty:     alertsPenalty(in.Alerts),
		TimeOfDay:         timeOfDayScore(in.At),
		RouteLength:       lengthScore(in.DistanceM),
	}

	base := factors.CallboxProximity*weightCallbox +
		factors.WeatherVisibility*weightVisibility +
		factors.TimeOfDay*weightTimeOfDay +
		factors.RouteLength*weightLength
	final := math.Max(0, math.Min(100, base-factors.AlertsPenalty))

	return Assessment{
		Score:       math.Round(final*10) / 10,
		Explanation: explain(in),
		Tags:        tagsFor(in),
		Factors:     factors,
	}
}

func closest(boxes []Callbox) Callbox {
	best := boxes[0]
	for _, b := range boxes[1:] {
		if b.DistanceM < best.DistanceM {
			best = b
		}
	}
	return best
}

func callboxScore(boxes []Callbox) float64 {
	if len(boxes) == 0 {
		return 30
	}
	d := closest(boxes).DistanceM
	switch {
	case d <= callboxOptimalM:
		return 100
	case d <= callboxMaxM:
		ratio := (callboxMaxM - d) / (callboxMaxM - callboxOptimalM)
		return 50 + ratio*50
	default:
		return 30
	}
}

func isPoorWeather(condition string) bool {
	c := strings.ToLower(condition)
	for _, p := range poorConditions {
		if strings.Contains(c, p) {
			return true
		}
	}
	return false
}

func visibilityScore(w Weather) float64 {
	vis := float64(w.Visibility)
	poor := isPoorWeather(w.Condition)
	switch {
	case vis >= visibilityGood && !poor:
		return 100
	case vis >= visibilityPoor:
		ratio := math.Min(1, (vis-visibilityPoor)/(visibilityGood-visibilityPoor))
		score := 50 + ratio*50
		if poor {
			score *= 0.7
		}
		return score
	default:
		return 30
	}
}

func alertsPenalty(alerts []Alert) float64 {
	total := 0.0
	for _, a := range alerts {
		if !a.Active {
			continue
		}
		p, ok := severityPenalty[a.Severity]
		if !ok {
			p = severityPenalty["medium"]
		}
		total += p
	}
	return math.Min(maxAlertPenalty, total)
}

func isDaylight(t time.Time) bool {
	h := t.Hour()
	return h >= 6 && h < 20
}

func timeOfDayScore(t time.Time) float64 {
	h := t.Hour()
	switch {
	case isDaylight(t):
		return 100
	case h == 5 || h == 20:
		return 70
	default:
		return 40
	}
}

func lengthScore(distanceM float64) float64 {
	if distanceM <= preferredLength {
		return 100
	}
	return 70 + math.Min(1, preferredLength/distanceM)*30
}

func tagsFor(in AssessInput) []SafetyTag {
	var tags []SafetyTag
	switch len(in.Callboxes) {
	case 0:
		tags = append(tags, TagNoCallboxes)
	case 1:
		tags = append(tags, TagCallboxNearby)
	default:
		tags = append(tags, TagMultipleCallboxes)
	}
	if isDaylight(in.At) {
		tags = append(tags, TagDaylight)
	} else {
		tags = append(tags, TagNighttime)
	}
	if float64(in.Weather.Visibility) >= visibilityGood {
		tags = append(tags, TagGoodVisibility)
	} else {
		tags = append(tags, TagPoorVisibility)
	}
	if len(in.Alerts) > 0 {
		tags = append(tags, TagActiveAlerts)
	} else {
		tags = append(tags, TagNoAlerts)
	}
	if in.DistanceM <= preferredLength {
		tags = append(tags, TagShortRoute)
	} else {
		tags = append(tags, TagLongerRoute)
	}
	return tags
}

func plural(n int, word, suffix string) string {
	if n > 1 {
		return word + suffix
	}
	return word
}

func explain(in AssessInput) string {
	var parts []string
	if n := len(in.Callboxes); n > 0 {
		parts = append(parts, fmt.Sprintf("route passes near %d emergency %s (closest: %dm away)",
			n, plural(n, "callbox", "es"), int(closest(in.Callboxes).DistanceM)))
	} else {
		parts = append(parts, "no emergency callboxes nearby")
	}

	condition := strings.ToLower(in.Weather.Condition)
	if condition == "" {
		condition = "clear"
	}
	if float64(in.Weather.Visibility) >= visibilityGood {
		parts = append(parts, fmt.Sprintf("good visibility (%s)", condition))
	} else {
		parts = append(parts, fmt.Sprintf("reduced visibility (%s, %dkm)", condition, in.Weather.Visibility/1000))
	}

	if n := len(in.Alerts); n > 0 {
		parts = append(parts, fmt.Sprintf("%d active %s in area", n, plural(n, "alert", "s")))
	} else {
		parts = append(parts, "no active alerts")
	}

	if isDaylight(in.At) {
		parts = append(parts, "daylight hours")
	} else {
		parts = append(parts, "nighttime")
	}
	return capitalize(strings.Join(parts, ", ")) + "."
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
