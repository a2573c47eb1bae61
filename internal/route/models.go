package route

import "backend-safewalk/internal/shared/geo"

type Weather struct {
	Visibility int    `json:"visibility"`
	Condition  string `json:"condition"`
}

// DefaultWeather is used whenever the weather provider is unavailable.
var DefaultWeather = Weather{Visibility: 10000, Condition: "Clear"}

type Candidate struct {
	Summary         string      `json:"summary"`
	Polyline        string      `json:"polyline"`
	DistanceMeters  int         `json:"distanceMeters"`
	DurationSeconds int         `json:"durationSeconds"`
	Waypoints       []geo.Point `json:"waypoints"`
}

type ScoredRoute struct {
	SafetyScore    int         `json:"safetyScore"`
	DistanceMeters int         `json:"distanceMeters"`
	EtaMinutes     int         `json:"etaMinutes"`
	Polyline       string      `json:"polyline"`
	Explanation    []string    `json:"explanation"`
	Tags           []string    `json:"tags"`
	Assessment     *Assessment `json:"assessment,omitempty"`
}

type Context struct {
	Weather   Weather   `json:"weather"`
	Alerts    []Alert   `json:"alerts"`
	Callboxes []Callbox `json:"callboxes"`
}

type Response struct {
	BestRoute ScoredRoute   `json:"bestRoute"`
	AllRoutes []ScoredRoute `json:"allRoutes"`
	Context   Context       `json:"context"`
}

type Coordinate struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type Request struct {
	Start *Coordinate `json:"start"`
	End   *Coordinate `json:"end"`
}

// Callbox is an emergency phone and its distance from the route being scored.
type Callbox struct {
	ID        string  `json:"id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	DistanceM float64 `json:"distanceMeters"`
}

type Alert struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Active      bool   `json:"active"`
}

type SafetyTag string

const (
	TagWellLit           SafetyTag = "well_lit"
	TagPoorlyLit         SafetyTag = "poorly_lit"
	TagCallboxNearby     SafetyTag = "callbox_nearby"
	TagNoCallboxes       SafetyTag = "no_callboxes"
	TagDaylight          SafetyTag = "daylight"
	TagNighttime         SafetyTag = "nighttime"
	TagGoodVisibility    SafetyTag = "good_visibility"
	TagPoorVisibility    SafetyTag = "poor_visibility"
	TagActiveAlerts      SafetyTag = "active_alerts"
	TagNoAlerts          SafetyTag = "no_alerts"
	TagShortRoute        SafetyTag = "short_route"
	TagLongerRoute       SafetyTag = "longer_route"
	TagMultipleCallboxes SafetyTag = "multiple_callboxes"
)

// Factors are the per-factor scores behind an Assessment, each 0-100.
type Factors struct {
	CallboxProximity  float64 `json:"callboxProximity"`
	WeatherVisibility float64 `json:"weatherVisibility"`
	AlertsPenalty     float64 `json:"alertsPenalty"`
	TimeOfDay         float64 `json:"timeOfDay"`
	RouteLength       float64 `json:"routeLength"`
}

type Assessment struct {
	Score       float64     `json:"score"`
	Explanation string      `json:"explanation"`
	Tags        []SafetyTag `json:"tags"`
	Factors     Factors     `json:"factors"`
}
