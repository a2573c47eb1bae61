package route

const (
	LevelSafe    = "safe"
	LevelCaution = "caution"
	LevelDanger  = "danger"
)

func SafetyLevel(score int) string {
	switch {
	case score >= 85:
		return LevelSafe
	case score >= 70:
		return LevelCaution
	default:
		return LevelDanger
	}
}

type DemoRoute struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Safety       int      `json:"safety"`
	SafetyLevel  string   `json:"safetyLevel"`
	Duration     string   `json:"duration"`
	Distance     string   `json:"distance"`
	Lighting     int      `json:"lighting"`
	CrowdDensity int      `json:"crowdDensity"`
	Highlights   []string `json:"highlights"`
}

// DemoRoutes is the fixed comparison shown before a live route is computed,
// safest first.
func DemoRoutes() []DemoRoute {
	routes := []DemoRoute{
		{
			ID: 1, Name: "Bagley Hall → The Standard", Safety: 94,
			Duration: "6 min", Distance: "0.4 mi", Lighting: 98, CrowdDensity: 85,
			Highlights: []string{"Well-lit pathways", "Emergency stations nearby", "High foot traffic", "Shortest route"},
		},
		{
			ID: 2, Name: "University Way", Safety: 78,
			Duration: "6 min", Distance: "0.5 mi", Lighting: 72, CrowdDensity: 65,
			Highlights: []string{"Direct route", "Some dimly lit areas", "Active businesses"},
		},
		{
			ID: 3, Name: "Burke-Gilman Trail", Safety: 65,
			Duration: "10 min", Distance: "0.7 mi", Lighting: 45, CrowdDensity: 30,
			Highlights: []string{"Isolated sections", "Poor lighting", "Scenic but avoid at night"},
		},
	}
	for i := range routes {
		routes[i].SafetyLevel = SafetyLevel(routes[i].Safety)
	}
	return routes
}
