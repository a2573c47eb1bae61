package route

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"backend-safewalk/internal/shared/geo"
)

var ErrNoAPIKey = errors.New("GOOGLE_MAPS_API_KEY is not configured")

type DirectionsClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewDirectionsClient(apiKey, baseURL string) *DirectionsClient {
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com/maps/api/directions/json"
	}
	return &DirectionsClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type valueField struct {
	Value int `json:"value"`
}

type directionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		Summary          string `json:"summary"`
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance    valueField `json:"distance"`
			Duration    valueField `json:"duration"`
			EndLocation latLng     `json:"end_location"`
			Steps       []struct {
				StartLocation latLng `json:"start_location"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// Routes returns the candidate walking routes between start and end. A
// ZERO_RESULTS answer is an empty slice, not an error.
func (d *DirectionsClient) Routes(ctx context.Context, start, end geo.Point) ([]Candidate, error) {
	if d.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	q := url.Values{}
	q.Set("origin", fmt.Sprintf("%v,%v", start.Lat, start.Lng))
	q.Set("destination", fmt.Sprintf("%v,%v", end.Lat, end.Lng))
	q.Set("mode", "walking")
	q.Set("alternatives", "true")
	q.Set("key", d.apiKey)

	sep := "?"
	if strings.Contains(d.baseURL, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+sep+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch routes from Google Maps: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch routes from Google Maps: status %d", resp.StatusCode)
	}

	var body directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode directions: %w", err)
	}
	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return []Candidate{}, nil
	default:
		msg := body.ErrorMessage
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, fmt.Errorf("google maps api error: %s. %s", body.Status, msg)
	}

	candidates := make([]Candidate, 0, len(body.Routes))
	for _, r := range body.Routes {
		c := Candidate{Summary: r.Summary, Polyline: r.OverviewPolyline.Points}
		for _, leg := range r.Legs {
			c.DistanceMeters += leg.Distance.Value
			c.DurationSeconds += leg.Duration.Value
			for _, step := range leg.Steps {
				c.Waypoints = append(c.Waypoints, geo.Point{Lat: step.StartLocation.Lat, Lng: step.StartLocation.Lng})
			}
		}
		if n := len(r.Legs); n > 0 {
			last := r.Legs[n-1].EndLocation
			c.Waypoints = append(c.Waypoints, geo.Point{Lat: last.Lat, Lng: last.Lng})
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}
