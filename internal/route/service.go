package route

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"backend-safewalk/internal/shared/apperr"
	"backend-safewalk/internal/shared/geo"

	"golang.org/x/sync/errgroup"
)

var ErrNoRoutes = apperr.NotFound("Unable to find routes between the specified locations")

// Campus coordinates used to smoke-test the directions integration.
var (
	testStart = geo.Point{Lat: 47.6553, Lng: -122.3035}
	testEnd   = geo.Point{Lat: 47.6530, Lng: -122.3045}
)

type Service struct {
	directions *DirectionsClient
	weather    *WeatherClient
	alerts     *AlertsClient
	callboxes  *CallboxSource
	scorer     Scorer
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(directions *DirectionsClient, weather *WeatherClient, alerts *AlertsClient, callboxes *CallboxSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		directions: directions,
		weather:    weather,
		alerts:     alerts,
		callboxes:  callboxes,
		logger:     logger,
		now:        time.Now,
	}
}

// SafeRoute scores every walking alternative between start and end and picks
// the highest scoring one.
func (s *Service) SafeRoute(ctx context.Context, start, end geo.Point) (Response, error) {
	candidates, err := s.directions.Routes(ctx, start, end)
	if err != nil {
		return Response{}, err
	}
	if len(candidates) == 0 {
		return Response{}, ErrNoRoutes
	}

	weather, alerts, boxes, err := s.gather(ctx, geo.Midpoint(start, end))
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		s.logger.WarnContext(ctx, "scoring with fallback context", "error", err)
	}

	now := s.now()
	resp := Response{
		AllRoutes: make([]ScoredRoute, 0, len(candidates)),
		Context:   Context{Weather: weather, Alerts: alerts, Callboxes: []Callbox{}},
	}
	best := -1
	var bestBoxes []Callbox
	for _, c := range candidates {
		scored := ScoreRoute(c, weather)

		path := Sample(DecodePath(c.Polyline))
		if len(path) == 0 {
			path = c.Waypoints
		}
		near := Along(boxes, path, NearRouteM)
		assessment := s.scorer.Assess(AssessInput{
			DistanceM: float64(c.DistanceMeters),
			Callboxes: near,
			Weather:   weather,
			Alerts:    alerts,
			At:        now,
		})
		scored.Assessment = &assessment

		resp.AllRoutes = append(resp.AllRoutes, scored)
		if best < 0 || scored.SafetyScore > resp.AllRoutes[best].SafetyScore {
			best = len(resp.AllRoutes) - 1
			bestBoxes = near
		}
	}
	resp.BestRoute = resp.AllRoutes[best]
	if bestBoxes != nil {
		resp.Context.Callboxes = bestBoxes
	}
	return resp, nil
}

// gather fetches weather, alerts and callboxes concurrently. Each source
// falls back to its default on failure; the first failure is returned.
func (s *Service) gather(ctx context.Context, mid geo.Point) (Weather, []Alert, []geo.Point, error) {
	var (
		weather Weather
		alerts  []Alert
		boxes   []geo.Point
		g       errgroup.Group
	)
	g.Go(func() error {
		var err error
		if weather, err = s.weather.Lookup(ctx, mid); err != nil {
			return fmt.Errorf("weather: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if alerts, err = s.alerts.Fetch(ctx); err != nil {
			return fmt.Errorf("alerts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if boxes, err = s.callboxes.Load(ctx); err != nil {
			return fmt.Errorf("callboxes: %w", err)
		}
		return nil
	})
	err := g.Wait()
	return weather, alerts, boxes, err
}

// CheckDirections fetches routes between two fixed campus points and reports
// how many came back.
func (s *Service) CheckDirections(ctx context.Context) (int, error) {
	routes, err := s.directions.Routes(ctx, testStart, testEnd)
	if err != nil {
		return 0, err
	}
	return len(routes), nil
}
