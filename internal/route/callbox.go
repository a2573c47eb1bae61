package route

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"backend-safewalk/internal/shared/geo"
)

// NearRouteM is how close a callbox must be to count as along the route.
const NearRouteM = 100.0

type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type geoJSONFeature struct {
	Type     string           `json:"type"`
	Geometry *geoJSONGeometry `json:"geometry"`
}

type geoJSONDoc struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
	Geometry *geoJSONGeometry `json:"geometry"`
}

// ParseCallboxes extracts Point geometries from a FeatureCollection or a
// single Feature. GeoJSON orders coordinates lng, lat.
func ParseCallboxes(data []byte) ([]geo.Point, error) {
	var doc geoJSONDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse callboxes: %w", err)
	}

	var geoms []*geoJSONGeometry
	switch doc.Type {
	case "FeatureCollection":
		for _, f := range doc.Features {
			geoms = append(geoms, f.Geometry)
		}
	case "Feature":
		geoms = append(geoms, doc.Geometry)
	}

	points := []geo.Point{}
	for _, g := range geoms {
		if g == nil || g.Type != "Point" {
			continue
		}
		var coords []float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil || len(coords) < 2 {
			continue
		}
		points = append(points, geo.Point{Lat: coords[1], Lng: coords[0]})
	}
	return points, nil
}

// CallboxSource loads callbox locations once, from a local file when present
// and otherwise from a URL. An empty result is cached too.
type CallboxSource struct {
	path   string
	url    string
	http   *http.Client
	logger *slog.Logger

	mu     sync.Mutex
	loaded bool
	points []geo.Point
}

func NewCallboxSource(path, url string, logger *slog.Logger) *CallboxSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CallboxSource{
		path:   path,
		url:    url,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (s *CallboxSource) All(ctx context.Context) []geo.Point {
	points, err := s.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "callboxes unavailable", "path", s.path, "url", s.url, "error", err)
	}
	return points
}

// Load reads the callboxes on first use. The error is only reported by the
// call that did the loading, and only when nothing could be read.
func (s *CallboxSource) Load(ctx context.Context) ([]geo.Point, error) {
	if s == nil {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.points, nil
	}

	var (
		points []geo.Point
		errs   []error
	)
	if s.path != "" {
		data, err := os.ReadFile(s.path)
		if err == nil {
			points, err = ParseCallboxes(data)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("callbox file: %w", err))
		}
	}
	if len(points) == 0 && s.url != "" {
		var err error
		if points, err = s.fetch(ctx); err != nil {
			errs = append(errs, fmt.Errorf("callbox download: %w", err))
		}
	}

	s.points = points
	s.loaded = true
	if len(points) > 0 {
		return points, nil
	}
	return points, errors.Join(errs...)
}

func (s *CallboxSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.points = nil
}

func (s *CallboxSource) fetch(ctx context.Context) ([]geo.Point, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("callbox source status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return ParseCallboxes(data)
}

func Along(boxes []geo.Point, path []geo.Point, maxM float64) []Callbox {
	out := []Callbox{}
	if len(path) == 0 {
		return out
	}
	for i, b := range boxes {
		d := geo.DistanceToPathM(b, path)
		if d <= maxM {
			out = append(out, Callbox{ID: fmt.Sprintf("callbox_%d", i), Lat: b.Lat, Lng: b.Lng, DistanceM: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceM < out[j].DistanceM })
	return out
}
