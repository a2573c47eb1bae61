package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"backend-safewalk/internal/shared/geo"
)

const (
	defaultAutocompleteURL = "https://maps.googleapis.com/maps/api/place/autocomplete/json"
	biasRadiusM            = 5000
)

type Service struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewService(apiKey, baseURL string, logger *slog.Logger) *Service {
	if baseURL == "" {
		baseURL = defaultAutocompleteURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
	}
}

// Search returns predictions for input. bias, when non-nil, narrows Google
// results to the area around the caller. Any upstream failure falls back to
// the campus list.
func (s *Service) Search(ctx context.Context, input string, bias *geo.Point) Result {
	if input == "" {
		return Result{Predictions: []Prediction{}, Source: SourceMock}
	}
	if s.apiKey == "" {
		return Mock(input)
	}

	preds, err := s.autocomplete(ctx, input, bias)
	if err != nil {
		s.logger.WarnContext(ctx, "places autocomplete failed, using campus list", "error", err)
		return Mock(input)
	}

	valid := false
	for _, p := range preds {
		if strings.EqualFold(p.StructuredFormatting.MainText, input) || strings.EqualFold(p.Description, input) {
			valid = true
			break
		}
	}
	return Result{Predictions: preds, Valid: &valid, Source: SourceGoogle}
}

func Mock(input string) Result {
	needle := strings.ToLower(input)
	out := []Prediction{}
	exact := false
	for _, p := range campusPlaces {
		main := strings.ToLower(p.StructuredFormatting.MainText)
		if strings.Contains(strings.ToLower(p.Description), needle) || strings.Contains(main, needle) {
			out = append(out, p)
			if main == needle {
				exact = true
			}
		}
	}

	res := Result{Predictions: out, Source: SourceMock}
	if !exact && input != "" {
		invalid := false
		res.Valid = &invalid
	}
	return res
}

type autocompleteResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
	Predictions  []Prediction `json:"predictions"`
}

func (s *Service) autocomplete(ctx context.Context, input string, bias *geo.Point) ([]Prediction, error) {
	q := url.Values{}
	q.Set("input", input)
	q.Set("key", s.apiKey)
	q.Set("types", "establishment|geocode")
	if bias != nil {
		q.Set("location", fmt.Sprintf("%v,%v", bias.Lat, bias.Lng))
		q.Set("radius", fmt.Sprint(biasRadiusM))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places status %d", resp.StatusCode)
	}

	var body autocompleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode places: %w", err)
	}
	switch body.Status {
	case "OK", "ZERO_RESULTS", "":
	default:
		return nil, fmt.Errorf("places api error: %s %s", body.Status, body.ErrorMessage)
	}
	if body.Predictions == nil {
		body.Predictions = []Prediction{}
	}
	return body.Predictions, nil
}
