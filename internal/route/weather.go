package route

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

	"github.com/redis/go-redis/v9"
)

const weatherCacheTTL = 10 * time.Minute

// WeatherClient reads current visibility from WeatherAPI.com, caching results
// in Redis when a client is configured.
type WeatherClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	cache   *redis.Client
	logger  *slog.Logger
}

func NewWeatherClient(apiKey, baseURL string, cache *redis.Client, logger *slog.Logger) *WeatherClient {
	if baseURL == "" {
		baseURL = "https://api.weatherapi.com/v1"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WeatherClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
		logger:  logger,
	}
}

type weatherAPIResponse struct {
	Current struct {
		VisKm     *float64 `json:"vis_km"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

func (w *WeatherClient) Current(ctx context.Context, at geo.Point) Weather {
	weather, err := w.Lookup(ctx, at)
	if err != nil {
		w.logger.WarnContext(ctx, "weather lookup failed, using defaults", "error", err)
	}
	return weather
}

// Lookup is Current without the logging: on failure it returns
// DefaultWeather together with the cause. A missing key is not a failure.
func (w *WeatherClient) Lookup(ctx context.Context, at geo.Point) (Weather, error) {
	if w == nil || w.apiKey == "" {
		return DefaultWeather, nil
	}

	key := weatherCacheKey(at)
	if w.cache != nil {
		if raw, err := w.cache.Get(ctx, key).Bytes(); err == nil {
			var cached Weather
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	weather, err := w.fetch(ctx, at)
	if err != nil {
		return DefaultWeather, err
	}

	if w.cache != nil {
		payload, _ := json.Marshal(weather)
		if err := w.cache.Set(ctx, key, payload, weatherCacheTTL).Err(); err != nil {
			w.logger.WarnContext(ctx, "weather cache write failed", "error", err)
		}
	}
	return weather, nil
}

func (w *WeatherClient) fetch(ctx context.Context, at geo.Point) (Weather, error) {
	q := url.Values{}
	q.Set("key", w.apiKey)
	q.Set("q", fmt.Sprintf("%f,%f", at.Lat, at.Lng))
	q.Set("aqi", "no")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/current.json?"+q.Encode(), nil)
	if err != nil {
		return Weather{}, err
	}
	resp, err := w.http.Do(req)
	if err != nil {
		return Weather{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Weather{}, fmt.Errorf("weather api status %d", resp.StatusCode)
	}

	var body weatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Weather{}, fmt.Errorf("decode weather: %w", err)
	}

	visKm := 10.0
	if body.Current.VisKm != nil {
		visKm = *body.Current.VisKm
	}
	return Weather{
		Visibility: int(visKm * 1000),
		Condition:  NormalizeCondition(body.Current.Condition.Text),
	}, nil
}

// NormalizeCondition folds a provider description onto the coarse
// conditions clients display.
func NormalizeCondition(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "clear"), strings.Contains(t, "sunny"):
		return "Clear"
	case strings.Contains(t, "rain"), strings.Contains(t, "drizzle"):
		return "Rain"
	case strings.Contains(t, "snow"):
		return "Snow"
	case strings.Contains(t, "cloud"):
		return "Cloudy"
	case strings.Contains(t, "fog"), strings.Contains(t, "mist"):
		return "Fog"
	default:
		return "Clear"
	}
}

func weatherCacheKey(p geo.Point) string {
	return fmt.Sprintf("safewalk:weather:%.2f:%.2f", p.Lat, p.Lng)
}
