package route

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"backend-safewalk/internal/shared/geo"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestNormalizeCondition(t *testing.T) {
	cases := map[string]string{
		"Sunny":         "Clear",
		"Clear":         "Clear",
		"Light drizzle": "Rain",
		"Heavy rain":    "Rain",
		"Blowing snow":  "Snow",
		"Partly cloudy": "Cloudy",
		"Mist":          "Fog",
		"Freezing fog":  "Fog",
		"Thundery":      "Clear",
	}
	for in, want := range cases {
		if got := NormalizeCondition(in); got != want {
			t.Fatalf("%q: expected %q, got %q", in, want, got)
		}
	}
}

func TestWeatherNoKeyUsesDefault(t *testing.T) {
	w := NewWeatherClient("", "", nil, nil)
	if got := w.Current(context.Background(), geo.Point{}); got != DefaultWeather {
		t.Fatalf("expected default weather, got %+v", got)
	}
	var nilClient *WeatherClient
	if got := nilClient.Current(context.Background(), geo.Point{}); got != DefaultWeather {
		t.Fatalf("expected default weather from nil client")
	}
}

func TestWeatherFetchAndCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/v1/current.json" || r.URL.Query().Get("key") != "k" || r.URL.Query().Get("aqi") != "no" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"current":{"vis_km":4.5,"condition":{"text":"Light rain"}}}`))
	}))
	defer srv.Close()

	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	w := NewWeatherClient("k", srv.URL+"/v1/", rdb, nil)
	at := geo.Point{Lat: 47.6576, Lng: -122.3067}

	got := w.Current(context.Background(), at)
	if got.Visibility != 4500 || got.Condition != "Rain" {
		t.Fatalf("unexpected weather %+v", got)
	}
	if !s.Exists("safewalk:weather:47.66:-122.31") {
		t.Fatalf("expected cached entry, keys %v", s.Keys())
	}

	again := w.Current(context.Background(), at)
	if again != got || atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected cache hit, hits=%d", hits)
	}
}

func TestWeatherMissingVisibility(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"condition":{"text":"Overcast"}}}`))
	}))
	defer srv.Close()

	got := NewWeatherClient("k", srv.URL, nil, nil).Current(context.Background(), geo.Point{})
	if got.Visibility != 10000 || got.Condition != "Clear" {
		t.Fatalf("unexpected weather %+v", got)
	}
}

func TestWeatherFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if got := NewWeatherClient("k", srv.URL, nil, nil).Current(context.Background(), geo.Point{}); got != DefaultWeather {
		t.Fatalf("expected default weather, got %+v", got)
	}

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{`))
	}))
	defer bad.Close()
	if got := NewWeatherClient("k", bad.URL, nil, nil).Current(context.Background(), geo.Point{}); got != DefaultWeather {
		t.Fatalf("expected default weather for bad json, got %+v", got)
	}
}
