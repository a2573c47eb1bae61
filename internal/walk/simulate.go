package walk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"backend-safewalk/internal/session"
	"backend-safewalk/internal/shared/geo"
)

// Demo route across campus used when no endpoints are given.
var (
	DemoStart = session.Place{Lat: 47.6553, Lng: -122.3035, Label: "Bagley Hall"}
	DemoEnd   = session.Place{Lat: 47.6600, Lng: -122.3100, Label: "The Standard"}
)

type SimOptions struct {
	UserName string
	Start    session.Place
	End      session.Place
	// PanicAt triggers the panic button once progress reaches this
	// percentage. Zero disables it.
	PanicAt       int
	Interval      time.Duration
	CompleteDelay time.Duration
	Companion     bool
	AutoNotify    session.AutoNotify
}

// Simulator drives a walk session against the API with fake GPS samples
// interpolated along a straight line.
type Simulator struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

func NewSimulator(baseURL, token string, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Run creates a session, streams samples until progress completes and then
// marks the walk arrived.
func (s *Simulator) Run(ctx context.Context, opts SimOptions) (session.CreateResponse, error) {
	var created session.CreateResponse
	err := s.post(ctx, "/api/sessions", session.CreateRequest{
		UserName:             opts.UserName,
		StartLocation:        opts.Start,
		EndLocation:          opts.End,
		AutoNotify:           opts.AutoNotify,
		LiveCompanionEnabled: opts.Companion,
	}, &created)
	if err != nil {
		return session.CreateResponse{}, fmt.Errorf("create session: %w", err)
	}
	s.logger.InfoContext(ctx, "walk started", "session_id", created.SessionID, "share_url", created.ShareURL)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		firstErr error
		panicked bool
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	base := "/api/sessions/" + created.SessionID
	start, end := opts.Start.Point(), opts.End.Point()
	progress := NewProgress(func(pct int) {
		p := geo.Interpolate(start, end, float64(pct))
		var out struct {
			ETA string `json:"eta"`
		}
		if err := s.post(ctx, base+"/location", session.LocationRequest{Lat: &p.Lat, Lng: &p.Lng}, &out); err != nil {
			fail(fmt.Errorf("send location: %w", err))
			return
		}
		s.logger.InfoContext(ctx, "location sent", "progress", pct, "lat", p.Lat, "lng", p.Lng, "eta", out.ETA)

		if opts.PanicAt > 0 && pct >= opts.PanicAt && !panicked {
			panicked = true
			if err := s.post(ctx, base+"/panic", nil, nil); err != nil {
				fail(fmt.Errorf("panic: %w", err))
				return
			}
			s.logger.WarnContext(ctx, "panic triggered", "progress", pct)
		}
	}, func() {
		if err := s.post(ctx, base+"/arrive", nil, nil); err != nil {
			fail(fmt.Errorf("arrive: %w", err))
			return
		}
		s.logger.InfoContext(ctx, "walk arrived", "session_id", created.SessionID)
	})
	if opts.Interval > 0 {
		progress.Interval = opts.Interval
	}
	if opts.CompleteDelay > 0 {
		progress.CompleteDelay = opts.CompleteDelay
	}

	runErr := progress.Run(ctx)
	mu.Lock()
	defer mu.Unlock()
	if firstErr != nil {
		return created, firstErr
	}
	return created, runErr
}

func (s *Simulator) post(ctx context.Context, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s: status %d %s", path, resp.StatusCode, e.Error)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
