package companion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"backend-safewalk/internal/session"
	"backend-safewalk/internal/stream"

	"github.com/gorilla/websocket"
)

var ErrNoShareToken = errors.New("no share token provided")

type Client struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
	logger  *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:  logger,
	}
}

func (c *Client) Share(ctx context.Context, token string) (session.ShareView, error) {
	if token == "" {
		return session.ShareView{}, ErrNoShareToken
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/sessions/share/"+url.PathEscape(token), nil)
	if err != nil {
		return session.ShareView{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return session.ShareView{}, fmt.Errorf("load session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Error == "" {
			body.Error = "Failed to load session"
		}
		return session.ShareView{}, fmt.Errorf("load session: %s (status %d)", body.Error, resp.StatusCode)
	}

	var view session.ShareView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return session.ShareView{}, fmt.Errorf("decode session: %w", err)
	}
	return view, nil
}

// Watch loads the share view, joins the session socket and calls onChange
// with the view after every event. It returns nil once ctx is cancelled.
func (c *Client) Watch(ctx context.Context, token string, onChange func(*View)) error {
	share, err := c.Share(ctx, token)
	if err != nil {
		return err
	}
	view := NewView(share)
	if onChange != nil {
		onChange(view)
	}

	conn, _, err := c.dialer.DialContext(ctx, c.socketURL(token), nil)
	if err != nil {
		return fmt.Errorf("dial stream: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read stream: %w", err)
		}
		env, err := stream.Decode(msg)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping malformed event", "error", err)
			continue
		}
		if err := view.Apply(env); err != nil {
			c.logger.WarnContext(ctx, "skipping event", "event", env.Event, "error", err)
			continue
		}
		if onChange != nil {
			onChange(view)
		}
	}
}

func (c *Client) socketURL(token string) string {
	base := c.baseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/stream/ws/share/" + url.PathEscape(token)
}
