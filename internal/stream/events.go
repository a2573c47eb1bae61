package stream

import (
	"encoding/json"
	"fmt"

	"backend-safewalk/internal/shared/geo"
)

// Event names on the companion channel.
const (
	EventLocationUpdate      = "location_update"
	EventInactivityAlert     = "inactivity_alert"
	EventPanic               = "panic"
	EventArrived             = "arrived"
	EventArrivalNotification = "arrival_notification"

	EventJoined = "joined"
	EventError  = "error"

	EventJoinSession        = "join_session"
	EventJoinSessionByToken = "join_session_by_token"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type LocationUpdate struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp string  `json:"timestamp"`
	ETA       string  `json:"eta"`
}

// Alert is the payload of both inactivity_alert and panic.
type Alert struct {
	Message      string     `json:"message"`
	LastLocation *geo.Point `json:"lastLocation"`
}

type Arrival struct {
	Message   string `json:"message,omitempty"`
	ArrivedAt string `json:"arrivedAt"`
}

type JoinSession struct {
	SessionID string `json:"sessionId"`
}

type JoinSessionByToken struct {
	ShareToken string `json:"shareToken"`
}

type Joined struct {
	SessionID string `json:"sessionId"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

func Encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

func Decode(payload []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing event")
	}
	return env, nil
}

func decodeData(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("decode %s: missing data", env.Event)
	}
	return json.Unmarshal(env.Data, v)
}

func (e Envelope) DecodeData(v any) error {
	return decodeData(e, v)
}
