package session

import (
	"time"

	"backend-safewalk/internal/shared/geo"
)

const (
	StatusActive  = "active"
	StatusPanic   = "panic"
	StatusArrived = "arrived"
)

type Place struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label,omitempty"`
}

func (p Place) Point() geo.Point { return geo.Point{Lat: p.Lat, Lng: p.Lng} }

type AutoNotify struct {
	Enabled        bool   `json:"enabled"`
	ContactName    string `json:"contactName"`
	ContactChannel string `json:"contactChannel"`
	ContactValue   string `json:"contactValue"`
}

type Companion struct {
	Enabled  bool       `json:"enabled"`
	JoinedAt *time.Time `json:"joinedAt"`
}

type Session struct {
	ID             string     `json:"id"`
	ShareToken     string     `json:"shareToken"`
	UserID         string     `json:"userId,omitempty"`
	UserName       string     `json:"userName"`
	StartLocation  Place      `json:"startLocation"`
	EndLocation    Place      `json:"endLocation"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastUpdateAt   *time.Time `json:"lastUpdateAt"`
	LastLocation   *geo.Point `json:"lastLocation"`
	ETA            string     `json:"eta"`
	ArrivedAt      *time.Time `json:"arrivedAt"`
	AutoNotify     AutoNotify `json:"autoNotify"`
	Companion      Companion  `json:"companion"`
	TotalDistanceM float64    `json:"totalDistanceM"`
}

type CreateRequest struct {
	UserName             string     `json:"userName"`
	StartLocation        Place      `json:"startLocation"`
	EndLocation          Place      `json:"endLocation"`
	AutoNotify           AutoNotify `json:"autoNotify"`
	LiveCompanionEnabled bool       `json:"liveCompanionEnabled"`
}

type CreateResponse struct {
	SessionID  string `json:"sessionId"`
	ShareURL   string `json:"shareUrl"`
	ShareToken string `json:"shareToken"`
}

// LocationRequest uses pointers so a missing coordinate can be told apart
// from zero.
type LocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// ShareView is what a companion holding the share link may see.
type ShareView struct {
	UserName      string     `json:"userName"`
	StartLocation string     `json:"startLocation"`
	EndLocation   string     `json:"endLocation"`
	StartedAt     time.Time  `json:"startedAt"`
	Status        string     `json:"status"`
	LastLocation  *geo.Point `json:"lastLocation"`
	ETA           string     `json:"eta"`
	ArrivedAt     *time.Time `json:"arrivedAt,omitempty"`
}

type Sample struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"sessionId"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recordedAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Summary struct {
	SessionID       string  `json:"sessionId"`
	Status          string  `json:"status"`
	PointCount      int     `json:"pointCount"`
	DistanceM       float64 `json:"distanceM"`
	DurationSec     int64   `json:"durationSec"`
	AverageSpeedMps float64 `json:"averageSpeedMps"`
}
