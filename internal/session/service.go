package session

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"backend-safewalk/internal/db"
	"backend-safewalk/internal/notify"
	"backend-safewalk/internal/shared/apperr"
	"backend-safewalk/internal/shared/geo"
	"backend-safewalk/internal/stream"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	etaLayout        = "03:04 PM"
	walkingSpeedMps  = 1.4
	shareTokenLength = 10

	panicMessage      = "User triggered SOS."
	inactivityMessage = "User has been inactive for a while."
)

var (
	ErrNotFound      = apperr.NotFound("Session not found")
	ErrSessionClosed = apperr.Conflict("session has already arrived")
)

type Options struct {
	ShareBaseURL        string
	InactivityThreshold time.Duration
	Notifier            notify.Notifier
	Logger              *slog.Logger
}

type Service struct {
	db           db.Querier
	hub          *stream.Hub
	notifier     notify.Notifier
	monitor      *Monitor
	logger       *slog.Logger
	shareBaseURL string
	now          func() time.Time
}

func NewService(q db.Querier, hub *stream.Hub, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.InactivityThreshold <= 0 {
		opts.InactivityThreshold = 3 * time.Minute
	}
	if opts.ShareBaseURL == "" {
		opts.ShareBaseURL = "https://safewalk.app"
	}
	s := &Service{
		db:           q,
		hub:          hub,
		notifier:     opts.Notifier,
		logger:       opts.Logger,
		shareBaseURL: strings.TrimRight(opts.ShareBaseURL, "/"),
		now:          time.Now,
	}
	s.monitor = NewMonitor(opts.InactivityThreshold, s.checkInactivity)
	return s
}

func (s *Service) Close() {
	s.monitor.Stop()
}

func (s *Service) ShareURL(token string) string {
	return s.shareBaseURL + "/companion/" + token
}

func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (CreateResponse, error) {
	req.UserName = strings.TrimSpace(req.UserName)
	if req.UserName == "" {
		return CreateResponse{}, apperr.Invalid("Please enter your name")
	}
	for _, p := range []Place{req.StartLocation, req.EndLocation} {
		if err := p.Point().Validate(); err != nil {
			return CreateResponse{}, apperr.Invalid(err.Error())
		}
	}
	if req.AutoNotify.Enabled {
		if req.AutoNotify.ContactChannel == "" {
			req.AutoNotify.ContactChannel = notify.ChannelSMS
		}
		if !notify.ValidChannel(req.AutoNotify.ContactChannel) {
			return CreateResponse{}, apperr.Invalid("contactChannel must be sms or email")
		}
		if strings.TrimSpace(req.AutoNotify.ContactValue) == "" {
			return CreateResponse{}, apperr.Invalid("contactValue required when autoNotify is enabled")
		}
	}

	id := uuid.NewString()
	token := newShareToken()
	var owner *string
	if userID != "" {
		owner = &userID
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO walk_sessions (id, share_token, user_id, user_name,
			start_label, start_lat, start_lng, end_label, end_lat, end_lng,
			status, created_at, notify_enabled, notify_name, notify_channel, notify_value, companion_enabled)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`, id, token, owner, req.UserName,
		req.StartLocation.Label, req.StartLocation.Lat, req.StartLocation.Lng,
		req.EndLocation.Label, req.EndLocation.Lat, req.EndLocation.Lng,
		StatusActive, s.now().UTC(),
		req.AutoNotify.Enabled, req.AutoNotify.ContactName, channelOrDefault(req.AutoNotify.ContactChannel), req.AutoNotify.ContactValue,
		req.LiveCompanionEnabled)
	if err != nil {
		return CreateResponse{}, apperr.Wrap("create session", err)
	}

	return CreateResponse{SessionID: id, ShareURL: s.ShareURL(token), ShareToken: token}, nil
}

const sessionColumns = `id, share_token, user_id, user_name,
	start_label, start_lat, start_lng, end_label, end_lat, end_lng,
	status, created_at, last_update_at, last_lat, last_lng, eta, arrived_at,
	notify_enabled, notify_name, notify_channel, notify_value,
	companion_enabled, companion_joined, total_distance_m`

func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Session{}, ErrNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM walk_sessions WHERE id=$1`, id)
	return scanSession(row)
}

func (s *Service) GetByShareToken(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM walk_sessions WHERE share_token=$1`, token)
	return scanSession(row)
}

func (s *Service) ShareView(ctx context.Context, token string) (ShareView, error) {
	sess, err := s.GetByShareToken(ctx, token)
	if err != nil {
		return ShareView{}, err
	}
	return ShareView{
		UserName:      sess.UserName,
		StartLocation: describe(sess.StartLocation),
		EndLocation:   describe(sess.EndLocation),
		StartedAt:     sess.CreatedAt,
		Status:        sess.Status,
		LastLocation:  sess.LastLocation,
		ETA:           sess.ETA,
		ArrivedAt:     sess.ArrivedAt,
	}, nil
}

// UpdateLocation records a sample, fans it out to the session room and re-arms
// the inactivity check.
func (s *Service) UpdateLocation(ctx context.Context, id string, point geo.Point) (stream.LocationUpdate, error) {
	if err := point.Validate(); err != nil {
		return stream.LocationUpdate{}, apperr.Invalid(err.Error())
	}
	sess, err := s.Get(ctx, id)
	if err != nil {
		return stream.LocationUpdate{}, err
	}
	if sess.Status == StatusArrived {
		return stream.LocationUpdate{}, ErrSessionClosed
	}

	now := s.now().UTC()
	deltaM := 0.0
	if sess.LastLocation != nil {
		deltaM = geo.HaversineM(*sess.LastLocation, point)
	}
	eta := estimateArrival(now, point, sess.EndLocation)

	tag, err := s.db.Exec(ctx, `
		UPDATE walk_sessions
		SET last_lat=$2, last_lng=$3, last_update_at=$4, eta=$5, total_distance_m=total_distance_m+$6
		WHERE id=$1 AND status <> 'arrived'
	`, id, point.Lat, point.Lng, now, eta, deltaM)
	if err != nil {
		return stream.LocationUpdate{}, apperr.Wrap("update location", err)
	}
	if tag.RowsAffected() == 0 {
		return stream.LocationUpdate{}, ErrSessionClosed
	}

	if _, err := s.db.Exec(ctx, `
		INSERT INTO session_points (session_id, location, recorded_at)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2,$3), 4326)::geography, $4)
	`, id, point.Lng, point.Lat, now); err != nil {
		return stream.LocationUpdate{}, apperr.Wrap("record sample", err)
	}

	update := stream.LocationUpdate{
		Lat:       point.Lat,
		Lng:       point.Lng,
		Timestamp: now.Format(time.RFC3339Nano),
		ETA:       eta,
	}
	s.emit(id, stream.EventLocationUpdate, update)
	s.monitor.Schedule(id)
	return update, nil
}

func (s *Service) Panic(ctx context.Context, id string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess.Status == StatusArrived {
		return ErrSessionClosed
	}

	tag, err := s.db.Exec(ctx, `UPDATE walk_sessions SET status=$2 WHERE id=$1 AND status <> 'arrived'`, id, StatusPanic)
	if err != nil {
		return apperr.Wrap("panic", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionClosed
	}

	s.logger.WarnContext(ctx, "panic triggered", "session_id", id, "user_name", sess.UserName)
	s.emit(id, stream.EventPanic, stream.Alert{Message: panicMessage, LastLocation: sess.LastLocation})
	return nil
}

func (s *Service) Arrive(ctx context.Context, id string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess.Status == StatusArrived {
		return ErrSessionClosed
	}

	arrivedAt := s.now().UTC()
	tag, err := s.db.Exec(ctx, `
		UPDATE walk_sessions SET status=$2, arrived_at=$3
		WHERE id=$1 AND status <> 'arrived'
	`, id, StatusArrived, arrivedAt)
	if err != nil {
		return apperr.Wrap("arrive", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionClosed
	}
	s.monitor.Cancel(id)

	stamp := arrivedAt.Format(time.RFC3339Nano)
	s.emit(id, stream.EventArrived, stream.Arrival{ArrivedAt: stamp})
	s.emit(id, stream.EventArrivalNotification, stream.Arrival{
		Message:   sess.UserName + " has arrived safely at their destination.",
		ArrivedAt: stamp,
	})

	s.sendArrivalNotification(ctx, sess)
	return nil
}

// JoinByToken resolves the room for a share token and records the first time
// a companion joined.
func (s *Service) JoinByToken(ctx context.Context, token string) (string, error) {
	sess, err := s.GetByShareToken(ctx, token)
	if err != nil {
		return "", err
	}
	if sess.Companion.JoinedAt == nil {
		if _, err := s.db.Exec(ctx, `
			UPDATE walk_sessions SET companion_joined=$2
			WHERE id=$1 AND companion_joined IS NULL
		`, sess.ID, s.now().UTC()); err != nil {
			return "", apperr.Wrap("stamp companion join", err)
		}
	}
	return sess.ID, nil
}

func (s *Service) ResolveSession(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return sess.ID, nil
}

func (s *Service) ResolveShareToken(ctx context.Context, token string) (string, error) {
	return s.JoinByToken(ctx, token)
}

func (s *Service) Points(ctx context.Context, sessionID string) ([]Sample, error) {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, ST_Y(location::geometry), ST_X(location::geometry), recorded_at, created_at
		FROM session_points WHERE session_id=$1
		ORDER BY recorded_at
	`, sessionID)
	if err != nil {
		return nil, apperr.Wrap("list samples", err)
	}
	defer rows.Close()

	points := []Sample{}
	for rows.Next() {
		var p Sample
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Lat, &p.Lng, &p.RecordedAt, &p.CreatedAt); err != nil {
			return nil, apperr.Wrap("scan sample", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *Service) Summary(ctx context.Context, sessionID string) (Summary, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}

	var pointCount int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM session_points WHERE session_id=$1`, sessionID).Scan(&pointCount); err != nil {
		return Summary{}, apperr.Wrap("count samples", err)
	}

	end := s.now()
	if sess.ArrivedAt != nil {
		end = *sess.ArrivedAt
	}
	duration := end.Sub(sess.CreatedAt)
	avgSpeed := 0.0
	if duration.Seconds() > 0 {
		avgSpeed = sess.TotalDistanceM / duration.Seconds()
	}

	return Summary{
		SessionID:       sess.ID,
		Status:          sess.Status,
		PointCount:      pointCount,
		DistanceM:       sess.TotalDistanceM,
		DurationSec:     int64(duration.Seconds()),
		AverageSpeedMps: avgSpeed,
	}, nil
}

func (s *Service) checkInactivity(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		s.logger.Error("inactivity check failed", "session_id", sessionID, "error", err)
		return
	}
	if sess.Status != StatusActive || sess.LastUpdateAt == nil {
		return
	}
	if s.now().Sub(*sess.LastUpdateAt) <= s.monitor.Threshold() {
		return
	}

	s.logger.Info("inactivity alert", "session_id", sessionID, "last_update_at", sess.LastUpdateAt)
	s.emit(sessionID, stream.EventInactivityAlert, stream.Alert{Message: inactivityMessage, LastLocation: sess.LastLocation})
}

func (s *Service) sendArrivalNotification(ctx context.Context, sess Session) {
	if !sess.AutoNotify.Enabled || s.notifier == nil {
		return
	}
	msg := notify.Message{
		SessionID:   sess.ID,
		Channel:     channelOrDefault(sess.AutoNotify.ContactChannel),
		ContactName: sess.AutoNotify.ContactName,
		Recipient:   sess.AutoNotify.ContactValue,
		Text:        notify.ArrivalText(sess.UserName),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "auto-notify failed", "session_id", sess.ID, "error", err)
	}
}

func (s *Service) emit(room, event string, data any) {
	if s.hub == nil {
		return
	}
	if err := s.hub.Emit(room, event, data); err != nil {
		s.logger.Error("emit failed", "session_id", room, "event", event, "error", err)
	}
}

func scanSession(row pgx.Row) (Session, error) {
	var (
		sess             Session
		userID           *string
		lastLat, lastLng *float64
	)
	err := row.Scan(&sess.ID, &sess.ShareToken, &userID, &sess.UserName,
		&sess.StartLocation.Label, &sess.StartLocation.Lat, &sess.StartLocation.Lng,
		&sess.EndLocation.Label, &sess.EndLocation.Lat, &sess.EndLocation.Lng,
		&sess.Status, &sess.CreatedAt, &sess.LastUpdateAt, &lastLat, &lastLng, &sess.ETA, &sess.ArrivedAt,
		&sess.AutoNotify.Enabled, &sess.AutoNotify.ContactName, &sess.AutoNotify.ContactChannel, &sess.AutoNotify.ContactValue,
		&sess.Companion.Enabled, &sess.Companion.JoinedAt, &sess.TotalDistanceM)
	if err != nil {
		if db.IsNoRows(err) {
			return Session{}, ErrNotFound
		}
		return Session{}, apperr.Wrap("load session", err)
	}
	if userID != nil {
		sess.UserID = *userID
	}
	if lastLat != nil && lastLng != nil {
		sess.LastLocation = &geo.Point{Lat: *lastLat, Lng: *lastLng}
	}
	return sess, nil
}

// estimateArrival formats the expected arrival clock time. Without a
// destination it is the time of the sample.
func estimateArrival(now time.Time, from geo.Point, dest Place) string {
	eta := now
	if !dest.Point().IsZero() {
		remaining := geo.HaversineM(from, dest.Point())
		eta = now.Add(time.Duration(math.Round(remaining/walkingSpeedMps)) * time.Second)
	}
	return eta.Format(etaLayout)
}

func describe(p Place) string {
	if p.Label != "" {
		return p.Label
	}
	if p.Point().IsZero() {
		return ""
	}
	return fmt.Sprintf("%.4f, %.4f", p.Lat, p.Lng)
}

func channelOrDefault(channel string) string {
	if channel == "" {
		return notify.ChannelSMS
	}
	return channel
}

func newShareToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:shareTokenLength]
}
