// Package companion follows a shared walk from the watcher's side: it loads
// the share view, listens on the session socket and reduces the events into
// what the companion screen shows.
package companion

import (
	"fmt"
	"time"

	"backend-safewalk/internal/session"
	"backend-safewalk/internal/stream"
)

type Banner string

const (
	BannerNone       Banner = ""
	BannerPanic      Banner = "panic"
	BannerInactivity Banner = "inactivity"
)

type View struct {
	Share      session.ShareView
	Connected  bool
	Last       *stream.LocationUpdate
	Inactivity *stream.Alert
	Panic      *stream.Alert
	Arrival    *stream.Arrival
	LastError  string
}

func NewView(share session.ShareView) *View {
	v := &View{Share: share}
	if share.Status == session.StatusArrived && share.ArrivedAt != nil {
		v.Arrival = &stream.Arrival{ArrivedAt: share.ArrivedAt.Format(time.RFC3339Nano)}
	}
	if share.LastLocation != nil {
		v.Last = &stream.LocationUpdate{Lat: share.LastLocation.Lat, Lng: share.LastLocation.Lng, ETA: share.ETA}
	}
	return v
}

// Apply folds one socket event into the view. Unknown events are ignored.
func (v *View) Apply(env stream.Envelope) error {
	switch env.Event {
	case stream.EventJoined:
		v.Connected = true
	case stream.EventLocationUpdate:
		var u stream.LocationUpdate
		if err := env.DecodeData(&u); err != nil {
			return err
		}
		v.Last = &u
	case stream.EventInactivityAlert:
		var a stream.Alert
		if err := env.DecodeData(&a); err != nil {
			return err
		}
		v.Inactivity = &a
	case stream.EventPanic:
		var a stream.Alert
		if err := env.DecodeData(&a); err != nil {
			return err
		}
		v.Panic = &a
	case stream.EventArrived, stream.EventArrivalNotification:
		var a stream.Arrival
		if err := env.DecodeData(&a); err != nil {
			return err
		}
		if v.Arrival != nil && a.Message == "" {
			a.Message = v.Arrival.Message
		}
		v.Arrival = &a
		v.Share.Status = session.StatusArrived
	case stream.EventError:
		var e stream.ErrorMessage
		if err := env.DecodeData(&e); err != nil {
			return err
		}
		v.LastError = e.Message
	}
	return nil
}

// Banner is the alert shown at the top of the screen. Panic hides a pending
// inactivity alert.
func (v *View) Banner() Banner {
	switch {
	case v.Panic != nil:
		return BannerPanic
	case v.Inactivity != nil:
		return BannerInactivity
	default:
		return BannerNone
	}
}

func (v *View) Arrived() bool { return v.Arrival != nil }

func (v *View) DismissInactivity() { v.Inactivity = nil }

func (v *View) DismissPanic() { v.Panic = nil }

func (v *View) LiveLocation() *stream.LocationUpdate {
	if v.Arrived() {
		return nil
	}
	return v.Last
}

func (v *View) String() string {
	switch {
	case v.Arrived():
		msg := v.Arrival.Message
		if msg == "" {
			msg = v.Share.UserName + " has arrived safely"
		}
		return fmt.Sprintf("ARRIVED %s (%s)", msg, v.Arrival.ArrivedAt)
	case v.Banner() == BannerPanic:
		return "PANIC " + v.Panic.Message + locationSuffix(v.Panic)
	case v.Banner() == BannerInactivity:
		return "INACTIVE " + v.Inactivity.Message + locationSuffix(v.Inactivity)
	case v.Last != nil:
		return fmt.Sprintf("LIVE %s at %.6f, %.6f eta %s", v.Share.UserName, v.Last.Lat, v.Last.Lng, v.Last.ETA)
	default:
		return fmt.Sprintf("WAITING for %s (%s -> %s)", v.Share.UserName, v.Share.StartLocation, v.Share.EndLocation)
	}
}

func locationSuffix(a *stream.Alert) string {
	if a.LastLocation == nil {
		return ""
	}
	return fmt.Sprintf(" at %.6f, %.6f", a.LastLocation.Lat, a.LastLocation.Lng)
}
