package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type failingNotifier struct{ err error }

func (f failingNotifier) Notify(context.Context, Message) error { return f.err }

func TestArrivalText(t *testing.T) {
	got := ArrivalText("Agastya")
	if got != "Agastya has arrived safely at their destination via SafeWalk AI." {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestValidChannel(t *testing.T) {
	if !ValidChannel("sms") || !ValidChannel("email") || ValidChannel("pigeon") {
		t.Fatalf("unexpected channel validation")
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := LogNotifier{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	err := n.Notify(context.Background(), Message{Channel: "sms", Recipient: "+12065551234", Text: ArrivalText("Sam")})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if !strings.Contains(buf.String(), "[AUTO-NOTIFY:sms] To +12065551234: Sam has arrived safely") {
		t.Fatalf("unexpected log line %q", buf.String())
	}
}

func TestRedisNotifier(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	n := NewRedisNotifier(client)
	if err := n.Notify(context.Background(), Message{SessionID: "s1", Channel: "email", Recipient: "mom@example.com", Text: "hi"}); err != nil {
		t.Fatalf("notify: %v", err)
	}

	items, err := s.List(QueueKey)
	if err != nil || len(items) != 1 {
		t.Fatalf("expected one queued item, got %v (%v)", items, err)
	}
	var msg Message
	if err := json.Unmarshal([]byte(items[0]), &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.SessionID != "s1" || msg.Recipient != "mom@example.com" {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestRedisNotifierError(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()
	s.Close()

	if err := NewRedisNotifier(client).Notify(context.Background(), Message{}); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}

func TestMulti(t *testing.T) {
	boom := errors.New("boom")
	var buf bytes.Buffer
	m := Multi{LogNotifier{Logger: slog.New(slog.NewTextHandler(&buf, nil))}, nil, failingNotifier{err: boom}}

	err := m.Notify(context.Background(), Message{Channel: "sms", Recipient: "x", Text: "y"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected log notifier to still run")
	}
}
