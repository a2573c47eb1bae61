package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueueKey is the Redis list an out-of-process SMS or email worker drains.
const QueueKey = "safewalk:notify"

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

type Message struct {
	SessionID   string    `json:"sessionId"`
	Channel     string    `json:"channel"`
	ContactName string    `json:"contactName,omitempty"`
	Recipient   string    `json:"recipient"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

func ArrivalText(userName string) string {
	return userName + " has arrived safely at their destination via SafeWalk AI."
}

func ValidChannel(channel string) bool {
	return channel == ChannelSMS || channel == ChannelEmail
}

type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, msg Message) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, fmt.Sprintf("[AUTO-NOTIFY:%s] To %s: %s", msg.Channel, msg.Recipient, msg.Text),
		"session_id", msg.SessionID,
		"contact_name", msg.ContactName,
	)
	return nil
}

type RedisNotifier struct {
	client *redis.Client
	key    string
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client, key: QueueKey}
}

func (n *RedisNotifier) Notify(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := n.client.LPush(ctx, n.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
