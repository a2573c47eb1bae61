package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix  = "safewalk:"
	channelSuffix  = ":events"
	sendBufferSize = 64
)

// Hub fans messages out to the websocket clients joined to a room. A room is
// a walk session id. When Redis is configured every broadcast is relayed so
// clients connected to other instances receive it too.
type Hub struct {
	id     string
	redis  *redis.Client
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}

	pubsub *redis.PubSub
	done   chan struct{}
}

type Client struct {
	Send   chan []byte
	room   string
	closed bool
}

// relay is the Redis wire format. Origin lets an instance skip its own
// publishes, which it has already delivered locally.
type relay struct {
	Origin  string `json:"origin"`
	Payload []byte `json:"payload"`
}

func NewHub(redisClient *redis.Client, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		id:     uuid.NewString(),
		redis:  redisClient,
		logger: logger,
		rooms:  map[string]map[*Client]struct{}{},
		done:   make(chan struct{}),
	}

	if redisClient == nil {
		close(h.done)
		return h
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	h.pubsub = redisClient.PSubscribe(ctx, channelPrefix+"*"+channelSuffix)
	if _, err := h.pubsub.Receive(ctx); err != nil {
		logger.Warn("redis subscribe not confirmed", "error", err)
	}

	go h.subscribeRedis()
	return h
}

// Register adds a client to room. An empty room leaves the client unjoined
// until Join is called.
func (h *Hub) Register(room string) *Client {
	client := &Client{Send: make(chan []byte, sendBufferSize)}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.attach(client, room)
	return client
}

func (h *Hub) Join(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client.closed || client.room == room {
		return
	}
	h.detach(client)
	h.attach(client, room)
}

func (h *Hub) Room(client *Client) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return client.room
}

// Unregister removes client and closes its Send channel. Safe to call twice.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client.closed {
		return
	}
	h.detach(client)
	client.closed = true
	close(client.Send)
}

func (h *Hub) Count(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Broadcast delivers payload to every local client in room without blocking;
// a client whose buffer is full misses the message.
func (h *Hub) Broadcast(room string, payload []byte) {
	h.deliver(room, payload)

	if h.redis != nil {
		msg, _ := json.Marshal(relay{Origin: h.id, Payload: payload})
		if err := h.redis.Publish(context.Background(), redisChannel(room), msg).Err(); err != nil {
			h.logger.Error("redis publish failed", "room", room, "error", err)
		}
	}
}

func (h *Hub) Emit(room, event string, data any) error {
	payload, err := Encode(event, data)
	if err != nil {
		return err
	}
	h.Broadcast(room, payload)
	return nil
}

func (h *Hub) Direct(client *Client, event string, data any) error {
	payload, err := Encode(event, data)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if client.closed {
		return nil
	}
	select {
	case client.Send <- payload:
	default:
	}
	return nil
}

// Close stops the Redis relay. Local delivery keeps working.
func (h *Hub) Close() {
	if h.pubsub != nil {
		_ = h.pubsub.Close()
	}
	<-h.done
}

func (h *Hub) attach(client *Client, room string) {
	client.room = room
	if room == "" {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = map[*Client]struct{}{}
	}
	h.rooms[room][client] = struct{}{}
}

func (h *Hub) detach(client *Client) {
	if members, ok := h.rooms[client.room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, client.room)
		}
	}
	client.room = ""
}

func (h *Hub) deliver(room string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	defer close(h.done)

	for msg := range h.pubsub.Channel() {
		room := roomFromChannel(msg.Channel)
		if room == "" {
			continue
		}
		var r relay
		if err := json.Unmarshal([]byte(msg.Payload), &r); err != nil {
			h.logger.Warn("dropping malformed relay message", "channel", msg.Channel, "error", err)
			continue
		}
		if r.Origin == h.id {
			continue
		}
		h.deliver(room, r.Payload)
	}
}

func redisChannel(room string) string {
	return channelPrefix + room + channelSuffix
}

func roomFromChannel(ch string) string {
	if len(ch) <= len(channelPrefix)+len(channelSuffix) ||
		!strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
