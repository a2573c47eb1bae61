package stream

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const roomLocal = "stream_room"

var ErrUnknownRoom = errors.New("session not found")

// Resolver maps the identifiers a client joins with onto a room.
type Resolver interface {
	ResolveSession(ctx context.Context, sessionID string) (string, error)
	ResolveShareToken(ctx context.Context, token string) (string, error)
}

// RegisterRoutes mounts the companion sockets. With a nil resolver, path ids
// are used as rooms verbatim and join messages are rejected.
func RegisterRoutes(r fiber.Router, hub *Hub, resolver Resolver) {
	r.Get("/ws/share/:token", func(c *fiber.Ctx) error {
		if resolver == nil {
			return fiber.NewError(fiber.StatusNotFound, ErrUnknownRoom.Error())
		}
		room, err := resolver.ResolveShareToken(c.UserContext(), c.Params("token"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, ErrUnknownRoom.Error())
		}
		c.Locals(roomLocal, room)
		return c.Next()
	}, websocket.New(serve(hub, resolver)))

	r.Get("/ws/:sessionID", func(c *fiber.Ctx) error {
		room := c.Params("sessionID")
		if resolver != nil {
			resolved, err := resolver.ResolveSession(c.UserContext(), room)
			if err != nil {
				return fiber.NewError(fiber.StatusNotFound, ErrUnknownRoom.Error())
			}
			room = resolved
		}
		c.Locals(roomLocal, room)
		return c.Next()
	}, websocket.New(serve(hub, resolver)))

	r.Get("/ws", websocket.New(serve(hub, resolver)))
}

func serve(hub *Hub, resolver Resolver) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		room, _ := c.Locals(roomLocal).(string)
		client := hub.Register(room)
		if room != "" {
			_ = hub.Direct(client, EventJoined, Joined{SessionID: room})
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			handleInbound(hub, resolver, client, msg)
		}

		hub.Unregister(client)
		<-done
	}
}

func handleInbound(hub *Hub, resolver Resolver, client *Client, msg []byte) {
	env, err := Decode(msg)
	if err != nil {
		_ = hub.Direct(client, EventError, ErrorMessage{Message: "malformed message"})
		return
	}

	var resolve func(context.Context) (string, error)
	switch env.Event {
	case EventJoinSession:
		var req JoinSession
		if err := decodeData(env, &req); err != nil || req.SessionID == "" {
			_ = hub.Direct(client, EventError, ErrorMessage{Message: "sessionId required"})
			return
		}
		resolve = func(ctx context.Context) (string, error) {
			return resolver.ResolveSession(ctx, req.SessionID)
		}
	case EventJoinSessionByToken:
		var req JoinSessionByToken
		if err := decodeData(env, &req); err != nil || req.ShareToken == "" {
			_ = hub.Direct(client, EventError, ErrorMessage{Message: "shareToken required"})
			return
		}
		resolve = func(ctx context.Context) (string, error) {
			return resolver.ResolveShareToken(ctx, req.ShareToken)
		}
	default:
		_ = hub.Direct(client, EventError, ErrorMessage{Message: "unsupported event " + env.Event})
		return
	}

	if resolver == nil {
		_ = hub.Direct(client, EventError, ErrorMessage{Message: ErrUnknownRoom.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	room, err := resolve(ctx)
	if err != nil {
		_ = hub.Direct(client, EventError, ErrorMessage{Message: ErrUnknownRoom.Error()})
		return
	}
	hub.Join(client, room)
	_ = hub.Direct(client, EventJoined, Joined{SessionID: room})
}
