package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/presence"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// RealtimeHandler owns the administrator websocket channel: presence
// announcements in, ticket notifications out.
type RealtimeHandler struct {
	registry *presence.Registry
	notifier *service.NotificationService
	logger   *zap.Logger
}

// NewRealtimeHandler constructs handler.
func NewRealtimeHandler(registry *presence.Registry, notifier *service.NotificationService, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{registry: registry, notifier: notifier, logger: logger}
}

// Upgrade rejects plain HTTP requests on the websocket route.
func (h *RealtimeHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve returns the connection handler.
func (h *RealtimeHandler) Serve() fiber.Handler {
	return websocket.New(h.handle)
}

type clientMessage struct {
	Event    string `json:"event"`
	Username string `json:"username,omitempty"`
}

type serverMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

func (h *RealtimeHandler) handle(conn *websocket.Conn) {
	principal, ok := conn.Locals(auth.PrincipalLocalsKey).(*auth.Principal)
	if !ok {
		_ = conn.Close()
		return
	}

	session := newWSSession(conn)
	defer func() {
		// Guarded removal: if this admin reconnected on a newer session,
		// our teardown must not evict it.
		if h.registry.RemoveIfCurrent(principal.Username, session.ID()) {
			h.logger.Info("administrator disconnected", zap.String("admin", principal.Username))
		}
		_ = conn.Close()
	}()

	_ = session.write("connection_response", fiber.Map{"status": "connected"})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Event {
		case "admin_online", "join_admin_room":
			h.registry.MarkOnline(principal.Username, session)
			h.logger.Info("administrator online",
				zap.String("admin", principal.Username),
				zap.String("session_id", session.ID()))
			_ = session.write("admin_status", fiber.Map{"status": "online"})

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			h.notifier.FlushPending(ctx, principal.Username)
			cancel()
		case "ping":
			_ = session.write("pong", nil)
		}
	}
}

// wsSession adapts one websocket connection to presence.Session.
// Writes are serialized; concurrent writers on a websocket connection
// corrupt frames.
type wsSession struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func newWSSession(conn *websocket.Conn) *wsSession {
	return &wsSession{id: uuid.NewString(), conn: conn}
}

func (s *wsSession) ID() string {
	return s.id
}

func (s *wsSession) Push(notification domain.Notification) error {
	return s.write("new_ticket_notification", notification)
}

func (s *wsSession) write(event string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(serverMessage{Event: event, Data: data})
}
