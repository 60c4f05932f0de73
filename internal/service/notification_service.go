package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/presence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// NotificationService delivers ticket notifications to administrators:
// a live push when the target is connected, a queued entry otherwise.
// Delivery is best effort and never fails the operation that triggered it.
type NotificationService struct {
	registry *presence.Registry
	pending  repository.PendingNotificationRepository
	cfg      config.NotificationConfig
	metrics  *observability.Metrics
	logger   *zap.Logger
	client   *http.Client
}

// NewNotificationService creates the service.
func NewNotificationService(registry *presence.Registry, pending repository.PendingNotificationRepository, cfg config.NotificationConfig, metrics *observability.Metrics, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		registry: registry,
		pending:  pending,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Dispatch attempts an immediate push to admin's live session. Returns
// true only when the payload actually went out over an open connection.
// Offline administrators and dead sockets both get the payload queued for
// the admin's next announce; transport failures are logged and swallowed,
// never surfaced to the caller.
func (n *NotificationService) Dispatch(ctx context.Context, admin string, notification domain.Notification) bool {
	session, ok := n.registry.Lookup(admin)
	if !ok {
		n.logger.Info("administrator offline, queueing notification",
			zap.String("admin", admin),
			zap.String("ticket_id", notification.TicketID))
		n.enqueue(ctx, admin, notification)
		n.metrics.RecordDispatch(false)
		return false
	}

	if err := session.Push(notification); err != nil {
		// A dying socket is just an offline admin we have not noticed
		// yet; queue for the next announce like any other miss.
		n.logger.Warn("notification push failed, queueing",
			zap.String("admin", admin),
			zap.String("ticket_id", notification.TicketID),
			zap.Error(err))
		n.enqueue(ctx, admin, notification)
		n.metrics.RecordDispatch(false)
		return false
	}

	n.logger.Info("notification delivered",
		zap.String("admin", admin),
		zap.String("ticket_id", notification.TicketID))
	n.metrics.RecordDispatch(true)
	return true
}

// FlushPending pushes everything queued for admin to their fresh session.
// Called when an administrator announces online. Returns how many
// notifications were delivered.
func (n *NotificationService) FlushPending(ctx context.Context, admin string) int {
	if n.pending == nil {
		return 0
	}
	queued, err := n.pending.Drain(ctx, admin)
	if err != nil {
		n.logger.Warn("draining pending notifications failed", zap.String("admin", admin), zap.Error(err))
		return 0
	}
	if len(queued) == 0 {
		return 0
	}
	session, ok := n.registry.Lookup(admin)
	if !ok {
		// Admin vanished between announce and drain; requeue.
		for _, notification := range queued {
			n.enqueue(ctx, admin, notification)
		}
		return 0
	}
	delivered := 0
	for _, notification := range queued {
		if err := session.Push(notification); err != nil {
			n.logger.Warn("pending push failed", zap.String("admin", admin), zap.Error(err))
			n.enqueue(ctx, admin, notification)
			continue
		}
		delivered++
	}
	n.logger.Info("flushed pending notifications",
		zap.String("admin", admin),
		zap.Int("delivered", delivered),
		zap.Int("queued", len(queued)))
	return delivered
}

func (n *NotificationService) enqueue(ctx context.Context, admin string, notification domain.Notification) {
	if n.pending == nil {
		return
	}
	if err := n.pending.Enqueue(ctx, admin, notification, n.cfg.PendingTTL()); err != nil {
		n.logger.Warn("queueing notification failed", zap.String("admin", admin), zap.Error(err))
	}
}

// RegisterHandlers mirrors ticket lifecycle events to the configured
// webhook channel, matching what the chat bots post to Teams.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil || n.cfg.WebhookURL == "" {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, n.mirrorToWebhook)
	dispatcher.Subscribe(events.EventTicketAssigned, n.mirrorToWebhook)
	dispatcher.Subscribe(events.EventTicketStatusChanged, n.mirrorToWebhook)
}

func (n *NotificationService) mirrorToWebhook(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("webhook mirror failed", zap.String("event", string(event.Type)), zap.Error(err))
		return nil
	}
	_ = resp.Body.Close()
	return nil
}
