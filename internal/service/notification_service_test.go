package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/presence"
)

func newNotifier(registry *presence.Registry, pending *fakePendingRepo) *NotificationService {
	return NewNotificationService(registry, pending, config.NotificationConfig{PendingTTLMinutes: 60}, nil, nil)
}

func sampleNotification(ticketID string) domain.Notification {
	return domain.Notification{
		Type:     "new_ticket",
		Title:    "Nuevo Ticket Asignado",
		TicketID: ticketID,
	}
}

func TestDispatchDeliversToLiveSession(t *testing.T) {
	t.Parallel()

	registry := presence.NewRegistry()
	session := &fakeSession{id: "sess-1"}
	registry.MarkOnline("jvaldez", session)
	notifier := newNotifier(registry, newFakePendingRepo())

	delivered := notifier.Dispatch(context.Background(), "jvaldez", sampleNotification("TKT-20260828-101500"))

	assert.True(t, delivered)
	require.Len(t, session.received(), 1)
	assert.Equal(t, "TKT-20260828-101500", session.received()[0].TicketID)
}

func TestDispatchOfflineAdminQueues(t *testing.T) {
	t.Parallel()

	pending := newFakePendingRepo()
	notifier := newNotifier(presence.NewRegistry(), pending)

	delivered := notifier.Dispatch(context.Background(), "jvaldez", sampleNotification("TKT-1"))

	assert.False(t, delivered)
	require.Len(t, pending.queued("jvaldez"), 1)
	assert.Equal(t, "TKT-1", pending.queued("jvaldez")[0].TicketID)
}

func TestDispatchPushFailureQueuesLikeOffline(t *testing.T) {
	t.Parallel()

	registry := presence.NewRegistry()
	registry.MarkOnline("jvaldez", &fakeSession{id: "sess-1", pushErr: errors.New("broken pipe")})
	pending := newFakePendingRepo()
	notifier := newNotifier(registry, pending)

	delivered := notifier.Dispatch(context.Background(), "jvaldez", sampleNotification("TKT-1"))

	// A dead socket counts as offline: not delivered, but queued for the
	// next announce rather than lost.
	assert.False(t, delivered)
	require.Len(t, pending.queued("jvaldez"), 1)
	assert.Equal(t, "TKT-1", pending.queued("jvaldez")[0].TicketID)
}

func TestDispatchWithoutPendingRepo(t *testing.T) {
	t.Parallel()

	notifier := NewNotificationService(presence.NewRegistry(), nil, config.NotificationConfig{}, nil, nil)

	assert.False(t, notifier.Dispatch(context.Background(), "jvaldez", sampleNotification("TKT-1")))
}

func TestFlushPendingDeliversBacklog(t *testing.T) {
	t.Parallel()

	registry := presence.NewRegistry()
	pending := newFakePendingRepo()
	notifier := newNotifier(registry, pending)

	notifier.Dispatch(context.Background(), "jvaldez", sampleNotification("TKT-1"))
	notifier.Dispatch(context.Background(), "jvaldez", sampleNotification("TKT-2"))

	session := &fakeSession{id: "sess-1"}
	registry.MarkOnline("jvaldez", session)

	delivered := notifier.FlushPending(context.Background(), "jvaldez")

	assert.Equal(t, 2, delivered)
	require.Len(t, session.received(), 2)
	assert.Equal(t, "TKT-1", session.received()[0].TicketID)
	assert.Equal(t, "TKT-2", session.received()[1].TicketID)
	assert.Empty(t, pending.queued("jvaldez"))
}

func TestFlushPendingRequeuesWhenSessionGone(t *testing.T) {
	t.Parallel()

	registry := presence.NewRegistry()
	pending := newFakePendingRepo()
	notifier := newNotifier(registry, pending)

	notifier.Dispatch(context.Background(), "jvaldez", sampleNotification("TKT-1"))

	// Admin announced and dropped before the drain finished.
	delivered := notifier.FlushPending(context.Background(), "jvaldez")

	assert.Equal(t, 0, delivered)
	require.Len(t, pending.queued("jvaldez"), 1)
}

func TestFlushPendingRequeuesFailedPushes(t *testing.T) {
	t.Parallel()

	registry := presence.NewRegistry()
	pending := newFakePendingRepo()
	notifier := newNotifier(registry, pending)

	notifier.Dispatch(context.Background(), "jvaldez", sampleNotification("TKT-1"))
	registry.MarkOnline("jvaldez", &fakeSession{id: "sess-1", pushErr: errors.New("broken pipe")})

	delivered := notifier.FlushPending(context.Background(), "jvaldez")

	assert.Equal(t, 0, delivered)
	require.Len(t, pending.queued("jvaldez"), 1)
}

func TestFlushPendingEmptyQueue(t *testing.T) {
	t.Parallel()

	notifier := newNotifier(presence.NewRegistry(), newFakePendingRepo())

	assert.Equal(t, 0, notifier.FlushPending(context.Background(), "jvaldez"))
}
