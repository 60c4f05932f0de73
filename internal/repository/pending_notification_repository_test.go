package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func newPendingRepo(t *testing.T) (PendingNotificationRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPendingNotificationRepository(client), mr
}

func TestEnqueueDrainPreservesOrder(t *testing.T) {
	repo, _ := newPendingRepo(t)
	ctx := context.Background()

	for _, id := range []string{"TKT-1", "TKT-2", "TKT-3"} {
		err := repo.Enqueue(ctx, "jvaldez", domain.Notification{Type: "new_ticket", TicketID: id}, time.Hour)
		require.NoError(t, err)
	}

	queued, err := repo.Drain(ctx, "jvaldez")
	require.NoError(t, err)
	require.Len(t, queued, 3)
	assert.Equal(t, "TKT-1", queued[0].TicketID)
	assert.Equal(t, "TKT-3", queued[2].TicketID)

	// Drain leaves nothing behind.
	queued, err = repo.Drain(ctx, "jvaldez")
	require.NoError(t, err)
	assert.Empty(t, queued)
}

func TestEnqueueIsolatesAdmins(t *testing.T) {
	repo, _ := newPendingRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Enqueue(ctx, "jvaldez", domain.Notification{TicketID: "TKT-1"}, time.Hour))
	require.NoError(t, repo.Enqueue(ctx, "mgarcia", domain.Notification{TicketID: "TKT-2"}, time.Hour))

	queued, err := repo.Drain(ctx, "jvaldez")
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, "TKT-1", queued[0].TicketID)

	queued, err = repo.Drain(ctx, "mgarcia")
	require.NoError(t, err)
	require.Len(t, queued, 1)
}

func TestEnqueueSetsExpiry(t *testing.T) {
	repo, mr := newPendingRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Enqueue(ctx, "jvaldez", domain.Notification{TicketID: "TKT-1"}, time.Minute))

	mr.FastForward(2 * time.Minute)

	queued, err := repo.Drain(ctx, "jvaldez")
	require.NoError(t, err)
	assert.Empty(t, queued)
}

func TestDrainSkipsCorruptEntries(t *testing.T) {
	repo, mr := newPendingRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Enqueue(ctx, "jvaldez", domain.Notification{TicketID: "TKT-1"}, time.Hour))
	_, err := mr.Push(pendingKeyPrefix+"jvaldez", "{not json")
	require.NoError(t, err)
	require.NoError(t, repo.Enqueue(ctx, "jvaldez", domain.Notification{TicketID: "TKT-2"}, time.Hour))

	queued, err := repo.Drain(ctx, "jvaldez")
	require.NoError(t, err)
	require.Len(t, queued, 2)
	assert.Equal(t, "TKT-1", queued[0].TicketID)
	assert.Equal(t, "TKT-2", queued[1].TicketID)
}
