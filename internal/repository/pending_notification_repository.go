package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const pendingKeyPrefix = "helpdesk:pending_notifications:"

// PendingNotificationRepository queues notifications for administrators
// who were offline at dispatch time. Entries expire so a departed admin
// does not accumulate stale noise forever.
type PendingNotificationRepository interface {
	Enqueue(ctx context.Context, admin string, notification domain.Notification, ttl time.Duration) error
	// Drain removes and returns everything queued for admin, oldest first.
	Drain(ctx context.Context, admin string) ([]domain.Notification, error)
}

type pendingNotificationRepository struct {
	client *redis.Client
}

// NewPendingNotificationRepository instantiates repository.
func NewPendingNotificationRepository(client *redis.Client) PendingNotificationRepository {
	return &pendingNotificationRepository{client: client}
}

func (r *pendingNotificationRepository) Enqueue(ctx context.Context, admin string, notification domain.Notification, ttl time.Duration) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	key := pendingKeyPrefix + admin
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *pendingNotificationRepository) Drain(ctx context.Context, admin string) ([]domain.Notification, error) {
	key := pendingKeyPrefix + admin
	pipe := r.client.TxPipeline()
	entries := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	raw, err := entries.Result()
	if err != nil {
		return nil, err
	}
	notifications := make([]domain.Notification, 0, len(raw))
	for _, entry := range raw {
		var notification domain.Notification
		if err := json.Unmarshal([]byte(entry), &notification); err != nil {
			// skip corrupt entries rather than wedge the drain
			continue
		}
		notifications = append(notifications, notification)
	}
	return notifications, nil
}
