// Package notify queues issue notifications through Redis and delivers them
// in a background worker, so a slow or failing delivery never blocks the
// state mutation that produced the notification.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"civicreport-be/models"

	"github.com/redis/go-redis/v9"
)

const notificationQueueKey = "notification_events"

// RedisPublisher pushes notifications onto the Redis delivery queue. It
// implements services.NotificationPublisher.
type RedisPublisher struct {
	redisClient *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{redisClient: client}
}

// Publish enqueues one notification for delivery.
func (p *RedisPublisher) Publish(ctx context.Context, n *models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := p.redisClient.LPush(ctx, notificationQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}
