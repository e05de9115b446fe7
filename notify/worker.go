package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"civicreport-be/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NotificationSink persists a delivered notification.
type NotificationSink interface {
	Insert(ctx context.Context, n *models.Notification) error
}

// Worker drains the Redis notification queue and persists each entry to the
// recipient's inbox, retrying with exponential backoff. Delivery is
// at-least-once: an entry is only dropped once the sink accepted it or the
// retry budget ran out.
type Worker struct {
	redisClient *redis.Client
	sink        NotificationSink
	logger      *logrus.Logger

	maxRetries int
	baseDelay  time.Duration
}

func NewWorker(redisClient *redis.Client, sink NotificationSink, logger *logrus.Logger) *Worker {
	return &Worker{
		redisClient: redisClient,
		sink:        sink,
		logger:      logger,
		maxRetries:  3,
		baseDelay:   500 * time.Millisecond,
	}
}

// Start runs the delivery loop in a goroutine until ctx is canceled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting notification worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping notification worker.")
				return
			default:
				result, err := w.redisClient.BRPop(ctx, 0, notificationQueueKey).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue
					}
					w.logger.WithError(err).Error("Failed to pop notification from Redis")
					time.Sleep(w.baseDelay)
					continue
				}

				// result[0] is the key, result[1] the payload
				var n models.Notification
				if err := json.Unmarshal([]byte(result[1]), &n); err != nil {
					w.logger.WithError(err).Error("Failed to unmarshal queued notification")
					continue
				}

				w.deliver(ctx, &n)
			}
		}
	}()
}

func (w *Worker) deliver(ctx context.Context, n *models.Notification) {
	log := w.logger.WithFields(logrus.Fields{
		"recipient": n.Recipient.Hex(),
		"type":      n.Type,
	})

	delay := w.baseDelay
	for i := 0; i < w.maxRetries; i++ {
		now := time.Now()
		n.IsSent = true
		n.SentAt = &now

		if err := w.sink.Insert(ctx, n); err != nil {
			log.WithError(err).Warnf("Failed to deliver notification. Retrying in %v. Retries left: %d", delay, w.maxRetries-1-i)
			time.Sleep(delay)
			delay *= 2
			continue
		}

		log.Debug("Notification delivered")
		return
	}

	log.Errorf("Failed to deliver notification after %d retries.", w.maxRetries)
}
