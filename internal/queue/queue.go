package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gamewatch-dev/gamewatch/internal/models"
)

// Task types routed through the worker mux.
const (
	TypeScrapePrice    = "game:scrape_price"
	TypeDiscoverGames  = "game:discover"
	TypeEnqueueScrapes = "game:enqueue_scrapes"
	TypeNotification   = "notification:send"
)

// Queue names, processed by the same worker pool.
const (
	QueueScrapes       = "scrapes"
	QueueDiscovery     = "discovery"
	QueueNotifications = "notifications"
)

const (
	// maxRetry 2 gives three delivery attempts in total.
	maxRetry = 2
	// RetryDelay is the fixed wait between redeliveries of a failed task.
	RetryDelay = 5 * time.Minute
	// completedRetention keeps finished tasks around for inspection.
	completedRetention = 7 * 24 * time.Hour
)

// FixedRetryDelay is the asynq server retry policy: a constant delay
// regardless of attempt number or error.
func FixedRetryDelay(_ int, _ error, _ *asynq.Task) time.Duration {
	return RetryDelay
}

// GamePriceQueue enqueues per-game price scrape jobs.
type GamePriceQueue struct {
	client *asynq.Client
}

func NewGamePriceQueue(client *asynq.Client) *GamePriceQueue {
	return &GamePriceQueue{client: client}
}

func (q *GamePriceQueue) Enqueue(ctx context.Context, job models.ScrapePriceJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshaling scrape job for game %s: %w", job.GameID, err)
	}
	_, err = q.client.EnqueueContext(ctx, asynq.NewTask(TypeScrapePrice, payload),
		asynq.Queue(QueueScrapes),
		asynq.MaxRetry(maxRetry),
		asynq.Retention(completedRetention),
	)
	if err != nil {
		return fmt.Errorf("enqueuing scrape job for game %s: %w", job.GameID, err)
	}
	return nil
}

// NotificationQueue hands lowest-price events to the outbound delivery
// queue. Fire-and-forget from the producer's point of view: delivery
// retries are the queue's concern.
type NotificationQueue struct {
	client *asynq.Client
}

func NewNotificationQueue(client *asynq.Client) *NotificationQueue {
	return &NotificationQueue{client: client}
}

func (q *NotificationQueue) Enqueue(ctx context.Context, event models.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling notification for game %s: %w", event.GameID, err)
	}
	_, err = q.client.EnqueueContext(ctx, asynq.NewTask(TypeNotification, payload),
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(maxRetry),
		asynq.Retention(completedRetention),
	)
	if err != nil {
		return fmt.Errorf("enqueuing notification for game %s: %w", event.GameID, err)
	}
	return nil
}

// NewDiscoverTask builds the periodic discovery trigger task.
func NewDiscoverTask() *asynq.Task {
	return asynq.NewTask(TypeDiscoverGames, nil, asynq.Queue(QueueDiscovery), asynq.MaxRetry(0))
}

// NewEnqueueScrapesTask builds the periodic fan-out trigger task.
func NewEnqueueScrapesTask() *asynq.Task {
	return asynq.NewTask(TypeEnqueueScrapes, nil, asynq.Queue(QueueScrapes), asynq.MaxRetry(0))
}
