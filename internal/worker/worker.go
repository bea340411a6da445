package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/gamewatch-dev/gamewatch/internal/models"
	"github.com/gamewatch-dev/gamewatch/internal/processor"
	"github.com/gamewatch-dev/gamewatch/internal/queue"
)

// JobProcessor runs one price scrape job.
type JobProcessor interface {
	ProcessScrapeJob(ctx context.Context, job models.ScrapePriceJob) error
}

// Discoverer runs one full discovery crawl.
type Discoverer interface {
	DiscoverGames(ctx context.Context) error
}

// GameLister lists all tracked games for the scrape fan-out.
type GameLister interface {
	List(ctx context.Context) ([]models.Game, error)
}

// ScrapeEnqueuer enqueues one per-game scrape job.
type ScrapeEnqueuer interface {
	Enqueue(ctx context.Context, job models.ScrapePriceJob) error
}

// Deliverer posts a notification event downstream.
type Deliverer interface {
	Deliver(ctx context.Context, event models.NotificationEvent) error
}

// Handlers binds queue task types to the pipeline components.
type Handlers struct {
	processor JobProcessor
	discovery Discoverer
	games     GameLister
	scrapes   ScrapeEnqueuer
	deliverer Deliverer
}

func NewHandlers(p JobProcessor, d Discoverer, games GameLister, scrapes ScrapeEnqueuer, deliverer Deliverer) *Handlers {
	return &Handlers{
		processor: p,
		discovery: d,
		games:     games,
		scrapes:   scrapes,
		deliverer: deliverer,
	}
}

// HandleScrapePrice unwraps one scrape job and runs it. A job for a game
// that no longer exists is dropped instead of retried.
func (h *Handlers) HandleScrapePrice(ctx context.Context, t *asynq.Task) error {
	var job models.ScrapePriceJob
	if err := json.Unmarshal(t.Payload(), &job); err != nil {
		return fmt.Errorf("unmarshaling scrape job payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.processor.ProcessScrapeJob(ctx, job); err != nil {
		if errors.Is(err, processor.ErrMissingGame) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	return nil
}

func (h *Handlers) HandleDiscoverGames(ctx context.Context, _ *asynq.Task) error {
	return h.discovery.DiscoverGames(ctx)
}

// HandleEnqueueScrapes fans one scrape job out per tracked game, with URL
// snapshots taken at enqueue time. A failed enqueue skips that game only.
func (h *Handlers) HandleEnqueueScrapes(ctx context.Context, _ *asynq.Task) error {
	games, err := h.games.List(ctx)
	if err != nil {
		return fmt.Errorf("listing games for scrape fan-out: %w", err)
	}

	enqueued := 0
	for _, game := range games {
		job := models.ScrapePriceJob{
			GameID:    game.ID,
			SteamURL:  game.SteamURL,
			NuuvemURL: game.NuuvemURL,
		}
		if err := h.scrapes.Enqueue(ctx, job); err != nil {
			slog.Warn("Failed to enqueue scrape job", "gameID", game.ID, "error", err)
			continue
		}
		enqueued++
	}

	slog.Info("Scrape fan-out finished", "games", len(games), "enqueued", enqueued)
	return nil
}

func (h *Handlers) HandleNotification(ctx context.Context, t *asynq.Task) error {
	var event models.NotificationEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return fmt.Errorf("unmarshaling notification payload: %v: %w", err, asynq.SkipRetry)
	}
	return h.deliverer.Deliver(ctx, event)
}

// NewMux routes queue task types to their handlers.
func NewMux(h *Handlers) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeScrapePrice, h.HandleScrapePrice)
	mux.HandleFunc(queue.TypeDiscoverGames, h.HandleDiscoverGames)
	mux.HandleFunc(queue.TypeEnqueueScrapes, h.HandleEnqueueScrapes)
	mux.HandleFunc(queue.TypeNotification, h.HandleNotification)
	return mux
}

// NewServer builds the worker pool. Scrape jobs get most of the capacity;
// discovery is a single long crawl and notifications are cheap posts.
func NewServer(redisOpt asynq.RedisClientOpt, concurrency int) *asynq.Server {
	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue.QueueScrapes:       6,
			queue.QueueNotifications: 3,
			queue.QueueDiscovery:     1,
		},
		RetryDelayFunc: queue.FixedRetryDelay,
	})
}

// NewScheduler registers the periodic triggers: the discovery crawl and the
// per-game scrape fan-out.
func NewScheduler(redisOpt asynq.RedisClientOpt, discoveryCron, scrapeCron string) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt, nil)

	if _, err := scheduler.Register(discoveryCron, queue.NewDiscoverTask()); err != nil {
		return nil, fmt.Errorf("registering discovery schedule %q: %w", discoveryCron, err)
	}
	if _, err := scheduler.Register(scrapeCron, queue.NewEnqueueScrapesTask()); err != nil {
		return nil, fmt.Errorf("registering scrape schedule %q: %w", scrapeCron, err)
	}
	return scheduler, nil
}
