package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/gamewatch-dev/gamewatch/internal/models"
	"github.com/gamewatch-dev/gamewatch/internal/processor"
	"github.com/gamewatch-dev/gamewatch/internal/queue"
)

type mockProcessor struct {
	jobs []models.ScrapePriceJob
	err  error
}

func (m *mockProcessor) ProcessScrapeJob(_ context.Context, job models.ScrapePriceJob) error {
	m.jobs = append(m.jobs, job)
	return m.err
}

type mockDiscoverer struct {
	calls int
	err   error
}

func (m *mockDiscoverer) DiscoverGames(_ context.Context) error {
	m.calls++
	return m.err
}

type mockGameLister struct {
	games []models.Game
	err   error
}

func (m *mockGameLister) List(_ context.Context) ([]models.Game, error) {
	return m.games, m.err
}

type mockEnqueuer struct {
	jobs   []models.ScrapePriceJob
	failOn string // game ID whose enqueue fails
}

func (m *mockEnqueuer) Enqueue(_ context.Context, job models.ScrapePriceJob) error {
	if job.GameID == m.failOn {
		return errors.New("enqueue failed")
	}
	m.jobs = append(m.jobs, job)
	return nil
}

type mockDeliverer struct {
	events []models.NotificationEvent
	err    error
}

func (m *mockDeliverer) Deliver(_ context.Context, event models.NotificationEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func scrapeTask(t *testing.T, job models.ScrapePriceJob) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshaling job: %v", err)
	}
	return asynq.NewTask(queue.TypeScrapePrice, payload)
}

func TestHandleScrapePrice(t *testing.T) {
	proc := &mockProcessor{}
	h := NewHandlers(proc, &mockDiscoverer{}, &mockGameLister{}, &mockEnqueuer{}, &mockDeliverer{})

	job := models.ScrapePriceJob{GameID: "id-1", SteamURL: "https://store.steampowered.com/app/1"}
	if err := h.HandleScrapePrice(context.Background(), scrapeTask(t, job)); err != nil {
		t.Fatalf("HandleScrapePrice returned unexpected error: %v", err)
	}
	if len(proc.jobs) != 1 || proc.jobs[0].GameID != "id-1" {
		t.Errorf("Expected processor to receive the job, got %+v", proc.jobs)
	}
}

func TestHandleScrapePrice_MissingGameSkipsRetry(t *testing.T) {
	proc := &mockProcessor{err: fmt.Errorf("game id-1: %w", processor.ErrMissingGame)}
	h := NewHandlers(proc, &mockDiscoverer{}, &mockGameLister{}, &mockEnqueuer{}, &mockDeliverer{})

	err := h.HandleScrapePrice(context.Background(), scrapeTask(t, models.ScrapePriceJob{GameID: "id-1"}))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("Expected SkipRetry for a missing game, got: %v", err)
	}
}

func TestHandleScrapePrice_ScrapeFailureIsRetryable(t *testing.T) {
	proc := &mockProcessor{err: errors.New("steam unreachable")}
	h := NewHandlers(proc, &mockDiscoverer{}, &mockGameLister{}, &mockEnqueuer{}, &mockDeliverer{})

	err := h.HandleScrapePrice(context.Background(), scrapeTask(t, models.ScrapePriceJob{GameID: "id-1"}))
	if err == nil {
		t.Fatal("Expected error so the queue retries")
	}
	if errors.Is(err, asynq.SkipRetry) {
		t.Error("Scrape failures must stay retryable")
	}
}

func TestHandleScrapePrice_BadPayloadSkipsRetry(t *testing.T) {
	h := NewHandlers(&mockProcessor{}, &mockDiscoverer{}, &mockGameLister{}, &mockEnqueuer{}, &mockDeliverer{})

	err := h.HandleScrapePrice(context.Background(), asynq.NewTask(queue.TypeScrapePrice, []byte("{not json")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("Expected SkipRetry for malformed payload, got: %v", err)
	}
}

func TestHandleEnqueueScrapes(t *testing.T) {
	nuuvemURL := "https://www.nuuvem.com/item/hades"
	lister := &mockGameLister{games: []models.Game{
		{ID: "id-1", Title: "Hades", SteamURL: "https://store.steampowered.com/app/1145360", NuuvemURL: &nuuvemURL},
		{ID: "id-2", Title: "Celeste", SteamURL: "https://store.steampowered.com/app/504230"},
	}}
	enqueuer := &mockEnqueuer{}
	h := NewHandlers(&mockProcessor{}, &mockDiscoverer{}, lister, enqueuer, &mockDeliverer{})

	if err := h.HandleEnqueueScrapes(context.Background(), queue.NewEnqueueScrapesTask()); err != nil {
		t.Fatalf("HandleEnqueueScrapes returned unexpected error: %v", err)
	}

	if len(enqueuer.jobs) != 2 {
		t.Fatalf("Expected 2 enqueued jobs, got %d", len(enqueuer.jobs))
	}
	if enqueuer.jobs[0].NuuvemURL == nil || *enqueuer.jobs[0].NuuvemURL != nuuvemURL {
		t.Errorf("Expected nuuvem URL snapshot in job, got %+v", enqueuer.jobs[0])
	}
	if enqueuer.jobs[1].NuuvemURL != nil {
		t.Errorf("Expected no nuuvem URL for Celeste, got %+v", enqueuer.jobs[1])
	}
}

func TestHandleEnqueueScrapes_FailedEnqueueSkipsGameOnly(t *testing.T) {
	lister := &mockGameLister{games: []models.Game{
		{ID: "id-1", Title: "Hades", SteamURL: "https://store.steampowered.com/app/1145360"},
		{ID: "id-2", Title: "Celeste", SteamURL: "https://store.steampowered.com/app/504230"},
	}}
	enqueuer := &mockEnqueuer{failOn: "id-1"}
	h := NewHandlers(&mockProcessor{}, &mockDiscoverer{}, lister, enqueuer, &mockDeliverer{})

	if err := h.HandleEnqueueScrapes(context.Background(), queue.NewEnqueueScrapesTask()); err != nil {
		t.Fatalf("A single failed enqueue must not fail the fan-out, got: %v", err)
	}
	if len(enqueuer.jobs) != 1 || enqueuer.jobs[0].GameID != "id-2" {
		t.Errorf("Expected only id-2 enqueued, got %+v", enqueuer.jobs)
	}
}

func TestHandleDiscoverGames(t *testing.T) {
	disc := &mockDiscoverer{}
	h := NewHandlers(&mockProcessor{}, disc, &mockGameLister{}, &mockEnqueuer{}, &mockDeliverer{})

	if err := h.HandleDiscoverGames(context.Background(), queue.NewDiscoverTask()); err != nil {
		t.Fatalf("HandleDiscoverGames returned unexpected error: %v", err)
	}
	if disc.calls != 1 {
		t.Errorf("Expected 1 discovery run, got %d", disc.calls)
	}
}

func TestHandleNotification(t *testing.T) {
	deliverer := &mockDeliverer{}
	h := NewHandlers(&mockProcessor{}, &mockDiscoverer{}, &mockGameLister{}, &mockEnqueuer{}, deliverer)

	event := models.NotificationEvent{GameID: "id-1", GameTitle: "Hades", Platform: models.PlatformSteam}
	payload, _ := json.Marshal(event)
	if err := h.HandleNotification(context.Background(), asynq.NewTask(queue.TypeNotification, payload)); err != nil {
		t.Fatalf("HandleNotification returned unexpected error: %v", err)
	}
	if len(deliverer.events) != 1 || deliverer.events[0].GameTitle != "Hades" {
		t.Errorf("Expected event delivered, got %+v", deliverer.events)
	}
}

func TestHandleNotification_BadPayloadSkipsRetry(t *testing.T) {
	h := NewHandlers(&mockProcessor{}, &mockDiscoverer{}, &mockGameLister{}, &mockEnqueuer{}, &mockDeliverer{})

	err := h.HandleNotification(context.Background(), asynq.NewTask(queue.TypeNotification, []byte("nope")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("Expected SkipRetry for malformed payload, got: %v", err)
	}
}
