package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/gamewatch-dev/gamewatch/internal/config"
	"github.com/gamewatch-dev/gamewatch/internal/discovery"
	"github.com/gamewatch-dev/gamewatch/internal/notifier"
	"github.com/gamewatch-dev/gamewatch/internal/processor"
	"github.com/gamewatch-dev/gamewatch/internal/queue"
	"github.com/gamewatch-dev/gamewatch/internal/scraper"
	"github.com/gamewatch-dev/gamewatch/internal/storage"
	"github.com/gamewatch-dev/gamewatch/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on process environment")
	}

	slog.Info("Starting gamewatch worker...")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("Critical error connecting to database", "error", err)
		os.Exit(1)
	}
	if err := storage.Migrate(db); err != nil {
		slog.Error("Critical error migrating schema", "error", err)
		os.Exit(1)
	}

	selectors, err := scraper.LoadConfig()
	if err != nil {
		slog.Warn("Failed to load selectors. Using defaults.", "error", err)
		selectors = scraper.DefaultSelectors()
	}

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	client := asynq.NewClient(redisOpt)
	defer client.Close()

	fetcher := scraper.NewFetcher(cfg.ScrapeTimeout, cfg.ScrapeRatePerSec)
	steam := scraper.NewSteam(fetcher, selectors)
	nuuvem := scraper.NewNuuvem(fetcher, selectors)

	games := storage.NewGameRepository(db)
	prices := storage.NewPriceRepository(db)
	ignore := storage.NewIgnoreRepository(db)

	scrapeQueue := queue.NewGamePriceQueue(client)
	notifyQueue := queue.NewNotificationQueue(client)

	proc := processor.New(steam, nuuvem, games, prices, notifyQueue)
	disc := discovery.New(steam, games, ignore, cfg.DiscoveryPages)
	deliverer := notifier.New(cfg.NotificationWebhookURL)

	handlers := worker.NewHandlers(proc, disc, games, scrapeQueue, deliverer)
	srv := worker.NewServer(redisOpt, cfg.WorkerConcurrency)

	scheduler, err := worker.NewScheduler(redisOpt, cfg.DiscoveryCron, cfg.ScrapeCron)
	if err != nil {
		slog.Error("Critical error building scheduler", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(worker.NewMux(handlers)); err != nil {
		slog.Error("Critical error starting worker pool", "error", err)
		os.Exit(1)
	}
	if err := scheduler.Start(); err != nil {
		slog.Error("Critical error starting scheduler", "error", err)
		os.Exit(1)
	}

	triggers := &triggerServer{client: client}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("/run/discovery", triggers.runDiscovery)
	mux.HandleFunc("/run/scrapes", triggers.runScrapes)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		slog.Info("Received signal, shutting down gracefully...", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
		scheduler.Shutdown()
		srv.Shutdown()
	}()

	slog.Info("Listening on port", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Failed to listen and serve", "error", err)
		os.Exit(1)
	}
	slog.Info("Worker stopped.")
}

// triggerServer lets operators kick off a discovery crawl or scrape fan-out
// without waiting for the next scheduled run.
type triggerServer struct {
	client *asynq.Client
}

func (s *triggerServer) runDiscovery(w http.ResponseWriter, r *http.Request) {
	s.enqueue(w, r, queue.NewDiscoverTask(), "Discovery enqueued.")
}

func (s *triggerServer) runScrapes(w http.ResponseWriter, r *http.Request) {
	s.enqueue(w, r, queue.NewEnqueueScrapesTask(), "Scrape fan-out enqueued.")
}

func (s *triggerServer) enqueue(w http.ResponseWriter, r *http.Request, task *asynq.Task, msg string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, err := s.client.EnqueueContext(r.Context(), task); err != nil {
		slog.Error("Failed to enqueue trigger task", "type", task.Type(), "error", err)
		http.Error(w, "enqueue failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintln(w, msg)
}
