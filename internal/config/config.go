package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	DatabaseDSN   string `validate:"required"`
	RedisAddr     string `validate:"required,hostname_port"`
	RedisPassword string
	Port          string `validate:"required,numeric"`

	// Outbound webhook for lowest-price notifications. Optional: when empty
	// the delivery worker drops events after logging them.
	NotificationWebhookURL string `validate:"omitempty,url"`

	DiscoveryPages    int           `validate:"gte=1,lte=100"`
	DiscoveryCron     string        `validate:"required"`
	ScrapeCron        string        `validate:"required"`
	ScrapeTimeout     time.Duration `validate:"gt=0"`
	ScrapeRatePerSec  float64       `validate:"gt=0"`
	WorkerConcurrency int           `validate:"gte=1"`
}

func Load() (*Config, error) {
	databaseDSN := os.Getenv("DATABASE_DSN")
	if databaseDSN == "" {
		return nil, fmt.Errorf("DATABASE_DSN environment variable is required but not set")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
		slog.Info("Defaulting to local Redis", "addr", redisAddr)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		slog.Info("Defaulting to port", "port", port)
	}

	webhookURL := os.Getenv("NOTIFICATION_WEBHOOK_URL")
	if webhookURL == "" {
		slog.Warn("NOTIFICATION_WEBHOOK_URL not set, lowest-price notifications will be dropped")
	}

	discoveryPages := 25
	if v := os.Getenv("DISCOVERY_PAGES"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DISCOVERY_PAGES %q: %w", v, err)
		}
		discoveryPages = parsed
	}

	discoveryCron := os.Getenv("DISCOVERY_CRON")
	if discoveryCron == "" {
		discoveryCron = "0 */6 * * *"
	}

	scrapeCron := os.Getenv("SCRAPE_CRON")
	if scrapeCron == "" {
		scrapeCron = "0 * * * *"
	}

	scrapeTimeoutStr := os.Getenv("SCRAPE_TIMEOUT")
	if scrapeTimeoutStr == "" {
		scrapeTimeoutStr = "30s"
	}
	scrapeTimeout, err := time.ParseDuration(scrapeTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SCRAPE_TIMEOUT %q: %w", scrapeTimeoutStr, err)
	}

	scrapeRate := 2.0
	if v := os.Getenv("SCRAPE_RATE_PER_SEC"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SCRAPE_RATE_PER_SEC %q: %w", v, err)
		}
		scrapeRate = parsed
	}

	workerConcurrency := 10
	if v := os.Getenv("WORKER_CONCURRENCY"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid WORKER_CONCURRENCY %q: %w", v, err)
		}
		workerConcurrency = parsed
	}

	cfg := &Config{
		DatabaseDSN:            databaseDSN,
		RedisAddr:              redisAddr,
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		Port:                   port,
		NotificationWebhookURL: webhookURL,
		DiscoveryPages:         discoveryPages,
		DiscoveryCron:          discoveryCron,
		ScrapeCron:             scrapeCron,
		ScrapeTimeout:          scrapeTimeout,
		ScrapeRatePerSec:       scrapeRate,
		WorkerConcurrency:      workerConcurrency,
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
