package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gamewatch-dev/gamewatch/internal/models"
	"github.com/gamewatch-dev/gamewatch/internal/scraper"
)

// ErrMissingGame marks a scrape job whose game no longer exists. Retrying
// won't fix it, so the worker must drop the job instead of requeueing.
var ErrMissingGame = errors.New("game not found for scrape job")

// PriceJobProcessor runs one scrape job end to end: fetch current prices
// from both platforms, append the observation, and raise at most one
// lowest-price notification.
type PriceJobProcessor struct {
	steam         scraper.PriceScraper
	nuuvem        scraper.PriceScraper
	games         GameStore
	prices        PriceStore
	notifications Notifier
}

func New(steam, nuuvem scraper.PriceScraper, games GameStore, prices PriceStore, notifications Notifier) *PriceJobProcessor {
	return &PriceJobProcessor{
		steam:         steam,
		nuuvem:        nuuvem,
		games:         games,
		prices:        prices,
		notifications: notifications,
	}
}

// ProcessScrapeJob handles one queued price check.
//
// A Steam fetch failure fails the whole job before anything is persisted;
// the queue redelivers it. A delisted game (nil Steam price) completes the
// job with no observation. A Nuuvem fetch failure only degrades the run:
// that platform stays untracked for this observation.
func (p *PriceJobProcessor) ProcessScrapeJob(ctx context.Context, job models.ScrapePriceJob) error {
	steamPrice, err := p.steam.FetchPrice(ctx, job.SteamURL)
	if err != nil {
		return fmt.Errorf("fetching steam price for game %s: %w", job.GameID, err)
	}

	var nuuvemPrice *float64
	if job.NuuvemURL != nil {
		nuuvemPrice, err = p.nuuvem.FetchPrice(ctx, *job.NuuvemURL)
		if err != nil {
			slog.Warn("Nuuvem fetch failed, observation will omit nuuvem price",
				"gameID", job.GameID, "error", err)
			nuuvemPrice = nil
		}
	}

	if steamPrice == nil {
		slog.Info("Game delisted on steam, skipping observation", "gameID", job.GameID)
		return nil
	}

	game, err := p.games.FindByID(ctx, job.GameID)
	if err != nil {
		return fmt.Errorf("resolving game %s: %w", job.GameID, err)
	}
	if game == nil {
		slog.Error("Scrape job references unknown game", "gameID", job.GameID)
		return fmt.Errorf("game %s: %w", job.GameID, ErrMissingGame)
	}

	previous, err := p.prices.Latest(ctx, game.ID)
	if err != nil {
		return fmt.Errorf("reading last price for game %s: %w", game.ID, err)
	}

	observation := &models.GamePrice{
		GameID:      game.ID,
		SteamPrice:  *steamPrice,
		NuuvemPrice: nuuvemPrice,
	}
	if err := p.prices.Insert(ctx, observation); err != nil {
		return fmt.Errorf("persisting price observation for game %s: %w", game.ID, err)
	}

	p.notifyIfLowest(ctx, game, previous, *steamPrice, nuuvemPrice)
	return nil
}

// notifyIfLowest emits at most one notification when a current price is
// strictly lower than every price seen in the previous observation and the
// other platform's current price. Equal prices never notify.
//
// TODO: confirm with product whether a nuuvem drop that beats its own
// history but not the cross-platform minimum should also notify; today it
// stays silent while the equivalent steam drop does notify.
func (p *PriceJobProcessor) notifyIfLowest(ctx context.Context, game *models.Game, previous *models.GamePrice, steamPrice float64, nuuvemPrice *float64) {
	if previous == nil {
		return
	}

	if nuuvemPrice != nil && previous.NuuvemPrice != nil {
		if *nuuvemPrice < min(*previous.NuuvemPrice, previous.SteamPrice, steamPrice) {
			p.emit(ctx, models.NotificationEvent{
				GameID:        game.ID,
				GameTitle:     game.Title,
				Platform:      models.PlatformNuuvem,
				CurrentPrice:  *nuuvemPrice,
				PreviousPrice: *previous.NuuvemPrice,
				GameURL:       game.URLFor(models.PlatformNuuvem),
			})
			return
		}

		if steamPrice < min(*previous.NuuvemPrice, previous.SteamPrice, *nuuvemPrice) {
			p.emit(ctx, models.NotificationEvent{
				GameID:        game.ID,
				GameTitle:     game.Title,
				Platform:      models.PlatformSteam,
				CurrentPrice:  steamPrice,
				PreviousPrice: previous.SteamPrice,
				GameURL:       game.SteamURL,
			})
			return
		}
	}

	// Covers games that never had a nuuvem price on record.
	if steamPrice < previous.SteamPrice {
		p.emit(ctx, models.NotificationEvent{
			GameID:        game.ID,
			GameTitle:     game.Title,
			Platform:      models.PlatformSteam,
			CurrentPrice:  steamPrice,
			PreviousPrice: previous.SteamPrice,
			GameURL:       game.SteamURL,
		})
	}
}

// emit hands the event to the notification queue. Enqueue failures are
// logged and swallowed: the observation is already persisted and a retried
// job would double-record it.
func (p *PriceJobProcessor) emit(ctx context.Context, event models.NotificationEvent) {
	if err := p.notifications.Enqueue(ctx, event); err != nil {
		slog.Warn("Failed to enqueue lowest-price notification",
			"gameID", event.GameID, "platform", event.Platform, "error", err)
		return
	}
	slog.Info("Lowest price seen, notification enqueued",
		"game", event.GameTitle,
		"platform", event.Platform,
		"previousPrice", event.PreviousPrice,
		"currentPrice", event.CurrentPrice)
}
