package discovery

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gamewatch-dev/gamewatch/internal/models"
	"github.com/gamewatch-dev/gamewatch/internal/scraper"
	"github.com/gamewatch-dev/gamewatch/internal/util"
)

const (
	// Listing pages fetched in parallel per search filter.
	pageFetchConcurrency = 4
	// Retries per listing page before giving the page up for this run.
	pageFetchRetries = 2
)

// ListingScraper walks paginated storefront search results.
type ListingScraper interface {
	FetchListing(ctx context.Context, filter scraper.SearchFilter, page int) ([]scraper.Listing, error)
}

// GameStore is the slice of the game repository discovery needs.
type GameStore interface {
	FindByTitle(ctx context.Context, title string) (*models.Game, error)
	Insert(ctx context.Context, game *models.Game) error
}

// IgnoreList answers whether a title must never become a tracked game.
type IgnoreList interface {
	Contains(ctx context.Context, title string) (bool, error)
}

// Service finds previously untracked games by crawling storefront search
// listings. Runs are idempotent: a title is inserted at most once, and
// concurrent runs resolve duplicate-insert races through the repository's
// uniqueness check rather than by serializing themselves.
type Service struct {
	scraper ListingScraper
	games   GameStore
	ignore  IgnoreList
	filters []scraper.SearchFilter
	pages   int
}

func New(s ListingScraper, games GameStore, ignore IgnoreList, pages int) *Service {
	return &Service{
		scraper: s,
		games:   games,
		ignore:  ignore,
		filters: []scraper.SearchFilter{scraper.FilterTopSellers, scraper.FilterRelevance},
		pages:   pages,
	}
}

// DiscoverGames crawls every configured filter and page, then inserts each
// unseen, non-ignored title. Per-page and per-title failures are logged and
// skipped; a single bad page never aborts the run.
func (s *Service) DiscoverGames(ctx context.Context) error {
	var candidates []scraper.Listing
	for _, filter := range s.filters {
		slog.Info("Crawling steam search listings", "filter", string(filter), "pages", s.pages)
		candidates = append(candidates, s.collectListings(ctx, filter)...)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	added := 0
	for _, candidate := range candidates {
		inserted, err := s.insertIfNew(ctx, candidate)
		if err != nil {
			slog.Warn("Skipping candidate after repository error",
				"title", candidate.Title, "error", err)
			continue
		}
		if inserted {
			added++
		}
	}

	slog.Info("Discovery finished", "candidates", len(candidates), "added", added)
	return nil
}

// collectListings fetches all pages for one filter, keeping listing order
// stable: pages are fetched in parallel but flattened in page order.
func (s *Service) collectListings(ctx context.Context, filter scraper.SearchFilter) []scraper.Listing {
	perPage := make([][]scraper.Listing, s.pages)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pageFetchConcurrency)
	for page := 1; page <= s.pages; page++ {
		page := page
		g.Go(func() error {
			listings, err := s.fetchPage(gctx, filter, page)
			if err != nil {
				slog.Warn("Giving up on listing page for this run",
					"filter", string(filter), "page", page, "error", err)
				return nil
			}
			perPage[page-1] = listings
			return nil
		})
	}
	_ = g.Wait()

	var flattened []scraper.Listing
	for _, listings := range perPage {
		flattened = append(flattened, listings...)
	}
	return flattened
}

func (s *Service) fetchPage(ctx context.Context, filter scraper.SearchFilter, page int) ([]scraper.Listing, error) {
	var listings []scraper.Listing
	err := util.RetryWithBackoff(ctx, pageFetchRetries, func(_ int) error {
		var fetchErr error
		listings, fetchErr = s.scraper.FetchListing(ctx, filter, page)
		return fetchErr
	})
	return listings, err
}

// insertIfNew creates a game for the candidate unless its title is already
// tracked or ignored. A lost insert race counts as "already tracked".
func (s *Service) insertIfNew(ctx context.Context, candidate scraper.Listing) (bool, error) {
	existing, err := s.games.FindByTitle(ctx, candidate.Title)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	ignored, err := s.ignore.Contains(ctx, candidate.Title)
	if err != nil {
		return false, err
	}
	if ignored {
		return false, nil
	}

	game := &models.Game{
		ID:       uuid.NewString(),
		Title:    candidate.Title,
		SteamURL: candidate.URL,
	}
	if err := s.games.Insert(ctx, game); err != nil {
		if errors.Is(err, models.ErrGameExists) {
			// Another run inserted it between our check and the insert.
			return false, nil
		}
		return false, err
	}
	slog.Info("New game tracked", "title", game.Title)
	return true, nil
}
