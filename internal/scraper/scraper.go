package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// ErrScrapeFailed categorizes network and parse failures while fetching a
// storefront page. It is distinct from a delisted product, which FetchPrice
// reports as a nil price with no error.
var ErrScrapeFailed = errors.New("scrape failed")

const userAgent = "Mozilla/5.0 (compatible; gamewatch/1.0)"

// PriceScraper fetches a game's current price given its product page URL.
// A nil price means the product is unavailable or delisted.
type PriceScraper interface {
	FetchPrice(ctx context.Context, productURL string) (*float64, error)
}

// Listing is one (title, url) pair found on a storefront search page.
type Listing struct {
	Title string
	URL   string
}

// SearchFilter selects which storefront search ordering a discovery pass walks.
type SearchFilter string

const (
	FilterTopSellers SearchFilter = "globaltopsellers"
	FilterRelevance  SearchFilter = "relevance"
)

// Fetcher is the shared HTTP layer for all storefront scrapers. Requests are
// paced by a token-bucket limiter so discovery crawls don't hammer the sites.
type Fetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewFetcher(timeout time.Duration, ratePerSec float64) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}
}

// FetchDocument fetches the URL and parses the body as HTML.
// All failures wrap ErrScrapeFailed.
func (f *Fetcher) FetchDocument(ctx context.Context, urlStr string) (*goquery.Document, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL %s: %v", ErrScrapeFailed, urlStr, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("%w: invalid URL scheme %s: only http and https allowed", ErrScrapeFailed, parsedURL.Scheme)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScrapeFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request for %s: %v", ErrScrapeFailed, urlStr, err)
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrScrapeFailed, urlStr, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetching %s: status code %d", ErrScrapeFailed, urlStr, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrScrapeFailed, urlStr, err)
	}
	return doc, nil
}
