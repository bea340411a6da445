package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gamewatch-dev/gamewatch/internal/util"
)

const steamSearchURL = "https://store.steampowered.com/search/"

// Steam scrapes the Steam store: product pages for prices and search
// listings for game discovery.
type Steam struct {
	fetcher   *Fetcher
	selectors SteamSelectors
}

var _ PriceScraper = (*Steam)(nil)

func NewSteam(f *Fetcher, cfg SelectorConfig) *Steam {
	return &Steam{fetcher: f, selectors: cfg.Steam}
}

// FetchPrice returns the current price shown on the product page, preferring
// the discounted price when a sale is active. A page without a purchase area
// or price means the game is delisted or not individually sold; that is a
// nil price, not an error.
func (s *Steam) FetchPrice(ctx context.Context, productURL string) (*float64, error) {
	doc, err := s.fetcher.FetchDocument(ctx, productURL)
	if err != nil {
		return nil, err
	}

	purchase := doc.Find(s.selectors.PurchaseArea).First()
	if purchase.Length() == 0 {
		return nil, nil
	}

	priceText := strings.TrimSpace(purchase.Find(s.selectors.DiscountPrice).First().Text())
	if priceText == "" {
		priceText = strings.TrimSpace(purchase.Find(s.selectors.Price).First().Text())
	}
	if priceText == "" {
		return nil, nil
	}

	price, err := util.ParsePrice(priceText)
	if err != nil {
		return nil, fmt.Errorf("%w: steam price on %s: %v", ErrScrapeFailed, productURL, err)
	}
	return &price, nil
}

// FetchListing returns the (title, url) pairs on one page of Steam search
// results for the given filter. Pages are 1-indexed. Titles are normalized
// and product URLs have their query string stripped.
func (s *Steam) FetchListing(ctx context.Context, filter SearchFilter, page int) ([]Listing, error) {
	return s.fetchListingFrom(ctx, s.listingURL(filter, page))
}

func (s *Steam) fetchListingFrom(ctx context.Context, pageURL string) ([]Listing, error) {
	doc, err := s.fetcher.FetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var listings []Listing
	doc.Find(s.selectors.SearchRow).Each(func(_ int, row *goquery.Selection) {
		title := util.NormalizeTitle(row.Find(s.selectors.SearchTitle).Text())
		href, ok := row.Attr("href")
		if title == "" || !ok || href == "" {
			return
		}
		// Steam appends tracking parameters to result links
		if i := strings.Index(href, "/?"); i >= 0 {
			href = href[:i]
		}
		listings = append(listings, Listing{Title: title, URL: href})
	})
	return listings, nil
}

// listingURL builds the search URL for one results page: Brazilian store,
// games category only, free-to-play and bundles hidden.
func (s *Steam) listingURL(filter SearchFilter, page int) string {
	q := url.Values{}
	q.Set("cc", "br")
	q.Set("category1", "998")
	q.Set("hidef2p", "1")
	q.Set("ndl", "1")
	q.Set("page", strconv.Itoa(page))
	if filter != FilterRelevance {
		q.Set("filter", string(filter))
	}
	return steamSearchURL + "?" + q.Encode()
}
