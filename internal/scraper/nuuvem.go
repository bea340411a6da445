package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/gamewatch-dev/gamewatch/internal/util"
)

// Nuuvem scrapes product prices from the Nuuvem store.
type Nuuvem struct {
	fetcher   *Fetcher
	selectors NuuvemSelectors
}

var _ PriceScraper = (*Nuuvem)(nil)

func NewNuuvem(f *Fetcher, cfg SelectorConfig) *Nuuvem {
	return &Nuuvem{fetcher: f, selectors: cfg.Nuuvem}
}

// FetchPrice returns the current price on the product page, or nil when the
// page carries the unavailable banner or shows no price at all.
func (n *Nuuvem) FetchPrice(ctx context.Context, productURL string) (*float64, error) {
	doc, err := n.fetcher.FetchDocument(ctx, productURL)
	if err != nil {
		return nil, err
	}

	if doc.Find(n.selectors.Unavailable).Length() > 0 {
		return nil, nil
	}

	priceText := strings.TrimSpace(doc.Find(n.selectors.Price).First().Text())
	if priceText == "" {
		return nil, nil
	}

	price, err := util.ParsePrice(priceText)
	if err != nil {
		return nil, fmt.Errorf("%w: nuuvem price on %s: %v", ErrScrapeFailed, productURL, err)
	}
	return &price, nil
}
