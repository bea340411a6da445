package scraper

import (
	"encoding/json"
	"fmt"
	"os"
)

type SelectorConfig struct {
	Steam  SteamSelectors  `json:"steam"`
	Nuuvem NuuvemSelectors `json:"nuuvem"`
}

type SteamSelectors struct {
	PurchaseArea  string `json:"purchase_area"`  // wrapper present only for buyable products
	Price         string `json:"price"`          // regular price
	DiscountPrice string `json:"discount_price"` // final price when a discount is active
	SearchRow     string `json:"search_row"`     // one result row on a search listing page
	SearchTitle   string `json:"search_title"`   // title element inside a search row
}

type NuuvemSelectors struct {
	Price       string `json:"price"`
	Unavailable string `json:"unavailable"` // banner shown for delisted products
}

// LoadSelectors loads the selector configuration from the specified JSON file.
func LoadSelectors(path string) (SelectorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to read selector config file: %w", err)
	}

	return LoadSelectorsFromBytes(data)
}

// LoadSelectorsFromBytes parses selector configuration from raw JSON bytes.
// This supports loading from embedded data via go:embed.
func LoadSelectorsFromBytes(data []byte) (SelectorConfig, error) {
	var config SelectorConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to parse selector config JSON: %w", err)
	}

	return config, nil
}

// DefaultSelectors returns the fallback configuration if no JSON file is loaded.
func DefaultSelectors() SelectorConfig {
	return SelectorConfig{
		Steam: SteamSelectors{
			PurchaseArea:  ".game_area_purchase_game_wrapper",
			Price:         ".game_purchase_price",
			DiscountPrice: ".discount_final_price",
			SearchRow:     "a.search_result_row",
			SearchTitle:   "span.title",
		},
		Nuuvem: NuuvemSelectors{
			Price:       ".product-price--val",
			Unavailable: ".product-unavailable",
		},
	}
}
