package scraper

import (
	_ "embed"
	"log/slog"
	"os"
)

//go:embed selectors.json
var embeddedSelectors []byte

// LoadConfig resolves the CSS selector set for the storefront scrapers.
// SELECTORS_PATH may point at a JSON file to override the embedded set
// without a rebuild, for when the store pages change markup.
func LoadConfig() (SelectorConfig, error) {
	if path := os.Getenv("SELECTORS_PATH"); path != "" {
		sel, err := LoadSelectors(path)
		if err == nil {
			slog.Info("Loaded selector overrides", "path", path)
			return sel, nil
		}
		slog.Warn("Selector override file rejected, using embedded set", "path", path, "error", err)
	}
	return LoadSelectorsFromBytes(embeddedSelectors)
}
