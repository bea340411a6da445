package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var priceDigitsRegex = regexp.MustCompile(`[\d.,]+`)

// ParsePrice extracts a numeric amount from storefront price text such as
// "R$ 49,99" or "R$ 1.299,90". Brazilian formatting uses "." as the
// thousands separator and "," as the decimal separator; plain "49.99" is
// accepted too.
func ParsePrice(text string) (float64, error) {
	raw := priceDigitsRegex.FindString(text)
	if raw == "" {
		return 0, fmt.Errorf("no numeric amount in price text %q", text)
	}

	if strings.Contains(raw, ",") {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	}

	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price text %q: %w", text, err)
	}
	return price, nil
}

// NormalizeTitle strips storefront decoration glyphs from a scraped title.
func NormalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "™", "")
	title = strings.ReplaceAll(title, "®", "")
	return strings.TrimSpace(title)
}

// FormatBRL renders a price the way the storefronts display it, e.g. "R$ 49,99".
func FormatBRL(price float64) string {
	return "R$ " + strings.Replace(strconv.FormatFloat(price, 'f', 2, 64), ".", ",", 1)
}
