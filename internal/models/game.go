package models

import (
	"errors"
	"time"
)

// ErrGameExists is returned when attempting to insert a game whose title is already tracked.
var ErrGameExists = errors.New("game already exists")

// Platform identifies a storefront a game is tracked on.
type Platform string

const (
	PlatformSteam  Platform = "Steam"
	PlatformNuuvem Platform = "Nuuvem"
)

// Game is a tracked title with one product URL per storefront.
// Steam is the primary platform; a Nuuvem listing is optional.
type Game struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id" validate:"required,uuid4"`
	Title     string  `gorm:"size:255;uniqueIndex" json:"title" validate:"required"`
	SteamURL  string  `gorm:"size:500" json:"steamUrl" validate:"required,url"`
	NuuvemURL *string `gorm:"size:500" json:"nuuvemUrl,omitempty" validate:"omitempty,url"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// URLFor returns the game's product URL for the given platform,
// or an empty string if the game is not listed there.
func (g Game) URLFor(platform Platform) string {
	switch platform {
	case PlatformSteam:
		return g.SteamURL
	case PlatformNuuvem:
		if g.NuuvemURL != nil {
			return *g.NuuvemURL
		}
	}
	return ""
}

// GamePrice is one timestamped price observation for a game.
// A nil NuuvemPrice means the game wasn't tracked on Nuuvem for that run,
// which is not the same as a price of zero. Rows are append-only.
type GamePrice struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	GameID      string   `gorm:"size:36;index" json:"gameId"`
	SteamPrice  float64  `json:"steamPrice"`
	NuuvemPrice *float64 `json:"nuuvemPrice,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (GamePrice) TableName() string { return "game_prices" }

// IgnoreEntry marks a storefront title that must never become a tracked game.
type IgnoreEntry struct {
	ID    uint   `gorm:"primaryKey"`
	Title string `gorm:"size:255;uniqueIndex"`
}

func (IgnoreEntry) TableName() string { return "game_ignore_list" }

// ScrapePriceJob is the queue payload for a single game's price check.
// URLs are snapshotted at enqueue time.
type ScrapePriceJob struct {
	GameID    string  `json:"gameId" validate:"required"`
	SteamURL  string  `json:"steamUrl" validate:"required,url"`
	NuuvemURL *string `json:"nuuvemUrl,omitempty" validate:"omitempty,url"`
}

// NotificationEvent signals that a newly observed price is the lowest seen
// for a game across tracked platforms. At most one is produced per scrape job.
type NotificationEvent struct {
	GameID        string   `json:"gameId"`
	GameTitle     string   `json:"gameTitle"`
	Platform      Platform `json:"platform"`
	CurrentPrice  float64  `json:"currentPrice"`
	PreviousPrice float64  `json:"previousPrice"`
	GameURL       string   `json:"gameUrl"`
}
