package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gamewatch-dev/gamewatch/internal/models"
	"github.com/gamewatch-dev/gamewatch/internal/util"
)

const (
	colorSmallDrop = 3092790  // #2F3136
	colorGoodDrop  = 16753920 // #FFA500
	colorBigDrop   = 16711680 // #FF0000

	dropThresholdGood = 0.10
	dropThresholdBig  = 0.25
)

// Client posts lowest-price events to a Discord-compatible webhook. It is
// the consumer end of the notification queue: a delivery error fails the
// task so the queue redelivers it, but never reaches the producing job.
type Client struct {
	webhookURL string
	client     *http.Client
}

func New(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Deliver posts one lowest-price event. With no webhook configured the
// event is dropped after logging; that is a deployment choice, not a fault.
func (c *Client) Deliver(ctx context.Context, event models.NotificationEvent) error {
	if c.webhookURL == "" {
		slog.Info("No notification webhook configured, dropping event",
			"game", event.GameTitle, "platform", event.Platform)
		return nil
	}

	payload := webhookPayload{Embeds: []embed{formatEventToEmbed(event)}}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting notification webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	bodyBytes, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("webhook status: %s, body: %s", resp.Status, string(bodyBytes))
}

// Internal structures
type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []embedField `json:"fields,omitempty"`
}

func formatEventToEmbed(event models.NotificationEvent) embed {
	title := fmt.Sprintf("%s at %s on %s", event.GameTitle, util.FormatBRL(event.CurrentPrice), event.Platform)
	description := fmt.Sprintf("Lowest price seen across tracked stores (was %s)", util.FormatBRL(event.PreviousPrice))

	return embed{
		Title:       title,
		URL:         event.GameURL,
		Description: description,
		Color:       dropColor(event.PreviousPrice, event.CurrentPrice),
		Fields: []embedField{
			{Name: "Previous", Value: util.FormatBRL(event.PreviousPrice), Inline: true},
			{Name: "Now", Value: util.FormatBRL(event.CurrentPrice), Inline: true},
		},
	}
}

func dropColor(previous, current float64) int {
	if previous <= 0 {
		return colorSmallDrop
	}
	drop := (previous - current) / previous
	if drop >= dropThresholdBig {
		return colorBigDrop
	}
	if drop >= dropThresholdGood {
		return colorGoodDrop
	}
	return colorSmallDrop
}
