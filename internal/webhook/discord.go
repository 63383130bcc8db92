// Package webhook posts report summaries to Discord channels. Webhook URLs
// are never stored in the league file, only the names of the environment
// variables that hold them.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// Discord embed descriptions are capped at 4096 characters; staying a bit
// under leaves room for the truncation marker.
const maxDescriptionRunes = 4000

type Discord struct {
	httpClient *http.Client
	urls       map[string]string
}

// NewDiscord resolves each configured report key to a webhook URL via the
// named environment variables. Keys whose variable is unset are skipped
// with a warning so a league can enable hooks one report at a time.
func NewDiscord(hooks map[string]string) *Discord {
	urls := map[string]string{}
	for key, envName := range hooks {
		url := strings.TrimSpace(os.Getenv(envName))
		if url == "" {
			slog.Warn("webhook env var not set, skipping", "report", key, "env", envName)
			continue
		}
		urls[key] = url
	}
	return &Discord{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		urls:       urls,
	}
}

// Enabled reports whether a webhook is configured for the report key.
func (d *Discord) Enabled(key string) bool {
	return d.urls[key] != ""
}

type embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type payload struct {
	Embeds []embed `json:"embeds"`
}

// Post sends one embed with the joined lines as its description.
func (d *Discord) Post(ctx context.Context, key, title string, lines []string) error {
	url := d.urls[key]
	if url == "" {
		return fmt.Errorf("no webhook configured for report %q", key)
	}

	body, err := json.Marshal(payload{Embeds: []embed{{
		Title:       title,
		Description: truncate(strings.Join(lines, "\n")),
	}}})
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

func truncate(description string) string {
	runes := []rune(description)
	if len(runes) <= maxDescriptionRunes {
		return description
	}
	return string(runes[:maxDescriptionRunes-3]) + "..."
}
