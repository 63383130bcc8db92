package espn

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kthorson/sidepotbot/internal/config"
)

const (
	primaryHost = "https://fantasy.espn.com"
	altHost     = "https://lm-api-reads.fantasy.espn.com"

	// ESPN serves an HTML bot-check page to unrecognized clients, so every
	// request carries a desktop browser profile.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

type Client struct {
	httpClient *http.Client
	Config     config.ESPNAPI
	hosts      []string
	retryWait  time.Duration
}

func NewClient(cfg config.ESPNAPI) *Client {
	hosts := []string{primaryHost, altHost}
	if cfg.UseAltHost {
		hosts = []string{altHost, primaryHost}
	}
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		Config:     cfg,
		hosts:      hosts,
		retryWait:  800 * time.Millisecond,
	}
}

// Get fetches league JSON for the configured season and league. Each host
// is tried in priority order with one retry per host; a response only
// counts when it is HTTP 200 with a JSON content type, anything else fails
// over with a sanitized body snippet kept for the final error.
func (c *Client) Get(endpoint string, params, headers map[string]string, result interface{}) error {
	var lastErr error
	for _, host := range c.hosts {
		url := fmt.Sprintf("%s/apis/v3/games/ffl/seasons/%d/segments/0/leagues/%d%s",
			host, c.Config.Season, c.Config.LeagueID, normalizePath(endpoint))

		for attempt := 0; attempt < 2; attempt++ {
			if attempt > 0 {
				time.Sleep(c.retryWait)
			}
			err := c.getOnce(url, params, headers, result)
			if err == nil {
				return nil
			}
			lastErr = err
		}
	}
	return fmt.Errorf("espn api request failed: %w", lastErr)
}

func (c *Client) getOnce(url string, params, headers map[string]string, result interface{}) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	q := req.URL.Query()
	for key, value := range params {
		for _, v := range strings.Split(value, ",") {
			q.Add(key, strings.TrimSpace(v))
		}
	}
	req.URL.RawQuery = q.Encode()

	c.setBrowserHeaders(req)
	c.setCookies(req)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode != http.StatusOK || !strings.Contains(strings.ToLower(contentType), "json") {
		return fmt.Errorf("unexpected response (status=%d content_type=%q): %s",
			resp.StatusCode, contentType, bodySnippet(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://fantasy.espn.com/")
	req.Header.Set("Origin", "https://fantasy.espn.com")
	req.Header.Set("Cache-Control", "no-cache")
}

func (c *Client) setCookies(req *http.Request) {
	cookie := fmt.Sprintf("SWID=%s; espn_s2=%s", c.Config.SWID, c.Config.ESPNS2)
	req.Header.Set("Cookie", cookie)
}

func normalizePath(path string) string {
	if path == "" || strings.HasPrefix(path, "/") || strings.HasPrefix(path, "?") {
		return path
	}
	return "/" + path
}

// bodySnippet compacts the response body to a short single line safe for
// error messages and logs.
func bodySnippet(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	compact := strings.Join(strings.Fields(string(raw)), " ")
	if len(compact) > 200 {
		compact = compact[:200]
	}
	return compact
}
