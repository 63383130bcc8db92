package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDiscord(urls map[string]string) *Discord {
	return &Discord{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		urls:       urls,
	}
}

func TestPostSendsEmbed(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := newTestDiscord(map[string]string{"pir": srv.URL})
	err := d.Post(context.Background(), "pir", "Price Is Right", []string{"line one", "line two"})
	require.NoError(t, err)

	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "Price Is Right", got.Embeds[0].Title)
	assert.Equal(t, "line one\nline two", got.Embeds[0].Description)
}

func TestPostTruncatesLongDescriptions(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := newTestDiscord(map[string]string{"pir": srv.URL})
	err := d.Post(context.Background(), "pir", "t", []string{strings.Repeat("x", 5000)})
	require.NoError(t, err)

	assert.Len(t, []rune(got.Embeds[0].Description), maxDescriptionRunes)
	assert.True(t, strings.HasSuffix(got.Embeds[0].Description, "..."))
}

func TestPostRejectsUnknownKey(t *testing.T) {
	d := newTestDiscord(nil)
	err := d.Post(context.Background(), "survivor", "t", nil)
	assert.ErrorContains(t, err, "no webhook configured")
}

func TestPostSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := newTestDiscord(map[string]string{"pir": srv.URL})
	err := d.Post(context.Background(), "pir", "t", []string{"x"})
	assert.ErrorContains(t, err, "status 429")
}

func TestNewDiscordResolvesEnv(t *testing.T) {
	t.Setenv("TEST_PIR_HOOK", "https://discord.test/hook")

	d := NewDiscord(map[string]string{"pir": "TEST_PIR_HOOK", "survivor": "TEST_UNSET_HOOK"})

	assert.True(t, d.Enabled("pir"))
	assert.False(t, d.Enabled("survivor"))
}
