// Package quotes holds the thin proxy clients to third-party data providers:
// Yahoo Finance for stock quotes, MFapi.in for Indian mutual fund NAVs, and
// OMDb for movie metadata. They are plain JSON-over-HTTP collaborators; the
// dashboard passes their payloads through with minimal reshaping.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// httpDoer is the subset of http.Client the providers need; tests substitute
// an httptest server-backed client instead.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func defaultClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

// getJSON fetches url and decodes the JSON body into out.
func getJSON(ctx context.Context, client httpDoer, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("getJSON: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("getJSON: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("getJSON: %s returned %d: %s", url, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("getJSON: decode %s: %w", url, err)
	}
	return nil
}
