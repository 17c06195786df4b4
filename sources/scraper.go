/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apexlabs/groundcheck/provider/retry"
)

// FetchMode selects the scraping collaborator's extraction path.
type FetchMode string

const (
	// ModePage extracts the main text of a web page.
	ModePage FetchMode = "page"
	// ModeTranscript retrieves a video transcript.
	ModeTranscript FetchMode = "transcript"
	// ModeThread expands a discussion thread, replies included.
	ModeThread FetchMode = "thread"
)

// Scraper is the boundary to the external scraping collaborator. It must
// be treated as unreliable: timeouts, paywalls, and rate limits are
// per-URL outcomes, not batch failures.
type Scraper interface {
	Fetch(ctx context.Context, url string, mode FetchMode) (string, error)
}

// HTTPScraper calls a scraping service over HTTP.
type HTTPScraper struct {
	baseURL     string
	token       string
	client      *http.Client
	retryConfig retry.Config
}

// NewHTTPScraper creates a scraper client for the given service endpoint.
func NewHTTPScraper(baseURL, token string) (*HTTPScraper, error) {
	if baseURL == "" {
		return nil, errors.New("scraper base URL is required")
	}
	return &HTTPScraper{
		baseURL:     baseURL,
		token:       token,
		client:      &http.Client{Timeout: 90 * time.Second},
		retryConfig: retry.Config{MaxAttempts: 3, BaseDelay: 2 * time.Second, MaxDelay: 20 * time.Second, MaxJitter: time.Second},
	}, nil
}

type scrapeRequest struct {
	URL  string `json:"url"`
	Mode string `json:"mode"`
}

type scrapeResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Fetch implements Scraper. Server errors and rate limits are retried;
// anything else (paywall, 404, extraction failure) is returned as-is for
// the resolver to record against the single source.
func (s *HTTPScraper) Fetch(ctx context.Context, url string, mode FetchMode) (string, error) {
	body, err := json.Marshal(scrapeRequest{URL: url, Mode: string(mode)})
	if err != nil {
		return "", fmt.Errorf("encoding scrape request: %w", err)
	}

	return retry.WithBackoff(ctx, s.retryConfig, "scrape", transientScrapeError, func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/extract", bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		if s.token != "" {
			req.Header.Set("Authorization", "Bearer "+s.token)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return "", fmt.Errorf("reading scrape response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return "", &scrapeStatusError{status: resp.StatusCode, body: string(payload)}
		}

		var out scrapeResponse
		if err := json.Unmarshal(payload, &out); err != nil {
			return "", fmt.Errorf("decoding scrape response: %w", err)
		}
		if out.Error != "" {
			return "", fmt.Errorf("scrape failed: %s", out.Error)
		}
		if out.Text == "" {
			return "", errors.New("scrape returned no text")
		}
		return out.Text, nil
	})
}

type scrapeStatusError struct {
	status int
	body   string
}

func (e *scrapeStatusError) Error() string {
	return fmt.Sprintf("scrape service returned %d: %s", e.status, e.body)
}

func transientScrapeError(err error) bool {
	var se *scrapeStatusError
	if errors.As(err, &se) {
		return se.status == http.StatusTooManyRequests || se.status >= 500
	}
	// Network-level failures (dial, reset, timeout) are transient.
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
