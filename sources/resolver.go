/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package sources

import (
	"context"

	"github.com/chainguard-dev/clog"

	"github.com/apexlabs/groundcheck/domain"
)

// Resolver turns a block of free text into resolved sources.
type Resolver struct {
	scraper Scraper

	// maxSources caps how many distinct URLs are fetched per response;
	// URLs past the cap are recorded as skipped rather than dropped.
	maxSources int
}

// NewResolver creates a resolver over the given scraping collaborator.
func NewResolver(scraper Scraper) *Resolver {
	return &Resolver{scraper: scraper, maxSources: 25}
}

// Resolve extracts, classifies, and fetches every URL in the text.
// The returned slice preserves first-seen URL order. A failed fetch is
// recorded on its source and resolution continues: grading partial
// evidence is a valid outcome, not a pipeline failure.
func (r *Resolver) Resolve(ctx context.Context, text string) []domain.ResolvedSource {
	return r.resolveAll(ctx, ExtractURLs(text))
}

// ResolveResponse resolves a grounded response: provider-attached
// citations first, then any URL written inline in the response text,
// deduplicated in that order.
func (r *Resolver) ResolveResponse(ctx context.Context, response *domain.GroundedResponse) []domain.ResolvedSource {
	seen := make(map[string]struct{})
	var urls []string
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	for _, c := range response.Citations {
		add(c.URL)
	}
	for _, u := range ExtractURLs(response.Text) {
		add(u)
	}
	return r.resolveAll(ctx, urls)
}

func (r *Resolver) resolveAll(ctx context.Context, urls []string) []domain.ResolvedSource {
	log := clog.FromContext(ctx)

	out := make([]domain.ResolvedSource, 0, len(urls))
	for i, u := range urls {
		kind := Classify(u)
		if i >= r.maxSources {
			out = append(out, domain.ResolvedSource{
				URL:           u,
				Kind:          kind,
				Status:        domain.FetchSkipped,
				FailureReason: "source cap reached",
			})
			continue
		}
		out = append(out, r.resolveOne(ctx, u, kind))
	}

	failed := 0
	for _, s := range out {
		if s.Status == domain.FetchFailed {
			failed++
		}
	}
	log.With("urls", len(urls)).With("failed", failed).Info("Resolved cited sources")
	return out
}

// resolveOne fetches a single source through its classification's path.
func (r *Resolver) resolveOne(ctx context.Context, url string, kind domain.SourceKind) domain.ResolvedSource {
	src := domain.ResolvedSource{URL: url, Kind: kind}

	switch kind {
	case domain.SourceVideo:
		// Transcript first; fall back to scraping the watch page.
		if text, err := r.scraper.Fetch(ctx, url, ModeTranscript); err == nil {
			src.Status, src.Content = domain.FetchOK, text
			return src
		} else {
			clog.FromContext(ctx).With("url", url).With("error", err.Error()).
				Warn("Transcript fetch failed, falling back to page scrape")
		}
		text, err := r.scraper.Fetch(ctx, url, ModePage)
		if err != nil {
			src.Status, src.FailureReason = domain.FetchFailed, err.Error()
			return src
		}
		src.Status, src.Content = domain.FetchOK, text
		return src

	case domain.SourceDiscussion:
		text, err := r.scraper.Fetch(ctx, url, ModeThread)
		if err != nil {
			src.Status, src.FailureReason = domain.FetchFailed, err.Error()
			return src
		}
		src.Status, src.Content = domain.FetchOK, text
		return src

	default:
		text, err := r.scraper.Fetch(ctx, url, ModePage)
		if err != nil {
			src.Status, src.FailureReason = domain.FetchFailed, err.Error()
			return src
		}
		src.Status, src.Content = domain.FetchOK, text
		return src
	}
}
