/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package domain

// Citation is one source the model attached to its response, preserved
// exactly as the provider returned it, reachable or not.
type Citation struct {
	URL string `json:"url"`

	// Title and Snippet carry provider-native grounding metadata when
	// the provider supplies it.
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// GroundedResponse is the stage 1 artifact: the raw model response plus
// every citation the provider attached.
type GroundedResponse struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations"`
}

// SourceKind classifies a cited URL by the fetch path it needs.
type SourceKind string

const (
	SourceGeneric    SourceKind = "generic"
	SourceVideo      SourceKind = "video"
	SourceDiscussion SourceKind = "discussion"
)

// FetchStatus records the per-source outcome of resolution.
type FetchStatus string

const (
	FetchOK      FetchStatus = "ok"
	FetchFailed  FetchStatus = "failed"
	FetchSkipped FetchStatus = "skipped"
)

// ResolvedSource is one external URL plus whatever content resolution
// could fetch for it. A failed fetch is an outcome, not an error: grading
// proceeds with whatever sources succeeded.
type ResolvedSource struct {
	URL     string      `json:"url"`
	Kind    SourceKind  `json:"kind"`
	Status  FetchStatus `json:"status"`
	Content string      `json:"content,omitempty"`

	// FailureReason explains a failed or skipped fetch.
	FailureReason string `json:"failure_reason,omitempty"`
}

// Claim is one recommendation or factual assertion segmented out of the
// response, with the URLs of the resolved sources that corroborate it.
// A claim with no supporting sources is retained so the grader can mark
// it ungrounded rather than silently ignore it.
type Claim struct {
	Text       string   `json:"text"`
	SourceURLs []string `json:"source_urls"`
}

// EvidenceMap is the stage 2 artifact: resolved sources, the claims
// segmented from the response, and the URLs whose fetch failed (the
// grader needs those for failure-aware verdicts).
type EvidenceMap struct {
	Sources       []ResolvedSource `json:"sources"`
	Claims        []Claim          `json:"claims"`
	FailedSources []string         `json:"failed_sources"`
}

// Source returns the resolved source with the given URL, if present.
func (m *EvidenceMap) Source(url string) (ResolvedSource, bool) {
	for _, s := range m.Sources {
		if s.URL == url {
			return s, true
		}
	}
	return ResolvedSource{}, false
}
