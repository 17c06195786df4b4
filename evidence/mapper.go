/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package evidence associates the discrete recommendations in a model
// response with the resolved sources that corroborate them. Mapping is
// fully deterministic: identical response text and identical source
// content always produce an identical EvidenceMap, which keeps
// re-grading stable.
package evidence

import (
	"regexp"
	"strings"

	"github.com/apexlabs/groundcheck/domain"
)

var (
	// claimHeadPattern matches the lines a recommendation block starts
	// with: numbered items, bullets, markdown headings, or a bolded
	// title on its own line.
	claimHeadPattern = regexp.MustCompile(`^(\s*\d+[.)]\s+|\s*[-*•]\s+|#{1,4}\s+|\*\*[^*]+\*\*\s*$)`)

	wordPattern = regexp.MustCompile(`[a-z0-9]+`)
)

// Mapper builds evidence maps. The overlap threshold decides how much
// claim vocabulary must appear in a source's content before the source
// counts as support.
type Mapper struct {
	// MinOverlap is the fraction of a claim's significant tokens that a
	// source must contain to be considered corroborating.
	MinOverlap float64
}

// NewMapper returns a mapper with the default overlap threshold.
func NewMapper() *Mapper {
	return &Mapper{MinOverlap: 0.35}
}

// Map segments the response into claims and associates each with the
// sources whose fetched content corroborates it. Claims with zero
// supporting sources are retained so the grader can mark them
// ungrounded. Sources that failed to fetch are listed separately for
// failure-aware grading.
func (m *Mapper) Map(responseText string, sources []domain.ResolvedSource) *domain.EvidenceMap {
	em := &domain.EvidenceMap{Sources: sources}

	for _, s := range sources {
		if s.Status == domain.FetchFailed {
			em.FailedSources = append(em.FailedSources, s.URL)
		}
	}

	// Tokenize fetched content once per source.
	type indexedSource struct {
		url    string
		tokens map[string]struct{}
	}
	var indexed []indexedSource
	for _, s := range sources {
		if s.Status != domain.FetchOK || s.Content == "" {
			continue
		}
		indexed = append(indexed, indexedSource{url: s.URL, tokens: tokenize(s.Content)})
	}

	for _, claimText := range SegmentClaims(responseText) {
		claim := domain.Claim{Text: claimText}
		claimTokens := significantTokens(claimText)
		if len(claimTokens) > 0 {
			for _, src := range indexed {
				if overlap(claimTokens, src.tokens) >= m.MinOverlap {
					claim.SourceURLs = append(claim.SourceURLs, src.url)
				}
			}
		}
		em.Claims = append(em.Claims, claim)
	}
	return em
}

// SegmentClaims splits a response into recommendation/claim units. The
// segmentation keys off response structure: each numbered or bulleted
// item, heading-introduced section, or bold-titled block is one unit.
// A response with no such structure is a single claim.
func SegmentClaims(text string) []string {
	lines := strings.Split(text, "\n")

	var claims []string
	var current []string
	flush := func() {
		block := strings.TrimSpace(strings.Join(current, "\n"))
		if block != "" {
			claims = append(claims, block)
		}
		current = current[:0]
	}

	structured := false
	for _, line := range lines {
		if claimHeadPattern.MatchString(line) {
			structured = true
			flush()
		}
		current = append(current, line)
	}
	flush()

	if !structured {
		whole := strings.TrimSpace(text)
		if whole == "" {
			return nil
		}
		return []string{whole}
	}
	return claims
}

// stopwords are excluded from overlap scoring; they match everything and
// mean nothing.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"you": {}, "your": {}, "are": {}, "was": {}, "has": {}, "have": {},
	"from": {}, "its": {}, "also": {}, "can": {}, "will": {}, "but": {},
	"not": {}, "all": {}, "more": {}, "one": {}, "out": {}, "about": {},
	"which": {}, "their": {}, "them": {}, "they": {}, "some": {}, "than": {},
	"into": {}, "best": {}, "most": {}, "very": {}, "well": {}, "great": {},
}

func tokenize(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		out[w] = struct{}{}
	}
	return out
}

// significantTokens returns the claim's scoring vocabulary: lowercase
// alphanumeric tokens of length >= 3 that are not stopwords, in
// first-seen order.
func significantTokens(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(w) < 3 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func overlap(claimTokens []string, sourceTokens map[string]struct{}) float64 {
	if len(claimTokens) == 0 {
		return 0
	}
	hits := 0
	for _, w := range claimTokens {
		if _, ok := sourceTokens[w]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(claimTokens))
}
