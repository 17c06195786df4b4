/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package grader

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/apexlabs/groundcheck/domain"
)

func TestRenderEvidence(t *testing.T) {
	tests := []struct {
		name        string
		em          *domain.EvidenceMap
		wantContain []string
		wantAbsent  []string
	}{{
		name: "mapped sources only, unmapped claim flagged",
		em: &domain.EvidenceMap{
			Sources: []domain.ResolvedSource{{
				URL:     "https://example.com/review",
				Status:  domain.FetchOK,
				Content: "in-depth skillet review content",
			}, {
				URL:     "https://example.com/unrelated",
				Status:  domain.FetchOK,
				Content: "unrelated sourdough baking content",
			}},
			Claims: []domain.Claim{{
				Text:       "The Lodge skillet is the best budget pan.",
				SourceURLs: []string{"https://example.com/review"},
			}, {
				Text: "It ships with a silicone handle cover.",
			}},
		},
		wantContain: []string{
			"[1] https://example.com/review",
			"in-depth skillet review content",
			`"The Lodge skillet is the best budget pan.": supported by [1]`,
			`"It ships with a silicone handle cover.": no fetched source supports this claim`,
		},
		wantAbsent: []string{"unrelated sourdough baking content"},
	}, {
		name: "claim mapped to a failed source counts as unsupported",
		em: &domain.EvidenceMap{
			Sources: []domain.ResolvedSource{{
				URL:           "https://example.com/gone",
				Status:        domain.FetchFailed,
				FailureReason: "404",
			}},
			Claims: []domain.Claim{{
				Text:       "The guide covers every boss fight.",
				SourceURLs: []string{"https://example.com/gone"},
			}},
			FailedSources: []string{"https://example.com/gone"},
		},
		wantContain: []string{
			"no fetched source supports this claim",
			"Cited but unfetchable: https://example.com/gone",
		},
	}, {
		name: "no claims falls back to all fetched sources",
		em: &domain.EvidenceMap{
			Sources: []domain.ResolvedSource{{
				URL:     "https://example.com/menu",
				Status:  domain.FetchOK,
				Content: "seasonal tasting menu details",
			}},
		},
		wantContain: []string{"### https://example.com/menu", "seasonal tasting menu details"},
		wantAbsent:  []string{"Claims and their supporting sources"},
	}, {
		name:        "nothing fetched",
		em:          &domain.EvidenceMap{FailedSources: []string{"https://example.com/a"}},
		wantContain: []string{"(no sources could be fetched)"},
	}, {
		name:        "nil map",
		em:          nil,
		wantContain: []string{"(no sources resolved)"},
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderEvidence(tt.em)
			for _, want := range tt.wantContain {
				if !strings.Contains(got, want) {
					t.Errorf("rendered evidence missing %q:\n%s", want, got)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("rendered evidence should not contain %q:\n%s", absent, got)
				}
			}
		})
	}
}

func TestRenderEvidenceTruncatesOnRuneBoundary(t *testing.T) {
	// One ASCII byte shifts every following 3-byte rune off the cap
	// boundary, so a byte-index cut would split a rune.
	content := "a" + strings.Repeat("世", maxSourceExcerpt)
	em := &domain.EvidenceMap{
		Sources: []domain.ResolvedSource{{
			URL:     "https://example.com/cjk",
			Status:  domain.FetchOK,
			Content: content,
		}},
		Claims: []domain.Claim{{
			Text:       "claim",
			SourceURLs: []string{"https://example.com/cjk"},
		}},
	}

	got := renderEvidence(em)
	if !utf8.ValidString(got) {
		t.Fatal("rendered evidence is not valid UTF-8")
	}
	if !strings.Contains(got, "[truncated]") {
		t.Error("oversized source content should be marked truncated")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{{
		in: "short", limit: 10, want: "short",
	}, {
		in: "exact", limit: 5, want: "exact",
	}, {
		in: "abcdef", limit: 3, want: "abc",
	}, {
		in: "aé", limit: 2, want: "a", // é is 2 bytes; cutting at 2 would split it
	}, {
		in: "世界", limit: 4, want: "世",
	}}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := truncateRunes(tt.in, tt.limit); got != tt.want {
				t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}
