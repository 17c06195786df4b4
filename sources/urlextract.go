/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package sources resolves the URLs a model response cites: extraction
// with a strict grammar, per-host classification, and content fetching
// through the scraping collaborator. Per-source fetch failures never
// abort resolution of the remaining sources.
package sources

import (
	"regexp"
	"strings"
)

// urlPattern over-matches on purpose; trimCandidate is responsible for
// cutting off the punctuation and prose a bare character class can't
// distinguish from path characters.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"'` + "`" + `]+`)

// ExtractURLs pulls literal URLs out of free text, deduplicated while
// preserving first-seen order. Punctuation adjacent to a URL — a closing
// parenthesis, a sentence-ending period, a list comma — is not part of
// the URL, with the exception of parentheses the URL itself opened
// (Wikipedia-style path segments survive).
func ExtractURLs(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, candidate := range urlPattern.FindAllString(text, -1) {
		u := trimCandidate(candidate)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// trimCandidate applies the strict grammar to a raw regex match.
func trimCandidate(candidate string) string {
	// An unmatched closing parenthesis ends the URL; everything after it
	// ("...a).and" style run-ons) is prose.
	depth, cut := 0, -1
	for i, r := range candidate {
		if r == '(' {
			depth++
		} else if r == ')' {
			if depth == 0 {
				cut = i
				break
			}
			depth--
		}
	}
	if cut >= 0 {
		candidate = candidate[:cut]
	}

	// Strip trailing punctuation. Brackets are only stripped when the
	// URL never opened them.
	for len(candidate) > 0 {
		last := candidate[len(candidate)-1]
		switch {
		case strings.ContainsRune(`.,;:!?'"`+"`", rune(last)):
			candidate = candidate[:len(candidate)-1]
		case last == ')' && strings.Count(candidate, ")") > strings.Count(candidate, "("):
			candidate = candidate[:len(candidate)-1]
		case last == ']' && strings.Count(candidate, "]") > strings.Count(candidate, "["):
			candidate = candidate[:len(candidate)-1]
		default:
			return candidate
		}
	}
	return candidate
}
