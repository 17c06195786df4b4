/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package grader

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/apexlabs/groundcheck/domain"
	"github.com/apexlabs/groundcheck/prompts"
)

var textLevelPrompt = prompts.MustNew(`You are grading one criterion against an AI assistant's answer to a consumer question.

Criterion: {{criterion}}

{{reference}}Assistant answer:
{{response}}

Decide whether the answer satisfies the criterion on its own text, without consulting any external source. Judge only this criterion; ignore unrelated flaws in the answer.

Respond with JSON matching this schema:
{{schema}}`)

var sourceLevelPrompt = prompts.MustNew(`You are verifying that a claim an AI assistant made is corroborated by the sources it cited.

Criterion: {{criterion}}

Assistant answer:
{{response}}

Evidence:
{{evidence}}

Each claim above lists the fetched sources mapped to it. Pass only if at least one source mapped to the claim the criterion checks substantiates it. A claim with no supporting source is ungrounded and fails. A source that failed to fetch is silent: it neither corroborates nor contradicts.

Respond with JSON matching this schema:
{{schema}}`)

func buildTextPrompt(c domain.Criterion, response *domain.GroundedResponse) (string, error) {
	reference := ""
	if c.ReferenceAnswer != "" {
		reference = fmt.Sprintf("Reference answer:\n%s\n\n", c.ReferenceAnswer)
	}
	return bind(textLevelPrompt, map[string]string{
		"criterion": c.Description,
		"reference": reference,
		"response":  response.Text,
		"schema":    judgmentSchemaJSON,
	})
}

func buildSourcePrompt(c domain.Criterion, response *domain.GroundedResponse, em *domain.EvidenceMap) (string, error) {
	return bind(sourceLevelPrompt, map[string]string{
		"criterion": c.Description,
		"response":  response.Text,
		"evidence":  renderEvidence(em),
		"schema":    judgmentSchemaJSON,
	})
}

func bind(t *prompts.Template, values map[string]string) (string, error) {
	var err error
	for name, value := range values {
		if t, err = t.Bind(name, value); err != nil {
			return "", err
		}
	}
	return t.Build()
}

// maxSourceExcerpt and maxClaimExcerpt cap how much of one fetched
// source or one claim reaches the grading model.
const (
	maxSourceExcerpt = 6000
	maxClaimExcerpt  = 400
)

// renderEvidence lays out the claim→source mapping for the grading
// model: each fetched source that at least one claim maps to, then
// every claim with the sources supporting it. A claim no fetched
// source supports is flagged so the model treats it as ungrounded.
// When no claim maps to anything, every fetched source is shown so
// the model can still judge an unsegmentable response.
func renderEvidence(em *domain.EvidenceMap) string {
	if em == nil {
		return "(no sources resolved)"
	}

	index := make(map[string]int)
	var mapped []domain.ResolvedSource
	for _, claim := range em.Claims {
		for _, u := range claim.SourceURLs {
			if _, ok := index[u]; ok {
				continue
			}
			s, ok := em.Source(u)
			if !ok || s.Status != domain.FetchOK {
				continue
			}
			index[u] = len(mapped) + 1
			mapped = append(mapped, s)
		}
	}

	var b strings.Builder
	if len(mapped) > 0 {
		b.WriteString("Sources:\n")
		for i, s := range mapped {
			fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, s.URL, excerpt(s.Content, maxSourceExcerpt))
		}
	} else {
		fetched := 0
		for _, s := range em.Sources {
			if s.Status != domain.FetchOK {
				continue
			}
			fetched++
			fmt.Fprintf(&b, "### %s\n%s\n\n", s.URL, excerpt(s.Content, maxSourceExcerpt))
		}
		if fetched == 0 {
			return "(no sources could be fetched)"
		}
	}

	if len(em.Claims) > 0 {
		b.WriteString("Claims and their supporting sources:\n")
		for _, claim := range em.Claims {
			var refs []string
			for _, u := range claim.SourceURLs {
				if n, ok := index[u]; ok {
					refs = append(refs, fmt.Sprintf("[%d]", n))
				}
			}
			text := truncateRunes(claim.Text, maxClaimExcerpt)
			if len(refs) == 0 {
				fmt.Fprintf(&b, "- %q: no fetched source supports this claim; it is ungrounded\n", text)
			} else {
				fmt.Fprintf(&b, "- %q: supported by %s\n", text, strings.Join(refs, ", "))
			}
		}
		b.WriteString("\n")
	}

	if len(em.FailedSources) > 0 {
		fmt.Fprintf(&b, "Cited but unfetchable: %s\n", strings.Join(em.FailedSources, ", "))
	}
	return b.String()
}

func excerpt(content string, limit int) string {
	if len(content) <= limit {
		return content
	}
	return truncateRunes(content, limit) + "\n[truncated]"
}

// truncateRunes cuts s at or below limit bytes without splitting a
// rune; scraped pages are routinely multi-byte UTF-8.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
