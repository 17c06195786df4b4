/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package sources

import (
	"net/url"
	"strings"

	"github.com/apexlabs/groundcheck/domain"
)

var (
	videoHosts = map[string]struct{}{
		"youtube.com":     {},
		"youtu.be":        {},
		"vimeo.com":       {},
		"twitch.tv":       {},
		"tiktok.com":      {},
		"dailymotion.com": {},
	}
	discussionHosts = map[string]struct{}{
		"reddit.com":           {},
		"news.ycombinator.com": {},
		"quora.com":            {},
		"stackexchange.com":    {},
		"stackoverflow.com":    {},
	}
)

// Classify tags a URL with the fetch path it needs: video sources get a
// transcript attempt, discussion sources get thread expansion, and
// everything else is scraped as a page.
func Classify(raw string) domain.SourceKind {
	u, err := url.Parse(raw)
	if err != nil {
		return domain.SourceGeneric
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	host = strings.TrimPrefix(host, "old.")

	if _, ok := videoHosts[host]; ok {
		return domain.SourceVideo
	}
	if _, ok := discussionHosts[host]; ok {
		return domain.SourceDiscussion
	}
	// Subdomains of known discussion platforms (e.g. gaming.stackexchange.com).
	for suffix := range discussionHosts {
		if strings.HasSuffix(host, "."+suffix) {
			return domain.SourceDiscussion
		}
	}
	return domain.SourceGeneric
}
