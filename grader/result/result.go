/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package result decodes structured JSON out of raw model output, which
// may arrive bare, fenced in markdown, or padded with prose.
package result

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Unfence strips a markdown code fence from model output. The first
// fenced block wins; an unterminated fence keeps everything after it.
// Text without a fence is returned trimmed.
func Unfence(text string) string {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "```")
	if start < 0 {
		return text
	}
	body := text[start+3:]
	body = strings.TrimPrefix(body, "json")
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// Decode unfences the text and unmarshals it into T. If the unfenced
// text is not valid JSON, it retries on the outermost object literal
// before giving up, since models sometimes pad valid JSON with prose.
func Decode[T any](text string) (T, error) {
	var v T
	payload := Unfence(text)
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		if obj, ok := outerObject(payload); ok {
			if retryErr := json.Unmarshal([]byte(obj), &v); retryErr == nil {
				return v, nil
			}
		}
		return v, fmt.Errorf("decoding model output: %w", err)
	}
	return v, nil
}

func outerObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
