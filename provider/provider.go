/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package provider abstracts the heterogeneous grounded-completion APIs
// behind one interface. Each variant normalizes its provider's citation
// shape into domain.GroundedResponse, preserving every citation the
// provider returns — even ones later found unreachable.
package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/apexlabs/groundcheck/domain"
)

// Provider issues one grounded completion call. Implementations hold no
// per-call state; the same instance is shared across workers.
type Provider interface {
	// Name identifies the provider variant ("gemini", "openai", "claude")
	// and doubles as the top-level segment of the artifact tree.
	Name() string

	// GenerateGrounded sends the prompt with search grounding enabled
	// and returns the normalized response. Errors carry an ErrorClass.
	GenerateGrounded(ctx context.Context, prompt string) (*domain.GroundedResponse, error)
}

// Registry maps model-identifier prefixes to per-variant values: a
// Provider instance, or anything else keyed by model family such as a
// constructor. It is built once at startup; lookups afterward are
// read-only.
type Registry[T any] struct {
	byPrefix map[string]T
}

// NewRegistry builds a registry from prefix→value entries.
func NewRegistry[T any](entries map[string]T) *Registry[T] {
	byPrefix := make(map[string]T, len(entries))
	for prefix, v := range entries {
		byPrefix[prefix] = v
	}
	return &Registry[T]{byPrefix: byPrefix}
}

// Lookup resolves a model identifier using the longest matching
// registered prefix.
func (r *Registry[T]) Lookup(model string) (T, error) {
	var bestPrefix string
	var best T
	found := false
	for prefix, v := range r.byPrefix {
		if strings.HasPrefix(model, prefix) && (!found || len(prefix) > len(bestPrefix)) {
			bestPrefix, best, found = prefix, v, true
		}
	}
	if !found {
		var zero T
		return zero, fmt.Errorf("no provider registered for model %q (known prefixes: %s)", model, strings.Join(r.prefixes(), ", "))
	}
	return best, nil
}

func (r *Registry[T]) prefixes() []string {
	out := make([]string, 0, len(r.byPrefix))
	for prefix := range r.byPrefix {
		out = append(out, prefix)
	}
	sort.Strings(out)
	return out
}
