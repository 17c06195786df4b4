/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import "testing"

func TestProviderNameFor(t *testing.T) {
	tests := []struct {
		model   string
		want    string
		wantErr bool
	}{{
		model: "gemini-2.5-flash", want: "gemini",
	}, {
		model: "gpt-5", want: "openai",
	}, {
		model: "o3", want: "openai",
	}, {
		model: "o4-mini", want: "openai",
	}, {
		model: "claude-opus-4-5-20251101", want: "claude",
	}, {
		model: "grok-4", wantErr: true,
	}, {
		model: "", wantErr: true,
	}}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got, err := providerNameFor(tt.model)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("providerNameFor(%q) = %q, want error", tt.model, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("providerNameFor(%q) error = %v", tt.model, err)
			}
			if got != tt.want {
				t.Errorf("providerNameFor(%q) = %q, want %q", tt.model, got, tt.want)
			}
		})
	}
}

func TestRegistryBuildRoutesByPrefix(t *testing.T) {
	// Every registered variant must carry a constructor; a prefix
	// without one would panic at first use instead of at startup.
	for _, model := range []string{"gemini-2.5-pro", "gpt-5", "o3", "o4-mini", "claude-sonnet-4-5"} {
		v, err := registry.Lookup(model)
		if err != nil {
			t.Fatalf("Lookup(%q) error = %v", model, err)
		}
		if v.build == nil {
			t.Errorf("variant %q for model %q has no constructor", v.name, model)
		}
	}
}
