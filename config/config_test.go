/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"context"
	"testing"

	"github.com/sethvargo/go-envconfig"
)

func load(t *testing.T, env map[string]string) *Config {
	t.Helper()
	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.MapLookuper(env),
	}); err != nil {
		t.Fatalf("processing config: %v", err)
	}
	return &cfg
}

func TestDefaults(t *testing.T) {
	cfg := load(t, nil)
	if cfg.ResultsDir != "results" {
		t.Errorf("ResultsDir = %q, want %q", cfg.ResultsDir, "results")
	}
	if cfg.GradingModel != "gemini-2.5-flash" {
		t.Errorf("GradingModel = %q, want %q", cfg.GradingModel, "gemini-2.5-flash")
	}
}

func TestAPIKey(t *testing.T) {
	cfg := load(t, map[string]string{
		"GEMINI_API_KEY": "gk",
		"OPENAI_API_KEY": "ok",
	})
	tests := []struct {
		provider string
		want     string
		wantErr  bool
	}{{
		provider: "gemini",
		want:     "gk",
	}, {
		provider: "openai",
		want:     "ok",
	}, {
		provider: "claude",
		wantErr:  true,
	}, {
		provider: "mystery",
		wantErr:  true,
	}}
	for _, tt := range tests {
		got, err := cfg.APIKey(tt.provider)
		if (err != nil) != tt.wantErr {
			t.Errorf("APIKey(%q) error = %v, wantErr %v", tt.provider, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("APIKey(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestGradingKeyFallback(t *testing.T) {
	cfg := load(t, map[string]string{"GEMINI_API_KEY": "gk"})
	key, err := cfg.GradingKey()
	if err != nil || key != "gk" {
		t.Errorf("GradingKey() = (%q, %v), want (\"gk\", nil)", key, err)
	}

	cfg = load(t, map[string]string{
		"GEMINI_API_KEY":              "gk",
		"GROUNDCHECK_GRADING_API_KEY": "dedicated",
	})
	if key, _ := cfg.GradingKey(); key != "dedicated" {
		t.Errorf("GradingKey() = %q, want %q", key, "dedicated")
	}

	if _, err := load(t, nil).GradingKey(); err == nil {
		t.Error("GradingKey() succeeded without any key")
	}
}

func TestValidateForPipeline(t *testing.T) {
	env := map[string]string{
		"GEMINI_API_KEY":          "gk",
		"GROUNDCHECK_SCRAPER_URL": "https://scraper.internal",
	}
	if err := load(t, env).ValidateForPipeline("gemini", false); err != nil {
		t.Errorf("ValidateForPipeline() error = %v", err)
	}
	if err := load(t, map[string]string{"GEMINI_API_KEY": "gk"}).ValidateForPipeline("gemini", false); err == nil {
		t.Error("ValidateForPipeline() accepted missing scraper URL")
	}
	if err := load(t, env).ValidateForPipeline("openai", false); err == nil {
		t.Error("ValidateForPipeline() accepted missing provider key")
	}
}
