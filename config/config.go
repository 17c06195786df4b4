/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package config loads runtime configuration from the environment and
// validates it up front, so a misconfigured run fails before any
// artifact is touched.
package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config is the full environment surface of the tool. Keys are only
// validated against the commands that need them: clearing artifacts
// must not require a scraper token.
type Config struct {
	// ResultsDir roots the authoritative local artifact tree.
	ResultsDir string `env:"GROUNDCHECK_RESULTS_DIR,default=results"`

	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	// GradingAPIKey falls back to GeminiAPIKey when unset.
	GradingAPIKey string `env:"GROUNDCHECK_GRADING_API_KEY"`
	GradingModel  string `env:"GROUNDCHECK_GRADING_MODEL,default=gemini-2.5-flash"`

	ScraperURL   string `env:"GROUNDCHECK_SCRAPER_URL"`
	ScraperToken string `env:"GROUNDCHECK_SCRAPER_TOKEN"`

	// FirestoreProject enables the results mirror when set.
	FirestoreProject string `env:"GROUNDCHECK_FIRESTORE_PROJECT"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	return &cfg, nil
}

// APIKey returns the credential for the named provider.
func (c *Config) APIKey(provider string) (string, error) {
	switch provider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return "", fmt.Errorf("GEMINI_API_KEY is not set")
		}
		return c.GeminiAPIKey, nil
	case "openai":
		if c.OpenAIAPIKey == "" {
			return "", fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return c.OpenAIAPIKey, nil
	case "claude":
		if c.AnthropicAPIKey == "" {
			return "", fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		return c.AnthropicAPIKey, nil
	default:
		return "", fmt.Errorf("no credential mapping for provider %q", provider)
	}
}

// GradingKey returns the grading-model credential, falling back to the
// Gemini key since the default grading model is a Gemini model.
func (c *Config) GradingKey() (string, error) {
	if c.GradingAPIKey != "" {
		return c.GradingAPIKey, nil
	}
	if c.GeminiAPIKey != "" {
		return c.GeminiAPIKey, nil
	}
	return "", fmt.Errorf("neither GROUNDCHECK_GRADING_API_KEY nor GEMINI_API_KEY is set")
}

// ValidateForPipeline checks everything a full pipeline run needs for
// the given provider.
func (c *Config) ValidateForPipeline(provider string, skipAutograder bool) error {
	if _, err := c.APIKey(provider); err != nil {
		return err
	}
	if c.ScraperURL == "" {
		return fmt.Errorf("GROUNDCHECK_SCRAPER_URL is not set")
	}
	if !skipAutograder {
		if _, err := c.GradingKey(); err != nil {
			return err
		}
	}
	return nil
}
