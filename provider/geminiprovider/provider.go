/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package geminiprovider implements the Gemini-like grounded-completion
// variant using Google Search grounding on the genai SDK.
package geminiprovider

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
	"google.golang.org/genai"

	"github.com/apexlabs/groundcheck/domain"
	"github.com/apexlabs/groundcheck/metrics"
	"github.com/apexlabs/groundcheck/provider"
	"github.com/apexlabs/groundcheck/provider/retry"
)

type gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	retryConfig retry.Config
	tokens      *metrics.GenAI
}

// Option configures the provider.
type Option func(*gemini)

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float32) Option {
	return func(g *gemini) { g.temperature = t }
}

// WithMaxOutputTokens overrides the completion token budget.
func WithMaxOutputTokens(n int32) Option {
	return func(g *gemini) { g.maxTokens = n }
}

// WithRetryConfig overrides the retry behavior.
func WithRetryConfig(cfg retry.Config) Option {
	return func(g *gemini) { g.retryConfig = cfg }
}

// New creates a Gemini grounded-completion provider for the given model.
func New(ctx context.Context, apiKey, model string, opts ...Option) (provider.Provider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	g := &gemini{
		client:      client,
		model:       model,
		temperature: 0.7,
		maxTokens:   65535,
		retryConfig: retry.Default(),
		tokens:      metrics.NewGenAI(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *gemini) Name() string { return "gemini" }

// GenerateGrounded implements provider.Provider. Citations come from the
// grounding metadata on the first candidate; every grounding chunk is
// preserved whether or not the URI is still reachable.
func (g *gemini) GenerateGrounded(ctx context.Context, prompt string) (*domain.GroundedResponse, error) {
	log := clog.FromContext(ctx).With("model", g.model)

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: g.maxTokens,
		Tools: []*genai.Tool{{
			GoogleSearch: &genai.GoogleSearch{},
		}},
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	log.Info("Sending grounded completion request")
	resp, err := retry.WithBackoff(ctx, g.retryConfig, "gemini_generate", provider.IsRetryable, func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(ctx, g.model, contents, config)
	})
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, provider.Timeout("gemini_generate", err)
		default:
			return nil, provider.Unavailable("gemini_generate", err)
		}
	}

	if usage := resp.UsageMetadata; usage != nil {
		g.tokens.RecordTokens(ctx, g.model, int64(usage.PromptTokenCount), int64(usage.CandidatesTokenCount))
	}

	if len(resp.Candidates) == 0 {
		return nil, provider.Rejected("gemini_generate", errors.New("no candidates returned"))
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety ||
		candidate.FinishReason == genai.FinishReasonProhibitedContent {
		return nil, provider.Rejected("gemini_generate", fmt.Errorf("candidate blocked: %s", candidate.FinishReason))
	}
	if candidate.Content == nil {
		return nil, provider.Rejected("gemini_generate", errors.New("candidate has no content"))
	}

	var text string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" && !part.Thought {
			text += part.Text
		}
	}
	if text == "" {
		return nil, provider.Rejected("gemini_generate", errors.New("no text content in candidate"))
	}

	var citations []domain.Citation
	if gm := candidate.GroundingMetadata; gm != nil {
		for _, chunk := range gm.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			citations = append(citations, domain.Citation{
				URL:   chunk.Web.URI,
				Title: chunk.Web.Title,
			})
		}
	}

	log.With("citations", len(citations)).
		With("text_length", len(text)).
		Info("Received grounded completion")

	return &domain.GroundedResponse{Text: text, Citations: citations}, nil
}
