/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package claudeprovider implements the Anthropic-like grounded-completion
// variant using the web search tool on the Anthropic SDK.
package claudeprovider

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/chainguard-dev/clog"

	"github.com/apexlabs/groundcheck/domain"
	"github.com/apexlabs/groundcheck/metrics"
	"github.com/apexlabs/groundcheck/provider"
	"github.com/apexlabs/groundcheck/provider/retry"
)

type claude struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	retryConfig retry.Config
	tokens      *metrics.GenAI
}

// Option configures the provider.
type Option func(*claude)

// WithMaxTokens overrides the completion token budget.
func WithMaxTokens(n int64) Option {
	return func(c *claude) { c.maxTokens = n }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *claude) { c.temperature = t }
}

// WithRetryConfig overrides the retry behavior.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *claude) { c.retryConfig = cfg }
}

// New creates a Claude grounded-completion provider for the given model.
func New(apiKey, model string, opts ...Option) (provider.Provider, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic API key is required")
	}
	c := &claude{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		maxTokens:   64000,
		temperature: 1.0,
		retryConfig: retry.Default(),
		tokens:      metrics.NewGenAI(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *claude) Name() string { return "claude" }

// GenerateGrounded implements provider.Provider. Citations are collected
// from the web-search citations attached to each text block.
func (c *claude) GenerateGrounded(ctx context.Context, prompt string) (*domain.GroundedResponse, error) {
	log := clog.FromContext(ctx).With("model", c.model)

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{{
			Role: anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{
				anthropic.NewTextBlock(prompt),
			},
		}},
		Tools: []anthropic.ToolUnionParam{{
			OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{},
		}},
	}

	log.Info("Sending grounded completion request")
	message, err := retry.WithBackoff(ctx, c.retryConfig, "claude_generate", provider.IsRetryable, func() (*anthropic.Message, error) {
		return c.client.Messages.New(ctx, params)
	})
	if err != nil {
		var apiErr *anthropic.Error
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, provider.Timeout("claude_generate", err)
		case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != 429:
			return nil, provider.Rejected("claude_generate", err)
		default:
			return nil, provider.Unavailable("claude_generate", err)
		}
	}

	c.tokens.RecordTokens(ctx, c.model, message.Usage.InputTokens, message.Usage.OutputTokens)

	if message.StopReason == anthropic.StopReasonRefusal {
		return nil, provider.Rejected("claude_generate", errors.New("model refused the request"))
	}

	var text string
	var citations []domain.Citation
	for _, block := range message.Content {
		tb, ok := block.AsAny().(anthropic.TextBlock)
		if !ok {
			continue
		}
		text += tb.Text
		for _, cite := range tb.Citations {
			loc, ok := cite.AsAny().(anthropic.CitationsWebSearchResultLocation)
			if !ok {
				continue
			}
			citations = append(citations, domain.Citation{
				URL:     loc.URL,
				Title:   loc.Title,
				Snippet: loc.CitedText,
			})
		}
	}
	if text == "" {
		return nil, provider.Rejected("claude_generate", errors.New("no text content in message"))
	}

	log.With("citations", len(citations)).
		With("text_length", len(text)).
		Info("Received grounded completion")

	return &domain.GroundedResponse{Text: text, Citations: citations}, nil
}
