/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package openaiprovider implements the OpenAI-like grounded-completion
// variant using the web search tool on the Responses API.
package openaiprovider

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"github.com/apexlabs/groundcheck/domain"
	"github.com/apexlabs/groundcheck/metrics"
	"github.com/apexlabs/groundcheck/provider"
	"github.com/apexlabs/groundcheck/provider/retry"
)

type openaiProvider struct {
	client      openai.Client
	model       string
	temperature float64
	retryConfig retry.Config
	tokens      *metrics.GenAI
}

// Option configures the provider.
type Option func(*openaiProvider)

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(p *openaiProvider) { p.temperature = t }
}

// WithRetryConfig overrides the retry behavior.
func WithRetryConfig(cfg retry.Config) Option {
	return func(p *openaiProvider) { p.retryConfig = cfg }
}

// New creates an OpenAI grounded-completion provider for the given model.
func New(apiKey, model string, opts ...Option) (provider.Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai API key is required")
	}
	p := &openaiProvider{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		temperature: 0.7,
		retryConfig: retry.Default(),
		tokens:      metrics.NewGenAI(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *openaiProvider) Name() string { return "openai" }

// GenerateGrounded implements provider.Provider. Citations come from the
// URL-citation annotations on the output text.
func (p *openaiProvider) GenerateGrounded(ctx context.Context, prompt string) (*domain.GroundedResponse, error) {
	log := clog.FromContext(ctx).With("model", p.model)

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(p.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(prompt),
		},
		Temperature: openai.Float(p.temperature),
		Tools: []responses.ToolUnionParam{{
			OfWebSearchPreview: &responses.WebSearchToolParam{
				Type: responses.WebSearchToolTypeWebSearchPreview,
			},
		}},
	}

	log.Info("Sending grounded completion request")
	resp, err := retry.WithBackoff(ctx, p.retryConfig, "openai_generate", provider.IsRetryable, func() (*responses.Response, error) {
		return p.client.Responses.New(ctx, params)
	})
	if err != nil {
		var apiErr *openai.Error
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, provider.Timeout("openai_generate", err)
		case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != 429:
			return nil, provider.Rejected("openai_generate", err)
		default:
			return nil, provider.Unavailable("openai_generate", err)
		}
	}

	p.tokens.RecordTokens(ctx, p.model, resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var text string
	var citations []domain.Citation
	for _, item := range resp.Output {
		msg := item.AsMessage()
		if msg.Type != "message" {
			continue
		}
		for _, content := range msg.Content {
			out := content.AsOutputText()
			if out.Type != "output_text" {
				continue
			}
			text += out.Text
			for _, ann := range out.Annotations {
				cite := ann.AsURLCitation()
				if cite.Type != "url_citation" || cite.URL == "" {
					continue
				}
				citations = append(citations, domain.Citation{
					URL:   cite.URL,
					Title: cite.Title,
				})
			}
		}
	}
	if text == "" {
		return nil, provider.Rejected("openai_generate", fmt.Errorf("no output text in response %s", resp.ID))
	}

	log.With("citations", len(citations)).
		With("text_length", len(text)).
		Info("Received grounded completion")

	return &domain.GroundedResponse{Text: text, Citations: citations}, nil
}
