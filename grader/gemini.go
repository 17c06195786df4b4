/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package grader

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/apexlabs/groundcheck/grader/result"
	"github.com/apexlabs/groundcheck/metrics"
	"github.com/apexlabs/groundcheck/provider"
	"github.com/apexlabs/groundcheck/provider/retry"
)

// DefaultModel is the grading model used unless configured otherwise.
const DefaultModel = "gemini-2.5-flash"

// judgmentSchema constrains the grading model's output to a Judgment.
var judgmentSchema = &genai.Schema{
	Type: "object",
	Properties: map[string]*genai.Schema{
		"pass": {
			Type:        "boolean",
			Description: "Whether the criterion is satisfied",
		},
		"reasoning": {
			Type:        "string",
			Description: "Explanation of the verdict",
		},
	},
	Required: []string{"pass", "reasoning"},
}

// geminiEvaluator implements Evaluator on Gemini with JSON-constrained
// output at temperature zero for repeatable verdicts.
type geminiEvaluator struct {
	client      *genai.Client
	model       string
	retryConfig retry.Config
	tokens      *metrics.GenAI
}

// EvaluatorOption configures the Gemini evaluator.
type EvaluatorOption func(*geminiEvaluator)

// WithRetryConfig overrides the retry behavior.
func WithRetryConfig(cfg retry.Config) EvaluatorOption {
	return func(e *geminiEvaluator) { e.retryConfig = cfg }
}

// NewGeminiEvaluator creates the production evaluator.
func NewGeminiEvaluator(ctx context.Context, apiKey, model string, opts ...EvaluatorOption) (Evaluator, error) {
	if apiKey == "" {
		return nil, errors.New("grading API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating grading client: %w", err)
	}
	e := &geminiEvaluator{
		client:      client,
		model:       model,
		retryConfig: retry.Default(),
		tokens:      metrics.NewGenAI(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Evaluate implements Evaluator.
func (e *geminiEvaluator) Evaluate(ctx context.Context, prompt string) (*Judgment, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		MaxOutputTokens:  8192,
		ResponseMIMEType: "application/json",
		ResponseSchema:   judgmentSchema,
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	resp, err := retry.WithBackoff(ctx, e.retryConfig, "grade", provider.IsRetryable, func() (*genai.GenerateContentResponse, error) {
		return e.client.Models.GenerateContent(ctx, e.model, contents, config)
	})
	if err != nil {
		return nil, err
	}
	if usage := resp.UsageMetadata; usage != nil {
		e.tokens.RecordTokens(ctx, e.model, int64(usage.PromptTokenCount), int64(usage.CandidatesTokenCount))
	}
	text := resp.Text()
	if text == "" {
		return nil, errors.New("grading model returned no text")
	}
	j, err := result.Decode[Judgment](text)
	if err != nil {
		return nil, err
	}
	return &j, nil
}
