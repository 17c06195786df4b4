/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"

	"github.com/chainguard-dev/clog"

	"github.com/apexlabs/groundcheck/config"
	"github.com/apexlabs/groundcheck/evidence"
	"github.com/apexlabs/groundcheck/grader"
	"github.com/apexlabs/groundcheck/pipeline"
	"github.com/apexlabs/groundcheck/provider"
	"github.com/apexlabs/groundcheck/provider/claudeprovider"
	"github.com/apexlabs/groundcheck/provider/geminiprovider"
	"github.com/apexlabs/groundcheck/provider/openaiprovider"
	"github.com/apexlabs/groundcheck/sources"
	"github.com/apexlabs/groundcheck/store"
	"github.com/apexlabs/groundcheck/store/firestoremirror"
)

// app holds everything a command needs once configuration is resolved.
type app struct {
	cfg          *config.Config
	store        *store.Dual
	providerName string
}

// newApp resolves configuration, the provider for the model, and the
// artifact store. Every command goes through here so misconfiguration
// is caught before any artifact is touched.
func newApp(ctx context.Context, model string) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	name, err := providerNameFor(model)
	if err != nil {
		return nil, err
	}

	local := store.NewFileStore(cfg.ResultsDir, name)
	var mirror store.Mirror
	if cfg.FirestoreProject != "" && !flagLocalOnly {
		mirror, err = firestoremirror.New(ctx, cfg.FirestoreProject)
		if err != nil {
			return nil, err
		}
		clog.FromContext(ctx).With("project", cfg.FirestoreProject).Info("Results mirror enabled")
	}

	return &app{cfg: cfg, store: store.NewDual(local, mirror), providerName: name}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.store.Close(); err != nil {
		clog.WarnContextf(ctx, "closing store: %v", err)
	}
}

// newController assembles the full pipeline for the model.
func (a *app) newController(ctx context.Context, model string, skipAutograder bool) (*pipeline.Controller, error) {
	if err := a.cfg.ValidateForPipeline(a.providerName, skipAutograder); err != nil {
		return nil, err
	}

	p, err := a.newProvider(ctx, model)
	if err != nil {
		return nil, err
	}
	scraper, err := sources.NewHTTPScraper(a.cfg.ScraperURL, a.cfg.ScraperToken)
	if err != nil {
		return nil, err
	}

	var autograder *grader.Autograder
	if !skipAutograder {
		key, err := a.cfg.GradingKey()
		if err != nil {
			return nil, err
		}
		evaluator, err := grader.NewGeminiEvaluator(ctx, key, a.cfg.GradingModel)
		if err != nil {
			return nil, err
		}
		autograder = grader.New(evaluator)
	}

	return pipeline.New(a.store, p, sources.NewResolver(scraper), evidence.NewMapper(), autograder, nil), nil
}

// variant couples a provider name with its constructor. One registry
// instance routes both credential selection and provider construction;
// the longest matching model prefix wins.
type variant struct {
	name  string
	build func(ctx context.Context, apiKey, model string) (provider.Provider, error)
}

var registry = newRegistry()

func newRegistry() *provider.Registry[variant] {
	gemini := variant{
		name: "gemini",
		build: func(ctx context.Context, apiKey, model string) (provider.Provider, error) {
			return geminiprovider.New(ctx, apiKey, model)
		},
	}
	openAI := variant{
		name: "openai",
		build: func(_ context.Context, apiKey, model string) (provider.Provider, error) {
			return openaiprovider.New(apiKey, model)
		},
	}
	claude := variant{
		name: "claude",
		build: func(_ context.Context, apiKey, model string) (provider.Provider, error) {
			return claudeprovider.New(apiKey, model)
		},
	}
	return provider.NewRegistry(map[string]variant{
		"gemini-": gemini,
		"gpt-":    openAI,
		"o3":      openAI,
		"o4-":     openAI,
		"claude-": claude,
	})
}

func providerNameFor(model string) (string, error) {
	v, err := registry.Lookup(model)
	if err != nil {
		return "", err
	}
	return v.name, nil
}

func (a *app) newProvider(ctx context.Context, model string) (provider.Provider, error) {
	v, err := registry.Lookup(model)
	if err != nil {
		return nil, err
	}
	key, err := a.cfg.APIKey(v.name)
	if err != nil {
		return nil, err
	}
	return v.build(ctx, key, model)
}
