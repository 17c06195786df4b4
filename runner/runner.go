/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package runner executes a batch of tasks through the pipeline with
// bounded parallelism.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"

	"github.com/apexlabs/groundcheck/domain"
	"github.com/apexlabs/groundcheck/pipeline"
	"github.com/apexlabs/groundcheck/store"
)

// DefaultWorkers is the batch pool width unless configured otherwise.
const DefaultWorkers = 10

// TaskRunner is the slice of the pipeline the batch runner needs.
type TaskRunner interface {
	Run(ctx context.Context, key domain.TaskKey, opts pipeline.Options) (*pipeline.Outcome, error)
}

// Config controls one batch execution.
type Config struct {
	Workers int
	Options pipeline.Options
}

// Summary aggregates the per-task outcomes of one batch.
type Summary struct {
	Outcomes []*pipeline.Outcome

	Succeeded     int
	Skipped       int
	Failed        int
	FailedByStage map[store.Stage]int

	// Errs holds infrastructure errors: tasks that could not run at
	// all, as opposed to tasks whose stage failed and was recorded.
	Errs []error
}

// NewSummary returns an empty summary ready for Add.
func NewSummary() *Summary {
	return &Summary{FailedByStage: make(map[store.Stage]int)}
}

// Add records one outcome in the aggregate counts.
func (s *Summary) Add(o *pipeline.Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.State {
	case pipeline.Succeeded:
		s.Succeeded++
	case pipeline.Skipped:
		s.Skipped++
	case pipeline.StageFailed:
		s.Failed++
		s.FailedByStage[o.FailedStage]++
	}
}

// Batch runs every task key through the runner with at most
// cfg.Workers tasks in flight. Cancelling ctx stops dispatching new
// tasks; tasks already in flight stop at their next stage boundary,
// so no artifact is left half-written.
func Batch(ctx context.Context, tr TaskRunner, keys []domain.TaskKey, cfg Config) *Summary {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	log := clog.FromContext(ctx)
	log.With("tasks", len(keys)).With("workers", workers).Info("Starting batch")

	summary := NewSummary()
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(workers)
	for _, key := range keys {
		if ctx.Err() != nil {
			log.Info("Stopping dispatch, waiting for in-flight tasks")
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcome, err := tr.Run(ctx, key, cfg.Options)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				summary.Errs = append(summary.Errs, fmt.Errorf("%s: %w", key, err))
				return nil
			}
			summary.Add(outcome)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	sort.Slice(summary.Outcomes, func(i, j int) bool {
		return summary.Outcomes[i].Key.String() < summary.Outcomes[j].Key.String()
	})
	log.With("succeeded", summary.Succeeded).With("skipped", summary.Skipped).
		With("failed", summary.Failed).With("errors", len(summary.Errs)).Info("Batch finished")
	return summary
}
