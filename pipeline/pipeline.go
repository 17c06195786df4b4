/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package pipeline drives one task through the three evaluation stages:
// grounded generation, source resolution, and grading. Every stage's
// artifact is persisted before the next stage starts, and a completed
// stage is never re-executed on re-entry unless forced, so a run can be
// interrupted and resumed at any point.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/chainguard-dev/clog"

	"github.com/apexlabs/groundcheck/domain"
	"github.com/apexlabs/groundcheck/evidence"
	"github.com/apexlabs/groundcheck/grader"
	"github.com/apexlabs/groundcheck/metrics"
	"github.com/apexlabs/groundcheck/provider"
	"github.com/apexlabs/groundcheck/sources"
	"github.com/apexlabs/groundcheck/store"
)

// Store is the slice of the artifact store the controller needs.
type Store interface {
	ReadStatus(ctx context.Context, key domain.TaskKey) (*store.Status, error)
	ReadArtifact(ctx context.Context, key domain.TaskKey, stage store.Stage, out any) error
	WriteArtifact(ctx context.Context, key domain.TaskKey, stage store.Stage, v any) error
	MarkStageFailed(ctx context.Context, key domain.TaskKey, stage store.Stage, reason string) error
}

// Options controls re-entry behavior for one task execution.
type Options struct {
	// Force re-runs every stage even when its artifact is already done.
	Force bool
	// ForceGrades re-runs the grading stage only, reusing the response
	// and sources artifacts.
	ForceGrades bool
	// SkipAutograder stops the pipeline after source resolution.
	SkipAutograder bool
}

// State is the terminal outcome of one task execution.
type State string

const (
	// Succeeded means every requested stage is done.
	Succeeded State = "succeeded"
	// StageFailed means a stage failed and was recorded; earlier
	// artifacts are intact and a later run may retry.
	StageFailed State = "stage-failed"
	// Skipped means every requested stage was already done and nothing
	// executed.
	Skipped State = "skipped"
)

// Outcome reports what one Run did.
type Outcome struct {
	Key           domain.TaskKey
	State         State
	FailedStage   store.Stage
	FailureReason string

	// Result carries the grading totals when the task has them.
	Result *domain.TaskResult
}

// Controller executes the pipeline for single tasks.
type Controller struct {
	store    Store
	provider provider.Provider
	resolver *sources.Resolver
	mapper   *evidence.Mapper
	grader   *grader.Autograder
	metrics  *metrics.Pipeline
}

// New assembles a controller. A nil metrics instance gets a default.
func New(st Store, p provider.Provider, resolver *sources.Resolver, mapper *evidence.Mapper, g *grader.Autograder, m *metrics.Pipeline) *Controller {
	if m == nil {
		m = metrics.NewPipeline()
	}
	return &Controller{store: st, provider: p, resolver: resolver, mapper: mapper, grader: g, metrics: m}
}

// Run drives one task through the stages it still needs. Stage failures
// are recorded in the store and reported in the outcome; the returned
// error is reserved for infrastructure problems such as an unreadable
// store or a cancelled context.
func (c *Controller) Run(ctx context.Context, key domain.TaskKey, opts Options) (*Outcome, error) {
	log := clog.FromContext(ctx).With("task", key.String())

	// Cancellation is honored between stages only: a stage that has
	// started runs to completion under work and persists its artifact,
	// so an interrupt never leaves a stage half-done.
	work := context.WithoutCancel(ctx)

	status, err := c.store.ReadStatus(ctx, key)
	if err != nil {
		return nil, err
	}

	var task domain.Task
	if err := c.store.ReadArtifact(ctx, key, store.StageTestcase, &task); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("task %s has no testcase artifact; run init first: %w", key, err)
		}
		return nil, err
	}

	executed := 0

	var response domain.GroundedResponse
	if opts.Force || status.State(store.StageResponse) != store.StateDone {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		executed++
		log.Info("Generating grounded response")
		resp, err := c.generate(work, &task)
		if err != nil {
			return c.failStage(work, key, store.StageResponse, err)
		}
		if err := c.store.WriteArtifact(work, key, store.StageResponse, resp); err != nil {
			return nil, err
		}
		c.metrics.RecordStage(work, key.Model, string(store.StageResponse), "done")
		response = *resp
	} else if err := c.store.ReadArtifact(ctx, key, store.StageResponse, &response); err != nil {
		return nil, fmt.Errorf("response artifact for %s is unreadable: %w", key, err)
	}

	var evidenceMap domain.EvidenceMap
	if opts.Force || status.State(store.StageSources) != store.StateDone {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		executed++
		log.Info("Resolving cited sources")
		resolved := c.resolver.ResolveResponse(work, &response)
		evidenceMap = *c.mapper.Map(response.Text, resolved)
		if err := c.store.WriteArtifact(work, key, store.StageSources, &evidenceMap); err != nil {
			return nil, err
		}
		c.metrics.RecordStage(work, key.Model, string(store.StageSources), "done")
	} else if err := c.store.ReadArtifact(ctx, key, store.StageSources, &evidenceMap); err != nil {
		return nil, fmt.Errorf("sources artifact for %s is unreadable: %w", key, err)
	}

	if opts.SkipAutograder {
		return c.finish(key, executed, nil), nil
	}

	var result *domain.TaskResult
	if opts.Force || opts.ForceGrades || status.State(store.StageGrades) != store.StateDone {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		executed++
		log.Info("Grading response")
		scores, err := c.grader.GradeAll(work, &task, &response, &evidenceMap)
		if err != nil {
			return c.failStage(work, key, store.StageGrades, err)
		}
		result, err = domain.NewTaskResult(key, task.Criteria, scores)
		if err != nil {
			return c.failStage(work, key, store.StageGrades, err)
		}
		if err := c.store.WriteArtifact(work, key, store.StageGrades, result); err != nil {
			return nil, err
		}
		c.metrics.RecordStage(work, key.Model, string(store.StageGrades), "done")
		c.metrics.RecordGraded(work, key.Model, result.HurdleHit)
		log.With("total", result.Total).With("hurdle_total", result.HurdleTotal).Info("Task graded")
	} else {
		result = &domain.TaskResult{}
		if err := c.store.ReadArtifact(ctx, key, store.StageGrades, result); err != nil {
			return nil, fmt.Errorf("grades artifact for %s is unreadable: %w", key, err)
		}
	}

	return c.finish(key, executed, result), nil
}

func (c *Controller) finish(key domain.TaskKey, executed int, result *domain.TaskResult) *Outcome {
	state := Succeeded
	if executed == 0 {
		state = Skipped
	}
	return &Outcome{Key: key, State: state, Result: result}
}

func (c *Controller) failStage(ctx context.Context, key domain.TaskKey, stage store.Stage, cause error) (*Outcome, error) {
	c.metrics.RecordStage(ctx, key.Model, string(stage), "failed")
	clog.FromContext(ctx).With("task", key.String()).With("stage", stage).
		With("error", cause.Error()).Warn("Stage failed")
	if err := c.store.MarkStageFailed(ctx, key, stage, cause.Error()); err != nil {
		return nil, err
	}
	return &Outcome{
		Key:           key,
		State:         StageFailed,
		FailedStage:   stage,
		FailureReason: cause.Error(),
	}, nil
}

func (c *Controller) generate(ctx context.Context, task *domain.Task) (*domain.GroundedResponse, error) {
	prompt, err := buildTaskPrompt(task)
	if err != nil {
		return nil, err
	}
	return c.provider.GenerateGrounded(ctx, prompt)
}
