/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics provides OpenTelemetry counters for pipeline activity.
// Counter creation degrades to no-ops rather than failing the run.
package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "apexlabs.groundcheck"

// Pipeline counts per-stage outcomes and per-task verdict totals.
type Pipeline struct {
	stageOutcomes metric.Int64Counter
	tasksGraded   metric.Int64Counter
	hurdleHits    metric.Int64Counter
}

// NewPipeline creates the pipeline metrics instance. A counter that
// fails to initialize logs a warning and records nothing.
func NewPipeline() *Pipeline {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	stageOutcomes, err := meter.Int64Counter("pipeline.stage.outcomes",
		metric.WithDescription("Pipeline stage executions by stage and outcome"),
		metric.WithUnit("{stages}"))
	if err != nil {
		slog.Warn("Failed to create stage outcome counter, metrics disabled", "error", err)
		stageOutcomes = noop.Int64Counter{}
	}

	tasksGraded, err := meter.Int64Counter("pipeline.tasks.graded",
		metric.WithDescription("Tasks that reached a grading verdict"),
		metric.WithUnit("{tasks}"))
	if err != nil {
		slog.Warn("Failed to create graded task counter, metrics disabled", "error", err)
		tasksGraded = noop.Int64Counter{}
	}

	hurdleHits, err := meter.Int64Counter("pipeline.hurdle.hits",
		metric.WithDescription("Tasks whose total was capped by a failed hurdle criterion"),
		metric.WithUnit("{tasks}"))
	if err != nil {
		slog.Warn("Failed to create hurdle hit counter, metrics disabled", "error", err)
		hurdleHits = noop.Int64Counter{}
	}

	return &Pipeline{
		stageOutcomes: stageOutcomes,
		tasksGraded:   tasksGraded,
		hurdleHits:    hurdleHits,
	}
}

// RecordStage counts one stage execution.
func (m *Pipeline) RecordStage(ctx context.Context, model, stage, outcome string) {
	m.stageOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("stage", stage),
		attribute.String("outcome", outcome),
	))
}

// RecordGraded counts one fully graded task.
func (m *Pipeline) RecordGraded(ctx context.Context, model string, hurdleHit bool) {
	attrs := metric.WithAttributes(attribute.String("model", model))
	m.tasksGraded.Add(ctx, 1, attrs)
	if hurdleHit {
		m.hurdleHits.Add(ctx, 1, attrs)
	}
}
