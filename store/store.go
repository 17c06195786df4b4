/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package store persists per-task pipeline artifacts. The local file
// tree is authoritative; a mirror, when configured, receives best-effort
// replicas and never blocks or fails a local write.
package store

import (
	"context"
	"time"

	"github.com/apexlabs/groundcheck/domain"
)

// Stage names one pipeline stage whose artifact the store tracks.
type Stage string

const (
	StageTestcase Stage = "testcase"
	StageResponse Stage = "response"
	StageSources  Stage = "sources"
	StageGrades   Stage = "grades"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageTestcase, StageResponse, StageSources, StageGrades}

// Filename returns the artifact filename for the stage.
func (s Stage) Filename() string { return string(s) + ".json" }

// StageState is the recorded outcome of one stage for one task.
type StageState string

const (
	StateNotStarted StageState = "not_started"
	StateDone       StageState = "done"
	StateFailed     StageState = "failed"
)

// Status is the per-task stage ledger, persisted as status.json next to
// the artifacts. It is consulted before dispatching any stage so that
// re-entry skips completed work.
type Status struct {
	Stages   map[Stage]StageState `json:"stages"`
	Failures map[Stage]string     `json:"failures,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewStatus returns a ledger with every stage not started.
func NewStatus() *Status {
	s := &Status{Stages: make(map[Stage]StageState, len(Stages))}
	for _, stage := range Stages {
		s.Stages[stage] = StateNotStarted
	}
	return s
}

// State reports the stage's recorded state, defaulting to not started.
func (s *Status) State(stage Stage) StageState {
	if st, ok := s.Stages[stage]; ok {
		return st
	}
	return StateNotStarted
}

func (s *Status) markDone(stage Stage) {
	s.Stages[stage] = StateDone
	delete(s.Failures, stage)
	s.UpdatedAt = time.Now().UTC()
}

func (s *Status) markFailed(stage Stage, reason string) {
	s.Stages[stage] = StateFailed
	if s.Failures == nil {
		s.Failures = make(map[Stage]string)
	}
	s.Failures[stage] = reason
	s.UpdatedAt = time.Now().UTC()
}

// Mirror receives best-effort replicas of local writes. Implementations
// must be safe for concurrent use.
type Mirror interface {
	WriteArtifact(ctx context.Context, key domain.TaskKey, stage Stage, v any) error
	MarkStageFailed(ctx context.Context, key domain.TaskKey, stage Stage, reason string) error
	ClearRun(ctx context.Context, key domain.RunKey) error
	Close() error
}
