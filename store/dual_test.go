/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/apexlabs/groundcheck/domain"
)

type recordingMirror struct {
	writes  int
	fails   int
	clears  int
	failAll bool
}

func (m *recordingMirror) WriteArtifact(context.Context, domain.TaskKey, Stage, any) error {
	m.writes++
	if m.failAll {
		return errors.New("firestore unavailable")
	}
	return nil
}

func (m *recordingMirror) MarkStageFailed(context.Context, domain.TaskKey, Stage, string) error {
	m.fails++
	if m.failAll {
		return errors.New("firestore unavailable")
	}
	return nil
}

func (m *recordingMirror) ClearRun(context.Context, domain.RunKey) error {
	m.clears++
	if m.failAll {
		return errors.New("firestore unavailable")
	}
	return nil
}

func (m *recordingMirror) Close() error { return nil }

func TestDualReplicatesWrites(t *testing.T) {
	mirror := &recordingMirror{}
	d := NewDual(NewFileStore(t.TempDir(), "gemini"), mirror)
	ctx := context.Background()
	key := testKey("gaming-001")

	if err := d.WriteArtifact(ctx, key, StageResponse, &domain.GroundedResponse{Text: "x"}); err != nil {
		t.Fatalf("WriteArtifact() error = %v", err)
	}
	if err := d.MarkStageFailed(ctx, key, StageSources, "timeout"); err != nil {
		t.Fatalf("MarkStageFailed() error = %v", err)
	}
	if err := d.ClearRun(ctx, key.RunKey); err != nil {
		t.Fatalf("ClearRun() error = %v", err)
	}

	if mirror.writes != 1 || mirror.fails != 1 || mirror.clears != 1 {
		t.Errorf("mirror calls = (%d, %d, %d), want (1, 1, 1)", mirror.writes, mirror.fails, mirror.clears)
	}
}

func TestDualMirrorFailureIsNotFatal(t *testing.T) {
	d := NewDual(NewFileStore(t.TempDir(), "gemini"), &recordingMirror{failAll: true})
	ctx := context.Background()
	key := testKey("gaming-001")

	if err := d.WriteArtifact(ctx, key, StageResponse, &domain.GroundedResponse{Text: "x"}); err != nil {
		t.Fatalf("WriteArtifact() error = %v, want nil despite mirror failure", err)
	}

	// The authoritative copy landed.
	var got domain.GroundedResponse
	if err := d.ReadArtifact(ctx, key, StageResponse, &got); err != nil {
		t.Fatalf("ReadArtifact() error = %v", err)
	}
	if got.Text != "x" {
		t.Errorf("artifact text = %q, want %q", got.Text, "x")
	}
}

func TestDualNilMirror(t *testing.T) {
	d := NewDual(NewFileStore(t.TempDir(), "gemini"), nil)
	ctx := context.Background()
	key := testKey("gaming-001")

	if err := d.WriteArtifact(ctx, key, StageResponse, &domain.GroundedResponse{Text: "x"}); err != nil {
		t.Fatalf("WriteArtifact() error = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
