/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/apexlabs/groundcheck/domain"
)

func testKey(task string) domain.TaskKey {
	return domain.TaskKey{
		RunKey: domain.RunKey{Domain: domain.DomainGaming, Model: "gemini-2.5-pro", Run: 1},
		TaskID: task,
	}
}

func TestWriteAndReadArtifact(t *testing.T) {
	s := NewFileStore(t.TempDir(), "gemini")
	ctx := context.Background()
	key := testKey("gaming-001")

	want := &domain.GroundedResponse{
		Text:      "Try Hades for a roguelike with a real story.",
		Citations: []domain.Citation{{URL: "https://example.com/hades"}},
	}
	if err := s.WriteArtifact(ctx, key, StageResponse, want); err != nil {
		t.Fatalf("WriteArtifact() error = %v", err)
	}

	var got domain.GroundedResponse
	if err := s.ReadArtifact(ctx, key, StageResponse, &got); err != nil {
		t.Fatalf("ReadArtifact() error = %v", err)
	}
	if diff := cmp.Diff(want, &got); diff != "" {
		t.Errorf("artifact diff (-want +got):\n%s", diff)
	}

	status, err := s.ReadStatus(ctx, key)
	if err != nil {
		t.Fatalf("ReadStatus() error = %v", err)
	}
	if got := status.State(StageResponse); got != StateDone {
		t.Errorf("response stage = %s, want %s", got, StateDone)
	}
	if got := status.State(StageGrades); got != StateNotStarted {
		t.Errorf("grades stage = %s, want %s", got, StateNotStarted)
	}
}

func TestReadStatusMissingIsFresh(t *testing.T) {
	s := NewFileStore(t.TempDir(), "gemini")
	status, err := s.ReadStatus(context.Background(), testKey("gaming-404"))
	if err != nil {
		t.Fatalf("ReadStatus() error = %v", err)
	}
	for _, stage := range Stages {
		if got := status.State(stage); got != StateNotStarted {
			t.Errorf("stage %s = %s, want %s", stage, got, StateNotStarted)
		}
	}
}

func TestReadArtifactMissing(t *testing.T) {
	s := NewFileStore(t.TempDir(), "gemini")
	var out domain.GroundedResponse
	err := s.ReadArtifact(context.Background(), testKey("gaming-404"), StageResponse, &out)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadArtifact() error = %v, want fs.ErrNotExist", err)
	}
}

func TestMarkStageFailedKeepsArtifacts(t *testing.T) {
	s := NewFileStore(t.TempDir(), "gemini")
	ctx := context.Background()
	key := testKey("gaming-001")

	response := &domain.GroundedResponse{Text: "answer"}
	if err := s.WriteArtifact(ctx, key, StageResponse, response); err != nil {
		t.Fatalf("WriteArtifact() error = %v", err)
	}
	if err := s.MarkStageFailed(ctx, key, StageSources, "scraper unreachable"); err != nil {
		t.Fatalf("MarkStageFailed() error = %v", err)
	}

	status, err := s.ReadStatus(ctx, key)
	if err != nil {
		t.Fatalf("ReadStatus() error = %v", err)
	}
	if got := status.State(StageSources); got != StateFailed {
		t.Errorf("sources stage = %s, want %s", got, StateFailed)
	}
	if got := status.Failures[StageSources]; got != "scraper unreachable" {
		t.Errorf("failure reason = %q", got)
	}
	if got := status.State(StageResponse); got != StateDone {
		t.Errorf("response stage = %s, want %s", got, StateDone)
	}

	var got domain.GroundedResponse
	if err := s.ReadArtifact(ctx, key, StageResponse, &got); err != nil {
		t.Fatalf("prior artifact unreadable after failure: %v", err)
	}
}

func TestWriteArtifactOverwriteClearsFailure(t *testing.T) {
	s := NewFileStore(t.TempDir(), "gemini")
	ctx := context.Background()
	key := testKey("gaming-001")

	if err := s.MarkStageFailed(ctx, key, StageResponse, "rate limited"); err != nil {
		t.Fatalf("MarkStageFailed() error = %v", err)
	}
	if err := s.WriteArtifact(ctx, key, StageResponse, &domain.GroundedResponse{Text: "retry worked"}); err != nil {
		t.Fatalf("WriteArtifact() error = %v", err)
	}

	status, err := s.ReadStatus(ctx, key)
	if err != nil {
		t.Fatalf("ReadStatus() error = %v", err)
	}
	if got := status.State(StageResponse); got != StateDone {
		t.Errorf("response stage = %s, want %s", got, StateDone)
	}
	if _, ok := status.Failures[StageResponse]; ok {
		t.Error("stale failure reason survived a successful overwrite")
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root, "gemini")
	key := testKey("gaming-001")
	if err := s.WriteArtifact(context.Background(), key, StageResponse, &domain.GroundedResponse{Text: "x"}); err != nil {
		t.Fatalf("WriteArtifact() error = %v", err)
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasPrefix(d.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walking tree: %v", err)
	}
}

func TestListTasks(t *testing.T) {
	s := NewFileStore(t.TempDir(), "gemini")
	ctx := context.Background()
	run := domain.RunKey{Domain: domain.DomainGaming, Model: "gemini-2.5-pro", Run: 1}

	for _, id := range []string{"gaming-002", "gaming-001"} {
		key := domain.TaskKey{RunKey: run, TaskID: id}
		if err := s.WriteArtifact(ctx, key, StageTestcase, &domain.Task{TaskID: id}); err != nil {
			t.Fatalf("WriteArtifact() error = %v", err)
		}
	}
	// A task dir without a testcase artifact is not enumerable.
	stray := domain.TaskKey{RunKey: run, TaskID: "gaming-stray"}
	if err := s.MarkStageFailed(ctx, stray, StageResponse, "x"); err != nil {
		t.Fatalf("MarkStageFailed() error = %v", err)
	}

	got, err := s.ListTasks(ctx, run)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if diff := cmp.Diff([]string{"gaming-001", "gaming-002"}, got); diff != "" {
		t.Errorf("ListTasks() diff (-want +got):\n%s", diff)
	}
}

func TestClearRun(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root, "gemini")
	ctx := context.Background()

	key1 := testKey("gaming-001")
	key2 := domain.TaskKey{
		RunKey: domain.RunKey{Domain: domain.DomainGaming, Model: "gemini-2.5-pro", Run: 2},
		TaskID: "gaming-001",
	}
	for _, k := range []domain.TaskKey{key1, key2} {
		if err := s.WriteArtifact(ctx, k, StageTestcase, &domain.Task{TaskID: k.TaskID}); err != nil {
			t.Fatalf("WriteArtifact() error = %v", err)
		}
	}

	if err := s.ClearRun(ctx, key1.RunKey); err != nil {
		t.Fatalf("ClearRun() error = %v", err)
	}

	if tasks, _ := s.ListTasks(ctx, key1.RunKey); len(tasks) != 0 {
		t.Errorf("run 1 still has tasks after clear: %v", tasks)
	}
	if tasks, _ := s.ListTasks(ctx, key2.RunKey); len(tasks) != 1 {
		t.Errorf("run 2 tasks = %v, want one survivor", tasks)
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("store root removed by clear: %v", err)
	}
}

func TestClearRunRejectsInvalidKey(t *testing.T) {
	s := NewFileStore(t.TempDir(), "gemini")
	err := s.ClearRun(context.Background(), domain.RunKey{Domain: domain.DomainGaming, Model: "m", Run: 9})
	if err == nil {
		t.Error("ClearRun() accepted out-of-range run")
	}
}
