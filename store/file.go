/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/apexlabs/groundcheck/domain"
)

// FileStore is the authoritative artifact store: one directory per task
// at <root>/<provider>/<model>/<domain>/run-<n>/<task_id>/, holding one
// JSON file per stage plus status.json.
type FileStore struct {
	root     string
	provider string
}

// NewFileStore creates a store rooted at root for one provider's models.
func NewFileStore(root, provider string) *FileStore {
	return &FileStore{root: root, provider: provider}
}

func (s *FileStore) runDir(key domain.RunKey) string {
	return filepath.Join(s.root, s.provider, key.Model, string(key.Domain), fmt.Sprintf("run-%d", key.Run))
}

func (s *FileStore) taskDir(key domain.TaskKey) string {
	return filepath.Join(s.runDir(key.RunKey), key.TaskID)
}

// ReadStatus loads the task's stage ledger. A task with no ledger on
// disk gets a fresh all-not-started one.
func (s *FileStore) ReadStatus(_ context.Context, key domain.TaskKey) (*Status, error) {
	var status Status
	err := readJSON(filepath.Join(s.taskDir(key), "status.json"), &status)
	switch {
	case err == nil:
		return &status, nil
	case os.IsNotExist(err):
		return NewStatus(), nil
	default:
		return nil, err
	}
}

// ReadArtifact loads the stage's artifact into out. A missing artifact
// satisfies errors.Is(err, fs.ErrNotExist).
func (s *FileStore) ReadArtifact(_ context.Context, key domain.TaskKey, stage Stage, out any) error {
	return readJSON(filepath.Join(s.taskDir(key), stage.Filename()), out)
}

// WriteArtifact atomically writes the stage artifact, then marks the
// stage done in the ledger. A crash between the two writes leaves the
// artifact present but the stage not done; the stage simply re-runs and
// overwrites on the next entry.
func (s *FileStore) WriteArtifact(ctx context.Context, key domain.TaskKey, stage Stage, v any) error {
	dir := s.taskDir(key)
	if err := writeJSON(filepath.Join(dir, stage.Filename()), v); err != nil {
		return fmt.Errorf("writing %s artifact for %s: %w", stage, key, err)
	}
	return s.updateStatus(ctx, key, func(st *Status) { st.markDone(stage) })
}

// MarkStageFailed records a stage failure without touching any artifact
// already on disk.
func (s *FileStore) MarkStageFailed(ctx context.Context, key domain.TaskKey, stage Stage, reason string) error {
	return s.updateStatus(ctx, key, func(st *Status) { st.markFailed(stage, reason) })
}

func (s *FileStore) updateStatus(ctx context.Context, key domain.TaskKey, mutate func(*Status)) error {
	status, err := s.ReadStatus(ctx, key)
	if err != nil {
		return fmt.Errorf("reading status for %s: %w", key, err)
	}
	mutate(status)
	if err := writeJSON(filepath.Join(s.taskDir(key), "status.json"), status); err != nil {
		return fmt.Errorf("writing status for %s: %w", key, err)
	}
	return nil
}

// ListTasks returns the IDs of every task materialized under the run,
// sorted for deterministic dispatch order.
func (s *FileStore) ListTasks(_ context.Context, key domain.RunKey) ([]string, error) {
	entries, err := os.ReadDir(s.runDir(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing run %s/%s/run-%d: %w", key.Domain, key.Model, key.Run, err)
	}
	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.runDir(key), e.Name(), StageTestcase.Filename())); err == nil {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ClearRun removes every artifact of the run.
func (s *FileStore) ClearRun(_ context.Context, key domain.RunKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	return os.RemoveAll(s.runDir(key))
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// writeJSON writes via a temp file in the target directory plus rename,
// so a reader never observes a partially written artifact.
func writeJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), fs.FileMode(0o644)); err != nil {
		return fmt.Errorf("setting mode: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
