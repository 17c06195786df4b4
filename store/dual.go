/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package store

import (
	"context"

	"github.com/chainguard-dev/clog"

	"github.com/apexlabs/groundcheck/domain"
)

// Dual fans writes out to the local store and an optional mirror. The
// local write happens first and decides the outcome; a mirror failure is
// logged and dropped. Reads always come from the local store.
type Dual struct {
	local  *FileStore
	mirror Mirror
}

// NewDual wraps a file store with an optional mirror. A nil mirror
// yields a local-only store.
func NewDual(local *FileStore, mirror Mirror) *Dual {
	return &Dual{local: local, mirror: mirror}
}

// ReadStatus delegates to the local store.
func (d *Dual) ReadStatus(ctx context.Context, key domain.TaskKey) (*Status, error) {
	return d.local.ReadStatus(ctx, key)
}

// ReadArtifact delegates to the local store.
func (d *Dual) ReadArtifact(ctx context.Context, key domain.TaskKey, stage Stage, out any) error {
	return d.local.ReadArtifact(ctx, key, stage, out)
}

// ListTasks delegates to the local store.
func (d *Dual) ListTasks(ctx context.Context, key domain.RunKey) ([]string, error) {
	return d.local.ListTasks(ctx, key)
}

// WriteArtifact writes locally, then replicates to the mirror.
func (d *Dual) WriteArtifact(ctx context.Context, key domain.TaskKey, stage Stage, v any) error {
	if err := d.local.WriteArtifact(ctx, key, stage, v); err != nil {
		return err
	}
	if d.mirror != nil {
		if err := d.mirror.WriteArtifact(ctx, key, stage, v); err != nil {
			clog.FromContext(ctx).With("task", key.String()).With("stage", stage).
				With("error", err).Warn("Mirror write failed")
		}
	}
	return nil
}

// MarkStageFailed records the failure locally, then on the mirror.
func (d *Dual) MarkStageFailed(ctx context.Context, key domain.TaskKey, stage Stage, reason string) error {
	if err := d.local.MarkStageFailed(ctx, key, stage, reason); err != nil {
		return err
	}
	if d.mirror != nil {
		if err := d.mirror.MarkStageFailed(ctx, key, stage, reason); err != nil {
			clog.FromContext(ctx).With("task", key.String()).With("stage", stage).
				With("error", err).Warn("Mirror status write failed")
		}
	}
	return nil
}

// ClearRun clears locally, then on the mirror.
func (d *Dual) ClearRun(ctx context.Context, key domain.RunKey) error {
	if err := d.local.ClearRun(ctx, key); err != nil {
		return err
	}
	if d.mirror != nil {
		if err := d.mirror.ClearRun(ctx, key); err != nil {
			clog.FromContext(ctx).With("model", key.Model).With("run", key.Run).
				With("error", err).Warn("Mirror clear failed")
		}
	}
	return nil
}

// Close releases the mirror, if any.
func (d *Dual) Close() error {
	if d.mirror == nil {
		return nil
	}
	return d.mirror.Close()
}
