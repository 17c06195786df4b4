/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package firestoremirror replicates local artifacts into Firestore so
// results can be browsed and aggregated off-machine. The mirror is
// best-effort: the local file tree stays authoritative and callers drop
// mirror errors after logging them.
package firestoremirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/apexlabs/groundcheck/domain"
	"github.com/apexlabs/groundcheck/store"
)

// Collection holds one document per (domain, model) pair, with one
// field per task fanning out to per-run artifact replicas.
const Collection = "task_outputs"

// opTimeout bounds every mirror operation so a slow Firestore can never
// stall the pipeline.
const opTimeout = 10 * time.Second

// Mirror implements store.Mirror on Firestore.
type Mirror struct {
	client *firestore.Client
}

// New connects to Firestore in the given project.
func New(ctx context.Context, projectID string, opts ...option.ClientOption) (*Mirror, error) {
	if projectID == "" {
		return nil, errors.New("firestore project ID is required")
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Firestore client: %w", err)
	}
	return &Mirror{client: client}, nil
}

// WriteArtifact implements store.Mirror.
func (m *Mirror) WriteArtifact(ctx context.Context, key domain.TaskKey, stage store.Stage, v any) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	value, err := toFirestoreValue(v)
	if err != nil {
		return err
	}
	data := map[string]any{
		"domain": string(key.Domain),
		"model":  key.Model,
		"tasks": map[string]any{
			fieldName(key.TaskID): map[string]any{
				runField(key.Run): map[string]any{
					string(stage): value,
				},
			},
		},
		"updated_at": firestore.ServerTimestamp,
	}
	_, err = m.doc(key.RunKey).Set(ctx, data, firestore.MergeAll)
	return err
}

// MarkStageFailed implements store.Mirror.
func (m *Mirror) MarkStageFailed(ctx context.Context, key domain.TaskKey, stage store.Stage, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data := map[string]any{
		"tasks": map[string]any{
			fieldName(key.TaskID): map[string]any{
				runField(key.Run): map[string]any{
					"failures": map[string]any{
						string(stage): reason,
					},
				},
			},
		},
		"updated_at": firestore.ServerTimestamp,
	}
	_, err := m.doc(key.RunKey).Set(ctx, data, firestore.MergeAll)
	return err
}

// ClearRun removes the run's replica from every task field of the
// (domain, model) document.
func (m *Mirror) ClearRun(ctx context.Context, key domain.RunKey) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := m.doc(key)
	snap, err := doc.Get(ctx)
	if err != nil {
		return err
	}
	tasks, ok := snap.Data()["tasks"].(map[string]any)
	if !ok || len(tasks) == 0 {
		return nil
	}
	updates := make([]firestore.Update, 0, len(tasks))
	for task := range tasks {
		updates = append(updates, firestore.Update{
			FieldPath: firestore.FieldPath{"tasks", task, runField(key.Run)},
			Value:     firestore.Delete,
		})
	}
	_, err = doc.Update(ctx, updates)
	return err
}

// Close implements store.Mirror.
func (m *Mirror) Close() error { return m.client.Close() }

func (m *Mirror) doc(key domain.RunKey) *firestore.DocumentRef {
	id := fmt.Sprintf("%s__%s", key.Domain, fieldName(key.Model))
	return m.client.Collection(Collection).Doc(id)
}

func runField(run int) string { return fmt.Sprintf("run-%d", run) }

// fieldName makes an identifier safe for use as a Firestore field name
// or document ID.
func fieldName(s string) string {
	return strings.NewReplacer("/", "__", ".", "_").Replace(s)
}

// toFirestoreValue converts an artifact to plain maps and scalars via a
// JSON round trip, so Firestore sees the same shape as the local file.
func toFirestoreValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling artifact: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("round-tripping artifact: %w", err)
	}
	return out, nil
}
