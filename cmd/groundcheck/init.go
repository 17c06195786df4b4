/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"github.com/apexlabs/groundcheck/dataset"
	"github.com/apexlabs/groundcheck/domain"
	"github.com/apexlabs/groundcheck/store"
)

func newInitCmd() *cobra.Command {
	var flags runFlags
	var datasetPath string
	var overwrite, dryRun bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Materialize testcase artifacts from the criteria dataset",
		Long: `Reads the domain's criteria CSV and writes a testcase artifact for
every task under every run. Tasks that already have a testcase are left
alone unless --overwrite is given, so init is safe to re-run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d, err := flags.domainOnly()
			if err != nil {
				return err
			}
			if datasetPath == "" {
				datasetPath = filepath.Join("datasets", strings.ToLower(string(d))+".csv")
			}
			tasks, err := dataset.Load(datasetPath, d)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				return fmt.Errorf("dataset %s has no tasks", datasetPath)
			}

			app, err := newApp(ctx, flags.model)
			if err != nil {
				return err
			}
			defer app.close(ctx)

			written, kept := 0, 0
			for run := domain.MinRun; run <= domain.MaxRun; run++ {
				runKey := domain.RunKey{Domain: d, Model: flags.model, Run: run}
				for i := range tasks {
					key := domain.TaskKey{RunKey: runKey, TaskID: tasks[i].TaskID}
					if !overwrite && hasTestcase(cmd, app, key) {
						kept++
						continue
					}
					if dryRun {
						fmt.Fprintf(cmd.OutOrStdout(), "would write %s\n", key)
						written++
						continue
					}
					if err := app.store.WriteArtifact(ctx, key, store.StageTestcase, &tasks[i]); err != nil {
						return err
					}
					written++
				}
			}
			clog.FromContext(ctx).With("written", written).With("kept", kept).
				With("dry_run", dryRun).Info("Initialization complete")
			fmt.Fprintf(cmd.OutOrStdout(), "%d testcases written, %d already present\n", written, kept)
			return nil
		},
	}
	flags.register(cmd, false)
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "criteria CSV path (default datasets/<domain>.csv)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "rewrite testcases that already exist")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be written without writing")
	return cmd
}

func hasTestcase(cmd *cobra.Command, app *app, key domain.TaskKey) bool {
	var existing domain.Task
	err := app.store.ReadArtifact(cmd.Context(), key, store.StageTestcase, &existing)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
