/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apexlabs/groundcheck/domain"
	"github.com/apexlabs/groundcheck/pipeline"
	"github.com/apexlabs/groundcheck/runner"
)

func newBatchCmd() *cobra.Command {
	var flags runFlags
	var workers int
	var force, skipAutograder bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run the pipeline for every initialized task of a run",
		Long: `Enumerates every task materialized for the (domain, model, run)
triple and drives each through the pipeline with bounded parallelism.
Tasks whose artifacts are already complete are skipped, so an
interrupted batch picks up where it left off.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			runKey, err := flags.key()
			if err != nil {
				return err
			}

			app, err := newApp(ctx, flags.model)
			if err != nil {
				return err
			}
			defer app.close(ctx)

			controller, err := app.newController(ctx, flags.model, skipAutograder)
			if err != nil {
				return err
			}

			taskIDs, err := app.store.ListTasks(ctx, runKey)
			if err != nil {
				return err
			}
			if len(taskIDs) == 0 {
				return fmt.Errorf("no tasks initialized for %s/%s run %d; run init first",
					runKey.Domain, runKey.Model, runKey.Run)
			}
			keys := make([]domain.TaskKey, 0, len(taskIDs))
			for _, id := range taskIDs {
				keys = append(keys, domain.TaskKey{RunKey: runKey, TaskID: id})
			}

			summary := runner.Batch(ctx, controller, keys, runner.Config{
				Workers: workers,
				Options: pipeline.Options{Force: force, SkipAutograder: skipAutograder},
			})
			if err := summary.Write(cmd.OutOrStdout()); err != nil {
				return err
			}
			if len(summary.Errs) > 0 {
				return errors.Join(summary.Errs...)
			}
			return nil
		},
	}
	flags.register(cmd, true)
	cmd.Flags().IntVar(&workers, "workers", runner.DefaultWorkers, "max tasks in flight")
	cmd.Flags().BoolVar(&force, "force", false, "re-run stages whose artifacts already exist")
	cmd.Flags().BoolVar(&skipAutograder, "skip-autograder", false, "stop each task after source resolution")
	return cmd
}
