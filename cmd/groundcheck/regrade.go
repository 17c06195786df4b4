/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/apexlabs/groundcheck/domain"
	"github.com/apexlabs/groundcheck/pipeline"
	"github.com/apexlabs/groundcheck/store"
)

func newRegradeCmd() *cobra.Command {
	var flags runFlags
	var taskID string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "regrade",
		Short: "Re-run grading for a task, reusing its response and sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			runKey, err := flags.key()
			if err != nil {
				return err
			}
			key := domain.TaskKey{RunKey: runKey, TaskID: taskID}

			app, err := newApp(ctx, flags.model)
			if err != nil {
				return err
			}
			defer app.close(ctx)

			if dryRun {
				var result domain.TaskResult
				err := app.store.ReadArtifact(ctx, key, store.StageGrades, &result)
				switch {
				case errors.Is(err, fs.ErrNotExist):
					fmt.Fprintf(cmd.OutOrStdout(), "%s has no grades yet; regrade would grade it\n", key)
					return nil
				case err != nil:
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: total %d, hurdle total %d; regrade would replace these\n",
					key, result.Total, result.HurdleTotal)
				return nil
			}

			controller, err := app.newController(ctx, flags.model, false)
			if err != nil {
				return err
			}
			outcome, err := controller.Run(ctx, key, pipeline.Options{ForceGrades: true})
			if err != nil {
				return err
			}
			return printOutcome(cmd, outcome)
		},
	}
	flags.register(cmd, true)
	cmd.Flags().StringVar(&taskID, "task", "", "task identifier")
	cobra.CheckErr(cmd.MarkFlagRequired("task"))
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the current grades without regrading")
	return cmd
}
