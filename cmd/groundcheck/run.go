/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apexlabs/groundcheck/domain"
	"github.com/apexlabs/groundcheck/pipeline"
	"github.com/apexlabs/groundcheck/runner"
)

func newRunCmd() *cobra.Command {
	var flags runFlags
	var taskID string
	var force, skipAutograder bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline for a single task",
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

			outcome, err := controller.Run(ctx, domain.TaskKey{RunKey: runKey, TaskID: taskID}, pipeline.Options{
				Force:          force,
				SkipAutograder: skipAutograder,
			})
			if err != nil {
				return err
			}
			return printOutcome(cmd, outcome)
		},
	}
	flags.register(cmd, true)
	cmd.Flags().StringVar(&taskID, "task", "", "task identifier")
	cobra.CheckErr(cmd.MarkFlagRequired("task"))
	cmd.Flags().BoolVar(&force, "force", false, "re-run stages whose artifacts already exist")
	cmd.Flags().BoolVar(&skipAutograder, "skip-autograder", false, "stop after source resolution")
	return cmd
}

func printOutcome(cmd *cobra.Command, outcome *pipeline.Outcome) error {
	summary := runner.NewSummary()
	summary.Add(outcome)
	if err := summary.Write(cmd.OutOrStdout()); err != nil {
		return err
	}
	if outcome.State == pipeline.StageFailed {
		return fmt.Errorf("stage %s failed: %s", outcome.FailedStage, outcome.FailureReason)
	}
	return nil
}
