/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apexlabs/groundcheck/domain"
)

func newClearCmd() *cobra.Command {
	var flags runFlags
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every artifact of one run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			runKey, err := flags.key()
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd, fmt.Sprintf("Delete all artifacts of %s/%s run %d?",
				runKey.Domain, runKey.Model, runKey.Run)) {
				return nil
			}

			app, err := newApp(ctx, flags.model)
			if err != nil {
				return err
			}
			defer app.close(ctx)
			if err := app.store.ClearRun(ctx, runKey); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s/%s run %d\n", runKey.Domain, runKey.Model, runKey.Run)
			return nil
		},
	}
	flags.register(cmd, true)
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func newClearRangeCmd() *cobra.Command {
	var flags runFlags
	var from, to int
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear-range",
		Short: "Delete every artifact of a contiguous range of runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d, err := flags.domainOnly()
			if err != nil {
				return err
			}
			if from > to {
				return fmt.Errorf("--from %d is after --to %d", from, to)
			}
			for run := from; run <= to; run++ {
				if err := (domain.RunKey{Domain: d, Model: flags.model, Run: run}).Validate(); err != nil {
					return err
				}
			}
			if !yes && !confirm(cmd, fmt.Sprintf("Delete all artifacts of %s/%s runs %d-%d?",
				d, flags.model, from, to)) {
				return nil
			}

			app, err := newApp(ctx, flags.model)
			if err != nil {
				return err
			}
			defer app.close(ctx)
			for run := from; run <= to; run++ {
				runKey := domain.RunKey{Domain: d, Model: flags.model, Run: run}
				if err := app.store.ClearRun(ctx, runKey); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s/%s run %d\n", d, flags.model, run)
			}
			return nil
		},
	}
	flags.register(cmd, false)
	cmd.Flags().IntVar(&from, "from", 0, "first run to clear")
	cmd.Flags().IntVar(&to, "to", 0, "last run to clear")
	cobra.CheckErr(cmd.MarkFlagRequired("from"))
	cobra.CheckErr(cmd.MarkFlagRequired("to"))
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
