/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apexlabs/groundcheck/domain"
)

var flagLocalOnly bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "groundcheck",
		Short:         "Grounded-response evaluation pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&flagLocalOnly, "local-only", false, "skip the Firestore results mirror")
	root.AddCommand(newInitCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newClearCmd())
	root.AddCommand(newClearRangeCmd())
	root.AddCommand(newRegradeCmd())
	return root
}

// runFlags are the identifying flags shared by every command that
// addresses a (domain, model, run) triple.
type runFlags struct {
	domain string
	model  string
	run    int
}

func (f *runFlags) register(cmd *cobra.Command, withRun bool) {
	cmd.Flags().StringVar(&f.domain, "domain", "", "task domain (Shopping, Gaming, or Food)")
	cmd.Flags().StringVar(&f.model, "model", "", "model identifier under evaluation")
	cobra.CheckErr(cmd.MarkFlagRequired("domain"))
	cobra.CheckErr(cmd.MarkFlagRequired("model"))
	if withRun {
		cmd.Flags().IntVar(&f.run, "run", 0, fmt.Sprintf("run number (%d-%d)", domain.MinRun, domain.MaxRun))
		cobra.CheckErr(cmd.MarkFlagRequired("run"))
	}
}

func (f *runFlags) key() (domain.RunKey, error) {
	d, err := domain.ParseDomain(f.domain)
	if err != nil {
		return domain.RunKey{}, err
	}
	key := domain.RunKey{Domain: d, Model: f.model, Run: f.run}
	if err := key.Validate(); err != nil {
		return domain.RunKey{}, err
	}
	return key, nil
}

// domainOnly resolves the flags into a run key without validating the
// run number, for commands that span runs.
func (f *runFlags) domainOnly() (domain.Domain, error) {
	return domain.ParseDomain(f.domain)
}
