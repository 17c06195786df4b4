/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/apexlabs/groundcheck/pipeline"
	"github.com/apexlabs/groundcheck/store"
)

func newSummaryTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		MaxWidth: 100,
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// Write renders the batch summary as a markdown table, one row per
// task, followed by aggregate counts.
func (s *Summary) Write(w io.Writer) error {
	table := newSummaryTable([]string{"Task", "State", "Failed Stage", "Total", "Hurdle Total"}, w)
	for _, o := range s.Outcomes {
		total, hurdleTotal := "-", "-"
		if o.Result != nil {
			total = strconv.Itoa(o.Result.Total)
			hurdleTotal = strconv.Itoa(o.Result.HurdleTotal)
		}
		failedStage := "-"
		if o.State == pipeline.StageFailed {
			failedStage = string(o.FailedStage)
		}
		if err := table.Append([]string{o.Key.String(), string(o.State), failedStage, total, hurdleTotal}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d succeeded, %d skipped, %d stage-failed", s.Succeeded, s.Skipped, s.Failed)
	for _, stage := range store.Stages {
		if n := s.FailedByStage[stage]; n > 0 {
			fmt.Fprintf(w, " (%s: %d)", stage, n)
		}
	}
	fmt.Fprintln(w)
	if len(s.Errs) > 0 {
		fmt.Fprintf(w, "%d tasks could not run:\n", len(s.Errs))
		for _, err := range s.Errs {
			fmt.Fprintf(w, "  - %v\n", err)
		}
	}
	return nil
}
