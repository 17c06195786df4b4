/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package dataset loads evaluation tasks from the criteria CSV. Each
// row is one criterion; rows sharing a Task ID form one task, with the
// prompt repeated on every row.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/apexlabs/groundcheck/domain"
)

// Column names in the criteria CSV. Task ID, Prompt, Criterion ID, and
// Description are required; the rest default when absent.
const (
	colTaskID      = "Task ID"
	colPrompt      = "Prompt"
	colCriterionID = "Criterion ID"
	colDescription = "Description"
	colType        = "Criterion Type"
	colHurdle      = "Hurdle Tag"
	colGrounding   = "Criterion Grounding Check"
	colReference   = "Reference Answer"
	colFocus       = "Product Focus"
)

// Load reads the criteria CSV at path into tasks for the domain.
func Load(path string, d domain.Domain) ([]domain.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()
	tasks, err := Read(f, d)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return tasks, nil
}

// Read parses criteria CSV content into tasks, preserving first-seen
// task order and ordering each task's criteria by criterion ID.
func Read(r io.Reader, d domain.Domain) ([]domain.Task, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colTaskID, colPrompt, colCriterionID, colDescription} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("dataset is missing required column %q", required)
		}
	}
	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	byID := make(map[string]*domain.Task)
	var order []string
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		taskID := field(record, colTaskID)
		if taskID == "" {
			return nil, fmt.Errorf("line %d: empty task ID", line)
		}
		criterionID, err := strconv.Atoi(field(record, colCriterionID))
		if err != nil {
			return nil, fmt.Errorf("line %d: criterion ID: %w", line, err)
		}
		description := field(record, colDescription)
		if description == "" {
			return nil, fmt.Errorf("line %d: empty description", line)
		}

		task, ok := byID[taskID]
		if !ok {
			task = &domain.Task{
				Domain:       d,
				TaskID:       taskID,
				Prompt:       field(record, colPrompt),
				ProductFocus: isTruthy(field(record, colFocus)),
			}
			byID[taskID] = task
			order = append(order, taskID)
		}
		for _, c := range task.Criteria {
			if c.CriterionID == criterionID {
				return nil, fmt.Errorf("line %d: duplicate criterion %d for task %s", line, criterionID, taskID)
			}
		}
		task.Criteria = append(task.Criteria, domain.Criterion{
			TaskID:          taskID,
			CriterionID:     criterionID,
			Type:            criterionType(field(record, colType), field(record, colGrounding)),
			Description:     description,
			ReferenceAnswer: field(record, colReference),
			Hurdle:          strings.EqualFold(field(record, colHurdle), "Hurdle"),
		})
	}

	tasks := make([]domain.Task, 0, len(order))
	for _, id := range order {
		task := byID[id]
		if task.Prompt == "" {
			return nil, fmt.Errorf("task %s has no prompt", id)
		}
		sort.Slice(task.Criteria, func(i, j int) bool {
			return task.Criteria[i].CriterionID < task.Criteria[j].CriterionID
		})
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

// criterionType resolves the criterion type from the type column, with
// the grounding-check column as authority when the two disagree.
func criterionType(typ, groundingCheck string) domain.CriterionType {
	if isTruthy(groundingCheck) || strings.EqualFold(groundingCheck, "grounded") {
		return domain.CriterionGrounding
	}
	if strings.EqualFold(typ, "grounding") || strings.EqualFold(typ, "grounded") {
		return domain.CriterionGrounding
	}
	return domain.CriterionNonGrounding
}

func isTruthy(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "true", "y", "1":
		return true
	default:
		return false
	}
}
