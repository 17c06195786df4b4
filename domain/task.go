/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package domain

import (
	"fmt"
)

// Domain names the consumer vertical a task belongs to.
type Domain string

const (
	DomainShopping Domain = "Shopping"
	DomainGaming   Domain = "Gaming"
	DomainFood     Domain = "Food"
)

// Domains lists every supported domain, in display order.
var Domains = []Domain{DomainShopping, DomainGaming, DomainFood}

// ParseDomain validates a domain name from user input.
func ParseDomain(s string) (Domain, error) {
	for _, d := range Domains {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown domain %q (expected one of %v)", s, Domains)
}

// CriterionType distinguishes criteria that require cited-source
// corroboration from those judged on the response text alone.
type CriterionType string

const (
	// CriterionGrounding requires at least one resolved source to
	// substantiate the claim the criterion checks.
	CriterionGrounding CriterionType = "grounding"
	// CriterionNonGrounding is judged on the response text only.
	CriterionNonGrounding CriterionType = "non-grounding"
)

// Criterion is one human-authored check against a task's response.
// Criteria are immutable once loaded from the dataset.
type Criterion struct {
	TaskID      string        `json:"task_id"`
	CriterionID int           `json:"criterion_id"`
	Type        CriterionType `json:"type"`
	Description string        `json:"description"`

	// ReferenceAnswer is an optional golden answer for the criterion.
	ReferenceAnswer string `json:"reference_answer,omitempty"`

	// Hurdle marks a criterion whose failure caps the task's total
	// score regardless of the other criteria.
	Hurdle bool `json:"hurdle"`
}

// Task is one evaluation prompt plus its ordered criteria.
// A task is immutable once created from the dataset; the same task may be
// evaluated under many (model, run) combinations.
type Task struct {
	Domain   Domain      `json:"domain"`
	TaskID   string      `json:"task_id"`
	Prompt   string      `json:"prompt"`
	Criteria []Criterion `json:"criteria"`

	// ProductFocus is domain-specific metadata: for Shopping it
	// distinguishes product recommendations from shop recommendations.
	ProductFocus bool `json:"product_focus,omitempty"`
}

// MinRun and MaxRun bound the run number used for variance sampling.
const (
	MinRun = 1
	MaxRun = 8
)

// RunKey identifies one full, independently repeated execution of a
// domain's task set under a given model.
type RunKey struct {
	Domain Domain `json:"domain"`
	Model  string `json:"model"`
	Run    int    `json:"run"`
}

// Validate checks the run key's fields.
func (k RunKey) Validate() error {
	if _, err := ParseDomain(string(k.Domain)); err != nil {
		return err
	}
	if k.Model == "" {
		return fmt.Errorf("model is required")
	}
	if k.Run < MinRun || k.Run > MaxRun {
		return fmt.Errorf("run %d out of range [%d,%d]", k.Run, MinRun, MaxRun)
	}
	return nil
}

// TaskKey identifies the artifacts of one task under one run.
type TaskKey struct {
	RunKey
	TaskID string `json:"task_id"`
}

func (k TaskKey) String() string {
	return fmt.Sprintf("%s/%s/run-%d/%s", k.Domain, k.Model, k.Run, k.TaskID)
}
