/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package domain

import "fmt"

// Verdict is the tri-state outcome of grading one criterion.
type Verdict int

const (
	// VerdictFail means the criterion is not satisfied.
	VerdictFail Verdict = -1
	// VerdictInconclusive means a grading phase could not reach a
	// verdict at all. It is reported, never coerced to pass or fail.
	VerdictInconclusive Verdict = 0
	// VerdictPass means the criterion is satisfied.
	VerdictPass Verdict = 1
)

// FailureStep names the grading phase that failed or could not conclude.
type FailureStep string

const (
	FailureNone        FailureStep = ""
	FailureTextLevel   FailureStep = "text-level"
	FailureSourceLevel FailureStep = "source-level"
)

// CriterionScore is the stage 3 artifact for one criterion: the verdict
// plus the reasoning trace of each verification phase.
type CriterionScore struct {
	CriterionID int     `json:"criterion_id"`
	Value       Verdict `json:"value"`

	// TextReasoning and SourceReasoning are the reasoning traces of the
	// two verification phases. SourceReasoning is empty when the
	// source-level phase was not attempted.
	TextReasoning   string `json:"text_reasoning"`
	SourceReasoning string `json:"source_reasoning,omitempty"`

	FailureStep FailureStep `json:"failure_step,omitempty"`
}

// HurdleFailedTotal is the sentinel hurdle-adjusted total recorded when
// any hurdle criterion scored VerdictFail. It dominates the arithmetic
// sum: a single failed hurdle zeros out an otherwise-passing task.
const HurdleFailedTotal = -1000

// TaskResult aggregates every criterion score for one (task, model, run).
// Total and HurdleTotal are derived by Score and must never be mutated
// independently of Scores.
type TaskResult struct {
	Key    TaskKey          `json:"key"`
	Scores []CriterionScore `json:"scores"`

	Total       int  `json:"total"`
	HurdleTotal int  `json:"hurdle_total"`
	HurdleHit   bool `json:"hurdle_hit"`
}

// Score derives the total and hurdle-adjusted total from a criterion set
// and its scores. The criterion count must match the score count.
//
// An inconclusive (0) hurdle criterion does not trigger the hurdle
// sentinel; only an outright hurdle failure does.
func Score(criteria []Criterion, scores []CriterionScore) (total, hurdleTotal int, hurdleHit bool, err error) {
	if len(criteria) != len(scores) {
		return 0, 0, false, fmt.Errorf("criterion count %d does not match score count %d", len(criteria), len(scores))
	}
	byID := make(map[int]Criterion, len(criteria))
	for _, c := range criteria {
		byID[c.CriterionID] = c
	}
	for _, s := range scores {
		c, ok := byID[s.CriterionID]
		if !ok {
			return 0, 0, false, fmt.Errorf("score for unknown criterion %d", s.CriterionID)
		}
		total += int(s.Value)
		if c.Hurdle && s.Value == VerdictFail {
			hurdleHit = true
		}
	}
	hurdleTotal = total
	if hurdleHit {
		hurdleTotal = HurdleFailedTotal
	}
	return total, hurdleTotal, hurdleHit, nil
}

// NewTaskResult builds a TaskResult with derived totals.
func NewTaskResult(key TaskKey, criteria []Criterion, scores []CriterionScore) (*TaskResult, error) {
	total, hurdleTotal, hit, err := Score(criteria, scores)
	if err != nil {
		return nil, err
	}
	return &TaskResult{
		Key:         key,
		Scores:      scores,
		Total:       total,
		HurdleTotal: hurdleTotal,
		HurdleHit:   hit,
	}, nil
}
