/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package grader

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"

	"github.com/apexlabs/groundcheck/domain"
)

// Evaluator runs one structured grading call against the grading model.
type Evaluator interface {
	Evaluate(ctx context.Context, prompt string) (*Judgment, error)
}

// Autograder grades criteria with a two-phase verification pipeline on
// top of an Evaluator.
type Autograder struct {
	eval Evaluator
}

// New creates an Autograder backed by the given evaluator.
func New(eval Evaluator) *Autograder {
	return &Autograder{eval: eval}
}

// Grade scores one criterion. An evaluator failure yields an
// inconclusive verdict with the failing phase recorded, not an error:
// the caller gets a score either way, and only a prompt construction
// bug surfaces as an error.
func (g *Autograder) Grade(ctx context.Context, criterion domain.Criterion, response *domain.GroundedResponse, em *domain.EvidenceMap) (*domain.CriterionScore, error) {
	log := clog.FromContext(ctx).With("criterion", criterion.CriterionID)
	score := &domain.CriterionScore{CriterionID: criterion.CriterionID}

	textPrompt, err := buildTextPrompt(criterion, response)
	if err != nil {
		return nil, fmt.Errorf("building text-level prompt: %w", err)
	}
	textJudgment, err := g.eval.Evaluate(ctx, textPrompt)
	if err != nil {
		log.With("error", err).Warn("Text-level evaluation failed")
		score.Value = domain.VerdictInconclusive
		score.FailureStep = domain.FailureTextLevel
		score.TextReasoning = fmt.Sprintf("evaluation failed: %v", err)
		return score, nil
	}
	score.TextReasoning = textJudgment.Reasoning
	if !textJudgment.Pass {
		score.Value = domain.VerdictFail
		score.FailureStep = domain.FailureTextLevel
		return score, nil
	}

	if criterion.Type != domain.CriterionGrounding {
		score.Value = domain.VerdictPass
		return score, nil
	}

	// A grounding criterion with nothing fetched has nothing to
	// corroborate it: fail without consulting the model.
	if !hasFetchedSource(em) {
		score.Value = domain.VerdictFail
		score.FailureStep = domain.FailureSourceLevel
		score.SourceReasoning = "no cited source could be fetched to corroborate the claim"
		return score, nil
	}

	srcPrompt, err := buildSourcePrompt(criterion, response, em)
	if err != nil {
		return nil, fmt.Errorf("building source-level prompt: %w", err)
	}
	srcJudgment, err := g.eval.Evaluate(ctx, srcPrompt)
	if err != nil {
		log.With("error", err).Warn("Source-level evaluation failed")
		score.Value = domain.VerdictInconclusive
		score.FailureStep = domain.FailureSourceLevel
		score.SourceReasoning = fmt.Sprintf("evaluation failed: %v", err)
		return score, nil
	}
	score.SourceReasoning = srcJudgment.Reasoning
	if !srcJudgment.Pass {
		score.Value = domain.VerdictFail
		score.FailureStep = domain.FailureSourceLevel
		return score, nil
	}
	score.Value = domain.VerdictPass
	return score, nil
}

// GradeAll grades every criterion of a task in order.
func (g *Autograder) GradeAll(ctx context.Context, task *domain.Task, response *domain.GroundedResponse, em *domain.EvidenceMap) ([]domain.CriterionScore, error) {
	scores := make([]domain.CriterionScore, 0, len(task.Criteria))
	for _, c := range task.Criteria {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := g.Grade(ctx, c, response, em)
		if err != nil {
			return nil, fmt.Errorf("criterion %d: %w", c.CriterionID, err)
		}
		scores = append(scores, *s)
	}
	return scores, nil
}

func hasFetchedSource(em *domain.EvidenceMap) bool {
	if em == nil {
		return false
	}
	for _, s := range em.Sources {
		if s.Status == domain.FetchOK {
			return true
		}
	}
	return false
}
