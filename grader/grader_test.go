/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package grader

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/apexlabs/groundcheck/domain"
)

type evalStep struct {
	judgment *Judgment
	err      error
}

type fakeEvaluator struct {
	steps []evalStep
	calls []string
}

func (f *fakeEvaluator) Evaluate(_ context.Context, prompt string) (*Judgment, error) {
	f.calls = append(f.calls, prompt)
	if len(f.steps) == 0 {
		return nil, errors.New("unexpected evaluator call")
	}
	step := f.steps[0]
	f.steps = f.steps[1:]
	return step.judgment, step.err
}

func pass(reason string) evalStep {
	return evalStep{judgment: &Judgment{Pass: true, Reasoning: reason}}
}
func fail(reason string) evalStep {
	return evalStep{judgment: &Judgment{Pass: false, Reasoning: reason}}
}

var testResponse = &domain.GroundedResponse{
	Text: "The Lodge 10.25in skillet is the best budget cast iron pan.",
}

func fetchedEvidence() *domain.EvidenceMap {
	return &domain.EvidenceMap{
		Sources: []domain.ResolvedSource{{
			URL:     "https://example.com/review",
			Kind:    domain.SourceGeneric,
			Status:  domain.FetchOK,
			Content: "Lodge skillet review: the best budget cast iron pan we tested.",
		}},
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		name      string
		criterion domain.Criterion
		evidence  *domain.EvidenceMap
		steps     []evalStep
		want      domain.CriterionScore
		wantCalls int
	}{{
		name:      "non-grounding pass",
		criterion: domain.Criterion{CriterionID: 1, Type: domain.CriterionNonGrounding, Description: "names a specific product"},
		evidence:  fetchedEvidence(),
		steps:     []evalStep{pass("a specific pan is named")},
		want: domain.CriterionScore{
			CriterionID:   1,
			Value:         domain.VerdictPass,
			TextReasoning: "a specific pan is named",
		},
		wantCalls: 1,
	}, {
		name:      "text-level fail stops before source phase",
		criterion: domain.Criterion{CriterionID: 2, Type: domain.CriterionGrounding, Description: "recommends a pan under $30"},
		evidence:  fetchedEvidence(),
		steps:     []evalStep{fail("no price is given")},
		want: domain.CriterionScore{
			CriterionID:   2,
			Value:         domain.VerdictFail,
			TextReasoning: "no price is given",
			FailureStep:   domain.FailureTextLevel,
		},
		wantCalls: 1,
	}, {
		name:      "grounding pass both phases",
		criterion: domain.Criterion{CriterionID: 3, Type: domain.CriterionGrounding, Description: "recommendation is backed by a review"},
		evidence:  fetchedEvidence(),
		steps:     []evalStep{pass("claim is plausible"), pass("review corroborates the pick")},
		want: domain.CriterionScore{
			CriterionID:     3,
			Value:           domain.VerdictPass,
			TextReasoning:   "claim is plausible",
			SourceReasoning: "review corroborates the pick",
		},
		wantCalls: 2,
	}, {
		name:      "grounding fails source phase",
		criterion: domain.Criterion{CriterionID: 4, Type: domain.CriterionGrounding, Description: "recommendation is backed by a review"},
		evidence:  fetchedEvidence(),
		steps:     []evalStep{pass("claim is plausible"), fail("source discusses a different pan")},
		want: domain.CriterionScore{
			CriterionID:     4,
			Value:           domain.VerdictFail,
			TextReasoning:   "claim is plausible",
			SourceReasoning: "source discusses a different pan",
			FailureStep:     domain.FailureSourceLevel,
		},
		wantCalls: 2,
	}, {
		name:      "grounding with nothing fetched fails without a model call",
		criterion: domain.Criterion{CriterionID: 5, Type: domain.CriterionGrounding, Description: "recommendation is backed by a review"},
		evidence: &domain.EvidenceMap{
			Sources:       []domain.ResolvedSource{{URL: "https://a.com", Status: domain.FetchFailed, FailureReason: "timeout"}},
			FailedSources: []string{"https://a.com"},
		},
		steps: []evalStep{pass("claim is plausible")},
		want: domain.CriterionScore{
			CriterionID:     5,
			Value:           domain.VerdictFail,
			TextReasoning:   "claim is plausible",
			SourceReasoning: "no cited source could be fetched to corroborate the claim",
			FailureStep:     domain.FailureSourceLevel,
		},
		wantCalls: 1,
	}, {
		name:      "text-level evaluator failure is inconclusive",
		criterion: domain.Criterion{CriterionID: 6, Type: domain.CriterionNonGrounding, Description: "names a specific product"},
		evidence:  fetchedEvidence(),
		steps:     []evalStep{{err: errors.New("model overloaded")}},
		want: domain.CriterionScore{
			CriterionID:   6,
			Value:         domain.VerdictInconclusive,
			TextReasoning: "evaluation failed: model overloaded",
			FailureStep:   domain.FailureTextLevel,
		},
		wantCalls: 1,
	}, {
		name:      "source-level evaluator failure is inconclusive",
		criterion: domain.Criterion{CriterionID: 7, Type: domain.CriterionGrounding, Description: "recommendation is backed by a review"},
		evidence:  fetchedEvidence(),
		steps:     []evalStep{pass("claim is plausible"), {err: errors.New("model overloaded")}},
		want: domain.CriterionScore{
			CriterionID:     7,
			Value:           domain.VerdictInconclusive,
			TextReasoning:   "claim is plausible",
			SourceReasoning: "evaluation failed: model overloaded",
			FailureStep:     domain.FailureSourceLevel,
		},
		wantCalls: 2,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEvaluator{steps: tt.steps}
			got, err := New(fake).Grade(context.Background(), tt.criterion, testResponse, tt.evidence)
			if err != nil {
				t.Fatalf("Grade() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, *got); diff != "" {
				t.Errorf("Grade() diff (-want +got):\n%s", diff)
			}
			if len(fake.calls) != tt.wantCalls {
				t.Errorf("evaluator calls = %d, want %d", len(fake.calls), tt.wantCalls)
			}
		})
	}
}

func TestGradePromptsCarryContext(t *testing.T) {
	fake := &fakeEvaluator{steps: []evalStep{pass("ok"), pass("ok")}}
	criterion := domain.Criterion{
		CriterionID:     1,
		Type:            domain.CriterionGrounding,
		Description:     "recommendation is backed by a review",
		ReferenceAnswer: "Lodge 10.25in",
	}
	if _, err := New(fake).Grade(context.Background(), criterion, testResponse, fetchedEvidence()); err != nil {
		t.Fatalf("Grade() error = %v", err)
	}
	if len(fake.calls) != 2 {
		t.Fatalf("evaluator calls = %d, want 2", len(fake.calls))
	}
	textPrompt, srcPrompt := fake.calls[0], fake.calls[1]
	for _, want := range []string{criterion.Description, testResponse.Text, "Lodge 10.25in", `"pass"`} {
		if !strings.Contains(textPrompt, want) {
			t.Errorf("text-level prompt missing %q", want)
		}
	}
	for _, want := range []string{criterion.Description, "https://example.com/review", "best budget cast iron"} {
		if !strings.Contains(srcPrompt, want) {
			t.Errorf("source-level prompt missing %q", want)
		}
	}
	if strings.Contains(textPrompt, "{{") || strings.Contains(srcPrompt, "{{") {
		t.Error("prompt contains unbound placeholder")
	}
}

func TestGradeUsesClaimMapping(t *testing.T) {
	em := &domain.EvidenceMap{
		Sources: []domain.ResolvedSource{{
			URL:     "https://example.com/review",
			Status:  domain.FetchOK,
			Content: "Lodge skillet review: the best budget cast iron pan we tested.",
		}, {
			URL:     "https://example.com/forum",
			Status:  domain.FetchOK,
			Content: "Forum thread about seasoning techniques.",
		}},
		Claims: []domain.Claim{{
			Text:       "The Lodge 10.25in skillet is the best budget cast iron pan.",
			SourceURLs: []string{"https://example.com/review"},
		}, {
			Text: "It never needs re-seasoning.",
		}},
	}
	fake := &fakeEvaluator{steps: []evalStep{pass("plausible"), pass("corroborated")}}
	criterion := domain.Criterion{CriterionID: 1, Type: domain.CriterionGrounding, Description: "backed by a review"}

	if _, err := New(fake).Grade(context.Background(), criterion, testResponse, em); err != nil {
		t.Fatalf("Grade() error = %v", err)
	}
	if len(fake.calls) != 2 {
		t.Fatalf("evaluator calls = %d, want 2", len(fake.calls))
	}

	srcPrompt := fake.calls[1]
	for _, want := range []string{
		"best budget cast iron pan we tested",
		"supported by [1]",
		`"It never needs re-seasoning.": no fetched source supports this claim`,
	} {
		if !strings.Contains(srcPrompt, want) {
			t.Errorf("source-level prompt missing %q", want)
		}
	}
	// The forum source is fetched but no claim maps to it, so it must
	// not reach the evaluator as evidence.
	if strings.Contains(srcPrompt, "seasoning techniques") {
		t.Error("source-level prompt contains evidence no claim maps to")
	}
}

func TestGradeAll(t *testing.T) {
	task := &domain.Task{
		Domain: domain.DomainShopping,
		TaskID: "shopping-001",
		Criteria: []domain.Criterion{
			{CriterionID: 1, Type: domain.CriterionNonGrounding, Description: "names a product"},
			{CriterionID: 2, Type: domain.CriterionGrounding, Description: "backed by a review", Hurdle: true},
		},
	}
	fake := &fakeEvaluator{steps: []evalStep{pass("named"), pass("plausible"), fail("not corroborated")}}

	scores, err := New(fake).GradeAll(context.Background(), task, testResponse, fetchedEvidence())
	if err != nil {
		t.Fatalf("GradeAll() error = %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("scores = %d, want 2", len(scores))
	}
	if scores[0].CriterionID != 1 || scores[1].CriterionID != 2 {
		t.Errorf("scores out of order: %v, %v", scores[0].CriterionID, scores[1].CriterionID)
	}

	total, hurdleTotal, hit, err := domain.Score(task.Criteria, scores)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if total != 0 || hurdleTotal != domain.HurdleFailedTotal || !hit {
		t.Errorf("Score() = (%d, %d, %v), want (0, %d, true)", total, hurdleTotal, hit, domain.HurdleFailedTotal)
	}
}

func TestGradeAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	task := &domain.Task{Criteria: []domain.Criterion{{CriterionID: 1, Type: domain.CriterionNonGrounding}}}
	if _, err := New(&fakeEvaluator{}).GradeAll(ctx, task, testResponse, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("GradeAll() error = %v, want context.Canceled", err)
	}
}
