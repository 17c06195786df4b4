/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package grader scores a grounded response against its task criteria.
//
// Each criterion is graded in up to two phases. The text-level phase
// judges the response text alone. For grounding criteria that pass the
// text-level phase, the source-level phase then checks that at least one
// cited source actually corroborates the claim. A criterion resolves to
// a tri-state verdict: pass (+1), fail (-1), or inconclusive (0) when an
// evaluation phase could not reach a verdict.
package grader
