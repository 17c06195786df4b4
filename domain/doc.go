/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package domain defines the data model shared across the evaluation
// pipeline: tasks and their criteria, the artifacts each pipeline stage
// produces, and the scoring arithmetic that turns per-criterion verdicts
// into task totals.
//
// Everything in this package is plain data. Entities are created once by
// the pipeline controller in stage order and overwritten wholesale when a
// stage is re-run; nothing here is partially patched in place.
package domain
