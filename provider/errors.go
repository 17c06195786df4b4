/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorClass partitions provider failures by how the pipeline should
// react to them.
type ErrorClass string

const (
	// ClassUnavailable is a network or auth failure; retryable.
	ClassUnavailable ErrorClass = "unavailable"
	// ClassRejected means the provider refused the request (content
	// policy, malformed request); fatal for this task, never retried.
	ClassRejected ErrorClass = "rejected"
	// ClassTimeout is a deadline expiry; retryable with backoff.
	ClassTimeout ErrorClass = "timeout"
)

// Error wraps a provider failure with its classification so the pipeline
// boundary can decide between retry and recorded failure without string
// matching.
type Error struct {
	Class ErrorClass
	Op    string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Class, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Unavailable wraps err as a retryable availability failure.
func Unavailable(op string, err error) error {
	return &Error{Class: ClassUnavailable, Op: op, Err: err}
}

// Rejected wraps err as a fatal provider rejection.
func Rejected(op string, err error) error {
	return &Error{Class: ClassRejected, Op: op, Err: err}
}

// Timeout wraps err as a retryable deadline failure.
func Timeout(op string, err error) error {
	return &Error{Class: ClassTimeout, Op: op, Err: err}
}

// IsRetryable reports whether err is worth another attempt. Unclassified
// errors fall back to message heuristics for the rate-limit and overload
// shapes the SDKs surface as plain errors.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Class == ClassUnavailable || pe.Class == ClassTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	for _, marker := range []string{
		"429", "503", "rate limit", "RESOURCE_EXHAUSTED", "Resource exhausted",
		"quota exceeded", "Overloaded", "overloaded_error", "server error",
		"Internal error", "connection reset",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsRejected reports whether err is a fatal provider rejection.
func IsRejected(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Class == ClassRejected
}
