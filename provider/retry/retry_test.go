/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}
}

func TestWithBackoff_SucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := WithBackoff(context.Background(), fastConfig(3), "op", func(error) bool { return true }, func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 1 {
		t.Errorf("got %q after %d calls, want %q after 1", got, calls, "ok")
	}
}

func TestWithBackoff_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	got, err := WithBackoff(context.Background(), fastConfig(5), "op", func(error) bool { return true }, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 || calls != 3 {
		t.Errorf("got %d after %d calls, want 42 after 3", got, calls)
	}
}

func TestWithBackoff_NonRetryableStopsImmediately(t *testing.T) {
	fatal := errors.New("rejected")
	calls := 0
	_, err := WithBackoff(context.Background(), fastConfig(5), "op", func(err error) bool { return !errors.Is(err, fatal) }, func() (int, error) {
		calls++
		return 0, fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("error = %v, want %v", err, fatal)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWithBackoff_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := WithBackoff(context.Background(), fastConfig(3), "fetch", func(error) bool { return true }, func() (int, error) {
		calls++
		return 0, errors.New("still down")
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !strings.Contains(err.Error(), "fetch failed after 3 attempts") {
		t.Errorf("error = %v, want attempt-ceiling message", err)
	}
}

func TestWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := WithBackoff(ctx, Config{MaxAttempts: 10, BaseDelay: time.Hour}, "op", func(error) bool { return true }, func() (int, error) {
		calls++
		cancel()
		return 0, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
	bad := Config{BaseDelay: -time.Second}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative delay")
	}
}
