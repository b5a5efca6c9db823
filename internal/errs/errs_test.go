package errs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIs_MatchesByKind(t *testing.T) {
	err := NotFound("division %d not supported", 5)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected errors.Is(err, ErrNotFound)")
	}
	if errors.Is(err, ErrInvalidInput) {
		t.Errorf("not-found error must not match invalid input")
	}
	if err.TraceID == "" {
		t.Error("expected a trace id")
	}
}

func TestWrap_KeepsInnerKind(t *testing.T) {
	inner := New(KindEphemeris, "source failed")
	outer := fmt.Errorf("build chart: %w", inner)
	got := Wrap(KindInconsistentChart, outer, "wrapping")
	if KindOf(got) != KindEphemeris {
		t.Errorf("KindOf = %q, want %q", KindOf(got), KindEphemeris)
	}
	if Wrap(KindEphemeris, nil, "x") != nil {
		t.Error("wrapping nil must return nil")
	}
}

func TestInvalid_RedactsInput(t *testing.T) {
	err := Invalid("1985-08-15 14:30 lat=28.6139", "bad birth time")
	if strings.ContainsAny(err.OffendingInput, "0123456789") {
		t.Errorf("offending input leaks digits: %q", err.OffendingInput)
	}
	if !strings.Contains(err.Error(), "invalid_input") {
		t.Errorf("message missing kind: %q", err.Error())
	}
}

func TestCancelled(t *testing.T) {
	if Cancelled(context.Background()) != nil {
		t.Fatal("live context must not produce an error")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Cancelled(ctx)
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("expected Cancelled kind, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected wrapped context.Canceled")
	}
}
