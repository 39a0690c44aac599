package engine

import (
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/mikeczech/codenames/internal/platform/errors"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/command"
)

func TestIsNonRetryable(t *testing.T) {
	base := errors.New("boom")
	if IsNonRetryable(base) {
		t.Fatal("plain error must be retryable")
	}
	wrapped := fmt.Errorf("outer: %w", wrapNonRetryable(base))
	if !IsNonRetryable(wrapped) {
		t.Fatal("expected wrapped error to be non-retryable")
	}
	if !errors.Is(wrapped, base) {
		t.Fatal("expected cause to stay reachable")
	}
	if wrapNonRetryable(nil) != nil {
		t.Fatal("wrapping nil must return nil")
	}
}

func TestRejectionError(t *testing.T) {
	if err := RejectionError(command.Accept()); err != nil {
		t.Fatalf("accepted decision err = %v, want nil", err)
	}
	decision := command.Reject(command.Rejection{Code: string(apperrors.CodeGameState), Message: "not now"})
	err := RejectionError(decision)
	if got := apperrors.CodeOf(err); got != apperrors.CodeGameState {
		t.Fatalf("code = %s, want %s", got, apperrors.CodeGameState)
	}
	if got := RejectionError(command.Reject(command.Rejection{Message: "x"})); apperrors.CodeOf(got) != apperrors.CodeUnknown {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(got), apperrors.CodeUnknown)
	}
}
