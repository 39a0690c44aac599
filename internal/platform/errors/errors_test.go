package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("join: %w", New(CodeGameRoleOccupied, "red spymaster is taken"))
	if !stderrors.Is(err, New(CodeGameRoleOccupied, "")) {
		t.Fatal("expected wrapped error to match by code")
	}
	if stderrors.Is(err, New(CodeGameAlreadyJoined, "")) {
		t.Fatal("expected different code not to match")
	}
}

func TestWrapUnwrapsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeUnknown, "append events", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if err.Error() != "append events" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "append events")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(fmt.Errorf("x: %w", New(CodeNotFound, "missing"))); got != CodeNotFound {
		t.Fatalf("CodeOf = %s, want %s", got, CodeNotFound)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf = %s, want %s", got, CodeUnknown)
	}
}

func TestCodeMappings(t *testing.T) {
	tests := []struct {
		code   Code
		kind   Kind
		grpc   codes.Code
		status int
	}{
		{CodeGameState, KindRuleViolation, codes.FailedPrecondition, http.StatusForbidden},
		{CodeGameAlreadyJoined, KindRuleViolation, codes.FailedPrecondition, http.StatusForbidden},
		{CodeGameRoleOccupied, KindRuleViolation, codes.FailedPrecondition, http.StatusForbidden},
		{CodeGameInvalidColorRole, KindRuleViolation, codes.FailedPrecondition, http.StatusForbidden},
		{CodeGameInvalidHint, KindRuleViolation, codes.FailedPrecondition, http.StatusForbidden},
		{CodeGameNotAuthorized, KindAuthorization, codes.PermissionDenied, http.StatusUnauthorized},
		{CodeSessionRequired, KindAuthorization, codes.Unauthenticated, http.StatusUnauthorized},
		{CodeNotFound, KindNotFound, codes.NotFound, http.StatusNotFound},
		{CodeGameAlreadyExists, KindAlreadyExists, codes.AlreadyExists, http.StatusConflict},
		{CodeInvalidArgument, KindInvalidArgument, codes.InvalidArgument, http.StatusBadRequest},
		{CodeSequenceConflict, KindConflict, codes.Aborted, http.StatusConflict},
		{CodeUnknown, KindInternal, codes.Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Kind(); got != tt.kind {
				t.Fatalf("Kind() = %s, want %s", got, tt.kind)
			}
			if got := tt.code.GRPCCode(); got != tt.grpc {
				t.Fatalf("GRPCCode() = %s, want %s", got, tt.grpc)
			}
			if got := tt.code.HTTPStatus(); got != tt.status {
				t.Fatalf("HTTPStatus() = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestToGRPCStatusCarriesErrorInfo(t *testing.T) {
	err := WithMetadata(CodeGameNotAuthorized, "not your turn", map[string]string{"game_id": "g1"}).ToGRPCStatus()
	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected grpc status")
	}
	if st.Code() != codes.PermissionDenied {
		t.Fatalf("code = %s, want %s", st.Code(), codes.PermissionDenied)
	}
	if st.Message() != "not your turn" {
		t.Fatalf("message = %q, want %q", st.Message(), "not your turn")
	}
	var info *errdetails.ErrorInfo
	for _, detail := range st.Details() {
		if d, ok := detail.(*errdetails.ErrorInfo); ok {
			info = d
		}
	}
	if info == nil {
		t.Fatal("expected ErrorInfo detail")
	}
	if info.Reason != string(CodeGameNotAuthorized) {
		t.Fatalf("reason = %s, want %s", info.Reason, CodeGameNotAuthorized)
	}
	if info.Metadata["game_id"] != "g1" {
		t.Fatalf("metadata game_id = %s, want g1", info.Metadata["game_id"])
	}
}
