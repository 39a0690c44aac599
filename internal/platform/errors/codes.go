// Package errors provides structured error handling shared by the codenames
// service layers.
package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code is a machine-readable error code.
type Code string

// Kind groups codes by how a calling boundary should treat them.
type Kind string

const (
	// KindRuleViolation marks an action that is illegal for the current game state.
	KindRuleViolation Kind = "rule_violation"
	// KindAuthorization marks an action attempted by a session that does not hold the turn.
	KindAuthorization Kind = "authorization"
	// KindNotFound marks a reference to a missing record.
	KindNotFound Kind = "not_found"
	// KindAlreadyExists marks a uniqueness violation on creation.
	KindAlreadyExists Kind = "already_exists"
	// KindInvalidArgument marks malformed input.
	KindInvalidArgument Kind = "invalid_argument"
	// KindConflict marks a concurrent write that lost the race.
	KindConflict Kind = "conflict"
	// KindInternal marks store or transport failures.
	KindInternal Kind = "internal"
)

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Game rule errors
	CodeGameState            Code = "GAME_STATE_VIOLATION"
	CodeGameAlreadyJoined    Code = "GAME_ALREADY_JOINED"
	CodeGameRoleOccupied     Code = "GAME_ROLE_OCCUPIED"
	CodeGameInvalidColorRole Code = "GAME_INVALID_COLOR_ROLE"
	CodeGameInvalidHint      Code = "GAME_INVALID_HINT"

	// Authorization errors
	CodeGameNotAuthorized Code = "GAME_NOT_AUTHORIZED"
	CodeSessionRequired   Code = "SESSION_REQUIRED"

	// Manager errors
	CodeGameAlreadyExists Code = "GAME_ALREADY_EXISTS"
	CodeGameNameEmpty     Code = "GAME_NAME_EMPTY"
	CodeBoardInvalid      Code = "BOARD_INVALID"
	CodeCorpusTooSmall    Code = "CORPUS_TOO_SMALL"

	// Command errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// Storage errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeSequenceConflict Code = "SEQUENCE_CONFLICT"

	// CodeInternal marks an unexpected failure inside the service.
	CodeInternal Code = "INTERNAL"
)

// Kind reports the category of the code.
func (c Code) Kind() Kind {
	switch c {
	case CodeGameState,
		CodeGameAlreadyJoined,
		CodeGameRoleOccupied,
		CodeGameInvalidColorRole,
		CodeGameInvalidHint:
		return KindRuleViolation
	case CodeGameNotAuthorized, CodeSessionRequired:
		return KindAuthorization
	case CodeNotFound:
		return KindNotFound
	case CodeGameAlreadyExists:
		return KindAlreadyExists
	case CodeGameNameEmpty, CodeBoardInvalid, CodeCorpusTooSmall, CodeInvalidArgument:
		return KindInvalidArgument
	case CodeSequenceConflict:
		return KindConflict
	default:
		return KindInternal
	}
}

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c.Kind() {
	case KindRuleViolation:
		return codes.FailedPrecondition
	case KindAuthorization:
		if c == CodeSessionRequired {
			return codes.Unauthenticated
		}
		return codes.PermissionDenied
	case KindNotFound:
		return codes.NotFound
	case KindAlreadyExists:
		return codes.AlreadyExists
	case KindInvalidArgument:
		return codes.InvalidArgument
	case KindConflict:
		return codes.Aborted
	default:
		return codes.Internal
	}
}

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c.Kind() {
	case KindRuleViolation:
		return http.StatusForbidden
	case KindAuthorization:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists, KindConflict:
		return http.StatusConflict
	case KindInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
