package game

import (
	"fmt"

	apperrors "github.com/mikeczech/codenames/internal/platform/errors"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/command"
)

// Typed rule errors. Match with errors.Is; comparison is by code.
var (
	// ErrState rejects an action that the current condition does not allow.
	ErrState = apperrors.New(apperrors.CodeGameState, "action not allowed in current game state")
	// ErrAlreadyJoined rejects a second join by the same session.
	ErrAlreadyJoined = apperrors.New(apperrors.CodeGameAlreadyJoined, "session already joined the game")
	// ErrRoleOccupied rejects a join to a taken (color, role) slot.
	ErrRoleOccupied = apperrors.New(apperrors.CodeGameRoleOccupied, "color and role already occupied")
	// ErrInvalidColorRole rejects joining with a non-team color.
	ErrInvalidColorRole = apperrors.New(apperrors.CodeGameInvalidColorRole, "invalid color and role combination")
	// ErrNotAuthorized rejects a turn action by a session that does not hold the turn.
	ErrNotAuthorized = apperrors.New(apperrors.CodeGameNotAuthorized, "session is not the active player")
	// ErrGameAlreadyExists rejects creating a game whose name or id is taken.
	ErrGameAlreadyExists = apperrors.New(apperrors.CodeGameAlreadyExists, "game already exists")
	// ErrInvalidHint rejects a malformed hint.
	ErrInvalidHint = apperrors.New(apperrors.CodeGameInvalidHint, "invalid hint")
)

func reject(code apperrors.Code, format string, args ...any) command.Decision {
	return command.Reject(command.Rejection{
		Code:    string(code),
		Message: fmt.Sprintf(format, args...),
	})
}
