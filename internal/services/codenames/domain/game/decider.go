package game

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/mikeczech/codenames/internal/platform/errors"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/command"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/event"
)

// allowedActions lists the commands each phase accepts. game.create is
// decided before phase dispatch; finished games accept nothing.
var allowedActions = map[Phase][]command.Type{
	PhaseNotStarted: {CommandTypeJoin, CommandTypeLeave, CommandTypeStart},
	PhaseSpyTurn:    {CommandTypeGiveHint},
	PhasePlayerTurn: {CommandTypeGuess, CommandTypeEndTurn},
}

// turnRoles names the seat role that must issue each turn-bound command.
var turnRoles = map[command.Type]Role{
	CommandTypeGiveHint: RoleSpymaster,
	CommandTypeGuess:    RolePlayer,
	CommandTypeEndTurn:  RolePlayer,
}

var actionLabels = map[command.Type]string{
	CommandTypeJoin:     "join",
	CommandTypeLeave:    "leave",
	CommandTypeStart:    "start the game",
	CommandTypeGiveHint: "give a hint",
	CommandTypeGuess:    "guess",
	CommandTypeEndTurn:  "end the turn",
}

// Decide returns the decision for cmd against the current game state.
//
// Checks run in a fixed order: the current condition must allow the command,
// then the acting session must hold the seat whose turn it is, then the
// payload is validated against the board.
func Decide(state State, cmd command.Command, now func() time.Time) command.Decision {
	if now == nil {
		now = time.Now
	}
	at := now().UTC()
	if cmd.Type == CommandTypeCreate {
		return decideCreate(state, cmd, at)
	}
	if !state.Created {
		return reject(apperrors.CodeNotFound, "game %s not found", cmd.GameID)
	}

	condition := state.Condition()
	phase := condition.Phase()
	if !slices.Contains(allowedActions[phase], cmd.Type) {
		return rejectForPhase(phase, condition, cmd.Type)
	}
	if role, ok := turnRoles[cmd.Type]; ok {
		if decision, ok := authorize(state, cmd, condition.Team(), role); !ok {
			return decision
		}
	}

	switch cmd.Type {
	case CommandTypeJoin:
		return decideJoin(state, cmd, at)
	case CommandTypeLeave:
		return decideLeave(state, cmd, at)
	case CommandTypeStart:
		return decideStart(state, cmd, at)
	case CommandTypeGiveHint:
		return decideGiveHint(state, cmd, condition.Team(), at)
	case CommandTypeGuess:
		return decideGuess(state, cmd, condition.Team(), at)
	case CommandTypeEndTurn:
		return command.Accept(conditionEvent(cmd, SpyTurn(condition.Team().Opponent()), latestHintID(state), at))
	}
	return reject(apperrors.CodeInvalidArgument, "unsupported command %s", cmd.Type)
}

// Decider adapts Decide to the engine decider contract.
type Decider struct{}

// Decide returns the decision for cmd.
func (Decider) Decide(state State, cmd command.Command, now func() time.Time) command.Decision {
	return Decide(state, cmd, now)
}

func rejectForPhase(phase Phase, condition Condition, cmdType command.Type) command.Decision {
	label := actionLabels[cmdType]
	if label == "" {
		label = string(cmdType)
	}
	switch phase {
	case PhaseNotStarted:
		return reject(apperrors.CodeGameState, "game not started: cannot %s", label)
	case PhaseFinished:
		return reject(apperrors.CodeGameState, "game is finished (%s): cannot %s", condition, label)
	case PhaseUnknown:
		return reject(apperrors.CodeGameState, "game has no condition: cannot %s", label)
	}
	return reject(apperrors.CodeGameState, "cannot %s during %s", label, condition)
}

// authorize checks that the acting session holds the (team, role) seat of the
// current turn.
func authorize(state State, cmd command.Command, team Color, role Role) (command.Decision, bool) {
	active, ok := state.PlayerAt(team, role)
	if !ok || active.SessionID != cmd.ActorID {
		return reject(apperrors.CodeGameNotAuthorized, "only the %s %s may %s now",
			strings.ToLower(string(team)), strings.ToLower(string(role)), actionLabels[cmd.Type]), false
	}
	return command.Decision{}, true
}

func decideCreate(state State, cmd command.Command, at time.Time) command.Decision {
	if state.Created {
		return reject(apperrors.CodeGameAlreadyExists, "game %s already exists", cmd.GameID)
	}
	var payload CreatePayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return reject(apperrors.CodeInvalidArgument, "decode create payload: %v", err)
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return reject(apperrors.CodeGameNameEmpty, "game name is required")
	}
	if err := validateBoard(payload.Words); err != nil {
		return reject(apperrors.CodeBoardInvalid, "invalid board: %v", err)
	}

	createdJSON, _ := json.Marshal(GameCreatedPayload{
		Name:             name,
		CreatorSessionID: strings.TrimSpace(payload.CreatorSessionID),
	})
	boardJSON, _ := json.Marshal(BoardAssignedPayload{Words: payload.Words})
	placeholderJSON, _ := json.Marshal(HintGivenPayload{HintID: 1})

	return command.Accept(
		command.NewEvent(cmd, EventTypeGameCreated, entityGame, cmd.GameID, createdJSON, at),
		command.NewEvent(cmd, EventTypeBoardAssigned, entityGame, cmd.GameID, boardJSON, at),
		conditionEvent(cmd, ConditionNotStarted, 0, at),
		command.NewEvent(cmd, EventTypeHintGiven, entityHint, "1", placeholderJSON, at),
	)
}

func decideJoin(state State, cmd command.Command, at time.Time) command.Decision {
	var payload JoinPayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return reject(apperrors.CodeInvalidArgument, "decode join payload: %v", err)
	}
	if state.HasJoined(cmd.ActorID) {
		return reject(apperrors.CodeGameAlreadyJoined, "session has already joined the game")
	}
	color, colorErr := ParseColor(payload.Color)
	role, roleErr := ParseRole(payload.Role)
	if colorErr != nil || roleErr != nil || !color.IsTeam() {
		return reject(apperrors.CodeGameInvalidColorRole,
			"invalid color / role combination: color = %s, role = %s", payload.Color, payload.Role)
	}
	if state.IsOccupied(color, role) {
		return reject(apperrors.CodeGameRoleOccupied, "%s %s is already occupied by another player",
			strings.ToLower(string(color)), strings.ToLower(string(role)))
	}
	payloadJSON, _ := json.Marshal(PlayerJoinedPayload{SessionID: cmd.ActorID, Color: color, Role: role})
	return command.Accept(command.NewEvent(cmd, EventTypePlayerJoined, entityPlayer, cmd.ActorID, payloadJSON, at))
}

func decideLeave(state State, cmd command.Command, at time.Time) command.Decision {
	if !state.HasJoined(cmd.ActorID) {
		return reject(apperrors.CodeGameState, "session has not joined the game")
	}
	payloadJSON, _ := json.Marshal(PlayerLeftPayload{SessionID: cmd.ActorID})
	return command.Accept(command.NewEvent(cmd, EventTypePlayerLeft, entityPlayer, cmd.ActorID, payloadJSON, at))
}

func decideStart(state State, cmd command.Command, at time.Time) command.Decision {
	if !state.Full() {
		return reject(apperrors.CodeGameState, "cannot start: every color and role must be occupied")
	}
	// Blue's spymaster always opens.
	return command.Accept(conditionEvent(cmd, SpyTurn(ColorBlue), latestHintID(state), at))
}

func decideGiveHint(state State, cmd command.Command, team Color, at time.Time) command.Decision {
	var payload GiveHintPayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return reject(apperrors.CodeInvalidArgument, "decode hint payload: %v", err)
	}
	word := NormalizeHint(payload.Word)
	if reason := validateHint(state, word, payload.Num); reason != "" {
		return reject(apperrors.CodeGameInvalidHint, "%s", reason)
	}
	hintID := state.NextHintID()
	hintJSON, _ := json.Marshal(HintGivenPayload{HintID: hintID, Word: word, Num: payload.Num, Color: team})
	return command.Accept(
		command.NewEvent(cmd, EventTypeHintGiven, entityHint, strconv.FormatInt(hintID, 10), hintJSON, at),
		conditionEvent(cmd, PlayerTurn(team), hintID, at),
	)
}

func decideGuess(state State, cmd command.Command, team Color, at time.Time) command.Decision {
	var payload GuessPayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return reject(apperrors.CodeInvalidArgument, "decode guess payload: %v", err)
	}
	hintID := latestHintID(state)
	opponent := team.Opponent()

	budget := state.RemainingGuesses()
	if budget <= 0 {
		// The hint is used up: hand the turn over without recording a guess.
		return command.Accept(conditionEvent(cmd, SpyTurn(opponent), hintID, at))
	}

	word, ok := state.Word(payload.WordID)
	if !ok {
		return reject(apperrors.CodeGameState, "word %d is not on the board", payload.WordID)
	}
	if !word.Active() {
		return reject(apperrors.CodeGameState, "word %d has already been guessed", payload.WordID)
	}

	guessJSON, _ := json.Marshal(GuessMadePayload{WordID: word.ID, HintID: hintID})
	guess := command.NewEvent(cmd, EventTypeGuessMade, entityWord, strconv.FormatInt(word.ID, 10), guessJSON, at)
	next := resolveGuess(state, word.Color, team, budget-1)
	return command.Accept(guess, conditionEvent(cmd, next, hintID, at))
}

// resolveGuess returns the condition that follows a guess of a word with the
// given color. Remaining-word counts are taken before the guess is applied.
func resolveGuess(state State, guessed, team Color, budgetLeft int) Condition {
	opponent := team.Opponent()
	switch guessed {
	case ColorAssassin:
		return Wins(opponent)
	case team:
		if state.RemainingWords(team) == 1 {
			return Wins(team)
		}
		if budgetLeft <= 0 {
			return SpyTurn(opponent)
		}
		return PlayerTurn(team)
	case opponent:
		if state.RemainingWords(opponent) == 1 {
			return Wins(opponent)
		}
		return SpyTurn(opponent)
	}
	return SpyTurn(opponent)
}

func latestHintID(state State) int64 {
	if latest, ok := state.LatestHint(); ok {
		return latest.ID
	}
	return 0
}

func conditionEvent(cmd command.Command, condition Condition, hintID int64, at time.Time) event.Event {
	payloadJSON, _ := json.Marshal(ConditionPushedPayload{Condition: condition, HintID: hintID})
	return command.NewEvent(cmd, EventTypeConditionPushed, entityCondition, string(condition), payloadJSON, at)
}
