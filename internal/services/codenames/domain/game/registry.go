package game

import (
	"errors"

	"github.com/mikeczech/codenames/internal/services/codenames/domain/command"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/event"
)

const (
	CommandTypeCreate   command.Type = "game.create"
	CommandTypeJoin     command.Type = "game.join"
	CommandTypeLeave    command.Type = "game.leave"
	CommandTypeStart    command.Type = "game.start"
	CommandTypeGiveHint command.Type = "game.give_hint"
	CommandTypeGuess    command.Type = "game.guess"
	CommandTypeEndTurn  command.Type = "game.end_turn"

	EventTypeGameCreated     event.Type = "game.created"
	EventTypeBoardAssigned   event.Type = "board.assigned"
	EventTypeConditionPushed event.Type = "condition.pushed"
	EventTypeHintGiven       event.Type = "hint.given"
	EventTypePlayerJoined    event.Type = "player.joined"
	EventTypePlayerLeft      event.Type = "player.left"
	EventTypeGuessMade       event.Type = "guess.made"
)

// Entity types stamped on emitted events.
const (
	entityGame      = "game"
	entityPlayer    = "player"
	entityHint      = "hint"
	entityWord      = "word"
	entityCondition = "condition"
)

// RegisterCommands registers the game commands with registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	definitions := []command.Definition{
		{Type: CommandTypeCreate, ValidatePayload: validateCreatePayload},
		{Type: CommandTypeJoin, RequireSession: true, ValidatePayload: validateShape[JoinPayload]},
		{Type: CommandTypeLeave, RequireSession: true},
		{Type: CommandTypeStart, RequireSession: true},
		{Type: CommandTypeGiveHint, RequireSession: true, ValidatePayload: validateShape[GiveHintPayload]},
		{Type: CommandTypeGuess, RequireSession: true, ValidatePayload: validateShape[GuessPayload]},
		{Type: CommandTypeEndTurn, RequireSession: true},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEvents registers the game events with registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	definitions := []event.Definition{
		{Type: EventTypeGameCreated, Addressing: event.AddressingPolicyEntityTarget, ValidatePayload: validateGameCreatedPayload},
		{Type: EventTypeBoardAssigned, Addressing: event.AddressingPolicyEntityTarget, ValidatePayload: validateBoardAssignedPayload},
		{Type: EventTypeConditionPushed, Addressing: event.AddressingPolicyEntityTarget, ValidatePayload: validateConditionPushedPayload},
		{Type: EventTypeHintGiven, Addressing: event.AddressingPolicyEntityTarget, ValidatePayload: validateHintGivenPayload},
		{Type: EventTypePlayerJoined, Addressing: event.AddressingPolicyEntityTarget, ValidatePayload: validatePlayerJoinedPayload},
		{Type: EventTypePlayerLeft, Addressing: event.AddressingPolicyEntityTarget, ValidatePayload: validatePlayerLeftPayload},
		{Type: EventTypeGuessMade, Addressing: event.AddressingPolicyEntityTarget, ValidatePayload: validateGuessMadePayload},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// FoldHandledTypes returns the event types handled by Fold.
func FoldHandledTypes() []event.Type {
	return []event.Type{
		EventTypeGameCreated,
		EventTypeBoardAssigned,
		EventTypeConditionPushed,
		EventTypeHintGiven,
		EventTypePlayerJoined,
		EventTypePlayerLeft,
		EventTypeGuessMade,
	}
}

// NewRegistries returns command and event registries with the game types
// registered.
func NewRegistries() (*command.Registry, *event.Registry, error) {
	commands := command.NewRegistry()
	if err := RegisterCommands(commands); err != nil {
		return nil, nil, err
	}
	events := event.NewRegistry()
	if err := RegisterEvents(events); err != nil {
		return nil, nil, err
	}
	return commands, events, nil
}
