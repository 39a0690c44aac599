package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/mikeczech/codenames/internal/platform/errors"
	"github.com/mikeczech/codenames/internal/platform/requestctx"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/checkpoint"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/command"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/engine"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/event"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/game"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/replay"
	"github.com/mikeczech/codenames/internal/services/codenames/manager"
	"github.com/mikeczech/codenames/internal/services/codenames/storage"
)

// Service is the action and query surface shared by the transports.
type Service struct {
	Manager     manager.Manager
	Executor    manager.Executor
	Projections storage.ProjectionStore
	Loader      engine.StateLoader[game.State]
	Events      replay.EventStore
}

// CreateGame creates a game with a random board. The creator session is
// optional.
func (s *Service) CreateGame(ctx context.Context, name, sessionID string) (manager.Game, error) {
	return s.Manager.CreateRandom(ctx, name, sessionID, nil)
}

// JoinGame seats sessionID at (color, role). Colors and roles are accepted by
// name in any case or by numeric id.
func (s *Service) JoinGame(ctx context.Context, gameID, sessionID, color, role string) (game.State, error) {
	return s.run(ctx, gameID, sessionID, game.CommandTypeJoin, game.JoinPayload{Color: color, Role: role})
}

// LeaveGame removes sessionID from a game that has not started.
func (s *Service) LeaveGame(ctx context.Context, gameID, sessionID string) (game.State, error) {
	return s.run(ctx, gameID, sessionID, game.CommandTypeLeave, nil)
}

// StartGame starts a game once every seat is taken.
func (s *Service) StartGame(ctx context.Context, gameID, sessionID string) (game.State, error) {
	return s.run(ctx, gameID, sessionID, game.CommandTypeStart, nil)
}

// GiveHint gives a hint for the spymaster whose turn it is.
func (s *Service) GiveHint(ctx context.Context, gameID, sessionID, word string, num int) (game.State, error) {
	return s.run(ctx, gameID, sessionID, game.CommandTypeGiveHint, game.GiveHintPayload{Word: word, Num: num})
}

// Guess guesses a board word for the player whose turn it is.
func (s *Service) Guess(ctx context.Context, gameID, sessionID string, wordID int64) (game.State, error) {
	return s.run(ctx, gameID, sessionID, game.CommandTypeGuess, game.GuessPayload{WordID: wordID})
}

// EndTurn hands the turn to the other team's spymaster.
func (s *Service) EndTurn(ctx context.Context, gameID, sessionID string) (game.State, error) {
	return s.run(ctx, gameID, sessionID, game.CommandTypeEndTurn, nil)
}

func (s *Service) run(ctx context.Context, gameID, sessionID string, cmdType command.Type, payload any) (game.State, error) {
	if s.Executor == nil {
		return game.State{}, errors.New("executor is required")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return game.State{}, apperrors.New(apperrors.CodeSessionRequired, "session id is required")
	}
	var raw []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return game.State{}, fmt.Errorf("encode %s payload: %w", cmdType, err)
		}
		raw = encoded
	}
	result, err := s.Executor.Execute(ctx, command.Command{
		GameID:      strings.TrimSpace(gameID),
		Type:        cmdType,
		ActorType:   command.ActorTypePlayer,
		ActorID:     sessionID,
		RequestID:   requestctx.RequestIDFromContext(ctx),
		PayloadJSON: raw,
	})
	if err != nil {
		return game.State{}, err
	}
	return result.State, nil
}

// GetGame returns the projection row of a game.
func (s *Service) GetGame(ctx context.Context, gameID string) (storage.GameRecord, error) {
	return s.Projections.GetGame(ctx, gameID)
}

// ListWords returns every board word of a game, guessed or not.
func (s *Service) ListWords(ctx context.Context, gameID string) ([]storage.WordRecord, error) {
	return s.Projections.ListWords(ctx, gameID)
}

// ListActiveWords returns the words not guessed yet.
func (s *Service) ListActiveWords(ctx context.Context, gameID string) ([]storage.WordRecord, error) {
	return s.Projections.ListActiveWords(ctx, gameID)
}

// ListHints returns the hints of a game in order.
func (s *Service) ListHints(ctx context.Context, gameID string) ([]storage.HintRecord, error) {
	return s.Projections.ListHints(ctx, gameID)
}

// ListPlayers returns the seated sessions of a game.
func (s *Service) ListPlayers(ctx context.Context, gameID string) ([]storage.PlayerRecord, error) {
	return s.Projections.ListPlayers(ctx, gameID)
}

// ListConditions returns the condition log of a game.
func (s *Service) ListConditions(ctx context.Context, gameID string) ([]storage.ConditionRecord, error) {
	return s.Projections.ListConditions(ctx, gameID)
}

// ListEvents returns up to limit journal events of a game after afterSeq.
func (s *Service) ListEvents(ctx context.Context, gameID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if s.Events == nil {
		return nil, replay.ErrEventStoreRequired
	}
	if _, err := s.Projections.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	return s.Events.ListEvents(ctx, gameID, afterSeq, limit)
}

// Load returns the current snapshot of a game.
func (s *Service) Load(ctx context.Context, gameID string) (game.State, error) {
	if s.Loader == nil {
		return game.State{}, engine.ErrStateLoaderRequired
	}
	state, _, err := s.Loader.Load(ctx, gameID)
	if err != nil {
		return game.State{}, err
	}
	if !state.Created {
		return game.State{}, gameNotFound(gameID)
	}
	return state, nil
}

// LoadAt rebuilds the snapshot of a game as it was after untilSeq.
func (s *Service) LoadAt(ctx context.Context, gameID string, untilSeq uint64) (game.State, error) {
	if s.Events == nil {
		return game.State{}, replay.ErrEventStoreRequired
	}
	result, err := replay.Replay(ctx, s.Events, checkpoint.NewNoop(), game.Folder{}, gameID, game.State{},
		replay.Options{UntilSeq: untilSeq})
	if err != nil {
		return game.State{}, err
	}
	if !result.State.Created {
		return game.State{}, gameNotFound(gameID)
	}
	return result.State, nil
}

func gameNotFound(gameID string) error {
	return apperrors.WithMetadata(apperrors.CodeNotFound, fmt.Sprintf("game %s not found", gameID),
		map[string]string{"game_id": gameID})
}
