// Package manager creates games with randomly dealt boards.
package manager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	apperrors "github.com/mikeczech/codenames/internal/platform/errors"
	"github.com/mikeczech/codenames/internal/platform/id"
	"github.com/mikeczech/codenames/internal/platform/random"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/command"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/engine"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/game"
	"github.com/mikeczech/codenames/internal/services/codenames/storage"
)

// Executor runs a game command through the engine.
type Executor interface {
	Execute(ctx context.Context, cmd command.Command) (engine.Result[game.State], error)
}

// GameLookup finds games by name.
type GameLookup interface {
	GetGameByName(ctx context.Context, name string) (storage.GameRecord, error)
}

// Game is the handle returned for a created game.
type Game struct {
	ID   string
	Name string
	// Words is the dealt board in position order.
	Words []game.BoardWord
}

// Manager deals boards from the corpus and creates games through the engine.
type Manager struct {
	Games    GameLookup
	Corpus   storage.WordCorpus
	Executor Executor
	// Counts defaults to game.DefaultBoardCounts.
	Counts game.BoardCounts
	// NewRand defaults to random.DefaultFactory.
	NewRand random.Factory
	// NewID defaults to id.NewID.
	NewID func() (string, error)
}

// Exists reports whether a game called name exists.
func (m Manager) Exists(ctx context.Context, name string) (bool, error) {
	if m.Games == nil {
		return false, errors.New("game lookup is required")
	}
	_, err := m.Games.GetGameByName(ctx, strings.TrimSpace(name))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateRandom creates a game called name with a board sampled from the
// corpus. A non-nil seed makes the board reproducible.
func (m Manager) CreateRandom(ctx context.Context, name, creatorSessionID string, seed *uint64) (Game, error) {
	if m.Corpus == nil {
		return Game{}, errors.New("word corpus is required")
	}
	if m.Executor == nil {
		return Game{}, errors.New("executor is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Game{}, apperrors.New(apperrors.CodeGameNameEmpty, "game name is required")
	}
	exists, err := m.Exists(ctx, name)
	if err != nil {
		return Game{}, fmt.Errorf("check game name: %w", err)
	}
	if exists {
		return Game{}, apperrors.WithMetadata(apperrors.CodeGameAlreadyExists,
			fmt.Sprintf("game %q already exists", name), map[string]string{"name": name})
	}

	board, err := m.deal(ctx, seed)
	if err != nil {
		return Game{}, err
	}
	newID := m.NewID
	if newID == nil {
		newID = id.NewID
	}
	gameID, err := newID()
	if err != nil {
		return Game{}, fmt.Errorf("generate game id: %w", err)
	}

	payload, err := json.Marshal(game.CreatePayload{Name: name, CreatorSessionID: creatorSessionID, Words: board})
	if err != nil {
		return Game{}, fmt.Errorf("encode create payload: %w", err)
	}
	cmd := command.Command{
		GameID:      gameID,
		Type:        game.CommandTypeCreate,
		ActorType:   command.ActorTypeSystem,
		PayloadJSON: payload,
	}
	if creatorSessionID = strings.TrimSpace(creatorSessionID); creatorSessionID != "" {
		cmd.ActorType = command.ActorTypePlayer
		cmd.ActorID = creatorSessionID
	}
	if _, err := m.Executor.Execute(ctx, cmd); err != nil {
		return Game{}, err
	}
	zerolog.Ctx(ctx).Info().Str("game_id", gameID).Str("name", name).Int("words", len(board)).Msg("game created")
	return Game{ID: gameID, Name: name, Words: board}, nil
}

// deal samples the board words without replacement and shuffles the colors
// over them.
func (m Manager) deal(ctx context.Context, seed *uint64) ([]game.BoardWord, error) {
	counts := m.Counts
	if counts == (game.BoardCounts{}) {
		counts = game.DefaultBoardCounts()
	}
	if err := counts.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeBoardInvalid, err.Error(), err)
	}
	corpus, err := m.Corpus.ListCorpus(ctx)
	if err != nil {
		return nil, fmt.Errorf("list corpus: %w", err)
	}
	size := counts.Size()
	if len(corpus) < size {
		return nil, apperrors.WithMetadata(apperrors.CodeCorpusTooSmall,
			fmt.Sprintf("corpus has %d words, board needs %d", len(corpus), size),
			map[string]string{"corpus": fmt.Sprint(len(corpus)), "board": fmt.Sprint(size)})
	}

	newRand := m.NewRand
	if newRand == nil {
		newRand = random.DefaultFactory
	}
	rng, err := newRand(seed)
	if err != nil {
		return nil, fmt.Errorf("seed generator: %w", err)
	}
	picks := rng.Perm(len(corpus))[:size]
	colors := counts.Colors()
	rng.Shuffle(len(colors), func(i, j int) { colors[i], colors[j] = colors[j], colors[i] })

	board := make([]game.BoardWord, size)
	for i, pick := range picks {
		board[i] = game.BoardWord{
			ID:       corpus[pick].ID,
			Value:    corpus[pick].Value,
			Color:    colors[i],
			Position: i,
		}
	}
	return board, nil
}
