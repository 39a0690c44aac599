package storage

import (
	"context"
	"time"

	apperrors "github.com/mikeczech/codenames/internal/platform/errors"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/event"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/game"
)

// ErrNotFound indicates a requested persistence record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrSequenceConflict indicates the journal moved past the sequence an append
// was decided against. Callers reload and decide again.
var ErrSequenceConflict = apperrors.New(apperrors.CodeSequenceConflict, "event sequence conflict")

// EventStore is the append-only game journal.
type EventStore interface {
	// AppendEvents stores events atomically after expectedSeq and returns them
	// with sequence and hashes assigned.
	AppendEvents(ctx context.Context, gameID string, expectedSeq uint64, events []event.Event) ([]event.Event, error)
	// ListEvents returns up to limit events with seq > afterSeq in order.
	ListEvents(ctx context.Context, gameID string, afterSeq uint64, limit int) ([]event.Event, error)
	// LatestSeq returns the last stored sequence of the game, 0 when empty.
	LatestSeq(ctx context.Context, gameID string) (uint64, error)
}

// GameRecord is the projection row of a game.
type GameRecord struct {
	ID               string
	Name             string
	CreatorSessionID string
	Condition        game.Condition
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// WordRecord is one board word of a game.
type WordRecord struct {
	GameID     string
	WordID     int64
	Value      string
	Color      game.Color
	Position   int
	SelectedAt *time.Time
}

// HintRecord is one hint of a game, including the setup placeholder.
type HintRecord struct {
	GameID    string
	HintID    int64
	Word      string
	Num       int
	Color     game.Color
	CreatedAt time.Time
}

// PlayerRecord is one seated session.
type PlayerRecord struct {
	GameID    string
	SessionID string
	Color     game.Color
	Role      game.Role
	JoinedAt  time.Time
}

// ConditionRecord is one entry of a game's condition log. HintID is 0 when
// the condition references no hint.
type ConditionRecord struct {
	GameID    string
	Seq       uint64
	Condition game.Condition
	HintID    int64
	CreatedAt time.Time
}

// GuessRecord is one recorded guess.
type GuessRecord struct {
	GameID    string
	Seq       uint64
	WordID    int64
	HintID    int64
	CreatedAt time.Time
}

// ProjectionStore serves read models derived from the journal.
type ProjectionStore interface {
	GetGame(ctx context.Context, gameID string) (GameRecord, error)
	GetGameByName(ctx context.Context, name string) (GameRecord, error)
	ListWords(ctx context.Context, gameID string) ([]WordRecord, error)
	ListActiveWords(ctx context.Context, gameID string) ([]WordRecord, error)
	ListHints(ctx context.Context, gameID string) ([]HintRecord, error)
	ListPlayers(ctx context.Context, gameID string) ([]PlayerRecord, error)
	ListConditions(ctx context.Context, gameID string) ([]ConditionRecord, error)
	ListGuesses(ctx context.Context, gameID string) ([]GuessRecord, error)
	IsOccupied(ctx context.Context, gameID string, color game.Color, role game.Role) (bool, error)
	HasJoined(ctx context.Context, gameID, sessionID string) (bool, error)
}

// CorpusWord is one entry of the global word corpus.
type CorpusWord struct {
	ID    int64
	Value string
}

// WordCorpus is the global list of words boards are dealt from.
type WordCorpus interface {
	ListCorpus(ctx context.Context) ([]CorpusWord, error)
	CountCorpus(ctx context.Context) (int, error)
}
