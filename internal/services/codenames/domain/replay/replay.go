// Package replay rebuilds folded state from a game's event journal.
package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mikeczech/codenames/internal/services/codenames/domain/event"
)

const defaultPageSize = 200

var (
	// ErrEventStoreRequired indicates a missing event store.
	ErrEventStoreRequired = errors.New("event store is required")
	// ErrCheckpointStoreRequired indicates a missing checkpoint store.
	ErrCheckpointStoreRequired = errors.New("checkpoint store is required")
	// ErrFolderRequired indicates a missing folder.
	ErrFolderRequired = errors.New("folder is required")
	// ErrGameIDRequired indicates a missing game id.
	ErrGameIDRequired = errors.New("game id is required")
	// ErrCheckpointNotFound indicates no checkpoint exists yet.
	ErrCheckpointNotFound = errors.New("checkpoint not found")
)

// EventStore lists events for replay in ascending sequence order.
type EventStore interface {
	ListEvents(ctx context.Context, gameID string, afterSeq uint64, limit int) ([]event.Event, error)
}

// CheckpointStore manages replay checkpoints.
type CheckpointStore interface {
	Get(ctx context.Context, gameID string) (Checkpoint, error)
	Save(ctx context.Context, checkpoint Checkpoint) error
}

// Folder folds a domain event into state.
type Folder[S any] interface {
	Fold(state S, evt event.Event) (S, error)
}

// FolderFunc adapts a plain fold function to Folder.
type FolderFunc[S any] func(state S, evt event.Event) (S, error)

// Fold calls f.
func (f FolderFunc[S]) Fold(state S, evt event.Event) (S, error) {
	return f(state, evt)
}

// Checkpoint captures the last applied sequence for a game.
type Checkpoint struct {
	GameID    string
	LastSeq   uint64
	UpdatedAt time.Time
}

// Options configures replay behavior. UntilSeq of zero replays to the end of
// the journal.
type Options struct {
	AfterSeq uint64
	UntilSeq uint64
	PageSize int
}

// Result captures replay outcomes.
type Result[S any] struct {
	State   S
	LastSeq uint64
	Applied int
}

// Replay folds events in order starting after the later of options.AfterSeq
// and the stored checkpoint, saving a checkpoint after each event.
func Replay[S any](ctx context.Context, store EventStore, checkpoints CheckpointStore, folder Folder[S], gameID string, state S, options Options) (Result[S], error) {
	if store == nil {
		return Result[S]{}, ErrEventStoreRequired
	}
	if checkpoints == nil {
		return Result[S]{}, ErrCheckpointStoreRequired
	}
	if folder == nil {
		return Result[S]{}, ErrFolderRequired
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return Result[S]{}, ErrGameIDRequired
	}

	checkpointSeq := uint64(0)
	checkpoint, err := checkpoints.Get(ctx, gameID)
	if err != nil {
		if !errors.Is(err, ErrCheckpointNotFound) {
			return Result[S]{}, err
		}
	} else {
		checkpointSeq = checkpoint.LastSeq
	}

	lastSeq := options.AfterSeq
	if checkpointSeq > lastSeq {
		lastSeq = checkpointSeq
	}
	pageSize := options.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	result := Result[S]{State: state, LastSeq: lastSeq}
	if options.UntilSeq > 0 && result.LastSeq >= options.UntilSeq {
		return result, nil
	}
	for {
		events, err := store.ListEvents(ctx, gameID, result.LastSeq, pageSize)
		if err != nil {
			return result, err
		}
		if len(events) == 0 {
			return result, nil
		}
		for _, evt := range events {
			if options.UntilSeq > 0 && evt.Seq > options.UntilSeq {
				return result, nil
			}
			expectedSeq := result.LastSeq + 1
			if evt.Seq != expectedSeq {
				return result, fmt.Errorf("event sequence gap: expected %d got %d", expectedSeq, evt.Seq)
			}
			nextState, err := folder.Fold(result.State, evt)
			if err != nil {
				return result, fmt.Errorf("fold event %d (%s): %w", evt.Seq, evt.Type, err)
			}
			result.State = nextState
			result.LastSeq = evt.Seq
			result.Applied++
			if err := checkpoints.Save(ctx, Checkpoint{GameID: gameID, LastSeq: result.LastSeq, UpdatedAt: time.Now().UTC()}); err != nil {
				return result, err
			}
		}
		if len(events) < pageSize {
			return result, nil
		}
	}
}
