package engine

import (
	"context"
	"errors"

	"github.com/mikeczech/codenames/internal/services/codenames/domain/replay"
)

// StateSnapshotStore loads and saves folded state snapshots keyed by game.
type StateSnapshotStore[S any] interface {
	GetState(ctx context.Context, gameID string) (state S, lastSeq uint64, err error)
	SaveState(ctx context.Context, gameID string, lastSeq uint64, state S) error
}

// ReplayStateLoader replays events to build state for command handling.
//
// A snapshot, when present, seeds the fold and only the events after it are
// replayed. Checkpoints must not be a store that tracks snapshots, since
// replay advances checkpoints without saving state.
type ReplayStateLoader[S any] struct {
	Events       replay.EventStore
	Checkpoints  replay.CheckpointStore
	Snapshots    StateSnapshotStore[S]
	Folder       replay.Folder[S]
	StateFactory func() S
	Options      replay.Options
}

// Load replays the journal of gameID and returns the state with the sequence
// it was folded through.
func (l ReplayStateLoader[S]) Load(ctx context.Context, gameID string) (S, uint64, error) {
	var state S
	if l.Events == nil {
		return state, 0, replay.ErrEventStoreRequired
	}
	if l.Checkpoints == nil {
		return state, 0, replay.ErrCheckpointStoreRequired
	}
	if l.Folder == nil {
		return state, 0, replay.ErrFolderRequired
	}
	options := l.Options
	seeded := false
	if l.Snapshots != nil {
		snapshotState, snapshotSeq, err := l.Snapshots.GetState(ctx, gameID)
		if err != nil {
			if !errors.Is(err, replay.ErrCheckpointNotFound) {
				return state, 0, err
			}
		} else {
			state = snapshotState
			seeded = true
			if snapshotSeq > options.AfterSeq {
				options.AfterSeq = snapshotSeq
			}
		}
	}
	if !seeded && l.StateFactory != nil {
		state = l.StateFactory()
	}
	result, err := replay.Replay(ctx, l.Events, l.Checkpoints, l.Folder, gameID, state, options)
	if err != nil {
		return state, 0, err
	}
	return result.State, result.LastSeq, nil
}
