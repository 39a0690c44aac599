// Package checkpoint provides replay checkpoint and state snapshot stores.
package checkpoint

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mikeczech/codenames/internal/services/codenames/domain/game"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/replay"
)

var (
	// ErrGameIDRequired indicates a missing game id.
	ErrGameIDRequired = errors.New("game id is required")
)

// Memory stores checkpoints and game state snapshots in memory.
type Memory struct {
	mu          sync.Mutex
	checkpoints map[string]replay.Checkpoint
	states      map[string]game.State
}

// NewMemory creates a new in-memory checkpoint store.
func NewMemory() *Memory {
	return &Memory{
		checkpoints: make(map[string]replay.Checkpoint),
		states:      make(map[string]game.State),
	}
}

// Get retrieves a checkpoint by game id.
func (m *Memory) Get(ctx context.Context, gameID string) (replay.Checkpoint, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return replay.Checkpoint{}, err
		}
	}
	if m == nil {
		return replay.Checkpoint{}, replay.ErrCheckpointStoreRequired
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return replay.Checkpoint{}, ErrGameIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	checkpoint, ok := m.checkpoints[gameID]
	if !ok {
		return replay.Checkpoint{}, replay.ErrCheckpointNotFound
	}
	return checkpoint, nil
}

// Save persists a checkpoint.
func (m *Memory) Save(ctx context.Context, checkpoint replay.Checkpoint) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if m == nil {
		return replay.ErrCheckpointStoreRequired
	}
	gameID := strings.TrimSpace(checkpoint.GameID)
	if gameID == "" {
		return ErrGameIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	checkpoint.GameID = gameID
	m.checkpoints[gameID] = checkpoint
	return nil
}

// GetState returns a copy of the latest game snapshot and its sequence.
func (m *Memory) GetState(ctx context.Context, gameID string) (game.State, uint64, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return game.State{}, 0, err
		}
	}
	if m == nil {
		return game.State{}, 0, replay.ErrCheckpointStoreRequired
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return game.State{}, 0, ErrGameIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot, ok := m.states[gameID]
	if !ok {
		return game.State{}, 0, replay.ErrCheckpointNotFound
	}
	checkpoint, ok := m.checkpoints[gameID]
	if !ok {
		return game.State{}, 0, replay.ErrCheckpointNotFound
	}
	return snapshot.Clone(), checkpoint.LastSeq, nil
}

// SaveState stores a copy of a game snapshot folded through lastSeq. Older
// snapshots never replace newer ones.
func (m *Memory) SaveState(ctx context.Context, gameID string, lastSeq uint64, state game.State) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if m == nil {
		return replay.ErrCheckpointStoreRequired
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return ErrGameIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.checkpoints[gameID]; ok && current.LastSeq > lastSeq {
		return nil
	}
	m.states[gameID] = state.Clone()
	m.checkpoints[gameID] = replay.Checkpoint{
		GameID:    gameID,
		LastSeq:   lastSeq,
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}

// Forget drops the checkpoint and snapshot of a game.
func (m *Memory) Forget(gameID string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.checkpoints, gameID)
	delete(m.states, gameID)
}
