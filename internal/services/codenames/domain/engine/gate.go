package engine

import "sync"

// GameLocks serializes command execution per game id.
//
// Entries are reference counted so idle games do not accumulate mutexes.
type GameLocks struct {
	mu    sync.Mutex
	locks map[string]*gameLock
}

type gameLock struct {
	mu   sync.Mutex
	refs int
}

// NewGameLocks creates an empty lock table.
func NewGameLocks() *GameLocks {
	return &GameLocks{locks: make(map[string]*gameLock)}
}

// Lock blocks until the caller holds gameID and returns the release func.
func (g *GameLocks) Lock(gameID string) func() {
	g.mu.Lock()
	if g.locks == nil {
		g.locks = make(map[string]*gameLock)
	}
	entry, ok := g.locks[gameID]
	if !ok {
		entry = &gameLock{}
		g.locks[gameID] = entry
	}
	entry.refs++
	g.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		g.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(g.locks, gameID)
		}
		g.mu.Unlock()
	}
}

// size reports the number of tracked games.
func (g *GameLocks) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}
