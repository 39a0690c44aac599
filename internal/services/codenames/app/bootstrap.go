package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mikeczech/codenames/internal/services/codenames/domain/checkpoint"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/engine"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/game"
	"github.com/mikeczech/codenames/internal/services/codenames/manager"
	"github.com/mikeczech/codenames/internal/services/codenames/storage/integrity"
	"github.com/mikeczech/codenames/internal/services/codenames/storage/sqlite"
	"github.com/mikeczech/codenames/internal/services/codenames/words"
)

// StoreConfig describes the database and the rules every new game uses.
type StoreConfig struct {
	DBPath string
	// Counts is the board deal; zero means the 9/9/9/1 default.
	Counts game.BoardCounts
	// WordsFile replaces the stored corpus when set.
	WordsFile string
	// Keyring signs event chain hashes; nil stores them unsigned.
	Keyring *integrity.Keyring
	// Now defaults to time.Now.
	Now func() time.Time
}

// Runtime is an opened store with the service wired on top of it.
type Runtime struct {
	Store   *sqlite.Store
	Service *Service
}

// Close releases the store.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	return r.Store.Close()
}

// Open opens the store, verifies the journal, loads the word corpus and
// wires the command engine, manager and service.
func Open(ctx context.Context, cfg StoreConfig) (*Runtime, error) {
	log := zerolog.Ctx(ctx)
	path := strings.TrimSpace(cfg.DBPath)
	if path == "" {
		path = filepath.Join("data", "codenames.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	commands, events, err := game.NewRegistries()
	if err != nil {
		return nil, fmt.Errorf("build registries: %w", err)
	}
	store, err := sqlite.Open(ctx, path, events, sqlite.WithKeyring(cfg.Keyring))
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if err := store.VerifyEventIntegrity(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("verify event integrity: %w", err)
	}
	if err := loadCorpus(ctx, store, cfg.WordsFile); err != nil {
		_ = store.Close()
		return nil, err
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	snapshots := checkpoint.NewMemory()
	loader := engine.ReplayStateLoader[game.State]{
		Events:      store,
		Checkpoints: checkpoint.NewNoop(),
		Snapshots:   snapshots,
		Folder:      game.Folder{},
	}
	handler := engine.Handler[game.State]{
		Commands:    commands,
		Events:      events,
		Journal:     store,
		Snapshots:   snapshots,
		StateLoader: loader,
		Decider:     game.Decider{},
		Folder:      game.Folder{},
		Locks:       engine.NewGameLocks(),
		Now:         now,
	}

	counts := cfg.Counts
	if counts == (game.BoardCounts{}) {
		counts = game.DefaultBoardCounts()
	}
	if err := counts.Validate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("board counts: %w", err)
	}
	svc := &Service{
		Manager: manager.Manager{
			Games:    store,
			Corpus:   store,
			Executor: handler,
			Counts:   counts,
		},
		Executor:    handler,
		Projections: store,
		Loader:      loader,
		Events:      store,
	}
	log.Info().Str("db_path", path).Int("board_size", counts.Size()).Msg("store ready")
	return &Runtime{Store: store, Service: svc}, nil
}

// loadCorpus replaces the corpus with wordsFile when given; otherwise it
// seeds the embedded list into an empty corpus.
func loadCorpus(ctx context.Context, store *sqlite.Store, wordsFile string) error {
	log := zerolog.Ctx(ctx)
	if wordsFile = strings.TrimSpace(wordsFile); wordsFile != "" {
		values, err := words.LoadFile(wordsFile)
		if err != nil {
			return fmt.Errorf("load words file: %w", err)
		}
		n, err := store.ReplaceCorpus(ctx, values)
		if err != nil {
			return fmt.Errorf("replace corpus: %w", err)
		}
		log.Info().Str("words_file", wordsFile).Int("words", n).Msg("corpus replaced")
		return nil
	}
	n, err := store.SeedCorpus(ctx, words.Default())
	if err != nil {
		return fmt.Errorf("seed corpus: %w", err)
	}
	if n > 0 {
		log.Info().Int("words", n).Msg("corpus seeded")
	}
	return nil
}
