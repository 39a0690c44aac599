// Package maintenance verifies the codenames journal and rebuilds game
// snapshots, either offline from the database or through a running server.
package maintenance

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mikeczech/codenames/internal/services/codenames/domain/checkpoint"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/game"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/replay"
	"github.com/mikeczech/codenames/internal/services/codenames/storage"
	"github.com/mikeczech/codenames/internal/services/codenames/storage/integrity"
	"github.com/mikeczech/codenames/internal/services/codenames/storage/sqlite"
)

// Config holds maintenance command configuration.
type Config struct {
	GameID     string
	GameIDs    string
	DBPath     string        `env:"CODENAMES_DB_PATH"`
	GRPCAddr   string        `env:"CODENAMES_MAINTENANCE_GRPC_ADDR"`
	Timeout    time.Duration `env:"CODENAMES_MAINTENANCE_TIMEOUT" envDefault:"5m"`
	UntilSeq   uint64
	Verify     bool
	Integrity  bool
	JSONOutput bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "codenames.db")
	}

	fs.StringVar(&cfg.GameID, "game-id", "", "game ID to replay")
	fs.StringVar(&cfg.GameIDs, "game-ids", "", "comma-separated game IDs to replay")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the sqlite database (default: CODENAMES_DB_PATH or data/codenames.db)")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "read games from a running server at this address instead of the database")
	fs.Uint64Var(&cfg.UntilSeq, "until-seq", 0, "replay up to this event sequence (0 = latest)")
	fs.BoolVar(&cfg.Verify, "verify", false, "verify the hash chain and signatures of every stored event")
	fs.BoolVar(&cfg.Integrity, "integrity", false, "compare replayed state against the stored projections")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output JSON reports")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Store is the storage surface maintenance reads from.
type Store interface {
	replay.EventStore
	storage.ProjectionStore
	VerifyEventIntegrity(ctx context.Context) error
	Close() error
}

// Report summarizes one replayed game.
type Report struct {
	GameID     string         `json:"game_id"`
	LastSeq    uint64         `json:"last_seq"`
	Condition  string         `json:"condition"`
	Remaining  map[string]int `json:"remaining"`
	Hints      int            `json:"hints"`
	Players    int            `json:"players"`
	Guesses    int            `json:"guesses"`
	Mismatches []string       `json:"mismatches,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Run executes the maintenance command against the configured database, or
// against a running server when GRPCAddr is set.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if cfg.Integrity && cfg.UntilSeq > 0 {
		return errors.New("-integrity compares the latest state and cannot be combined with -until-seq")
	}
	if cfg.GRPCAddr != "" && cfg.Verify {
		return errors.New("-verify needs direct database access and cannot be combined with -grpc-addr")
	}
	ids := resolveGameIDs(cfg.GameID, cfg.GameIDs)
	if len(ids) == 0 && !cfg.Verify {
		return errors.New("nothing to do: pass -verify, -game-id or -game-ids")
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if cfg.GRPCAddr != "" {
		return runRemote(ctx, cfg, ids, out, errOut)
	}

	keyring, err := integrity.KeyringFromEnv()
	if err != nil {
		return err
	}
	_, events, err := game.NewRegistries()
	if err != nil {
		return err
	}
	store, err := sqlite.Open(ctx, cfg.DBPath, events, sqlite.WithKeyring(keyring))
	if err != nil {
		return fmt.Errorf("open sqlite store: %w", err)
	}
	return runWithStore(ctx, cfg, store, ids, out, errOut)
}

// runWithStore owns store and closes it on return.
func runWithStore(ctx context.Context, cfg Config, store Store, ids []string, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(errOut, "Error: close store: %v\n", err)
		}
	}()

	if cfg.Verify {
		if err := store.VerifyEventIntegrity(ctx); err != nil {
			return fmt.Errorf("verify event integrity: %w", err)
		}
		if !cfg.JSONOutput {
			fmt.Fprintln(out, "event chain verified")
		}
	}

	failed := 0
	for _, gameID := range ids {
		report := replayGame(ctx, store, gameID, cfg.UntilSeq)
		if report.Error == "" && cfg.Integrity {
			report.Mismatches = compareProjections(ctx, store, gameID, report)
		}
		if report.Error != "" || len(report.Mismatches) > 0 {
			failed++
		}
		if err := writeReport(out, report, cfg.JSONOutput); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d games failed", failed, len(ids))
	}
	return nil
}

func replayGame(ctx context.Context, store Store, gameID string, untilSeq uint64) Report {
	report := Report{GameID: gameID}
	result, err := replay.Replay(ctx, store, checkpoint.NewNoop(), game.Folder{}, gameID, game.State{},
		replay.Options{UntilSeq: untilSeq})
	if err != nil {
		report.Error = err.Error()
		return report
	}
	state := result.State
	if !state.Created {
		report.Error = "game not found"
		return report
	}
	report.LastSeq = result.LastSeq
	report.Condition = string(state.Condition())
	report.Remaining = make(map[string]int)
	for _, w := range state.Words {
		if w.Active() {
			report.Remaining[string(w.Color)]++
		}
	}
	for _, h := range state.Hints {
		if !h.Placeholder() {
			report.Hints++
		}
	}
	report.Players = len(state.Players)
	report.Guesses = len(state.Guesses)
	return report
}

// compareProjections checks the stored read models against the replayed report.
func compareProjections(ctx context.Context, store Store, gameID string, report Report) []string {
	var mismatches []string
	rec, err := store.GetGame(ctx, gameID)
	if err != nil {
		return []string{fmt.Sprintf("game projection: %v", err)}
	}
	if string(rec.Condition) != report.Condition {
		mismatches = append(mismatches, fmt.Sprintf("condition: projection %s, replay %s", rec.Condition, report.Condition))
	}

	active, err := store.ListActiveWords(ctx, gameID)
	if err != nil {
		return append(mismatches, fmt.Sprintf("active words: %v", err))
	}
	remaining := make(map[string]int)
	for _, w := range active {
		remaining[string(w.Color)]++
	}
	for _, color := range []game.Color{game.ColorBlue, game.ColorRed, game.ColorNeutral, game.ColorAssassin} {
		if remaining[string(color)] != report.Remaining[string(color)] {
			mismatches = append(mismatches, fmt.Sprintf("%s words remaining: projection %d, replay %d",
				color, remaining[string(color)], report.Remaining[string(color)]))
		}
	}

	players, err := store.ListPlayers(ctx, gameID)
	if err != nil {
		return append(mismatches, fmt.Sprintf("players: %v", err))
	}
	if len(players) != report.Players {
		mismatches = append(mismatches, fmt.Sprintf("players: projection %d, replay %d", len(players), report.Players))
	}

	guesses, err := store.ListGuesses(ctx, gameID)
	if err != nil {
		return append(mismatches, fmt.Sprintf("guesses: %v", err))
	}
	if len(guesses) != report.Guesses {
		mismatches = append(mismatches, fmt.Sprintf("guesses: projection %d, replay %d", len(guesses), report.Guesses))
	}
	return mismatches
}

func writeReport(out io.Writer, report Report, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(out).Encode(report)
	}
	if report.Error != "" {
		_, err := fmt.Fprintf(out, "%s: error: %s\n", report.GameID, report.Error)
		return err
	}
	colors := make([]string, 0, len(report.Remaining))
	for color := range report.Remaining {
		colors = append(colors, color)
	}
	slices.Sort(colors)
	remaining := make([]string, 0, len(colors))
	for _, color := range colors {
		remaining = append(remaining, fmt.Sprintf("%s=%d", color, report.Remaining[color]))
	}
	if _, err := fmt.Fprintf(out, "%s: seq=%d condition=%s remaining[%s] hints=%d players=%d guesses=%d\n",
		report.GameID, report.LastSeq, report.Condition, strings.Join(remaining, " "),
		report.Hints, report.Players, report.Guesses); err != nil {
		return err
	}
	for _, m := range report.Mismatches {
		if _, err := fmt.Fprintf(out, "  mismatch: %s\n", m); err != nil {
			return err
		}
	}
	return nil
}

func resolveGameIDs(single, list string) []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, id := range append([]string{single}, strings.Split(list, ",")...) {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
