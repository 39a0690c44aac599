package manager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	apperrors "github.com/mikeczech/codenames/internal/platform/errors"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/checkpoint"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/command"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/engine"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/game"
	"github.com/mikeczech/codenames/internal/services/codenames/storage"
	"github.com/mikeczech/codenames/internal/services/codenames/storage/sqlite"
)

type fakeCorpus struct {
	words []storage.CorpusWord
	err   error
}

func (c fakeCorpus) ListCorpus(context.Context) ([]storage.CorpusWord, error) {
	return c.words, c.err
}

func (c fakeCorpus) CountCorpus(context.Context) (int, error) {
	return len(c.words), c.err
}

type fakeLookup map[string]storage.GameRecord

func (l fakeLookup) GetGameByName(_ context.Context, name string) (storage.GameRecord, error) {
	rec, ok := l[name]
	if !ok {
		return storage.GameRecord{}, storage.ErrNotFound
	}
	return rec, nil
}

type fakeExecutor struct {
	cmds []command.Command
	err  error
}

func (e *fakeExecutor) Execute(_ context.Context, cmd command.Command) (engine.Result[game.State], error) {
	e.cmds = append(e.cmds, cmd)
	return engine.Result[game.State]{}, e.err
}

func corpusOf(n int) []storage.CorpusWord {
	words := make([]storage.CorpusWord, n)
	for i := range words {
		words[i] = storage.CorpusWord{ID: int64(i + 1), Value: fmt.Sprintf("word%02d", i+1)}
	}
	return words
}

func newTestManager(corpus int, lookup fakeLookup, exec *fakeExecutor) Manager {
	return Manager{
		Games:    lookup,
		Corpus:   fakeCorpus{words: corpusOf(corpus)},
		Executor: exec,
		NewID:    func() (string, error) { return "game-1", nil },
	}
}

func TestExists(t *testing.T) {
	m := newTestManager(30, fakeLookup{"friday": {ID: "g"}}, &fakeExecutor{})
	tests := []struct {
		name string
		want bool
	}{
		{"friday", true},
		{" friday ", true},
		{"saturday", false},
	}
	for _, tt := range tests {
		got, err := m.Exists(context.Background(), tt.name)
		if err != nil {
			t.Fatalf("Exists(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("Exists(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCreateRandom_DealsConfiguredCounts(t *testing.T) {
	exec := &fakeExecutor{}
	m := newTestManager(40, fakeLookup{}, exec)
	seed := uint64(11)

	created, err := m.CreateRandom(context.Background(), " friday ", "sess-1", &seed)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "game-1" || created.Name != "friday" {
		t.Fatalf("game = %+v, want game-1 friday", created)
	}
	if len(created.Words) != 28 {
		t.Fatalf("board size = %d, want 28", len(created.Words))
	}
	counts := game.BoardCounts{}
	seen := make(map[int64]bool)
	for i, w := range created.Words {
		if w.Position != i {
			t.Fatalf("word %d position = %d", i, w.Position)
		}
		if seen[w.ID] {
			t.Fatalf("word %d dealt twice", w.ID)
		}
		seen[w.ID] = true
		switch w.Color {
		case game.ColorBlue:
			counts.Blue++
		case game.ColorRed:
			counts.Red++
		case game.ColorNeutral:
			counts.Neutral++
		case game.ColorAssassin:
			counts.Assassin++
		}
	}
	if counts != game.DefaultBoardCounts() {
		t.Fatalf("counts = %+v, want %+v", counts, game.DefaultBoardCounts())
	}

	if len(exec.cmds) != 1 {
		t.Fatalf("commands = %d, want 1", len(exec.cmds))
	}
	cmd := exec.cmds[0]
	if cmd.Type != game.CommandTypeCreate || cmd.ActorType != command.ActorTypePlayer || cmd.ActorID != "sess-1" {
		t.Fatalf("command = %+v", cmd)
	}
	var payload game.CreatePayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if diff := cmp.Diff(created.Words, payload.Words); diff != "" {
		t.Fatalf("payload words mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateRandom_DefaultIDsDoNotCollide(t *testing.T) {
	exec := &fakeExecutor{}
	m := newTestManager(40, fakeLookup{}, exec)
	m.NewID = nil

	ids := make(map[string]bool)
	for i := 0; i < 20; i++ {
		created, err := m.CreateRandom(context.Background(), fmt.Sprintf("game %d", i), "", nil)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if len(created.ID) != 26 {
			t.Fatalf("id = %q, want 26 characters", created.ID)
		}
		if ids[created.ID] {
			t.Fatalf("duplicate game id %q", created.ID)
		}
		ids[created.ID] = true
	}
	for i, cmd := range exec.cmds {
		if !ids[cmd.GameID] {
			t.Fatalf("command %d game id = %q, not a created id", i, cmd.GameID)
		}
	}
}

func TestCreateRandom_SeedIsReproducible(t *testing.T) {
	seed := uint64(99)
	a, err := newTestManager(60, fakeLookup{}, &fakeExecutor{}).CreateRandom(context.Background(), "a", "", &seed)
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	b, err := newTestManager(60, fakeLookup{}, &fakeExecutor{}).CreateRandom(context.Background(), "b", "", &seed)
	if err != nil {
		t.Fatalf("create b: %v", err)
	}
	if diff := cmp.Diff(a.Words, b.Words); diff != "" {
		t.Fatalf("boards differ for equal seeds (-a +b):\n%s", diff)
	}
}

func TestCreateRandom_CustomCounts(t *testing.T) {
	m := newTestManager(10, fakeLookup{}, &fakeExecutor{})
	m.Counts = game.BoardCounts{Blue: 2, Red: 2, Neutral: 1, Assassin: 1}
	created, err := m.CreateRandom(context.Background(), "small", "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created.Words) != 6 {
		t.Fatalf("board size = %d, want 6", len(created.Words))
	}
}

func TestCreateRandom_Errors(t *testing.T) {
	tests := []struct {
		name    string
		manager func() Manager
		game    string
		want    apperrors.Code
	}{
		{
			name:    "empty name",
			manager: func() Manager { return newTestManager(30, fakeLookup{}, &fakeExecutor{}) },
			game:    "  ",
			want:    apperrors.CodeGameNameEmpty,
		},
		{
			name:    "name taken",
			manager: func() Manager { return newTestManager(30, fakeLookup{"friday": {ID: "g"}}, &fakeExecutor{}) },
			game:    "friday",
			want:    apperrors.CodeGameAlreadyExists,
		},
		{
			name:    "corpus too small",
			manager: func() Manager { return newTestManager(27, fakeLookup{}, &fakeExecutor{}) },
			game:    "friday",
			want:    apperrors.CodeCorpusTooSmall,
		},
		{
			name: "invalid counts",
			manager: func() Manager {
				m := newTestManager(30, fakeLookup{}, &fakeExecutor{})
				m.Counts = game.BoardCounts{Blue: 3, Red: 3}
				return m
			},
			game: "friday",
			want: apperrors.CodeBoardInvalid,
		},
		{
			name: "executor rejects",
			manager: func() Manager {
				return newTestManager(30, fakeLookup{}, &fakeExecutor{err: game.ErrGameAlreadyExists})
			},
			game: "friday",
			want: apperrors.CodeGameAlreadyExists,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.manager().CreateRandom(context.Background(), tt.game, "", nil)
			if got := apperrors.CodeOf(err); got != tt.want {
				t.Fatalf("code = %s, want %s (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestCreateRandom_CorpusFailure(t *testing.T) {
	m := newTestManager(0, fakeLookup{}, &fakeExecutor{})
	m.Corpus = fakeCorpus{err: errors.New("disk gone")}
	if _, err := m.CreateRandom(context.Background(), "friday", "", nil); err == nil {
		t.Fatal("expected corpus error")
	}
}

func TestCreateRandom_PersistsThroughEngine(t *testing.T) {
	ctx := context.Background()
	commands, events, err := game.NewRegistries()
	if err != nil {
		t.Fatalf("registries: %v", err)
	}
	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "codenames.db"), events)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	values := make([]string, 0, 30)
	for _, w := range corpusOf(30) {
		values = append(values, w.Value)
	}
	if _, err := store.SeedCorpus(ctx, values); err != nil {
		t.Fatalf("seed corpus: %v", err)
	}

	handler := engine.Handler[game.State]{
		Commands: commands,
		Events:   events,
		Journal:  store,
		StateLoader: engine.ReplayStateLoader[game.State]{
			Events:      store,
			Checkpoints: checkpoint.NewNoop(),
			Folder:      game.Folder{},
		},
		Decider: game.Decider{},
		Folder:  game.Folder{},
		Locks:   engine.NewGameLocks(),
		Now:     func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
	m := Manager{Games: store, Corpus: store, Executor: handler}
	seed := uint64(5)

	created, err := m.CreateRandom(ctx, "friday", "", &seed)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rec, err := store.GetGame(ctx, created.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if rec.Name != "friday" || rec.Condition != game.ConditionNotStarted {
		t.Fatalf("game = %+v, want friday NOT_STARTED", rec)
	}
	words, err := store.ListWords(ctx, created.ID)
	if err != nil {
		t.Fatalf("list words: %v", err)
	}
	if len(words) != 28 {
		t.Fatalf("words = %d, want 28", len(words))
	}
	hints, err := store.ListHints(ctx, created.ID)
	if err != nil {
		t.Fatalf("list hints: %v", err)
	}
	if len(hints) != 1 || hints[0].Word != "" {
		t.Fatalf("hints = %+v, want the placeholder only", hints)
	}

	if _, err := m.CreateRandom(ctx, "friday", "", nil); apperrors.CodeOf(err) != apperrors.CodeGameAlreadyExists {
		t.Fatalf("second create err = %v, want %s", err, apperrors.CodeGameAlreadyExists)
	}
	exists, err := m.Exists(ctx, "friday")
	if err != nil || !exists {
		t.Fatalf("exists = %v, %v, want true", exists, err)
	}
}
