package game

import (
	"encoding/json"
	"testing"
	"time"

	apperrors "github.com/mikeczech/codenames/internal/platform/errors"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/command"
)

const testGameID = "game-1"

// Board ids: 1-5 blue, 6-8 red, 9-10 neutral, 11 assassin.
var testBoard = []BoardWord{
	{ID: 1, Value: "ocean", Color: ColorBlue, Position: 0},
	{ID: 2, Value: "piano", Color: ColorBlue, Position: 1},
	{ID: 3, Value: "tiger", Color: ColorBlue, Position: 2},
	{ID: 4, Value: "castle", Color: ColorBlue, Position: 3},
	{ID: 5, Value: "rocket", Color: ColorBlue, Position: 4},
	{ID: 6, Value: "apple", Color: ColorRed, Position: 5},
	{ID: 7, Value: "bridge", Color: ColorRed, Position: 6},
	{ID: 8, Value: "cloud", Color: ColorRed, Position: 7},
	{ID: 9, Value: "desert", Color: ColorNeutral, Position: 8},
	{ID: 10, Value: "engine", Color: ColorNeutral, Position: 9},
	{ID: 11, Value: "ghost", Color: ColorAssassin, Position: 10},
}

const (
	redPlayer     = "sess-red-player"
	redSpymaster  = "sess-red-spy"
	bluePlayer    = "sess-blue-player"
	blueSpymaster = "sess-blue-spy"
)

// harness drives Decide and Fold the way the engine does, assigning sequence
// numbers to accepted events.
type harness struct {
	t     *testing.T
	state State
	seq   uint64
	clock time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	cmd := command.Command{
		GameID:      testGameID,
		Type:        CommandTypeCreate,
		ActorType:   command.ActorTypeSystem,
		PayloadJSON: mustJSON(t, CreatePayload{Name: "friday", CreatorSessionID: blueSpymaster, Words: testBoard}),
	}
	if err := h.apply(cmd); err != nil {
		t.Fatalf("create game: %v", err)
	}
	return h
}

// newStartedHarness seats all four players and starts the game.
func newStartedHarness(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t)
	h.mustRun(redPlayer, CommandTypeJoin, JoinPayload{Color: "red", Role: "player"})
	h.mustRun(redSpymaster, CommandTypeJoin, JoinPayload{Color: "red", Role: "spymaster"})
	h.mustRun(bluePlayer, CommandTypeJoin, JoinPayload{Color: "blue", Role: "player"})
	h.mustRun(blueSpymaster, CommandTypeJoin, JoinPayload{Color: "blue", Role: "spymaster"})
	h.mustRun(blueSpymaster, CommandTypeStart, nil)
	return h
}

func (h *harness) run(session string, cmdType command.Type, payload any) error {
	h.t.Helper()
	cmd := command.Command{
		GameID:    testGameID,
		Type:      cmdType,
		ActorType: command.ActorTypePlayer,
		ActorID:   session,
	}
	if payload != nil {
		cmd.PayloadJSON = mustJSON(h.t, payload)
	} else {
		cmd.PayloadJSON = []byte("{}")
	}
	return h.apply(cmd)
}

func (h *harness) mustRun(session string, cmdType command.Type, payload any) {
	h.t.Helper()
	if err := h.run(session, cmdType, payload); err != nil {
		h.t.Fatalf("%s by %s: %v", cmdType, session, err)
	}
}

func (h *harness) apply(cmd command.Command) error {
	h.t.Helper()
	h.clock = h.clock.Add(time.Second)
	decision := Decide(h.state, cmd, func() time.Time { return h.clock })
	if decision.Rejected() {
		if len(decision.Events) != 0 {
			h.t.Fatalf("rejected decision carries %d events", len(decision.Events))
		}
		r := decision.Rejections[0]
		return apperrors.New(apperrors.Code(r.Code), r.Message)
	}
	for _, evt := range decision.Events {
		h.seq++
		evt.Seq = h.seq
		next, err := Fold(h.state, evt)
		if err != nil {
			h.t.Fatalf("fold %s: %v", evt.Type, err)
		}
		h.state = next
	}
	return nil
}

func (h *harness) conditions() []Condition {
	out := make([]Condition, 0, len(h.state.Conditions))
	for _, c := range h.state.Conditions {
		out = append(out, c.Condition)
	}
	return out
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}
