package game

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mikeczech/codenames/internal/services/codenames/domain/event"
)

func foldEvent(t *testing.T, eventType event.Type, seq uint64, payload any) event.Event {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return event.Event{
		GameID:      testGameID,
		Seq:         seq,
		Type:        eventType,
		Timestamp:   time.Date(2026, 3, 1, 12, 0, int(seq), 0, time.UTC),
		PayloadJSON: data,
	}
}

func TestFoldRejectsIllegalTransition(t *testing.T) {
	h := newHarness(t)
	_, err := Fold(h.state, foldEvent(t, EventTypeConditionPushed, 5, ConditionPushedPayload{Condition: ConditionRedWins}))
	if err == nil || !strings.Contains(err.Error(), "illegal transition") {
		t.Fatalf("err = %v, want illegal transition", err)
	}
}

func TestFoldRejectsConflicts(t *testing.T) {
	h := newStartedHarness(t)
	tests := []struct {
		name string
		evt  event.Event
	}{
		{"second create", foldEvent(t, EventTypeGameCreated, 20, GameCreatedPayload{Name: "again"})},
		{"second board", foldEvent(t, EventTypeBoardAssigned, 20, BoardAssignedPayload{Words: testBoard})},
		{"seat taken", foldEvent(t, EventTypePlayerJoined, 20, PlayerJoinedPayload{SessionID: "x", Color: ColorRed, Role: RolePlayer})},
		{"hint id gap", foldEvent(t, EventTypeHintGiven, 20, HintGivenPayload{HintID: 7, Word: "w", Num: 1, Color: ColorBlue})},
		{"unknown word", foldEvent(t, EventTypeGuessMade, 20, GuessMadePayload{WordID: 404, HintID: 1})},
		{"bad payload", event.Event{Type: EventTypeHintGiven, PayloadJSON: []byte(`{`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Fold(h.state, tt.evt); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFoldIgnoresUnknownEvents(t *testing.T) {
	h := newHarness(t)
	next, err := Fold(h.state, event.Event{Type: "chat.posted", Seq: 9, PayloadJSON: []byte(`{}`)})
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	if next.LastSeq != 9 {
		t.Fatalf("last seq = %d, want 9", next.LastSeq)
	}
	if len(next.Conditions) != len(h.state.Conditions) {
		t.Fatal("unknown event changed conditions")
	}
}

func TestFoldGuessCopiesWords(t *testing.T) {
	h := newStartedHarness(t)
	before := h.state
	next, err := Fold(before, foldEvent(t, EventTypeGuessMade, 20, GuessMadePayload{WordID: 1, HintID: 1}))
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	if w, _ := next.Word(1); w.Active() {
		t.Fatal("expected word to be selected")
	}
	if w, _ := before.Word(1); !w.Active() {
		t.Fatal("earlier state was mutated")
	}
}

func TestFoldLeaveFreesSeat(t *testing.T) {
	h := newHarness(t)
	h.mustRun(redPlayer, CommandTypeJoin, JoinPayload{Color: "RED", Role: "PLAYER"})
	next, err := Fold(h.state, foldEvent(t, EventTypePlayerLeft, 6, PlayerLeftPayload{SessionID: redPlayer}))
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	if next.IsOccupied(ColorRed, RolePlayer) {
		t.Fatal("expected seat to be free")
	}
	if !h.state.IsOccupied(ColorRed, RolePlayer) {
		t.Fatal("earlier state was mutated")
	}
}

func TestCloneIsDeep(t *testing.T) {
	h := newStartedHarness(t)
	h.mustRun(blueSpymaster, CommandTypeGiveHint, GiveHintPayload{Word: "things", Num: 2})
	h.mustRun(bluePlayer, CommandTypeGuess, GuessPayload{WordID: 1})

	cloned := h.state.Clone()
	*cloned.Words[0].SelectedAt = time.Time{}
	cloned.Players[0].SessionID = "changed"
	cloned.Hints[0].Word = "changed"

	if h.state.Words[0].SelectedAt.IsZero() {
		t.Fatal("clone shares SelectedAt")
	}
	if h.state.Players[0].SessionID == "changed" || h.state.Hints[0].Word == "changed" {
		t.Fatal("clone shares slices")
	}
}

func TestFoldHandledTypesCoverEvents(t *testing.T) {
	_, events, err := NewRegistries()
	if err != nil {
		t.Fatalf("registries: %v", err)
	}
	handled := make(map[event.Type]bool)
	for _, eventType := range FoldHandledTypes() {
		handled[eventType] = true
	}
	for _, def := range events.ListDefinitions() {
		if !handled[def.Type] {
			t.Fatalf("event %s is registered but not folded", def.Type)
		}
	}
}
