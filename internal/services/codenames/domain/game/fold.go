package game

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mikeczech/codenames/internal/services/codenames/domain/event"
)

// Fold applies an event to game state. Unknown event types are ignored; a
// recognized event with an unreadable payload or an impossible transition is
// an error, which stops replay.
func Fold(state State, evt event.Event) (State, error) {
	if evt.GameID != "" && state.GameID == "" {
		state.GameID = evt.GameID
	}
	switch evt.Type {
	case EventTypeGameCreated:
		var payload GameCreatedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("game fold %s: %w", evt.Type, err)
		}
		if state.Created {
			return state, fmt.Errorf("game fold %s: game %s already created", evt.Type, state.GameID)
		}
		state.Created = true
		state.Name = payload.Name
		state.CreatorSessionID = payload.CreatorSessionID
		state.CreatedAt = evt.Timestamp
	case EventTypeBoardAssigned:
		var payload BoardAssignedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("game fold %s: %w", evt.Type, err)
		}
		if len(state.Words) > 0 {
			return state, fmt.Errorf("game fold %s: board already assigned", evt.Type)
		}
		words := make([]Word, 0, len(payload.Words))
		for _, w := range payload.Words {
			words = append(words, Word{ID: w.ID, Value: w.Value, Color: w.Color, Position: w.Position})
		}
		sort.SliceStable(words, func(i, j int) bool { return words[i].Position < words[j].Position })
		state.Words = words
	case EventTypeConditionPushed:
		var payload ConditionPushedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("game fold %s: %w", evt.Type, err)
		}
		if current := state.Condition(); !CanTransition(current, payload.Condition) {
			return state, fmt.Errorf("game fold %s: illegal transition %q -> %q", evt.Type, current, payload.Condition)
		}
		state.Conditions = append(state.Conditions, ConditionRecord{
			Seq:       evt.Seq,
			Condition: payload.Condition,
			HintID:    payload.HintID,
			CreatedAt: evt.Timestamp,
		})
	case EventTypeHintGiven:
		var payload HintGivenPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("game fold %s: %w", evt.Type, err)
		}
		if want := state.NextHintID(); payload.HintID != want {
			return state, fmt.Errorf("game fold %s: hint id %d, want %d", evt.Type, payload.HintID, want)
		}
		state.Hints = append(state.Hints, Hint{
			ID:        payload.HintID,
			Word:      payload.Word,
			Num:       payload.Num,
			Color:     payload.Color,
			CreatedAt: evt.Timestamp,
		})
	case EventTypePlayerJoined:
		var payload PlayerJoinedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("game fold %s: %w", evt.Type, err)
		}
		if state.HasJoined(payload.SessionID) || state.IsOccupied(payload.Color, payload.Role) {
			return state, fmt.Errorf("game fold %s: seat %s/%s conflicts with roster", evt.Type, payload.Color, payload.Role)
		}
		state.Players = append(state.Players, Player{
			SessionID: payload.SessionID,
			Color:     payload.Color,
			Role:      payload.Role,
			JoinedAt:  evt.Timestamp,
		})
	case EventTypePlayerLeft:
		var payload PlayerLeftPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("game fold %s: %w", evt.Type, err)
		}
		players := state.Players[:0:0]
		for _, p := range state.Players {
			if p.SessionID != payload.SessionID {
				players = append(players, p)
			}
		}
		state.Players = players
	case EventTypeGuessMade:
		var payload GuessMadePayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("game fold %s: %w", evt.Type, err)
		}
		idx := -1
		for i, w := range state.Words {
			if w.ID == payload.WordID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return state, fmt.Errorf("game fold %s: word %d not on board", evt.Type, payload.WordID)
		}
		if !state.Words[idx].Active() {
			return state, fmt.Errorf("game fold %s: word %d already selected", evt.Type, payload.WordID)
		}
		// Copy-on-write so earlier snapshots sharing the slice stay intact.
		words := append([]Word(nil), state.Words...)
		at := evt.Timestamp
		words[idx].SelectedAt = &at
		state.Words = words
		state.Guesses = append(state.Guesses, Guess{
			WordID:     payload.WordID,
			HintID:     payload.HintID,
			SelectedAt: evt.Timestamp,
		})
	}
	if evt.Seq > state.LastSeq {
		state.LastSeq = evt.Seq
	}
	return state, nil
}

// Folder adapts Fold to the replay and engine folder contract.
type Folder struct{}

// Fold applies evt to state.
func (Folder) Fold(state State, evt event.Event) (State, error) {
	return Fold(state, evt)
}
