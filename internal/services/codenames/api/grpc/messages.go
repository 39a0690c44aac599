package grpcapi

import (
	"time"

	"github.com/mikeczech/codenames/internal/services/codenames/domain/event"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/game"
	"github.com/mikeczech/codenames/internal/services/codenames/storage"
)

type CreateGameRequest struct {
	Name      string `json:"name"`
	SessionID string `json:"session_id,omitempty"`
}

type CreateGameResponse struct {
	GameID string `json:"game_id"`
	Name   string `json:"name"`
}

type JoinGameRequest struct {
	GameID    string `json:"game_id"`
	SessionID string `json:"session_id"`
	Color     string `json:"color"`
	Role      string `json:"role"`
}

// GameRequest addresses a game on behalf of a session. It is the request of
// LeaveGame, StartGame and EndTurn.
type GameRequest struct {
	GameID    string `json:"game_id"`
	SessionID string `json:"session_id"`
}

type GiveHintRequest struct {
	GameID    string `json:"game_id"`
	SessionID string `json:"session_id"`
	Word      string `json:"word"`
	Num       int    `json:"num"`
}

type GuessRequest struct {
	GameID    string `json:"game_id"`
	SessionID string `json:"session_id"`
	WordID    int64  `json:"word_id"`
}

// ActionResponse reports the game condition after a mutation.
type ActionResponse struct {
	Condition string `json:"condition"`
	LastSeq   uint64 `json:"last_seq"`
}

type ListRequest struct {
	GameID string `json:"game_id"`
}

type Word struct {
	ID         int64      `json:"id"`
	Value      string     `json:"value"`
	Color      string     `json:"color"`
	Position   int        `json:"position"`
	SelectedAt *time.Time `json:"selected_at,omitempty"`
}

type ListWordsResponse struct {
	Words []Word `json:"words"`
}

type Hint struct {
	ID        int64     `json:"id"`
	Word      string    `json:"word,omitempty"`
	Num       int       `json:"num"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ListHintsResponse struct {
	Hints []Hint `json:"hints"`
}

type Player struct {
	SessionID string    `json:"session_id"`
	Color     string    `json:"color"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

type ListPlayersResponse struct {
	Players []Player `json:"players"`
}

type Condition struct {
	Seq       uint64    `json:"seq"`
	Condition string    `json:"condition"`
	HintID    int64     `json:"hint_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ListConditionsResponse struct {
	Conditions []Condition `json:"conditions"`
}

type Guess struct {
	WordID     int64     `json:"word_id"`
	HintID     int64     `json:"hint_id"`
	SelectedAt time.Time `json:"selected_at"`
}

// GetStateRequest asks for a game snapshot. AtSeq of zero means the latest
// state; otherwise the snapshot is rebuilt as of that journal sequence.
type GetStateRequest struct {
	GameID string `json:"game_id"`
	AtSeq  uint64 `json:"at_seq,omitempty"`
}

type GetStateResponse struct {
	GameID     string      `json:"game_id"`
	Name       string      `json:"name"`
	Condition  string      `json:"condition"`
	Words      []Word      `json:"words"`
	Hints      []Hint      `json:"hints"`
	Players    []Player    `json:"players"`
	Conditions []Condition `json:"conditions"`
	Guesses    []Guess     `json:"guesses"`
	LastSeq    uint64      `json:"last_seq"`
}

type ListEventsRequest struct {
	GameID   string `json:"game_id"`
	AfterSeq uint64 `json:"after_seq,omitempty"`
	PageSize int32  `json:"page_size,omitempty"`
}

type Event struct {
	Seq         uint64    `json:"seq"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	ActorType   string    `json:"actor_type"`
	ActorID     string    `json:"actor_id,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
	Hash        string    `json:"hash"`
	ChainHash   string    `json:"chain_hash"`
	PayloadJSON string    `json:"payload_json"`
}

// ListEventsResponse holds one page of the journal. NextAfterSeq is zero when
// the page is the last.
type ListEventsResponse struct {
	Events       []Event `json:"events"`
	NextAfterSeq uint64  `json:"next_after_seq,omitempty"`
}

func wordsFromRecords(records []storage.WordRecord) []Word {
	out := make([]Word, 0, len(records))
	for _, rec := range records {
		out = append(out, Word{ID: rec.WordID, Value: rec.Value, Color: string(rec.Color), Position: rec.Position, SelectedAt: rec.SelectedAt})
	}
	return out
}

func hintsFromRecords(records []storage.HintRecord) []Hint {
	out := make([]Hint, 0, len(records))
	for _, rec := range records {
		out = append(out, Hint{ID: rec.HintID, Word: rec.Word, Num: rec.Num, Color: string(rec.Color), CreatedAt: rec.CreatedAt})
	}
	return out
}

func playersFromRecords(records []storage.PlayerRecord) []Player {
	out := make([]Player, 0, len(records))
	for _, rec := range records {
		out = append(out, Player{SessionID: rec.SessionID, Color: string(rec.Color), Role: string(rec.Role), JoinedAt: rec.JoinedAt})
	}
	return out
}

func conditionsFromRecords(records []storage.ConditionRecord) []Condition {
	out := make([]Condition, 0, len(records))
	for _, rec := range records {
		out = append(out, Condition{Seq: rec.Seq, Condition: string(rec.Condition), HintID: rec.HintID, CreatedAt: rec.CreatedAt})
	}
	return out
}

func stateResponse(state game.State) *GetStateResponse {
	resp := &GetStateResponse{
		GameID:     state.GameID,
		Name:       state.Name,
		Condition:  string(state.Condition()),
		Words:      make([]Word, 0, len(state.Words)),
		Hints:      make([]Hint, 0, len(state.Hints)),
		Players:    make([]Player, 0, len(state.Players)),
		Conditions: make([]Condition, 0, len(state.Conditions)),
		Guesses:    make([]Guess, 0, len(state.Guesses)),
		LastSeq:    state.LastSeq,
	}
	for _, w := range state.Words {
		resp.Words = append(resp.Words, Word{ID: w.ID, Value: w.Value, Color: string(w.Color), Position: w.Position, SelectedAt: w.SelectedAt})
	}
	for _, h := range state.Hints {
		resp.Hints = append(resp.Hints, Hint{ID: h.ID, Word: h.Word, Num: h.Num, Color: string(h.Color), CreatedAt: h.CreatedAt})
	}
	for _, p := range state.Players {
		resp.Players = append(resp.Players, Player{SessionID: p.SessionID, Color: string(p.Color), Role: string(p.Role), JoinedAt: p.JoinedAt})
	}
	for _, c := range state.Conditions {
		resp.Conditions = append(resp.Conditions, Condition{Seq: c.Seq, Condition: string(c.Condition), HintID: c.HintID, CreatedAt: c.CreatedAt})
	}
	for _, g := range state.Guesses {
		resp.Guesses = append(resp.Guesses, Guess(g))
	}
	return resp
}

func eventsFromJournal(events []event.Event) []Event {
	out := make([]Event, 0, len(events))
	for _, evt := range events {
		out = append(out, Event{
			Seq:         evt.Seq,
			Type:        string(evt.Type),
			Timestamp:   evt.Timestamp,
			ActorType:   string(evt.ActorType),
			ActorID:     evt.ActorID,
			RequestID:   evt.RequestID,
			Hash:        evt.Hash,
			ChainHash:   evt.ChainHash,
			PayloadJSON: string(evt.PayloadJSON),
		})
	}
	return out
}
