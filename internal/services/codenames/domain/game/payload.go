package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// BoardWord is one word assignment carried by game setup.
type BoardWord struct {
	ID       int64  `json:"id"`
	Value    string `json:"value"`
	Color    Color  `json:"color"`
	Position int    `json:"position"`
}

// CreatePayload is the payload of game.create.
type CreatePayload struct {
	Name             string      `json:"name"`
	CreatorSessionID string      `json:"creator_session_id,omitempty"`
	Words            []BoardWord `json:"words"`
}

// JoinPayload is the payload of game.join. Values are parsed by the decider
// so unsupported colors surface as rule violations.
type JoinPayload struct {
	Color string `json:"color"`
	Role  string `json:"role"`
}

// GiveHintPayload is the payload of game.give_hint.
type GiveHintPayload struct {
	Word string `json:"word"`
	Num  int    `json:"num"`
}

// GuessPayload is the payload of game.guess.
type GuessPayload struct {
	WordID int64 `json:"word_id"`
}

// GameCreatedPayload is the payload of game.created.
type GameCreatedPayload struct {
	Name             string `json:"name"`
	CreatorSessionID string `json:"creator_session_id,omitempty"`
}

// BoardAssignedPayload is the payload of board.assigned.
type BoardAssignedPayload struct {
	Words []BoardWord `json:"words"`
}

// ConditionPushedPayload is the payload of condition.pushed.
type ConditionPushedPayload struct {
	Condition Condition `json:"condition"`
	HintID    int64     `json:"hint_id,omitempty"`
}

// HintGivenPayload is the payload of hint.given. The setup placeholder has
// an empty word and no color.
type HintGivenPayload struct {
	HintID int64  `json:"hint_id"`
	Word   string `json:"word,omitempty"`
	Num    int    `json:"num"`
	Color  Color  `json:"color,omitempty"`
}

// PlayerJoinedPayload is the payload of player.joined.
type PlayerJoinedPayload struct {
	SessionID string `json:"session_id"`
	Color     Color  `json:"color"`
	Role      Role   `json:"role"`
}

// PlayerLeftPayload is the payload of player.left.
type PlayerLeftPayload struct {
	SessionID string `json:"session_id"`
}

// GuessMadePayload is the payload of guess.made.
type GuessMadePayload struct {
	WordID int64 `json:"word_id"`
	HintID int64 `json:"hint_id"`
}

func decodePayload[T any](raw json.RawMessage) (T, error) {
	var payload T
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

func validateShape[T any](raw json.RawMessage) error {
	_, err := decodePayload[T](raw)
	return err
}

func validateCreatePayload(raw json.RawMessage) error {
	payload, err := decodePayload[CreatePayload](raw)
	if err != nil {
		return err
	}
	if len(payload.Words) == 0 {
		return errors.New("words are required")
	}
	return nil
}

func validateGameCreatedPayload(raw json.RawMessage) error {
	payload, err := decodePayload[GameCreatedPayload](raw)
	if err != nil {
		return err
	}
	if strings.TrimSpace(payload.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

func validateBoardAssignedPayload(raw json.RawMessage) error {
	payload, err := decodePayload[BoardAssignedPayload](raw)
	if err != nil {
		return err
	}
	return validateBoard(payload.Words)
}

func validateConditionPushedPayload(raw json.RawMessage) error {
	payload, err := decodePayload[ConditionPushedPayload](raw)
	if err != nil {
		return err
	}
	if payload.Condition.ID() == 0 {
		return fmt.Errorf("unknown condition %q", payload.Condition)
	}
	return nil
}

func validateHintGivenPayload(raw json.RawMessage) error {
	payload, err := decodePayload[HintGivenPayload](raw)
	if err != nil {
		return err
	}
	if payload.HintID <= 0 {
		return errors.New("hint id must be positive")
	}
	if payload.Num < 0 {
		return errors.New("num must not be negative")
	}
	if payload.Word != "" && !payload.Color.IsTeam() {
		return fmt.Errorf("hint color must be a team color, got %q", payload.Color)
	}
	return nil
}

func validatePlayerJoinedPayload(raw json.RawMessage) error {
	payload, err := decodePayload[PlayerJoinedPayload](raw)
	if err != nil {
		return err
	}
	if payload.SessionID == "" {
		return errors.New("session id is required")
	}
	if !payload.Color.IsTeam() || !payload.Role.Valid() {
		return fmt.Errorf("invalid seat %s/%s", payload.Color, payload.Role)
	}
	return nil
}

func validatePlayerLeftPayload(raw json.RawMessage) error {
	payload, err := decodePayload[PlayerLeftPayload](raw)
	if err != nil {
		return err
	}
	if payload.SessionID == "" {
		return errors.New("session id is required")
	}
	return nil
}

func validateGuessMadePayload(raw json.RawMessage) error {
	payload, err := decodePayload[GuessMadePayload](raw)
	if err != nil {
		return err
	}
	if payload.WordID <= 0 {
		return errors.New("word id must be positive")
	}
	return nil
}

// validateBoard checks that every word has a unique positive id, a value and a
// board color.
func validateBoard(words []BoardWord) error {
	if len(words) == 0 {
		return errors.New("board is empty")
	}
	ids := make(map[int64]struct{}, len(words))
	for _, w := range words {
		if w.ID <= 0 {
			return fmt.Errorf("word id must be positive, got %d", w.ID)
		}
		if _, dup := ids[w.ID]; dup {
			return fmt.Errorf("duplicate word id %d", w.ID)
		}
		ids[w.ID] = struct{}{}
		if strings.TrimSpace(w.Value) == "" {
			return fmt.Errorf("word %d has no value", w.ID)
		}
		if !w.Color.Valid() {
			return fmt.Errorf("word %d has invalid color %q", w.ID, w.Color)
		}
	}
	return nil
}
