package event

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/mikeczech/codenames/internal/services/codenames/domain/encoding"
)

// hashEnvelope lists the fields covered by an event content hash. Seq and the
// chain fields are excluded so the hash can be computed before append.
type hashEnvelope struct {
	GameID     string          `json:"game_id"`
	Type       string          `json:"type"`
	Timestamp  string          `json:"timestamp"`
	ActorType  string          `json:"actor_type"`
	ActorID    string          `json:"actor_id,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
	EntityType string          `json:"entity_type,omitempty"`
	EntityID   string          `json:"entity_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}

type chainEnvelope struct {
	GameID    string `json:"game_id"`
	Seq       uint64 `json:"seq"`
	EventHash string `json:"event_hash"`
	PrevHash  string `json:"prev_hash"`
}

// EventHash computes the content hash of one event.
func EventHash(evt Event) (string, error) {
	payload := evt.PayloadJSON
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	return encoding.ContentHash(hashEnvelope{
		GameID:     evt.GameID,
		Type:       string(evt.Type),
		Timestamp:  evt.Timestamp.UTC().Format(time.RFC3339Nano),
		ActorType:  string(evt.ActorType),
		ActorID:    evt.ActorID,
		RequestID:  evt.RequestID,
		EntityType: evt.EntityType,
		EntityID:   evt.EntityID,
		Payload:    json.RawMessage(payload),
	})
}

// ChainHash links an event to its predecessor's chain hash. The first event of
// a game uses an empty prevHash.
func ChainHash(evt Event, prevHash string) (string, error) {
	if evt.Hash == "" {
		return "", errors.New("event hash is required")
	}
	return encoding.ContentHash(chainEnvelope{
		GameID:    evt.GameID,
		Seq:       evt.Seq,
		EventHash: evt.Hash,
		PrevHash:  prevHash,
	})
}
