package event

import "time"

// Type identifies the event type string.
type Type string

// ActorType identifies who caused an event.
type ActorType string

const (
	// ActorTypeSystem marks events emitted on behalf of the server itself.
	ActorTypeSystem ActorType = "system"
	// ActorTypePlayer marks events caused by a player session.
	ActorTypePlayer ActorType = "player"
)

// Event is the stored envelope of one game fact.
//
// Seq, Hash, PrevHash, ChainHash and the signature fields are assigned by
// storage on append. Signatures are empty when no signing key is configured.
type Event struct {
	GameID         string
	Seq            uint64
	Hash           string
	PrevHash       string
	ChainHash      string
	Signature      string
	SignatureKeyID string
	Type           Type
	Timestamp      time.Time
	ActorType      ActorType
	ActorID        string
	RequestID      string
	EntityType     string
	EntityID       string
	PayloadJSON    []byte
}
