package command

import (
	"time"

	"github.com/mikeczech/codenames/internal/services/codenames/domain/event"
)

// NewEvent builds an event carrying the envelope fields of cmd.
func NewEvent(cmd Command, eventType event.Type, entityType, entityID string, payloadJSON []byte, now time.Time) event.Event {
	return event.Event{
		GameID:      cmd.GameID,
		Type:        eventType,
		Timestamp:   now,
		ActorType:   event.ActorType(cmd.ActorType),
		ActorID:     cmd.ActorID,
		RequestID:   cmd.RequestID,
		EntityType:  entityType,
		EntityID:    entityID,
		PayloadJSON: payloadJSON,
	}
}
