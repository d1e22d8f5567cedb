package dto

import (
	"time"

	"github.com/google/uuid"
)

// ActivityMessage is the payload published on the in-process activity topic
// after every successful mutation; the consumer turns it into an audit row.
type ActivityMessage struct {
	Action     string    `json:"action"` // e.g. "note.created"
	UserId     uuid.UUID `json:"user_id"`
	EntityId   uuid.UUID `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
