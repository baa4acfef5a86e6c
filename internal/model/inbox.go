package model

import (
	"time"

	"github.com/google/uuid"
)

// InboxMessage marks an event as already applied to the read model.
// The primary key on EventID is the sole dedup serialization point.
type InboxMessage struct {
	EventID       uuid.UUID `db:"event_id"`
	EventType     string    `db:"event_type"`
	ProcessedAt   time.Time `db:"processed_at"`
	CorrelationID string    `db:"correlation_id"`
	Subject       string    `db:"subject"`
}
