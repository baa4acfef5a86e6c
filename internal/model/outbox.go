package model

import (
	"time"

	"github.com/google/uuid"
)

// OutboxMessage is one row of the durable outbox ledger. Published moves
// false -> true exactly once and never back.
type OutboxMessage struct {
	ID          int64      `db:"id"`
	EventID     uuid.UUID  `db:"event_id"`
	EventType   string     `db:"event_type"`
	Payload     []byte     `db:"payload"`
	CreatedAt   time.Time  `db:"created_at"`
	Published   bool       `db:"published"`
	PublishedAt *time.Time `db:"published_at"`
}
