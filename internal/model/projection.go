package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	KindProspect   = "prospect"
	KindStudent    = "student"
	KindInstructor = "instructor"
)

// IdentityProjection is the denormalized read-model row for one identity
// record. Document keeps the full event payload, the extracted columns back
// list views and search.
type IdentityProjection struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Kind        string          `db:"kind" json:"kind"`
	DisplayName string          `db:"display_name" json:"displayName"`
	Email       string          `db:"email" json:"email"`
	Phone       string          `db:"phone" json:"phone"`
	Status      string          `db:"status" json:"status"`
	Document    json.RawMessage `db:"document" json:"document"`
	Version     int64           `db:"version" json:"version"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// IdentityFields is the common slice of every identity event payload the
// projector extracts into projection columns.
type IdentityFields struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Status    string    `json:"status"`
}

func (f IdentityFields) DisplayName() string {
	if f.FirstName == "" {
		return f.LastName
	}

	if f.LastName == "" {
		return f.FirstName
	}

	return f.FirstName + " " + f.LastName
}
