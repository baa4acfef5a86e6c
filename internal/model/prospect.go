package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProspectStatusNew       = "NEW"
	ProspectStatusContacted = "CONTACTED"
	ProspectStatusEnrolled  = "ENROLLED"
	ProspectStatusLost      = "LOST"
)

// Prospect
// @Description A lead who has not enrolled yet.
type Prospect struct {
	ID        uuid.UUID `binding:"required,uuid" db:"id" example:"b4b03119-1290-44bc-b599-6a5e91d6611f" json:"id"`
	FirstName string    `db:"first_name" example:"Riley" json:"firstName"`
	LastName  string    `db:"last_name" example:"Nakamura" json:"lastName"`
	Email     string    `binding:"required,email" db:"email" example:"riley@example.com" json:"email"`
	Phone     string    `db:"phone" example:"+1-555-0100" json:"phone"`
	Source    string    `db:"source" example:"open-day" json:"source"`
	Status    string    `db:"status" example:"NEW" json:"status"`
	CreatedAt time.Time `db:"created_at" example:"2006-01-02T15:04:05Z" format:"date-time" json:"createdAt" swaggertype:"string"`
	UpdatedAt time.Time `db:"updated_at" example:"2006-01-02T15:04:05Z" format:"date-time" json:"updatedAt" swaggertype:"string"`
} // @Name Prospect

// ProspectCreateRequest
// @Description Payload for registering a new prospect.
type ProspectCreateRequest struct {
	FirstName string `json:"firstName" example:"Riley"`
	LastName  string `json:"lastName" example:"Nakamura"`
	Email     string `binding:"required,email" json:"email" example:"riley@example.com"`
	Phone     string `json:"phone" example:"+1-555-0100"`
	Source    string `json:"source" example:"open-day"`
} // @Name ProspectCreateRequest

// ProspectUpdateRequest
// @Description Partial update of a prospect. Nil fields are left untouched.
type ProspectUpdateRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Source    *string `json:"source,omitempty"`
	Status    *string `json:"status,omitempty"`
} // @Name ProspectUpdateRequest

type ProspectIDPathParam struct {
	ID string `uri:"prospect_id" binding:"required,uuid" example:"b4b03119-1290-44bc-b599-6a5e91d6611f"`
}
