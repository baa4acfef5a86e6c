package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	InstructorStatusActive   = "ACTIVE"
	InstructorStatusInactive = "INACTIVE"
)

// Instructor
// @Description A teaching staff record.
type Instructor struct {
	ID        uuid.UUID `binding:"required,uuid" db:"id" example:"b4b03119-1290-44bc-b599-6a5e91d6611f" json:"id"`
	FirstName string    `db:"first_name" example:"Mateo" json:"firstName"`
	LastName  string    `db:"last_name" example:"Silva" json:"lastName"`
	Email     string    `binding:"required,email" db:"email" example:"mateo@example.com" json:"email"`
	Phone     string    `db:"phone" example:"+1-555-0102" json:"phone"`
	Expertise string    `db:"expertise" example:"distributed systems" json:"expertise"`
	Status    string    `db:"status" example:"ACTIVE" json:"status"`
	CreatedAt time.Time `db:"created_at" example:"2006-01-02T15:04:05Z" format:"date-time" json:"createdAt" swaggertype:"string"`
	UpdatedAt time.Time `db:"updated_at" example:"2006-01-02T15:04:05Z" format:"date-time" json:"updatedAt" swaggertype:"string"`
} // @Name Instructor

// InstructorCreateRequest
// @Description Payload for registering an instructor.
type InstructorCreateRequest struct {
	FirstName string `json:"firstName" example:"Mateo"`
	LastName  string `json:"lastName" example:"Silva"`
	Email     string `binding:"required,email" json:"email" example:"mateo@example.com"`
	Phone     string `json:"phone" example:"+1-555-0102"`
	Expertise string `json:"expertise" example:"distributed systems"`
} // @Name InstructorCreateRequest

// InstructorUpdateRequest
// @Description Partial update of an instructor. Nil fields are left untouched.
type InstructorUpdateRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Expertise *string `json:"expertise,omitempty"`
	Status    *string `json:"status,omitempty"`
} // @Name InstructorUpdateRequest

type InstructorIDPathParam struct {
	ID string `uri:"instructor_id" binding:"required,uuid" example:"b4b03119-1290-44bc-b599-6a5e91d6611f"`
}
