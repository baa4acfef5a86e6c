package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	StudentStatusActive    = "ACTIVE"
	StudentStatusSuspended = "SUSPENDED"
	StudentStatusGraduated = "GRADUATED"
)

// Student
// @Description An enrolled student record.
type Student struct {
	ID         uuid.UUID `binding:"required,uuid" db:"id" example:"b4b03119-1290-44bc-b599-6a5e91d6611f" json:"id"`
	FirstName  string    `db:"first_name" example:"Imani" json:"firstName"`
	LastName   string    `db:"last_name" example:"Okafor" json:"lastName"`
	Email      string    `binding:"required,email" db:"email" example:"imani@example.com" json:"email"`
	Phone      string    `db:"phone" example:"+1-555-0101" json:"phone"`
	Program    string    `db:"program" example:"full-stack" json:"program"`
	Cohort     string    `db:"cohort" example:"2026-fall" json:"cohort"`
	Status     string    `db:"status" example:"ACTIVE" json:"status"`
	EnrolledAt time.Time `db:"enrolled_at" example:"2006-01-02T15:04:05Z" format:"date-time" json:"enrolledAt" swaggertype:"string"`
	CreatedAt  time.Time `db:"created_at" example:"2006-01-02T15:04:05Z" format:"date-time" json:"createdAt" swaggertype:"string"`
	UpdatedAt  time.Time `db:"updated_at" example:"2006-01-02T15:04:05Z" format:"date-time" json:"updatedAt" swaggertype:"string"`
} // @Name Student

// StudentCreateRequest
// @Description Payload for enrolling a student.
type StudentCreateRequest struct {
	FirstName string `json:"firstName" example:"Imani"`
	LastName  string `json:"lastName" example:"Okafor"`
	Email     string `binding:"required,email" json:"email" example:"imani@example.com"`
	Phone     string `json:"phone" example:"+1-555-0101"`
	Program   string `binding:"required" json:"program" example:"full-stack"`
	Cohort    string `json:"cohort" example:"2026-fall"`
} // @Name StudentCreateRequest

// StudentUpdateRequest
// @Description Partial update of a student. Nil fields are left untouched.
type StudentUpdateRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Program   *string `json:"program,omitempty"`
	Cohort    *string `json:"cohort,omitempty"`
	Status    *string `json:"status,omitempty"`
} // @Name StudentUpdateRequest

type StudentIDPathParam struct {
	ID string `uri:"student_id" binding:"required,uuid" example:"b4b03119-1290-44bc-b599-6a5e91d6611f"`
}
