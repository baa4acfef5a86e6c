package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"admissions-back/internal/apperrors"
	"admissions-back/internal/model"
)

type InstructorRepository struct {
	db *pgxpool.Pool
}

func NewInstructorRepository(db *pgxpool.Pool) *InstructorRepository {
	return &InstructorRepository{
		db: db,
	}
}

func (r *InstructorRepository) Pool() *pgxpool.Pool {
	return r.db
}

func (r *InstructorRepository) Insert(ctx context.Context, ext RepoExtension, instructor *model.Instructor) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO domain.instructors (id, first_name, last_name, email, phone, expertise, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at;
	`

	err := ext.QueryRow(ctx, query,
		instructor.ID,
		instructor.FirstName,
		instructor.LastName,
		instructor.Email,
		instructor.Phone,
		instructor.Expertise,
		instructor.Status,
	).Scan(&instructor.CreatedAt, &instructor.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrEmailAlreadyTaken
		}

		return err
	}

	return nil
}

func (r *InstructorRepository) SelectByID(ctx context.Context, ext RepoExtension, id uuid.UUID) (*model.Instructor, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, first_name, last_name, email, phone, expertise, status, created_at, updated_at
		FROM domain.instructors
		WHERE id = $1;
	`

	var instructor model.Instructor

	if err := ext.QueryRow(ctx, query, id).Scan(
		&instructor.ID,
		&instructor.FirstName,
		&instructor.LastName,
		&instructor.Email,
		&instructor.Phone,
		&instructor.Expertise,
		&instructor.Status,
		&instructor.CreatedAt,
		&instructor.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInstructorDoesNotExist
		}

		return nil, err
	}

	return &instructor, nil
}

func (r *InstructorRepository) Update(ctx context.Context, ext RepoExtension, instructor *model.Instructor) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE domain.instructors
		SET first_name = $2, last_name = $3, email = $4, phone = $5, expertise = $6, status = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at;
	`

	err := ext.QueryRow(ctx, query,
		instructor.ID,
		instructor.FirstName,
		instructor.LastName,
		instructor.Email,
		instructor.Phone,
		instructor.Expertise,
		instructor.Status,
	).Scan(&instructor.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrInstructorDoesNotExist
		}

		if isUniqueViolation(err) {
			return apperrors.ErrEmailAlreadyTaken
		}

		return err
	}

	return nil
}

func (r *InstructorRepository) Delete(ctx context.Context, ext RepoExtension, id uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		DELETE FROM domain.instructors WHERE id = $1;
	`

	tag, err := ext.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrInstructorDoesNotExist
	}

	return nil
}
