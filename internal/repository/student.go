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

type StudentRepository struct {
	db *pgxpool.Pool
}

func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
	}
}

func (r *StudentRepository) Pool() *pgxpool.Pool {
	return r.db
}

func (r *StudentRepository) Insert(ctx context.Context, ext RepoExtension, student *model.Student) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO domain.students (id, first_name, last_name, email, phone, program, cohort, status, enrolled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING enrolled_at, created_at, updated_at;
	`

	err := ext.QueryRow(ctx, query,
		student.ID,
		student.FirstName,
		student.LastName,
		student.Email,
		student.Phone,
		student.Program,
		student.Cohort,
		student.Status,
	).Scan(&student.EnrolledAt, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrEmailAlreadyTaken
		}

		return err
	}

	return nil
}

func (r *StudentRepository) SelectByID(ctx context.Context, ext RepoExtension, id uuid.UUID) (*model.Student, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, first_name, last_name, email, phone, program, cohort, status, enrolled_at, created_at, updated_at
		FROM domain.students
		WHERE id = $1;
	`

	var student model.Student

	if err := ext.QueryRow(ctx, query, id).Scan(
		&student.ID,
		&student.FirstName,
		&student.LastName,
		&student.Email,
		&student.Phone,
		&student.Program,
		&student.Cohort,
		&student.Status,
		&student.EnrolledAt,
		&student.CreatedAt,
		&student.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentDoesNotExist
		}

		return nil, err
	}

	return &student, nil
}

func (r *StudentRepository) Update(ctx context.Context, ext RepoExtension, student *model.Student) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE domain.students
		SET first_name = $2, last_name = $3, email = $4, phone = $5, program = $6, cohort = $7, status = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at;
	`

	err := ext.QueryRow(ctx, query,
		student.ID,
		student.FirstName,
		student.LastName,
		student.Email,
		student.Phone,
		student.Program,
		student.Cohort,
		student.Status,
	).Scan(&student.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrStudentDoesNotExist
		}

		if isUniqueViolation(err) {
			return apperrors.ErrEmailAlreadyTaken
		}

		return err
	}

	return nil
}

func (r *StudentRepository) Delete(ctx context.Context, ext RepoExtension, id uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		DELETE FROM domain.students WHERE id = $1;
	`

	tag, err := ext.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentDoesNotExist
	}

	return nil
}
