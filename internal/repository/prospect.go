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

type ProspectRepository struct {
	db *pgxpool.Pool
}

func NewProspectRepository(db *pgxpool.Pool) *ProspectRepository {
	return &ProspectRepository{
		db: db,
	}
}

func (r *ProspectRepository) Pool() *pgxpool.Pool {
	return r.db
}

func (r *ProspectRepository) Insert(ctx context.Context, ext RepoExtension, prospect *model.Prospect) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO domain.prospects (id, first_name, last_name, email, phone, source, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at;
	`

	err := ext.QueryRow(ctx, query,
		prospect.ID,
		prospect.FirstName,
		prospect.LastName,
		prospect.Email,
		prospect.Phone,
		prospect.Source,
		prospect.Status,
	).Scan(&prospect.CreatedAt, &prospect.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrEmailAlreadyTaken
		}

		return err
	}

	return nil
}

func (r *ProspectRepository) SelectByID(ctx context.Context, ext RepoExtension, id uuid.UUID) (*model.Prospect, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, first_name, last_name, email, phone, source, status, created_at, updated_at
		FROM domain.prospects
		WHERE id = $1;
	`

	var prospect model.Prospect

	if err := ext.QueryRow(ctx, query, id).Scan(
		&prospect.ID,
		&prospect.FirstName,
		&prospect.LastName,
		&prospect.Email,
		&prospect.Phone,
		&prospect.Source,
		&prospect.Status,
		&prospect.CreatedAt,
		&prospect.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProspectDoesNotExist
		}

		return nil, err
	}

	return &prospect, nil
}

func (r *ProspectRepository) Update(ctx context.Context, ext RepoExtension, prospect *model.Prospect) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE domain.prospects
		SET first_name = $2, last_name = $3, email = $4, phone = $5, source = $6, status = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at;
	`

	err := ext.QueryRow(ctx, query,
		prospect.ID,
		prospect.FirstName,
		prospect.LastName,
		prospect.Email,
		prospect.Phone,
		prospect.Source,
		prospect.Status,
	).Scan(&prospect.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrProspectDoesNotExist
		}

		if isUniqueViolation(err) {
			return apperrors.ErrEmailAlreadyTaken
		}

		return err
	}

	return nil
}

func (r *ProspectRepository) Delete(ctx context.Context, ext RepoExtension, id uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		DELETE FROM domain.prospects WHERE id = $1;
	`

	tag, err := ext.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrProspectDoesNotExist
	}

	return nil
}
