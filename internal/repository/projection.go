package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"admissions-back/internal/apperrors"
	"admissions-back/internal/model"
)

type ProjectionRepository struct {
	db *pgxpool.Pool
}

func NewProjectionRepository(db *pgxpool.Pool) *ProjectionRepository {
	return &ProjectionRepository{db: db}
}

func (r *ProjectionRepository) Get(ctx context.Context, ext RepoExtension, id uuid.UUID) (*model.IdentityProjection, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
        SELECT id, kind, display_name, email, phone, status, document, version, created_at, updated_at
        FROM readmodel.identity_projections
        WHERE id = $1;
    `

	var p model.IdentityProjection

	if err := ext.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Kind,
		&p.DisplayName,
		&p.Email,
		&p.Phone,
		&p.Status,
		&p.Document,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProjectionDoesNotExist
		}

		return nil, err
	}

	return &p, nil
}

// Insert creates a projection row at version 1. CreatedAt may be supplied by
// the caller (synthesized rows take the event occurrence time).
func (r *ProjectionRepository) Insert(ctx context.Context, ext RepoExtension, p *model.IdentityProjection, createdAt time.Time) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
        INSERT INTO readmodel.identity_projections
            (id, kind, display_name, email, phone, status, document, version, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, NOW())
        ON CONFLICT (id) DO UPDATE
        SET display_name = EXCLUDED.display_name,
            email        = EXCLUDED.email,
            phone        = EXCLUDED.phone,
            status       = EXCLUDED.status,
            document     = EXCLUDED.document,
            version      = readmodel.identity_projections.version + 1,
            updated_at   = NOW();
    `

	_, err := ext.Exec(ctx, query,
		p.ID,
		p.Kind,
		p.DisplayName,
		p.Email,
		p.Phone,
		p.Status,
		p.Document,
		createdAt,
	)
	if err != nil {
		return err
	}

	return nil
}

func (r *ProjectionRepository) Update(ctx context.Context, ext RepoExtension, p *model.IdentityProjection) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
        UPDATE readmodel.identity_projections
        SET display_name = $2,
            email        = $3,
            phone        = $4,
            status       = $5,
            document     = $6,
            version      = version + 1,
            updated_at   = NOW()
        WHERE id = $1;
    `

	tag, err := ext.Exec(ctx, query,
		p.ID,
		p.DisplayName,
		p.Email,
		p.Phone,
		p.Status,
		p.Document,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrProjectionDoesNotExist
	}

	return nil
}

func (r *ProjectionRepository) Delete(ctx context.Context, ext RepoExtension, id uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
        DELETE FROM readmodel.identity_projections WHERE id = $1;
    `

	_, err := ext.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

func (r *ProjectionRepository) List(ctx context.Context, ext RepoExtension, kind string, limit, offset int) ([]model.IdentityProjection, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
        SELECT id, kind, display_name, email, phone, status, document, version, created_at, updated_at
        FROM readmodel.identity_projections
        WHERE kind = $1
        ORDER BY updated_at DESC
        LIMIT $2 OFFSET $3;
    `

	rows, err := ext.Query(ctx, query, kind, limit, offset)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var projections []model.IdentityProjection

	for rows.Next() {
		var p model.IdentityProjection

		if err := rows.Scan(
			&p.ID,
			&p.Kind,
			&p.DisplayName,
			&p.Email,
			&p.Phone,
			&p.Status,
			&p.Document,
			&p.Version,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}

		projections = append(projections, p)
	}

	return projections, nil
}
