package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type HealthRepository struct {
	db *pgxpool.Pool
}

func NewHealthRepository(db *pgxpool.Pool) *HealthRepository {
	return &HealthRepository{
		db: db,
	}
}

func (r *HealthRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// OutboxBacklog reports how many ledger records still await publication.
func (r *HealthRepository) OutboxBacklog(ctx context.Context, ext RepoExtension) (int64, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT COUNT(*) FROM messages.outbox_messages WHERE published = false;
	`

	var backlog int64

	if err := ext.QueryRow(ctx, query).Scan(&backlog); err != nil {
		return 0, err
	}

	return backlog, nil
}
