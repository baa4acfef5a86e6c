package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"admissions-back/internal/model"
)

type InboxRepository struct {
	db *pgxpool.Pool
}

func NewInboxRepository(db *pgxpool.Pool) *InboxRepository {
	return &InboxRepository{db: db}
}

// ProcessOnce applies mutate and records the event id in one transaction.
// Returns applied=false without running mutate when the event was already
// processed. The check-before-insert plus the primary key on event_id is the
// only serialization point for duplicate deliveries; do not reorder it.
func (r *InboxRepository) ProcessOnce(
	ctx context.Context,
	record model.InboxMessage,
	mutate func(ctx context.Context, ext RepoExtension) error,
) (applied bool, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	const checkQuery = `
        SELECT 1 FROM messages.inbox_messages WHERE event_id = $1;
    `

	var one int

	checkErr := tx.QueryRow(ctx, checkQuery, record.EventID).Scan(&one)
	if checkErr == nil {
		err = tx.Rollback(ctx)

		return false, err
	}

	if !errors.Is(checkErr, pgx.ErrNoRows) {
		err = checkErr

		return false, err
	}

	if err = mutate(ctx, tx); err != nil {
		return false, err
	}

	const insertQuery = `
        INSERT INTO messages.inbox_messages (event_id, event_type, correlation_id, subject)
        VALUES ($1, $2, $3, $4);
    `

	if _, err = tx.Exec(ctx, insertQuery,
		record.EventID,
		record.EventType,
		record.CorrelationID,
		record.Subject,
	); err != nil {
		// a concurrent worker won the race on the same event id
		if isUniqueViolation(err) {
			err = nil

			return false, tx.Rollback(ctx)
		}

		return false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return false, err
	}

	return true, nil
}

func (r *InboxRepository) Exists(ctx context.Context, ext RepoExtension, eventID string) (bool, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
        SELECT 1 FROM messages.inbox_messages WHERE event_id = $1;
    `

	var one int

	err := ext.QueryRow(ctx, query, eventID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

// PurgeOlderThan drops inbox rows outside the dedup window. Runs in its own
// transaction; row locks taken by ProcessOnce keep in-window checks safe.
func (r *InboxRepository) PurgeOlderThan(ctx context.Context, ext RepoExtension, window time.Duration) (int64, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
        DELETE FROM messages.inbox_messages
        WHERE processed_at < NOW() - make_interval(secs => $1);
    `

	tag, err := ext.Exec(ctx, query, window.Seconds())
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
