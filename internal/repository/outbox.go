package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"admissions-back/internal/model"
)

type OutboxRepository struct {
	db *pgxpool.Pool
}

func NewOutboxRepository(db *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{
		db: db,
	}
}

func (r *OutboxRepository) InsertMessage(ctx context.Context, ext RepoExtension, message model.OutboxMessage) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
        INSERT INTO messages.outbox_messages (event_id, event_type, payload)
		VALUES ($1, $2, $3)
        ON CONFLICT DO NOTHING;
    `

	_, err := ext.Exec(ctx, query, message.EventID, message.EventType, message.Payload)
	if err != nil {
		return err
	}

	return nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, ext RepoExtension, eventID uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
        UPDATE messages.outbox_messages
        SET published = true, published_at = NOW()
        WHERE event_id = $1 AND published = false;
    `

	_, err := ext.Exec(ctx, query, eventID)
	if err != nil {
		return err
	}

	return nil
}

func (r *OutboxRepository) SelectUnpublishedBatch(ctx context.Context, ext RepoExtension, batchSize int) ([]model.OutboxMessage, error) {
	if ext == nil {
		ext = r.db
	}

	var messages []model.OutboxMessage

	const query = `
        SELECT id, event_id, event_type, payload, created_at, published, published_at
        FROM messages.outbox_messages
        WHERE published = false
        ORDER BY created_at
        LIMIT $1;
    `

	rows, err := ext.Query(ctx, query, batchSize)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var message model.OutboxMessage
		if err := rows.Scan(
			&message.ID,
			&message.EventID,
			&message.EventType,
			&message.Payload,
			&message.CreatedAt,
			&message.Published,
			&message.PublishedAt,
		); err != nil {
			return nil, err
		}

		messages = append(messages, message)
	}

	return messages, nil
}

// MoveToDeadLetter copies an unpublishable record aside and marks it
// published in the same transaction, so it stops blocking the queue without
// being lost.
func (r *OutboxRepository) MoveToDeadLetter(ctx context.Context, message model.OutboxMessage, reason string) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	const insertQuery = `
        INSERT INTO messages.outbox_dead_letters (event_id, event_type, payload, reason)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT DO NOTHING;
    `

	if _, err = tx.Exec(ctx, insertQuery, message.EventID, message.EventType, message.Payload, reason); err != nil {
		return err
	}

	if err = r.MarkPublished(ctx, tx, message.EventID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteOldPublished trims the ledger after the retention window.
func (r *OutboxRepository) DeleteOldPublished(ctx context.Context, ext RepoExtension, olderThan time.Duration) (int64, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
        DELETE FROM messages.outbox_messages
        WHERE published = true AND published_at < NOW() - make_interval(secs => $1);
    `

	tag, err := ext.Exec(ctx, query, olderThan.Seconds())
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
