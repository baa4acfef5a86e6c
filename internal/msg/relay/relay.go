package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"admissions-back/internal/apperrors"
	"admissions-back/internal/model"
	"admissions-back/internal/repository"
	"admissions-back/pkg/pushbus"
)

type OutboxRepository interface {
	SelectUnpublishedBatch(ctx context.Context, ext repository.RepoExtension, batchSize int) ([]model.OutboxMessage, error)
	MarkPublished(ctx context.Context, ext repository.RepoExtension, eventID uuid.UUID) error
	MoveToDeadLetter(ctx context.Context, message model.OutboxMessage, reason string) error
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key, payload []byte) error
}

// Lease gates publishing to a single relay instance. A nil lease means the
// deployment runs one relay and needs no coordination.
type Lease interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type Config struct {
	Name           string
	PollInterval   time.Duration
	BatchSize      int
	PublishTimeout time.Duration
	RetryBaseDelay time.Duration
	RetryMaxTries  int
	DeadLetter     bool
}

// Relay drains the outbox ledger into the event bus. Records are published
// one at a time in created_at order: a record that keeps failing transiently
// ends the cycle so nothing behind it can overtake.
type Relay struct {
	l          *zap.Logger
	cfg        Config
	publisher  Publisher
	outboxRepo OutboxRepository
	lease      Lease
}

func NewRelay(l *zap.Logger, cfg Config, publisher Publisher, outboxRepo OutboxRepository, lease Lease) *Relay {
	return &Relay{
		l:          l,
		cfg:        cfg,
		publisher:  publisher,
		outboxRepo: outboxRepo,
		lease:      lease,
	}
}

func (r *Relay) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if r.lease != nil {
				releaseCtx, releaseCancel := context.WithTimeout(context.Background(), time.Second)
				if err := r.lease.Release(releaseCtx); err != nil {
					r.l.Warn("Failed to release relay lease", zap.Error(err))
				}
				releaseCancel()
			}

			r.l.Info("Relay stopped", zap.String("relay", r.cfg.Name))

			return
		case <-ticker.C:
			if r.lease != nil {
				held, err := r.lease.Acquire(ctx)
				if err != nil {
					r.l.Error("Failed to acquire relay lease", zap.Error(err))
					continue
				}

				if !held {
					r.l.Debug("Relay lease held elsewhere, skipping cycle")
					continue
				}
			}

			if err := r.Cycle(ctx); err != nil {
				r.l.Error("Relay cycle failed", zap.Error(err))
			}
		}
	}
}

// Cycle publishes one batch. Exported so a caller can drive the relay without
// the ticker loop.
func (r *Relay) Cycle(ctx context.Context) error {
	messages, err := r.outboxRepo.SelectUnpublishedBatch(ctx, nil, r.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to select unpublished batch: %w", err)
	}

	for _, msg := range messages {
		if err := r.publishOne(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}

			// Transient exhaustion: the record stays unpublished and keeps
			// its place at the head of the next batch.
			r.l.Warn("Giving up on record until next cycle",
				zap.String("event_id", msg.EventID.String()),
				zap.Error(err),
			)

			return nil
		}
	}

	return nil
}

func (r *Relay) publishOne(ctx context.Context, msg model.OutboxMessage) error {
	topic, ok := model.TopicFor(msg.EventType)
	if !ok {
		return r.quarantine(ctx, msg, apperrors.ErrUnroutableEvent)
	}

	key, err := msg.EventID.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal event id: %w", err)
	}

	delay := r.cfg.RetryBaseDelay

	for attempt := 1; ; attempt++ {
		publishCtx, cancel := context.WithTimeout(ctx, r.cfg.PublishTimeout)
		err = r.publisher.Publish(publishCtx, topic, key, msg.Payload)
		cancel()

		if err == nil {
			break
		}

		if !pushbus.IsTemporary(err) {
			return r.quarantine(ctx, msg, err)
		}

		if attempt >= r.cfg.RetryMaxTries {
			return fmt.Errorf("exhausted %d attempts: %w", attempt, err)
		}

		r.l.Warn("Transient publish failure, backing off",
			zap.String("event_id", msg.EventID.String()),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
	}

	// Mark only after the broker acknowledged. A crash landing between the
	// two steps re-publishes the record on restart, never loses it.
	if err := r.outboxRepo.MarkPublished(ctx, nil, msg.EventID); err != nil {
		return fmt.Errorf("failed to mark published: %w", err)
	}

	r.l.Info("Event published",
		zap.String("event_id", msg.EventID.String()),
		zap.String("event_type", msg.EventType),
		zap.String("topic", topic),
	)

	return nil
}

// quarantine handles permanently unpublishable records per configuration:
// copy to the dead-letter table, or just mark published and log.
func (r *Relay) quarantine(ctx context.Context, msg model.OutboxMessage, cause error) error {
	r.l.Error("Record is permanently unpublishable",
		zap.String("event_id", msg.EventID.String()),
		zap.String("event_type", msg.EventType),
		zap.Error(cause),
	)

	if r.cfg.DeadLetter {
		if err := r.outboxRepo.MoveToDeadLetter(ctx, msg, cause.Error()); err != nil {
			return fmt.Errorf("failed to move record to dead letter: %w", err)
		}

		return nil
	}

	if err := r.outboxRepo.MarkPublished(ctx, nil, msg.EventID); err != nil {
		return fmt.Errorf("failed to mark published: %w", err)
	}

	return nil
}
