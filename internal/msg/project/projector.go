package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"admissions-back/internal/apperrors"
	"admissions-back/internal/model"
	"admissions-back/internal/repository"
)

type Inbox interface {
	ProcessOnce(
		ctx context.Context,
		record model.InboxMessage,
		mutate func(ctx context.Context, ext repository.RepoExtension) error,
	) (applied bool, err error)
	PurgeOlderThan(ctx context.Context, ext repository.RepoExtension, window time.Duration) (int64, error)
}

type ProjectionRepository interface {
	Insert(ctx context.Context, ext repository.RepoExtension, p *model.IdentityProjection, createdAt time.Time) error
	Update(ctx context.Context, ext repository.RepoExtension, p *model.IdentityProjection) error
	Delete(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) error
}

// SearchIndex mirrors projection rows into the full-text index after commit.
type SearchIndex interface {
	Index(ctx context.Context, projection *model.IdentityProjection) error
	Remove(ctx context.Context, id string) error
}

type Config struct {
	Name          string
	DedupWindow   time.Duration
	PurgeInterval time.Duration
}

// Projector applies identity events to the read model exactly once in effect:
// the inbox mark and the projection write commit in one transaction.
type Projector struct {
	l              *zap.Logger
	cfg            Config
	inbox          Inbox
	projectionRepo ProjectionRepository
	search         SearchIndex
}

func NewProjector(l *zap.Logger, cfg Config, inbox Inbox, projectionRepo ProjectionRepository, search SearchIndex) *Projector {
	return &Projector{
		l:              l,
		cfg:            cfg,
		inbox:          inbox,
		projectionRepo: projectionRepo,
		search:         search,
	}
}

func (p *Projector) Name() string {
	return p.cfg.Name
}

func (p *Projector) Handle(ctx context.Context, envelope *model.EventEnvelope) error {
	kind, id, err := model.ParseSubject(envelope.Subject)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrMalformedEvent, err)
	}

	projection, err := buildProjection(envelope, kind, id)
	if err != nil {
		return err
	}

	record := model.InboxMessage{
		EventID:       envelope.EventID,
		EventType:     envelope.EventType,
		CorrelationID: envelope.CorrelationID,
		Subject:       envelope.Subject,
	}

	applied, err := p.inbox.ProcessOnce(ctx, record, func(ctx context.Context, ext repository.RepoExtension) error {
		return p.apply(ctx, ext, envelope, projection)
	})
	if err != nil {
		return fmt.Errorf("failed to process event: %w", err)
	}

	if !applied {
		p.l.Debug("Duplicate delivery skipped",
			zap.String("event_id", envelope.EventID.String()),
			zap.String("event_type", envelope.EventType),
		)

		return nil
	}

	p.l.Info("Event projected",
		zap.String("event_id", envelope.EventID.String()),
		zap.String("event_type", envelope.EventType),
		zap.String("subject", envelope.Subject),
	)

	p.mirror(ctx, envelope, projection)

	return nil
}

func buildProjection(envelope *model.EventEnvelope, kind string, id uuid.UUID) (*model.IdentityProjection, error) {
	if model.IsDeletedEvent(envelope.EventType) {
		return &model.IdentityProjection{ID: id, Kind: kind}, nil
	}

	var fields model.IdentityFields
	if err := json.Unmarshal(envelope.Data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrMalformedEvent, err)
	}

	if fields.ID != uuid.Nil && fields.ID != id {
		return nil, fmt.Errorf("%w: subject and payload disagree on id", apperrors.ErrMalformedEvent)
	}

	return &model.IdentityProjection{
		ID:          id,
		Kind:        kind,
		DisplayName: fields.DisplayName(),
		Email:       fields.Email,
		Phone:       fields.Phone,
		Status:      fields.Status,
		Document:    envelope.Data,
	}, nil
}

func (p *Projector) apply(ctx context.Context, ext repository.RepoExtension, envelope *model.EventEnvelope, projection *model.IdentityProjection) error {
	switch {
	case model.IsCreatedEvent(envelope.EventType):
		return p.projectionRepo.Insert(ctx, ext, projection, envelope.OccurredAt)
	case model.IsUpdatedEvent(envelope.EventType):
		err := p.projectionRepo.Update(ctx, ext, projection)
		if errors.Is(err, apperrors.ErrProjectionDoesNotExist) {
			// Update arrived before (or without) its Created. Synthesize the
			// row and take the event occurrence time as creation time.
			p.l.Warn("Synthesizing projection for out-of-order update",
				zap.String("event_id", envelope.EventID.String()),
				zap.String("subject", envelope.Subject),
			)

			return p.projectionRepo.Insert(ctx, ext, projection, envelope.OccurredAt)
		}

		return err
	case model.IsDeletedEvent(envelope.EventType):
		return p.projectionRepo.Delete(ctx, ext, projection.ID)
	default:
		return fmt.Errorf("%w: %s", apperrors.ErrUnroutableEvent, envelope.EventType)
	}
}

// mirror pushes the committed row into the search index. Failures only log:
// the relational read model is the source of truth and the index catches up
// on the next event for the same subject.
func (p *Projector) mirror(ctx context.Context, envelope *model.EventEnvelope, projection *model.IdentityProjection) {
	if p.search == nil {
		return
	}

	var err error
	if model.IsDeletedEvent(envelope.EventType) {
		err = p.search.Remove(ctx, projection.ID.String())
	} else {
		err = p.search.Index(ctx, projection)
	}

	if err != nil {
		p.l.Warn("Failed to mirror projection to search index",
			zap.String("subject", envelope.Subject),
			zap.Error(err),
		)
	}
}

// RunPurge trims inbox rows that fell out of the dedup window.
func (p *Projector) RunPurge(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.l.Info("Inbox purge loop stopped")

			return
		case <-ticker.C:
			purged, err := p.inbox.PurgeOlderThan(ctx, nil, p.cfg.DedupWindow)
			if err != nil {
				p.l.Error("Failed to purge inbox", zap.Error(err))
				continue
			}

			if purged > 0 {
				p.l.Info("Purged processed inbox records", zap.Int64("count", purged))
			}
		}
	}
}
