package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"admissions-back/internal/model"
	"admissions-back/internal/repository"
)

type ProspectRepository interface {
	Pool() *pgxpool.Pool

	Insert(ctx context.Context, ext repository.RepoExtension, prospect *model.Prospect) error
	SelectByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.Prospect, error)
	Update(ctx context.Context, ext repository.RepoExtension, prospect *model.Prospect) error
	Delete(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) error
}

type OutboxRepository interface {
	InsertMessage(ctx context.Context, ext repository.RepoExtension, message model.OutboxMessage) error
}

// deletedPayload is all that survives of an aggregate in its deletion event.
type deletedPayload struct {
	ID uuid.UUID `json:"id"`
}

type ProspectService struct {
	log          *zap.Logger
	producer     string
	prospectRepo ProspectRepository
	outboxRepo   OutboxRepository
}

func NewProspectService(log *zap.Logger, producer string, prospectRepo ProspectRepository, outboxRepo OutboxRepository) *ProspectService {
	return &ProspectService{
		log:          log,
		producer:     producer,
		prospectRepo: prospectRepo,
		outboxRepo:   outboxRepo,
	}
}

// appendToOutbox records the envelope in the ledger inside the caller's
// transaction, so the domain write and the pending event commit atomically.
func appendToOutbox(ctx context.Context, outboxRepo OutboxRepository, tx pgx.Tx, envelope *model.EventEnvelope) error {
	payload, err := envelope.Encode()
	if err != nil {
		return err
	}

	message := model.OutboxMessage{
		EventID:   envelope.EventID,
		EventType: envelope.EventType,
		Payload:   payload,
	}

	if err := outboxRepo.InsertMessage(ctx, tx, message); err != nil {
		return fmt.Errorf("failed to insert outbox message: %w", err)
	}

	return nil
}

func rollbackOnErr(ctx context.Context, tx pgx.Tx, err *error) {
	if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
		*err = fmt.Errorf("%w, failed to roll back transaction: %w", *err, rErr)
	}
}

func (s *ProspectService) Create(ctx context.Context, req model.ProspectCreateRequest) (prospect *model.Prospect, err error) {
	prospect = &model.Prospect{
		ID:        uuid.New(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Source:    req.Source,
		Status:    model.ProspectStatusNew,
	}

	tx, err := s.prospectRepo.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollbackOnErr(ctx, tx, &err)

	if err := s.prospectRepo.Insert(ctx, tx, prospect); err != nil {
		return nil, fmt.Errorf("failed to insert prospect: %w", err)
	}

	envelope, err := model.NewEnvelope(
		model.EventProspectCreated,
		s.producer,
		model.Subject(model.KindProspect, prospect.ID),
		prospect,
	)
	if err != nil {
		return nil, err
	}

	if err := appendToOutbox(ctx, s.outboxRepo, tx, envelope); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}

	s.log.Info("prospect created",
		zap.String("prospect_id", prospect.ID.String()),
		zap.String("event_id", envelope.EventID.String()),
	)

	return prospect, nil
}

func (s *ProspectService) GetByID(ctx context.Context, id uuid.UUID) (*model.Prospect, error) {
	prospect, err := s.prospectRepo.SelectByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	return prospect, nil
}

func (s *ProspectService) Update(ctx context.Context, id uuid.UUID, req model.ProspectUpdateRequest) (prospect *model.Prospect, err error) {
	tx, err := s.prospectRepo.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollbackOnErr(ctx, tx, &err)

	prospect, err = s.prospectRepo.SelectByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		prospect.FirstName = *req.FirstName
	}

	if req.LastName != nil {
		prospect.LastName = *req.LastName
	}

	if req.Email != nil {
		prospect.Email = *req.Email
	}

	if req.Phone != nil {
		prospect.Phone = *req.Phone
	}

	if req.Source != nil {
		prospect.Source = *req.Source
	}

	if req.Status != nil {
		prospect.Status = *req.Status
	}

	if err := s.prospectRepo.Update(ctx, tx, prospect); err != nil {
		return nil, fmt.Errorf("failed to update prospect: %w", err)
	}

	envelope, err := model.NewEnvelope(
		model.EventProspectUpdated,
		s.producer,
		model.Subject(model.KindProspect, prospect.ID),
		prospect,
	)
	if err != nil {
		return nil, err
	}

	if err := appendToOutbox(ctx, s.outboxRepo, tx, envelope); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}

	return prospect, nil
}

func (s *ProspectService) Delete(ctx context.Context, id uuid.UUID) (err error) {
	tx, err := s.prospectRepo.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollbackOnErr(ctx, tx, &err)

	if err := s.prospectRepo.Delete(ctx, tx, id); err != nil {
		return err
	}

	envelope, err := model.NewEnvelope(
		model.EventProspectDeleted,
		s.producer,
		model.Subject(model.KindProspect, id),
		deletedPayload{ID: id},
	)
	if err != nil {
		return err
	}

	if err := appendToOutbox(ctx, s.outboxRepo, tx, envelope); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}
