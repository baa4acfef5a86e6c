package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"admissions-back/internal/model"
	"admissions-back/internal/repository"
)

type InstructorRepository interface {
	Pool() *pgxpool.Pool

	Insert(ctx context.Context, ext repository.RepoExtension, instructor *model.Instructor) error
	SelectByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.Instructor, error)
	Update(ctx context.Context, ext repository.RepoExtension, instructor *model.Instructor) error
	Delete(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) error
}

type InstructorService struct {
	log            *zap.Logger
	producer       string
	instructorRepo InstructorRepository
	outboxRepo     OutboxRepository
}

func NewInstructorService(log *zap.Logger, producer string, instructorRepo InstructorRepository, outboxRepo OutboxRepository) *InstructorService {
	return &InstructorService{
		log:            log,
		producer:       producer,
		instructorRepo: instructorRepo,
		outboxRepo:     outboxRepo,
	}
}

func (s *InstructorService) Create(ctx context.Context, req model.InstructorCreateRequest) (instructor *model.Instructor, err error) {
	instructor = &model.Instructor{
		ID:        uuid.New(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Expertise: req.Expertise,
		Status:    model.InstructorStatusActive,
	}

	tx, err := s.instructorRepo.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollbackOnErr(ctx, tx, &err)

	if err := s.instructorRepo.Insert(ctx, tx, instructor); err != nil {
		return nil, fmt.Errorf("failed to insert instructor: %w", err)
	}

	envelope, err := model.NewEnvelope(
		model.EventInstructorCreated,
		s.producer,
		model.Subject(model.KindInstructor, instructor.ID),
		instructor,
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

	s.log.Info("instructor registered",
		zap.String("instructor_id", instructor.ID.String()),
		zap.String("event_id", envelope.EventID.String()),
	)

	return instructor, nil
}

func (s *InstructorService) GetByID(ctx context.Context, id uuid.UUID) (*model.Instructor, error) {
	instructor, err := s.instructorRepo.SelectByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	return instructor, nil
}

func (s *InstructorService) Update(ctx context.Context, id uuid.UUID, req model.InstructorUpdateRequest) (instructor *model.Instructor, err error) {
	tx, err := s.instructorRepo.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollbackOnErr(ctx, tx, &err)

	instructor, err = s.instructorRepo.SelectByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		instructor.FirstName = *req.FirstName
	}

	if req.LastName != nil {
		instructor.LastName = *req.LastName
	}

	if req.Email != nil {
		instructor.Email = *req.Email
	}

	if req.Phone != nil {
		instructor.Phone = *req.Phone
	}

	if req.Expertise != nil {
		instructor.Expertise = *req.Expertise
	}

	if req.Status != nil {
		instructor.Status = *req.Status
	}

	if err := s.instructorRepo.Update(ctx, tx, instructor); err != nil {
		return nil, fmt.Errorf("failed to update instructor: %w", err)
	}

	envelope, err := model.NewEnvelope(
		model.EventInstructorUpdated,
		s.producer,
		model.Subject(model.KindInstructor, instructor.ID),
		instructor,
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

	return instructor, nil
}

func (s *InstructorService) Delete(ctx context.Context, id uuid.UUID) (err error) {
	tx, err := s.instructorRepo.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollbackOnErr(ctx, tx, &err)

	if err := s.instructorRepo.Delete(ctx, tx, id); err != nil {
		return err
	}

	envelope, err := model.NewEnvelope(
		model.EventInstructorDeleted,
		s.producer,
		model.Subject(model.KindInstructor, id),
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
