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

type StudentRepository interface {
	Pool() *pgxpool.Pool

	Insert(ctx context.Context, ext repository.RepoExtension, student *model.Student) error
	SelectByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.Student, error)
	Update(ctx context.Context, ext repository.RepoExtension, student *model.Student) error
	Delete(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) error
}

type StudentService struct {
	log         *zap.Logger
	producer    string
	studentRepo StudentRepository
	outboxRepo  OutboxRepository
}

func NewStudentService(log *zap.Logger, producer string, studentRepo StudentRepository, outboxRepo OutboxRepository) *StudentService {
	return &StudentService{
		log:         log,
		producer:    producer,
		studentRepo: studentRepo,
		outboxRepo:  outboxRepo,
	}
}

func (s *StudentService) Create(ctx context.Context, req model.StudentCreateRequest) (student *model.Student, err error) {
	student = &model.Student{
		ID:        uuid.New(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Program:   req.Program,
		Cohort:    req.Cohort,
		Status:    model.StudentStatusActive,
	}

	tx, err := s.studentRepo.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollbackOnErr(ctx, tx, &err)

	if err := s.studentRepo.Insert(ctx, tx, student); err != nil {
		return nil, fmt.Errorf("failed to insert student: %w", err)
	}

	envelope, err := model.NewEnvelope(
		model.EventStudentCreated,
		s.producer,
		model.Subject(model.KindStudent, student.ID),
		student,
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

	s.log.Info("student enrolled",
		zap.String("student_id", student.ID.String()),
		zap.String("event_id", envelope.EventID.String()),
	)

	return student, nil
}

func (s *StudentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	student, err := s.studentRepo.SelectByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	return student, nil
}

func (s *StudentService) Update(ctx context.Context, id uuid.UUID, req model.StudentUpdateRequest) (student *model.Student, err error) {
	tx, err := s.studentRepo.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollbackOnErr(ctx, tx, &err)

	student, err = s.studentRepo.SelectByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		student.FirstName = *req.FirstName
	}

	if req.LastName != nil {
		student.LastName = *req.LastName
	}

	if req.Email != nil {
		student.Email = *req.Email
	}

	if req.Phone != nil {
		student.Phone = *req.Phone
	}

	if req.Program != nil {
		student.Program = *req.Program
	}

	if req.Cohort != nil {
		student.Cohort = *req.Cohort
	}

	if req.Status != nil {
		student.Status = *req.Status
	}

	if err := s.studentRepo.Update(ctx, tx, student); err != nil {
		return nil, fmt.Errorf("failed to update student: %w", err)
	}

	envelope, err := model.NewEnvelope(
		model.EventStudentUpdated,
		s.producer,
		model.Subject(model.KindStudent, student.ID),
		student,
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

	return student, nil
}

func (s *StudentService) Delete(ctx context.Context, id uuid.UUID) (err error) {
	tx, err := s.studentRepo.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollbackOnErr(ctx, tx, &err)

	if err := s.studentRepo.Delete(ctx, tx, id); err != nil {
		return err
	}

	envelope, err := model.NewEnvelope(
		model.EventStudentDeleted,
		s.producer,
		model.Subject(model.KindStudent, id),
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
