package service

import (
	"context"

	"go.uber.org/zap"

	"admissions-back/internal/repository"
)

type HealthRepository interface {
	Ping(ctx context.Context) error
	OutboxBacklog(ctx context.Context, ext repository.RepoExtension) (int64, error)
}

type HealthService struct {
	log        *zap.Logger
	healthRepo HealthRepository
}

func NewHealthService(log *zap.Logger, healthRepo HealthRepository) *HealthService {
	return &HealthService{
		log:        log,
		healthRepo: healthRepo,
	}
}

func (s *HealthService) IsOK(ctx context.Context) (bool, error) {
	s.log.Debug("HealthService.IsOK()")

	if err := s.healthRepo.Ping(ctx); err != nil {
		return false, err
	}

	return true, nil
}

// Backlog is the number of ledger records still awaiting publication.
func (s *HealthService) Backlog(ctx context.Context) (int64, error) {
	backlog, err := s.healthRepo.OutboxBacklog(ctx, nil)
	if err != nil {
		return 0, err
	}

	return backlog, nil
}
