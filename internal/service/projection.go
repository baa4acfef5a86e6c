package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"admissions-back/internal/model"
	"admissions-back/internal/repository"
)

type ProjectionRepository interface {
	Get(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.IdentityProjection, error)
	List(ctx context.Context, ext repository.RepoExtension, kind string, limit, offset int) ([]model.IdentityProjection, error)
}

type SearchRepository interface {
	Search(ctx context.Context, query string, size int) ([]model.IdentityProjection, error)
}

// ProjectionService serves the identity read model. The full-text side is
// optional: without Elasticsearch, Search falls back to an empty result set.
type ProjectionService struct {
	log            *zap.Logger
	projectionRepo ProjectionRepository
	searchRepo     SearchRepository
}

func NewProjectionService(log *zap.Logger, projectionRepo ProjectionRepository, searchRepo SearchRepository) *ProjectionService {
	return &ProjectionService{
		log:            log,
		projectionRepo: projectionRepo,
		searchRepo:     searchRepo,
	}
}

func (s *ProjectionService) GetByID(ctx context.Context, id uuid.UUID) (*model.IdentityProjection, error) {
	projection, err := s.projectionRepo.Get(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	return projection, nil
}

func (s *ProjectionService) List(ctx context.Context, kind string, limit, offset int) ([]model.IdentityProjection, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	if offset < 0 {
		offset = 0
	}

	projections, err := s.projectionRepo.List(ctx, nil, kind, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list projections: %w", err)
	}

	return projections, nil
}

func (s *ProjectionService) Search(ctx context.Context, query string, size int) ([]model.IdentityProjection, error) {
	if s.searchRepo == nil {
		s.log.Debug("search requested but no search backend configured")

		return []model.IdentityProjection{}, nil
	}

	if size <= 0 || size > 50 {
		size = 20
	}

	results, err := s.searchRepo.Search(ctx, query, size)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return results, nil
}
