package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

type termRepository interface {
	List(ctx context.Context, filter models.TermFilter) ([]models.Term, error)
	FindByID(ctx context.Context, id string) (*models.Term, error)
	FindByIndex(ctx context.Context, index int) (*models.Term, error)
}

// TermService resolves the active term and its neighbours.
type TermService struct {
	repo   termRepository
	logger *zap.Logger
}

// NewTermService constructs a TermService.
func NewTermService(repo termRepository, logger *zap.Logger) *TermService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{repo: repo, logger: logger}
}

// List returns terms matching the filter.
func (s *TermService) List(ctx context.Context, filter models.TermFilter) ([]models.Term, error) {
	switch filter.Scope {
	case "", models.TermScopePast, models.TermScopeActive, models.TermScopeFuture:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown term scope %q", filter.Scope))
	}

	terms, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list terms")
	}
	return terms, nil
}

// Get returns a term by key.
func (s *TermService) Get(ctx context.Context, id string) (*models.Term, error) {
	term, err := s.repo.FindByID(ctx, id)
	return s.found(term, err, fmt.Sprintf("term %s not found", id))
}

// Active returns the current term.
func (s *TermService) Active(ctx context.Context) (*models.Term, error) {
	term, err := s.repo.FindByIndex(ctx, 0)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("no term has active index 0")
	}
	return s.found(term, err, "no active term")
}

// Relative returns the term offset terms away from the active one; -1 is the prior term.
func (s *TermService) Relative(ctx context.Context, offset int) (*models.Term, error) {
	term, err := s.repo.FindByIndex(ctx, offset)
	return s.found(term, err, fmt.Sprintf("no term at offset %d", offset))
}

func (s *TermService) found(term *models.Term, err error, missing string) (*models.Term, error) {
	if err == nil {
		return term, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, missing)
	}
	return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
}
