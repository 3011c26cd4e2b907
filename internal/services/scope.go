package services

import (
	"context"
	stderrors "errors"

	"github.com/teamops/teamledger/internal/errors"
	"github.com/teamops/teamledger/internal/logger"
	"github.com/teamops/teamledger/internal/models"
	"github.com/teamops/teamledger/internal/repository"
)

// ScopeServiceRepository defines the repository methods needed by ScopeService
type ScopeServiceRepository interface {
	repository.ManagerRepository
}

// ScopeService resolves a caller's session into the category scope used to
// gate reconciliation and analytics operations
type ScopeService struct {
	log  logger.Logger
	repo ScopeServiceRepository
}

// NewScopeService creates a new ScopeService
func NewScopeService(log logger.Logger, repo ScopeServiceRepository) *ScopeService {
	return &ScopeService{log: log, repo: repo}
}

// ResolveAccessCode returns the manager owning an access code, for login
func (s *ScopeService) ResolveAccessCode(ctx context.Context, accessCode string) (*models.Manager, error) {
	manager, err := s.repo.GetManagerByAccessCode(ctx, accessCode)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidAccessCode
	}
	if err != nil {
		return nil, err
	}
	return manager, nil
}

// ResolveScope computes the caller's authorized category set. Admins are
// scoped to every category; managers to their assigned set. The result is
// passed explicitly into every engine operation.
func (s *ScopeService) ResolveScope(ctx context.Context, role string, managerID int64) (models.CallerScope, error) {
	switch role {
	case models.RoleAdmin:
		return models.CallerScope{Role: models.RoleAdmin}, nil
	case models.RoleManager:
		categoryIDs, err := s.repo.ListManagerCategoryIDs(ctx, managerID)
		if err != nil {
			return models.CallerScope{}, err
		}
		return models.CallerScope{
			Role:        models.RoleManager,
			ManagerID:   managerID,
			CategoryIDs: categoryIDs,
		}, nil
	default:
		return models.CallerScope{}, errors.Authorizationf("unknown role %q", role)
	}
}
