package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hostelhub/mess-api/internal/models"
	appErrors "github.com/hostelhub/mess-api/pkg/errors"
)

type issueRepository interface {
	FindByID(ctx context.Context, id string) (*models.Issue, error)
	List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error)
	Create(ctx context.Context, issue *models.Issue) error
	UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error
	Delete(ctx context.Context, id string) error
}

// CreateIssueRequest is the issue reporting payload.
type CreateIssueRequest struct {
	Title       string  `json:"title" validate:"required,max=120"`
	Description string  `json:"description" validate:"required"`
	Image       *string `json:"image,omitempty"`
}

// UpdateIssueStatusRequest moves an issue between handling states.
type UpdateIssueStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Open Progress Hold Resolved"`
}

// IssueService manages reported issues. Status changes invalidate the
// dashboards because open-issue counts appear on both panels.
type IssueService struct {
	repo      issueRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIssueService constructs an IssueService.
func NewIssueService(repo issueRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *IssueService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Report files a new issue for the given user.
func (s *IssueService) Report(ctx context.Context, userID string, req CreateIssueRequest) (*models.Issue, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "userId is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid issue payload")
	}

	issue := &models.Issue{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Status:      models.IssueOpen,
	}
	if err := s.repo.Create(ctx, issue); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create issue")
	}
	s.invalidateDashboards(ctx)
	return issue, nil
}

// List returns issues. Students are scoped to their own reports by the
// caller; admins pass an empty UserID.
func (s *IssueService) List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	issues, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list issues")
	}
	return issues, nil
}

// Get returns one issue. Students only see their own.
func (s *IssueService) Get(ctx context.Context, id, requesterID string, role models.UserRole) (*models.Issue, error) {
	issue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "issue not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
	}
	if role != models.RoleAdmin && issue.UserID != requesterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "issue belongs to another user")
	}
	return issue, nil
}

// UpdateStatus moves an issue to a new state, admin only.
func (s *IssueService) UpdateStatus(ctx context.Context, id string, req UpdateIssueStatusRequest) (*models.Issue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	issue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "issue not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
	}
	if err := s.repo.UpdateStatus(ctx, id, models.IssueStatus(req.Status)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update issue status")
	}
	issue.Status = models.IssueStatus(req.Status)
	s.invalidateDashboards(ctx)
	return issue, nil
}

// Delete removes an issue, admin only.
func (s *IssueService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "issue not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete issue")
	}
	s.invalidateDashboards(ctx)
	return nil
}

func (s *IssueService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dash:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
