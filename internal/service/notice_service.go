package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hostelhub/mess-api/internal/models"
	appErrors "github.com/hostelhub/mess-api/pkg/errors"
)

type noticeRepository interface {
	FindByID(ctx context.Context, id string) (*models.Notice, error)
	ListActive(ctx context.Context, now time.Time) ([]models.Notice, error)
	Create(ctx context.Context, notice *models.Notice) error
	Delete(ctx context.Context, id string) error
}

// CreateNoticeRequest is the notice board posting payload.
type CreateNoticeRequest struct {
	Title       string     `json:"title" validate:"required,max=120"`
	Description string     `json:"description" validate:"required"`
	Image       *string    `json:"image,omitempty"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
}

// NoticeService manages the mess notice board.
type NoticeService struct {
	repo      noticeRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewNoticeService constructs a NoticeService.
func NewNoticeService(repo noticeRepository, validate *validator.Validate, logger *zap.Logger) *NoticeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoticeService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// ListActive returns notices that have not expired.
func (s *NoticeService) ListActive(ctx context.Context) ([]models.Notice, error) {
	notices, err := s.repo.ListActive(ctx, s.now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notices")
	}
	return notices, nil
}

// Post publishes a new notice, admin only.
func (s *NoticeService) Post(ctx context.Context, postedBy string, req CreateNoticeRequest) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}
	if req.ValidUntil != nil && req.ValidUntil.Before(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "valid_until must be in the future")
	}

	notice := &models.Notice{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		PostedBy:    postedBy,
		ValidUntil:  req.ValidUntil,
	}
	if err := s.repo.Create(ctx, notice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notice")
	}
	return notice, nil
}

// Delete removes a notice, admin only.
func (s *NoticeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notice not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notice")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notice")
	}
	return nil
}
