package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hostelhub/mess-api/internal/models"
)

// NoticeRepository provides database access for the notice board.
type NoticeRepository struct {
	db *sqlx.DB
}

// NewNoticeRepository creates a new instance of NoticeRepository.
func NewNoticeRepository(db *sqlx.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

const noticeColumns = `id, title, description, image, posted_by, valid_until, created_at`

// FindByID returns a notice by identifier.
func (r *NoticeRepository) FindByID(ctx context.Context, id string) (*models.Notice, error) {
	query := `SELECT ` + noticeColumns + ` FROM notices WHERE id = $1 LIMIT 1`
	var notice models.Notice
	if err := r.db.GetContext(ctx, &notice, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find notice by id: %w", err)
	}
	return &notice, nil
}

// ListActive returns notices that have not expired as of the given instant,
// newest first.
func (r *NoticeRepository) ListActive(ctx context.Context, now time.Time) ([]models.Notice, error) {
	query := `SELECT ` + noticeColumns + ` FROM notices WHERE valid_until IS NULL OR valid_until >= $1 ORDER BY created_at DESC`
	var notices []models.Notice
	if err := r.db.SelectContext(ctx, &notices, query, now); err != nil {
		return nil, fmt.Errorf("list active notices: %w", err)
	}
	return notices, nil
}

// Create inserts a new notice.
func (r *NoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	if notice.ID == "" {
		notice.ID = uuid.NewString()
	}
	if notice.CreatedAt.IsZero() {
		notice.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO notices (id, title, description, image, posted_by, valid_until, created_at) VALUES (:id, :title, :description, :image, :posted_by, :valid_until, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notice); err != nil {
		return fmt.Errorf("create notice: %w", err)
	}
	return nil
}

// Delete removes a notice.
func (r *NoticeRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM notices WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	return nil
}
