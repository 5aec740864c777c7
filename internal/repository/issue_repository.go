package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hostelhub/mess-api/internal/models"
)

// IssueRepository provides database access for reported issues.
type IssueRepository struct {
	db *sqlx.DB
}

// NewIssueRepository creates a new instance of IssueRepository.
func NewIssueRepository(db *sqlx.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

const issueColumns = `id, user_id, title, description, image, status, created_at, updated_at`

// FindByID returns an issue by identifier.
func (r *IssueRepository) FindByID(ctx context.Context, id string) (*models.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id = $1 LIMIT 1`
	var issue models.Issue
	if err := r.db.GetContext(ctx, &issue, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find issue by id: %w", err)
	}
	return &issue, nil
}

// List returns issues matching the filter, newest first.
func (r *IssueRepository) List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	baseQuery := `SELECT ` + issueColumns + ` FROM issues WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY created_at DESC"

	var issues []models.Issue
	if err := r.db.SelectContext(ctx, &issues, baseQuery, args...); err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return issues, nil
}

// Create inserts a new issue.
func (r *IssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = now

	const query = `INSERT INTO issues (id, user_id, title, description, image, status, created_at, updated_at) VALUES (:id, :user_id, :title, :description, :image, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, issue); err != nil {
		return fmt.Errorf("create issue: %w", err)
	}
	return nil
}

// UpdateStatus moves an issue to a new handling state.
func (r *IssueRepository) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error {
	const query = `UPDATE issues SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update issue status: %w", err)
	}
	return nil
}

// Delete removes an issue.
func (r *IssueRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM issues WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	return nil
}
