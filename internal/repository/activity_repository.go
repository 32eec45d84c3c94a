package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/erp-api/internal/models"
)

// ActivityRepository stores the document audit trail.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends an activity entry.
func (r *ActivityRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO activity_logs (id, user_id, action, type, action_id, organization_id, company_id, created_at)
VALUES (:id, :user_id, :action, :type, :action_id, :organization_id, :company_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create activity log: %w", err)
	}
	return nil
}

// ListByAction returns the entries recorded for one document, oldest first.
func (r *ActivityRepository) ListByAction(ctx context.Context, organizationID, actionID string) ([]models.ActivityLog, error) {
	const query = `SELECT id, user_id, action, type, action_id, organization_id, company_id, created_at
FROM activity_logs WHERE organization_id = $1 AND action_id = $2 ORDER BY created_at ASC`
	var entries []models.ActivityLog
	if err := r.db.SelectContext(ctx, &entries, query, organizationID, actionID); err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	return entries, nil
}
