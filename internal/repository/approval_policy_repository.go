package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/erp-api/internal/models"
)

// ApprovalPolicyRepository persists per-organization approval toggles.
type ApprovalPolicyRepository struct {
	db *sqlx.DB
}

// NewApprovalPolicyRepository constructs the repository.
func NewApprovalPolicyRepository(db *sqlx.DB) *ApprovalPolicyRepository {
	return &ApprovalPolicyRepository{db: db}
}

// Seed inserts a disabled policy row for every feature that does not exist yet.
func (r *ApprovalPolicyRepository) Seed(ctx context.Context, organizationID string, features []string) error {
	if len(features) == 0 {
		return nil
	}
	const query = `INSERT INTO approval_policies (organization_id, feature, updated_at)
VALUES ($1, $2, $3) ON CONFLICT (organization_id, feature) DO NOTHING`
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed approval policies: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	now := time.Now().UTC()
	for _, feature := range features {
		if _, err := tx.ExecContext(ctx, query, organizationID, feature, now); err != nil {
			return fmt.Errorf("seed approval policy %s: %w", feature, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed approval policies: %w", err)
	}
	return nil
}

// List returns every policy of an organization ordered by feature.
func (r *ApprovalPolicyRepository) List(ctx context.Context, organizationID string) ([]models.ApprovalPolicy, error) {
	const query = `SELECT organization_id, feature, reviewed, verified, acknowledged, approved1, approved2, updated_at
FROM approval_policies WHERE organization_id = $1 ORDER BY feature ASC`
	var policies []models.ApprovalPolicy
	if err := r.db.SelectContext(ctx, &policies, query, organizationID); err != nil {
		return nil, fmt.Errorf("list approval policies: %w", err)
	}
	return policies, nil
}

// Get fetches the policy of one feature.
func (r *ApprovalPolicyRepository) Get(ctx context.Context, organizationID, feature string) (*models.ApprovalPolicy, error) {
	const query = `SELECT organization_id, feature, reviewed, verified, acknowledged, approved1, approved2, updated_at
FROM approval_policies WHERE organization_id = $1 AND feature = $2`
	var policy models.ApprovalPolicy
	if err := r.db.GetContext(ctx, &policy, query, organizationID, feature); err != nil {
		return nil, err
	}
	return &policy, nil
}

// Upsert stores the stage toggles of one feature.
func (r *ApprovalPolicyRepository) Upsert(ctx context.Context, policy *models.ApprovalPolicy) error {
	const query = `INSERT INTO approval_policies (organization_id, feature, reviewed, verified, acknowledged, approved1, approved2, updated_at)
VALUES (:organization_id, :feature, :reviewed, :verified, :acknowledged, :approved1, :approved2, :updated_at)
ON CONFLICT (organization_id, feature)
DO UPDATE SET reviewed = EXCLUDED.reviewed, verified = EXCLUDED.verified, acknowledged = EXCLUDED.acknowledged,
              approved1 = EXCLUDED.approved1, approved2 = EXCLUDED.approved2, updated_at = EXCLUDED.updated_at`
	policy.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, policy); err != nil {
		return fmt.Errorf("upsert approval policy: %w", err)
	}
	return nil
}
