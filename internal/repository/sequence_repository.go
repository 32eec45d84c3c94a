package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/erp-api/internal/models"
)

// SequenceRepository issues per-organization document numbers.
type SequenceRepository struct {
	db *sqlx.DB
}

// NewSequenceRepository constructs the repository.
func NewSequenceRepository(db *sqlx.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// NextParams drives one counter advance.
type NextParams struct {
	Entity         string
	OrganizationID string
	// ExplicitID replaces the counter value instead of incrementing it.
	ExplicitID *int64
	// Prefix becomes the stored default prefix when set.
	Prefix        *string
	DefaultPrefix string
}

// Next advances the counter in a single statement and returns the new state.
// A missing row starts at 1 (or ExplicitID).
func (r *SequenceRepository) Next(ctx context.Context, params NextParams) (*models.SequenceCounter, error) {
	const query = `INSERT INTO last_inserted_ids (entity, organization_id, last_id, prefix, updated_at)
VALUES ($1, $2, COALESCE($3::bigint, 1), COALESCE($4::text, $5), $6)
ON CONFLICT (entity, organization_id)
DO UPDATE SET last_id = COALESCE($3::bigint, last_inserted_ids.last_id + 1),
              prefix = COALESCE($4::text, last_inserted_ids.prefix),
              updated_at = EXCLUDED.updated_at
RETURNING entity, organization_id, last_id, prefix, updated_at`
	var counter models.SequenceCounter
	if err := r.db.GetContext(ctx, &counter, query,
		params.Entity, params.OrganizationID, params.ExplicitID, params.Prefix, params.DefaultPrefix, time.Now().UTC(),
	); err != nil {
		return nil, fmt.Errorf("advance sequence %s: %w", params.Entity, err)
	}
	return &counter, nil
}

// SetPrefix stores prefix as the default for later ids without advancing
// the counter. A missing row starts at 0 so the next issued id is 1.
func (r *SequenceRepository) SetPrefix(ctx context.Context, entity, organizationID, prefix string) error {
	const query = `INSERT INTO last_inserted_ids (entity, organization_id, last_id, prefix, updated_at)
VALUES ($1, $2, 0, $3, $4)
ON CONFLICT (entity, organization_id)
DO UPDATE SET prefix = EXCLUDED.prefix, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, entity, organizationID, prefix, time.Now().UTC()); err != nil {
		return fmt.Errorf("set sequence prefix %s: %w", entity, err)
	}
	return nil
}

// Get reads the counter without advancing it.
func (r *SequenceRepository) Get(ctx context.Context, entity, organizationID string) (*models.SequenceCounter, error) {
	const query = `SELECT entity, organization_id, last_id, prefix, updated_at
FROM last_inserted_ids WHERE entity = $1 AND organization_id = $2`
	var counter models.SequenceCounter
	if err := r.db.GetContext(ctx, &counter, query, entity, organizationID); err != nil {
		return nil, err
	}
	return &counter, nil
}
