package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/erp-api/internal/models"
)

const documentColumns = `id, organization_id, company_id, sequence_id, title, details,
       approval, approval_comment, reviewed_by, reviewed_at, verified_by, verified_at,
       acknowledged_by, acknowledged_at, approved_by1, approved_at1, approved_by2, approved_at2,
       valid, version, created_by, created_at, updated_at, deleted_at`

// DocumentRepository persists approvable documents of one kind.
type DocumentRepository struct {
	db   *sqlx.DB
	kind models.DocumentKind
}

// NewDocumentRepository constructs a repository bound to kind's table.
func NewDocumentRepository(db *sqlx.DB, kind models.DocumentKind) *DocumentRepository {
	return &DocumentRepository{db: db, kind: kind}
}

// Kind returns the kind this repository serves.
func (r *DocumentRepository) Kind() models.DocumentKind {
	return r.kind
}

// Create inserts a document row.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = doc.CreatedAt
	if doc.Version == 0 {
		doc.Version = 1
	}
	doc.Kind = r.kind.Key

	query := fmt.Sprintf(`INSERT INTO %s
	(id, organization_id, company_id, sequence_id, title, details, approval, approval_comment,
	 reviewed_by, reviewed_at, verified_by, verified_at, acknowledged_by, acknowledged_at,
	 approved_by1, approved_at1, approved_by2, approved_at2, valid, version, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`, r.kind.Table)
	args := []interface{}{
		doc.ID, doc.OrganizationID, doc.CompanyID, doc.SequenceID, doc.Title, detailsArg(doc.Details),
	}
	args = append(args, approvalArgs(&doc.ApprovalFields)...)
	args = append(args, doc.Valid, doc.Version, doc.CreatedBy, doc.CreatedAt, doc.UpdatedAt)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create %s: %w", r.kind.Key, err)
	}
	return nil
}

// GetByID fetches a live document scoped to an organization.
func (r *DocumentRepository) GetByID(ctx context.Context, organizationID, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL`, documentColumns, r.kind.Table)
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id, organizationID); err != nil {
		return nil, err
	}
	doc.Kind = r.kind.Key
	return &doc, nil
}

// List returns a page of documents matching the filter together with the total count.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error) {
	args := make([]interface{}, 0, 5)
	conditions := []string{"deleted_at IS NULL"}

	args = append(args, filter.OrganizationID)
	conditions = append(conditions, fmt.Sprintf("organization_id = $%d", len(args)))
	if filter.CompanyID != "" {
		args = append(args, filter.CompanyID)
		conditions = append(conditions, fmt.Sprintf("company_id = $%d", len(args)))
	}
	if len(filter.Approval) > 0 {
		statuses := make([]string, len(filter.Approval))
		for i, status := range filter.Approval {
			statuses[i] = string(status)
		}
		args = append(args, pq.Array(statuses))
		conditions = append(conditions, fmt.Sprintf("approval = ANY($%d)", len(args)))
	}
	if filter.Valid != nil {
		args = append(args, *filter.Valid)
		conditions = append(conditions, fmt.Sprintf("valid = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR sequence_id ILIKE $%d)", len(args), len(args)))
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", r.kind.Table, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.kind.Key, err)
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		documentColumns, r.kind.Table, where, size, (page-1)*size)

	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.kind.Key, err)
	}
	for i := range docs {
		docs[i].Kind = r.kind.Key
	}
	return docs, total, nil
}

// Update rewrites content and approval columns when the stored version still
// matches expectedVersion. A lost race returns sql.ErrNoRows.
func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document, expectedVersion int64) error {
	updatedAt := time.Now().UTC()
	query := fmt.Sprintf(`UPDATE %s SET sequence_id = $1, title = $2, details = $3,
	approval = $4, approval_comment = $5, reviewed_by = $6, reviewed_at = $7, verified_by = $8, verified_at = $9,
	acknowledged_by = $10, acknowledged_at = $11, approved_by1 = $12, approved_at1 = $13, approved_by2 = $14, approved_at2 = $15,
	valid = $16, version = version + 1, updated_at = $17
	WHERE id = $18 AND organization_id = $19 AND version = $20 AND deleted_at IS NULL`, r.kind.Table)
	args := []interface{}{doc.SequenceID, doc.Title, detailsArg(doc.Details)}
	args = append(args, approvalArgs(&doc.ApprovalFields)...)
	args = append(args, doc.Valid, updatedAt, doc.ID, doc.OrganizationID, expectedVersion)

	if err := r.execVersioned(ctx, "update", query, args...); err != nil {
		return err
	}
	doc.Version = expectedVersion + 1
	doc.UpdatedAt = updatedAt
	return nil
}

// UpdateApproval persists the approval block and valid flag only.
func (r *DocumentRepository) UpdateApproval(ctx context.Context, doc *models.Document, expectedVersion int64) error {
	updatedAt := time.Now().UTC()
	query := fmt.Sprintf(`UPDATE %s SET approval = $1, approval_comment = $2,
	reviewed_by = $3, reviewed_at = $4, verified_by = $5, verified_at = $6,
	acknowledged_by = $7, acknowledged_at = $8, approved_by1 = $9, approved_at1 = $10, approved_by2 = $11, approved_at2 = $12,
	valid = $13, version = version + 1, updated_at = $14
	WHERE id = $15 AND organization_id = $16 AND version = $17 AND deleted_at IS NULL`, r.kind.Table)
	args := approvalArgs(&doc.ApprovalFields)
	args = append(args, doc.Valid, updatedAt, doc.ID, doc.OrganizationID, expectedVersion)

	if err := r.execVersioned(ctx, "update approval", query, args...); err != nil {
		return err
	}
	doc.Version = expectedVersion + 1
	doc.UpdatedAt = updatedAt
	return nil
}

// SoftDelete marks a document as deleted.
func (r *DocumentRepository) SoftDelete(ctx context.Context, organizationID, id string, deletedAt time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET deleted_at = $3 WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL`, r.kind.Table)
	res, err := r.db.ExecContext(ctx, query, id, organizationID, deletedAt)
	if err != nil {
		return fmt.Errorf("soft delete %s: %w", r.kind.Key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s delete rows: %w", r.kind.Key, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *DocumentRepository) execVersioned(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, r.kind.Key, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s %s rows: %w", r.kind.Key, op, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// approvalArgs returns the approval columns in table order, starting at approval.
func approvalArgs(f *models.ApprovalFields) []interface{} {
	return []interface{}{
		f.Approval, f.ApprovalComment,
		f.ReviewedBy, f.ReviewedAt,
		f.VerifiedBy, f.VerifiedAt,
		f.AcknowledgedBy, f.AcknowledgedAt,
		f.ApprovedBy1, f.ApprovedAt1,
		f.ApprovedBy2, f.ApprovedAt2,
	}
}

// detailsArg sends JSONB as text; lib/pq would encode a byte slice as bytea.
func detailsArg(raw []byte) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 20
	}
	return page, size
}
