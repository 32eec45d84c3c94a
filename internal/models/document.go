package models

import (
	"encoding/json"
	"time"
)

// Document is one approvable business record (leave, booking, enquiry, quote or offer).
// Kind-specific attributes live in Details.
type Document struct {
	ID             string          `db:"id" json:"id"`
	Kind           DocumentKindKey `db:"-" json:"kind"`
	OrganizationID string          `db:"organization_id" json:"organizationId"`
	CompanyID      string          `db:"company_id" json:"companyId"`
	SequenceID     *string         `db:"sequence_id" json:"sequenceId,omitempty"`
	Title          string          `db:"title" json:"title"`
	Details        json.RawMessage `db:"details" json:"details"`
	ApprovalFields
	CreatedBy string     `db:"created_by" json:"createdBy"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
}

// Label is the human-facing reference used in notifications and exports.
func (d *Document) Label() string {
	if d.SequenceID != nil && *d.SequenceID != "" {
		return *d.SequenceID
	}
	if d.Title != "" {
		return d.Title
	}
	if len(d.ID) > 8 {
		return d.ID[:8]
	}
	return d.ID
}

// DocumentFilter constrains listing queries within one organization.
type DocumentFilter struct {
	OrganizationID string
	CompanyID      string
	Approval       []ApprovalStatus
	Valid          *bool
	Search         string
	Page           int
	PageSize       int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
