package models

import "time"

// Notification is an in-app message raised when a document moves through approval.
type Notification struct {
	ID             string          `db:"id" json:"id"`
	OrganizationID string          `db:"organization_id" json:"organizationId"`
	CompanyID      string          `db:"company_id" json:"companyId"`
	Feature        string          `db:"feature" json:"feature"`
	Stage          ApprovalStatus  `db:"stage" json:"stage"`
	NextLevel      *ApprovalStatus `db:"next_level" json:"nextLevel,omitempty"`
	Title          string          `db:"title" json:"title"`
	Message        string          `db:"message" json:"message"`
	Link           string          `db:"link" json:"link"`
	DocumentID     string          `db:"document_id" json:"documentId"`
	ReadAt         *time.Time      `db:"read_at" json:"readAt,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
}

// NotificationFilter constrains notification listing.
type NotificationFilter struct {
	OrganizationID string
	CompanyID      string
	UnreadOnly     bool
	Limit          int
	Offset         int
}
