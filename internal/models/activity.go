package models

import "time"

// Activity actions recorded against approvable documents.
const (
	ActivityCreate   = "create"
	ActivityUpdate   = "update"
	ActivityDelete   = "delete"
	ActivityApproval = "approval"
	ActivityValidity = "validity"
)

// ActivityLog is one audit trail entry.
type ActivityLog struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"userId"`
	Action         string    `db:"action" json:"action"`
	Type           string    `db:"type" json:"type"`
	ActionID       string    `db:"action_id" json:"actionId"`
	OrganizationID string    `db:"organization_id" json:"organizationId"`
	CompanyID      string    `db:"company_id" json:"companyId"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
