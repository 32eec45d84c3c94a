package dto

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/erp-api/internal/models"
)

// CreateDocumentRequest creates an approvable document of any kind.
// SequenceID, when set, is used verbatim; LastID and Prefix steer the counter.
type CreateDocumentRequest struct {
	Title      string          `json:"title" validate:"max=200"`
	CompanyID  string          `json:"companyId" validate:"max=64"`
	Details    json.RawMessage `json:"details" validate:"required"`
	SequenceID string          `json:"sequenceId" validate:"max=64"`
	LastID     *int64          `json:"lastId" validate:"omitempty,gt=0"`
	Prefix     *string         `json:"prefix" validate:"omitempty,max=20"`
}

// UpdateDocumentRequest replaces a document's editable content. Any edit
// drops prior sign-offs; ForceRevision also bumps the -REV suffix.
type UpdateDocumentRequest struct {
	Title         string          `json:"title" validate:"max=200"`
	Details       json.RawMessage `json:"details" validate:"required"`
	ForceRevision bool            `json:"forceRevision"`
	Version       int64           `json:"version" validate:"gte=0"`
}

// UpdateApprovalRequest moves a document to another approval status.
type UpdateApprovalRequest struct {
	Approval        models.ApprovalStatus `json:"approval" validate:"required,approval_status"`
	ApprovalComment *string               `json:"approvalComment" validate:"omitempty,max=2000"`
	Version         int64                 `json:"version" validate:"gte=0"`
}

// ChangeValidityRequest toggles a document's valid flag.
type ChangeValidityRequest struct {
	Valid *bool `json:"valid" validate:"required"`
}

// DocumentQuery mirrors supported listing filters.
type DocumentQuery struct {
	Approval []models.ApprovalStatus
	Valid    *bool
	Search   string
	Page     int
	PageSize int
}

// NextIDResponse previews the next sequence id for a kind.
type NextIDResponse struct {
	Entity string `json:"entity"`
	Prefix string `json:"prefix"`
	LastID int64  `json:"lastId"`
	NextID string `json:"nextId"`
}

// RegisterValidations adds the custom tags used by request payloads.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("approval_status", func(fl validator.FieldLevel) bool {
		return models.ApprovalStatus(fl.Field().String()).Valid()
	})
}

// UpdateApprovalPolicyRequest sets every stage toggle of one feature.
type UpdateApprovalPolicyRequest struct {
	Reviewed     bool `json:"reviewed"`
	Verified     bool `json:"verified"`
	Acknowledged bool `json:"acknowledged"`
	Approved1    bool `json:"approved1"`
	Approved2    bool `json:"approved2"`
}

// NewValidator returns a validator with the custom tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = RegisterValidations(v)
	return v
}
