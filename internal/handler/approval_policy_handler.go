package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erp-api/internal/dto"
	"github.com/noah-isme/erp-api/internal/models"
	appErrors "github.com/noah-isme/erp-api/pkg/errors"
	"github.com/noah-isme/erp-api/pkg/response"
)

type approvalPolicyService interface {
	List(ctx context.Context, organizationID string) ([]models.ApprovalPolicy, error)
	Update(ctx context.Context, organizationID, feature string, req dto.UpdateApprovalPolicyRequest) (*models.ApprovalPolicy, error)
}

// ApprovalPolicyHandler manages per-organization approval policies.
type ApprovalPolicyHandler struct {
	service approvalPolicyService
}

// NewApprovalPolicyHandler constructs the handler.
func NewApprovalPolicyHandler(svc approvalPolicyService) *ApprovalPolicyHandler {
	return &ApprovalPolicyHandler{service: svc}
}

// List godoc
// @Summary List approval policies of the caller's organization
// @Tags Approval Policies
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /approval-policies [get]
func (h *ApprovalPolicyHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	policies, err := h.service.List(c.Request.Context(), claims.OrganizationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "approval policies", policies)
}

// Update godoc
// @Summary Toggle the sign-off stages of one feature
// @Tags Approval Policies
// @Accept json
// @Produce json
// @Param feature path string true "Feature key"
// @Param payload body dto.UpdateApprovalPolicyRequest true "Stage toggles"
// @Success 200 {object} response.Envelope
// @Router /approval-policies/{feature} [put]
func (h *ApprovalPolicyHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateApprovalPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid approval policy payload"))
		return
	}
	feature := strings.ToLower(strings.TrimSpace(c.Param("feature")))
	policy, err := h.service.Update(c.Request.Context(), claims.OrganizationID, feature, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "approval policy updated", policy)
}
