package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erp-api/internal/dto"
	"github.com/noah-isme/erp-api/internal/models"
	appErrors "github.com/noah-isme/erp-api/pkg/errors"
	"github.com/noah-isme/erp-api/pkg/response"
)

type documentService interface {
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateDocumentRequest) (*models.Document, error)
	Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.Document, error)
	List(ctx context.Context, actor *models.JWTClaims, query dto.DocumentQuery) ([]models.Document, *models.Pagination, error)
	Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateDocumentRequest) (*models.Document, error)
	Delete(ctx context.Context, actor *models.JWTClaims, id string) error
	ApprovalSheet(ctx context.Context, actor *models.JWTClaims, id string) ([]byte, string, error)
	History(ctx context.Context, actor *models.JWTClaims, id string) ([]models.ActivityLog, error)
}

type approvalService interface {
	UpdateApproval(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateApprovalRequest) (*models.Document, error)
	ChangeValidity(ctx context.Context, actor *models.JWTClaims, id string, req dto.ChangeValidityRequest) (*models.Document, error)
}

type sequencePreviewer interface {
	Peek(ctx context.Context, kind models.DocumentKind, organizationID string) (*dto.NextIDResponse, error)
}

// DocumentHandler exposes the REST endpoints of one document kind.
type DocumentHandler struct {
	kind      models.DocumentKind
	documents documentService
	approvals approvalService
	sequences sequencePreviewer
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(kind models.DocumentKind, documents documentService, approvals approvalService, sequences sequencePreviewer) *DocumentHandler {
	return &DocumentHandler{kind: kind, documents: documents, approvals: approvals, sequences: sequences}
}

// Register mounts the kind's routes under /<route>. approvers guards the
// approval and validity endpoints.
func (h *DocumentHandler) Register(rg *gin.RouterGroup, approvers ...gin.HandlerFunc) {
	g := rg.Group("/" + h.kind.Route)
	g.POST("", h.Create)
	g.GET("", h.List)
	if h.kind.Sequenced() {
		g.GET("/next-id", h.NextID)
	}
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/approval-sheet", h.ApprovalSheet)
	g.GET("/:id/activity", h.History)
	g.PUT("/updateapproval/:id", guarded(approvers, h.UpdateApproval)...)
	g.PUT("/changevalidation/:id", guarded(approvers, h.ChangeValidity)...)
}

func guarded(guards []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(guards)+1)
	chain = append(chain, guards...)
	return append(chain, handler)
}

// Create godoc
// @Summary Create an approvable document
// @Tags Documents
// @Accept json
// @Produce json
// @Param kind path string true "Document route (leaves, bookings, enquiries, quotes, offers)"
// @Param payload body dto.CreateDocumentRequest true "Document payload"
// @Success 201 {object} response.Envelope
// @Router /{kind} [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid %s payload", strings.ToLower(h.kind.DisplayName))))
		return
	}
	doc, err := h.documents.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fmt.Sprintf("%s created", h.kind.DisplayName), doc)
}

// List godoc
// @Summary List approvable documents
// @Tags Documents
// @Produce json
// @Param kind path string true "Document route"
// @Param approval query string false "Comma separated approval statuses"
// @Param valid query bool false "Filter by validity"
// @Param search query string false "Title or sequence id"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /{kind} [get]
func (h *DocumentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.DocumentQuery{
		Valid:    parseQueryBool(c, "valid"),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "limit", 20),
	}
	for _, status := range splitQueryList(c.Query("approval")) {
		query.Approval = append(query.Approval, models.ApprovalStatus(strings.ToLower(status)))
	}
	docs, pagination, err := h.documents.List(c.Request.Context(), claims, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("%s list", h.kind.DisplayName), docs, pagination)
}

// Get godoc
// @Summary Get an approvable document
// @Tags Documents
// @Produce json
// @Param kind path string true "Document route"
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /{kind}/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	doc, err := h.documents.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, fmt.Sprintf("%s found", h.kind.DisplayName), doc)
}

// Update godoc
// @Summary Edit a document, dropping prior sign-offs
// @Tags Documents
// @Accept json
// @Produce json
// @Param kind path string true "Document route"
// @Param id path string true "Document ID"
// @Param payload body dto.UpdateDocumentRequest true "Document payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /{kind}/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid %s payload", strings.ToLower(h.kind.DisplayName))))
		return
	}
	doc, err := h.documents.Update(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, fmt.Sprintf("%s updated", h.kind.DisplayName), doc)
}

// Delete godoc
// @Summary Delete a document
// @Tags Documents
// @Param kind path string true "Document route"
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /{kind}/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.documents.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, fmt.Sprintf("%s deleted", h.kind.DisplayName), gin.H{"id": c.Param("id")})
}

// UpdateApproval godoc
// @Summary Move a document to another approval status
// @Tags Approvals
// @Accept json
// @Produce json
// @Param kind path string true "Document route"
// @Param id path string true "Document ID"
// @Param payload body dto.UpdateApprovalRequest true "Approval payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /{kind}/updateapproval/{id} [put]
func (h *DocumentHandler) UpdateApproval(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid approval payload"))
		return
	}
	req.Approval = models.ApprovalStatus(strings.ToLower(strings.TrimSpace(string(req.Approval))))
	doc, err := h.approvals.UpdateApproval(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, fmt.Sprintf("%s approval updated", h.kind.DisplayName), doc)
}

// ChangeValidity godoc
// @Summary Toggle a document's validity
// @Tags Approvals
// @Accept json
// @Produce json
// @Param kind path string true "Document route"
// @Param id path string true "Document ID"
// @Param payload body dto.ChangeValidityRequest true "Validity payload"
// @Success 200 {object} response.Envelope
// @Router /{kind}/changevalidation/{id} [put]
func (h *DocumentHandler) ChangeValidity(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ChangeValidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid validity payload"))
		return
	}
	doc, err := h.approvals.ChangeValidity(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, fmt.Sprintf("%s validity updated", h.kind.DisplayName), doc)
}

// ApprovalSheet godoc
// @Summary Download the printable approval sheet
// @Tags Documents
// @Produce application/pdf
// @Param kind path string true "Document route"
// @Param id path string true "Document ID"
// @Success 200 {file} binary
// @Router /{kind}/{id}/approval-sheet [get]
func (h *DocumentHandler) ApprovalSheet(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	pdf, filename, err := h.documents.ApprovalSheet(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// History godoc
// @Summary List the activity trail of a document
// @Tags Documents
// @Produce json
// @Param kind path string true "Document route"
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /{kind}/{id}/activity [get]
func (h *DocumentHandler) History(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	entries, err := h.documents.History(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, fmt.Sprintf("%s activity", h.kind.DisplayName), entries)
}

// NextID godoc
// @Summary Preview the next sequence id
// @Tags Documents
// @Produce json
// @Param kind path string true "Document route (bookings, enquiries, quotes)"
// @Success 200 {object} response.Envelope
// @Router /{kind}/next-id [get]
func (h *DocumentHandler) NextID(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	preview, err := h.sequences.Peek(c.Request.Context(), h.kind, claims.OrganizationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "next sequence id", preview)
}
