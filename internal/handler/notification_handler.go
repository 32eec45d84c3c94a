package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erp-api/internal/models"
	appErrors "github.com/noah-isme/erp-api/pkg/errors"
	"github.com/noah-isme/erp-api/pkg/response"
)

type notificationService interface {
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error)
	MarkRead(ctx context.Context, organizationID, id string) error
}

// NotificationHandler serves the in-app notification inbox.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(svc notificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary List approval notifications
// @Tags Notifications
// @Produce json
// @Param unread query bool false "Only unread notifications"
// @Param limit query int false "Maximum rows"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.NotificationFilter{
		OrganizationID: claims.OrganizationID,
		CompanyID:      c.Query("companyId"),
		Limit:          parseQueryInt(c, "limit", 50),
		Offset:         parseQueryInt(c, "offset", 0),
	}
	if unread := parseQueryBool(c, "unread"); unread != nil {
		filter.UnreadOnly = *unread
	}
	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "notifications", items, nil)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id := c.Param("id")
	if err := h.service.MarkRead(c.Request.Context(), claims.OrganizationID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "notification marked as read", gin.H{"id": id})
}
