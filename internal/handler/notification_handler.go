package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/internal/service"
	"github.com/prohmpiriya/eventhub/pkg/response"
	"github.com/prohmpiriya/eventhub/pkg/telemetry"
)

// NotificationHandler handles /core/notification requests
type NotificationHandler struct {
	notificationService service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /core/notification/
func (h *NotificationHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.notification.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	var q dto.NotificationListQuery
	if !bindQuery(c, span, &q) {
		return
	}

	items, err := h.notificationService.List(ctx, cl.UserID, &q)
	if err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Success(items))
}

// MarkRead handles PATCH /core/notification/
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.notification.mark_read")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	var req dto.MarkReadRequest
	if !bindJSON(c, span, &req) {
		return
	}

	resp, err := h.notificationService.MarkRead(ctx, cl.UserID, &req)
	if err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Success(resp))
}
