package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/internal/service"
	"github.com/prohmpiriya/eventhub/pkg/response"
	"github.com/prohmpiriya/eventhub/pkg/telemetry"
)

// InvitationHandler handles /core/invite requests
type InvitationHandler struct {
	invitationService service.InvitationService
}

// NewInvitationHandler creates a new InvitationHandler
func NewInvitationHandler(invitationService service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// List handles GET /core/invite/
func (h *InvitationHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.invitation.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	var q dto.InvitationListQuery
	if !bindQuery(c, span, &q) {
		return
	}

	items, err := h.invitationService.List(ctx, cl, &q)
	if err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Success(items))
}

// Create handles POST /core/invite/. Re-inviting an email updates the invitation.
func (h *InvitationHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.invitation.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	var req dto.CreateInvitationRequest
	if !bindJSON(c, span, &req) {
		return
	}

	inv, err := h.invitationService.Invite(ctx, cl, &req)
	if err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Created(inv))
}

// Delete handles DELETE /core/invite/:id
func (h *InvitationHandler) Delete(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.invitation.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "invitation")
	if !ok {
		return
	}

	if err := h.invitationService.Delete(ctx, cl, id); err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Message(http.StatusOK, "invitation deleted"))
}
