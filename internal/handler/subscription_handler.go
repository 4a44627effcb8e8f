package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/internal/service"
	"github.com/prohmpiriya/eventhub/pkg/response"
	"github.com/prohmpiriya/eventhub/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SubscriptionHandler handles /core/subscription requests
type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// List handles GET /core/subscription/
func (h *SubscriptionHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.subscription.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	var q dto.SubscriptionListQuery
	if !bindQuery(c, span, &q) {
		return
	}

	subs, err := h.subscriptionService.List(ctx, cl.UserID, &q)
	if err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Success(subs))
}

// Create handles POST /core/subscription/
func (h *SubscriptionHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.subscription.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	var req dto.CreateSubscriptionRequest
	if !bindJSON(c, span, &req) {
		return
	}

	span.SetAttributes(
		attribute.String("user_id", cl.UserID),
		attribute.String("event_id", req.EventID),
		attribute.Int("tickets", req.Tickets),
	)

	resp, err := h.subscriptionService.Subscribe(ctx, cl, &req)
	if err != nil {
		handleError(c, span, err)
		return
	}

	span.SetAttributes(attribute.String("subscription_id", resp.Subscription.ID))
	span.SetStatus(codes.Ok, "")
	response.JSON(c, response.Created(resp))
}

// Cancel handles POST /core/subscription/:id/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.subscription.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "subscription")
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("subscription_id", id))

	resp, err := h.subscriptionService.Cancel(ctx, cl, id)
	if err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Success(resp))
}
