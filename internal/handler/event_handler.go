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

// EventHandler handles /core/event requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List handles GET /core/event/
func (h *EventHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var q dto.EventListQuery
	if !bindQuery(c, span, &q) {
		return
	}

	resp, err := h.eventService.List(ctx, caller(c), &q)
	if err != nil {
		handleError(c, span, err)
		return
	}

	span.SetAttributes(attribute.Int("total", resp.Total))
	response.JSON(c, response.Success(resp))
}

// Get handles GET /core/event/:id
func (h *EventHandler) Get(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id, ok := pathID(c, "id", "event")
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("event_id", id))

	view, err := h.eventService.Get(ctx, caller(c), id)
	if err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Success(view))
}

// Create handles POST /core/event/
func (h *EventHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	var req dto.CreateEventRequest
	if !bindJSON(c, span, &req) {
		return
	}

	event, err := h.eventService.Create(ctx, cl, &req)
	if err != nil {
		handleError(c, span, err)
		return
	}

	span.SetAttributes(attribute.String("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	response.JSON(c, response.Created(event))
}

// Update handles PATCH /core/event/:id
func (h *EventHandler) Update(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "event")
	if !ok {
		return
	}
	var req dto.UpdateEventRequest
	if !bindJSON(c, span, &req) {
		return
	}

	event, err := h.eventService.Update(ctx, cl, id, &req)
	if err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Success(event))
}

// Cancel handles POST /core/event/:id/cancel
func (h *EventHandler) Cancel(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "event")
	if !ok {
		return
	}

	event, err := h.eventService.Cancel(ctx, cl, id)
	if err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Success(event))
}
