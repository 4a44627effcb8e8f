package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/internal/service"
	"github.com/prohmpiriya/eventhub/pkg/response"
	"github.com/prohmpiriya/eventhub/pkg/telemetry"
)

// WishlistHandler handles /core/wishlist requests
type WishlistHandler struct {
	wishlistService service.WishlistService
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlistService service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// List handles GET /core/wishlist/
func (h *WishlistHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.wishlist.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}

	items, err := h.wishlistService.List(ctx, cl.UserID)
	if err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Success(items))
}

// Add handles POST /core/wishlist/
func (h *WishlistHandler) Add(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.wishlist.add")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	var req dto.AddWishlistRequest
	if !bindJSON(c, span, &req) {
		return
	}

	item, err := h.wishlistService.Add(ctx, cl.UserID, req.EventID)
	if err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Created(item))
}

// Remove handles DELETE /core/wishlist/:event_id. An entry that is not on
// the list is a 400, the same as any other unknown event reference.
func (h *WishlistHandler) Remove(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.wishlist.remove")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	eventID := c.Param("event_id")
	if _, err := uuid.Parse(eventID); err != nil {
		handleError(c, span, domain.ErrWishlistNotFound)
		return
	}

	if err := h.wishlistService.Remove(ctx, cl.UserID, eventID); err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Message(http.StatusOK, "removed from wishlist"))
}
