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

// PaymentHandler handles /payment requests
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Create handles POST /payment/
func (h *PaymentHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.payment.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	var req dto.CreatePaymentRequest
	if !bindJSON(c, span, &req) {
		return
	}

	payment, err := h.paymentService.CreatePayment(ctx, cl.UserID, cl.Email, &req)
	if err != nil {
		handleError(c, span, err)
		return
	}

	span.SetAttributes(
		attribute.String("payment_id", payment.ID),
		attribute.Float64("amount", payment.Amount),
	)
	span.SetStatus(codes.Ok, "")
	response.JSON(c, response.Created(payment))
}

// List handles GET /payment/
func (h *PaymentHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.payment.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}

	payments, err := h.paymentService.ListPayments(ctx, cl.UserID)
	if err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Success(payments))
}

// Get handles GET /payment/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.payment.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "payment")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetPayment(ctx, id, cl.UserID)
	if err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Success(payment))
}
