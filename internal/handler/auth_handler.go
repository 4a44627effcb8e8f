package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/internal/service"
	"github.com/prohmpiriya/eventhub/pkg/response"
	"github.com/prohmpiriya/eventhub/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const resetRequestedMessage = "if the email is registered, a reset link has been sent"

// AuthHandler handles /authentication requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /authentication/registration
func (h *AuthHandler) Register(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.register")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.RegisterRequest
	if !bindJSON(c, span, &req) {
		return
	}

	resp, err := h.authService.Register(ctx, &req)
	if err != nil {
		handleError(c, span, err)
		return
	}

	span.SetAttributes(attribute.String("user_id", resp.User.ID))
	span.SetStatus(codes.Ok, "")
	response.JSON(c, response.Created(resp))
}

// Login handles POST /authentication/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.login")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.LoginRequest
	if !bindJSON(c, span, &req) {
		return
	}

	resp, err := h.authService.Login(ctx, &req)
	if err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Success(resp))
}

// ChangePassword handles POST /authentication/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.change_password")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !bindJSON(c, span, &req) {
		return
	}

	if err := h.authService.ChangePassword(ctx, cl.UserID, &req); err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Message(http.StatusOK, "password changed"))
}

// ResetPassword handles POST /authentication/reset-password.
// It answers the same way whether or not the email exists.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.reset_password")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.ResetPasswordRequest
	if !bindJSON(c, span, &req) {
		return
	}

	if err := h.authService.RequestPasswordReset(ctx, req.Email); err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Message(http.StatusOK, resetRequestedMessage))
}

// ConfirmResetPassword handles POST /authentication/reset-password/confirm
func (h *AuthHandler) ConfirmResetPassword(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.confirm_reset_password")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.ConfirmResetPasswordRequest
	if !bindJSON(c, span, &req) {
		return
	}

	if err := h.authService.ConfirmPasswordReset(ctx, &req); err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Message(http.StatusOK, "password has been reset"))
}

// GetProfile handles GET /authentication/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.get_profile")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}

	resp, err := h.authService.GetProfile(ctx, cl.UserID)
	if err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Success(resp))
}

// UpdateProfile handles PATCH /authentication/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.update_profile")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(c, span, &req) {
		return
	}

	resp, err := h.authService.UpdateProfile(ctx, cl.UserID, &req)
	if err != nil {
		handleError(c, span, err)
		return
	}
	response.JSON(c, response.Success(resp))
}
