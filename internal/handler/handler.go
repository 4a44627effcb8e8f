package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/internal/service"
	"github.com/prohmpiriya/eventhub/pkg/logger"
	"github.com/prohmpiriya/eventhub/pkg/middleware"
	"github.com/prohmpiriya/eventhub/pkg/response"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// handleError maps domain errors onto the response envelope
func handleError(c *gin.Context, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	switch {
	case domain.IsNotFoundError(err):
		response.JSON(c, response.NotFound(err.Error()))
	case domain.IsValidationError(err):
		response.JSON(c, response.BadRequest(err.Error()))
	case domain.IsAuthError(err):
		response.JSON(c, response.Unauthorized(err.Error()))
	case domain.IsForbiddenError(err):
		response.JSON(c, response.Forbidden(err.Error()))
	default:
		logger.WithContext(c.Request.Context()).Error("unhandled error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.JSON(c, response.InternalError("internal server error"))
	}
}

// bindJSON binds the body and writes a 400 on failure
func bindJSON(c *gin.Context, span trace.Span, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.JSON(c, response.BadRequest(dto.ValidationMessage(err)))
		return false
	}
	return true
}

// bindQuery binds query parameters and writes a 400 on failure
func bindQuery(c *gin.Context, span trace.Span, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid query")
		response.JSON(c, response.BadRequest(dto.ValidationMessage(err)))
		return false
	}
	return true
}

// pathID returns a UUID path parameter. Anything else cannot exist, so 404.
func pathID(c *gin.Context, name, resource string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		response.JSON(c, response.NotFound(resource+" not found"))
		return "", false
	}
	return id, true
}

// caller returns the authenticated caller, or nil for anonymous requests
func caller(c *gin.Context) *service.Caller {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil
	}
	email, _ := middleware.GetEmail(c)
	role, _ := middleware.GetRole(c)
	return &service.Caller{UserID: userID, Email: email, Role: domain.Role(role)}
}

// mustCaller is caller for routes behind JWTAuth; it writes a 401 if missing
func mustCaller(c *gin.Context) (*service.Caller, bool) {
	cl := caller(c)
	if cl == nil {
		response.JSON(c, response.Unauthorized("authentication required"))
		return nil, false
	}
	return cl, true
}
