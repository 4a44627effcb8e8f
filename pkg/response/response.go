package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint returns. Exactly one of Data or
// Message is set.
type Response struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Status  int         `json:"status"`
}

// Success wraps data with 200
func Success(data interface{}) Response {
	return Response{Data: data, Status: http.StatusOK}
}

// Created wraps data with 201
func Created(data interface{}) Response {
	return Response{Data: data, Status: http.StatusCreated}
}

// Message returns a message-only envelope
func Message(status int, message string) Response {
	return Response{Message: message, Status: status}
}

// Error returns an error envelope
func Error(status int, message string) Response {
	return Response{Message: message, Status: status}
}

func BadRequest(message string) Response {
	return Error(http.StatusBadRequest, message)
}

func Unauthorized(message string) Response {
	return Error(http.StatusUnauthorized, message)
}

func Forbidden(message string) Response {
	return Error(http.StatusForbidden, message)
}

func NotFound(message string) Response {
	return Error(http.StatusNotFound, message)
}

func MethodNotAllowed() Response {
	return Error(http.StatusMethodNotAllowed, "method not allowed")
}

func InternalError(message string) Response {
	return Error(http.StatusInternalServerError, message)
}

// JSON writes r using its own status as the HTTP status
func JSON(c *gin.Context, r Response) {
	c.JSON(r.Status, r)
}

// Abort writes r and stops the handler chain
func Abort(c *gin.Context, r Response) {
	c.AbortWithStatusJSON(r.Status, r)
}
