package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/eventhub/pkg/response"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "email"
	ContextKeyRole   = "role"
)

// Identity is the authenticated caller extracted from a token
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// TokenValidator resolves a bearer token to an Identity
type TokenValidator func(ctx context.Context, token string) (*Identity, error)

// JWTAuth rejects requests without a valid bearer token
func JWTAuth(validate TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Abort(c, response.Unauthorized("authorization header is required"))
			return
		}

		id, err := validate(c.Request.Context(), token)
		if err != nil {
			response.Abort(c, response.Unauthorized("invalid or expired token"))
			return
		}

		setIdentity(c, id)
		c.Next()
	}
}

// OptionalJWTAuth sets the identity when a valid token is present and never rejects
func OptionalJWTAuth(validate TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if id, err := validate(c.Request.Context(), token); err == nil {
				setIdentity(c, id)
			}
		}
		c.Next()
	}
}

// RequireRoles allows only the listed roles; must run after JWTAuth
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			response.Abort(c, response.Unauthorized("authentication required"))
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Abort(c, response.Forbidden("you do not have permission to perform this action"))
	}
}

// GetUserID returns the authenticated user id
func GetUserID(c *gin.Context) (string, bool) {
	return getString(c, ContextKeyUserID)
}

// GetRole returns the authenticated user's role
func GetRole(c *gin.Context) (string, bool) {
	return getString(c, ContextKeyRole)
}

// GetEmail returns the authenticated user's email
func GetEmail(c *gin.Context) (string, bool) {
	return getString(c, ContextKeyEmail)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

func setIdentity(c *gin.Context, id *Identity) {
	c.Set(ContextKeyUserID, id.UserID)
	c.Set(ContextKeyEmail, id.Email)
	c.Set(ContextKeyRole, id.Role)
}

func getString(c *gin.Context, key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
