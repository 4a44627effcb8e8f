package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/pkg/middleware"
	"github.com/stretchr/testify/require"
)

const (
	testUserID  = "6f1c2b7e-3d4a-4c5b-9e8f-0a1b2c3d4e5f"
	testEventID = "0b9d1e2f-4a5b-4c6d-8e7f-9a0b1c2d3e4f"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := dto.RegisterValidators(); err != nil {
		panic(err)
	}
}

// envelope is the decoded response body
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
}

// newTestRouter returns an engine that authenticates every request as role,
// or leaves it anonymous when role is empty
func newTestRouter(role string) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	if role != "" {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextKeyUserID, testUserID)
			c.Set(middleware.ContextKeyEmail, "user@example.com")
			c.Set(middleware.ContextKeyRole, role)
			c.Next()
		})
	}
	return router
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}
