package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/core/event/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("/core/event/:id", "GET", "200"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/core/event/abc", nil))
	require.Equal(t, http.StatusOK, w.Code)

	after := testutil.ToFloat64(RequestsTotal.WithLabelValues("/core/event/:id", "GET", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordPayment(t *testing.T) {
	before := testutil.ToFloat64(PaymentsTotal.WithLabelValues("mock", "SUCCESSFUL"))
	RecordPayment("mock", "SUCCESSFUL", 12.5)
	assert.Equal(t, before+1, testutil.ToFloat64(PaymentsTotal.WithLabelValues("mock", "SUCCESSFUL")))
}

func TestRecordNotification(t *testing.T) {
	before := testutil.ToFloat64(NotificationsPublished.WithLabelValues("invitation", "error"))
	RecordNotification("invitation", errors.New("broker down"))
	assert.Equal(t, before+1, testutil.ToFloat64(NotificationsPublished.WithLabelValues("invitation", "error")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	RecordSubscription("created", 2)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "eventhub_tickets_sold_total")
}
