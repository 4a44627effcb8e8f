package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSubscriptionRouter(svc *MockSubscriptionService, role string) *gin.Engine {
	h := NewSubscriptionHandler(svc)
	router := newTestRouter(role)
	subs := router.Group("/core/subscription")
	{
		subs.GET("/", h.List)
		subs.POST("/", h.Create)
		subs.POST("/:id/cancel", h.Cancel)
	}
	return router
}

func TestSubscriptionHandler_Create(t *testing.T) {
	paymentID := "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"

	tests := []struct {
		name       string
		role       string
		body       any
		serviceErr error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "paid with card",
			role:       "subscriber",
			body:       map[string]any{"event_id": testEventID, "tickets": 2, "card_token": "tok_visa", "card_last4": "4242"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unauthenticated",
			body:       map[string]any{"event_id": testEventID, "tickets": 2},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "zero tickets",
			role:       "subscriber",
			body:       map[string]any{"event_id": testEventID, "tickets": 0},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "tickets is required",
		},
		{
			name:       "bad card digits",
			role:       "subscriber",
			body:       map[string]any{"event_id": testEventID, "tickets": 1, "card_last4": "42x2"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "card_last4",
		},
		{
			name:       "unknown event is a bad request",
			role:       "subscriber",
			body:       map[string]any{"event_id": testEventID, "tickets": 1},
			serviceErr: domain.ErrUnknownEvent,
			wantStatus: http.StatusBadRequest,
			wantMsg:    domain.ErrUnknownEvent.Error(),
		},
		{
			name:       "sold out",
			role:       "subscriber",
			body:       map[string]any{"event_id": testEventID, "tickets": 3},
			serviceErr: domain.ErrNotEnoughTickets,
			wantStatus: http.StatusBadRequest,
			wantMsg:    domain.ErrNotEnoughTickets.Error(),
		},
		{
			name:       "declined card",
			role:       "subscriber",
			body:       map[string]any{"event_id": testEventID, "tickets": 1, "card_token": "tok_chargeDeclined"},
			serviceErr: fmt.Errorf("%w: card_declined", domain.ErrPaymentFailed),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "payment failed: card_declined",
		},
		{
			name:       "unexpected failure",
			role:       "subscriber",
			body:       map[string]any{"event_id": testEventID, "tickets": 1},
			serviceErr: fmt.Errorf("failed to create subscription: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockSubscriptionService{
				SubscribeFunc: func(ctx context.Context, caller *service.Caller, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &dto.SubscriptionResponse{
						Subscription: &domain.Subscription{ID: "sub-1", UserID: caller.UserID, EventID: req.EventID, PaymentID: &paymentID, Tickets: req.Tickets},
						Payment:      &domain.Payment{ID: paymentID, Amount: 50, Status: domain.PaymentStatusSuccessful, CardLast4: req.CardLast4},
						Balance:      domain.NewBalance(req.EventID, 50, 0),
					}, nil
				},
			}
			w, env := doRequest(t, setupSubscriptionRouter(svc, tt.role), http.MethodPost, "/core/subscription/", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus, env.Status)
			if tt.wantMsg != "" {
				assert.Contains(t, env.Message, tt.wantMsg)
				return
			}

			var resp struct {
				Subscription map[string]any `json:"subscription"`
				Payment      map[string]any `json:"payment"`
				Balance      map[string]any `json:"balance"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &resp))
			assert.Equal(t, float64(2), resp.Subscription["tickets"])
			assert.Equal(t, "SUCCESSFUL", resp.Payment["status"])
			assert.Equal(t, float64(50), resp.Balance["total"])
		})
	}
}

func TestSubscriptionHandler_List(t *testing.T) {
	var got *dto.SubscriptionListQuery
	svc := &MockSubscriptionService{
		ListFunc: func(ctx context.Context, userID string, q *dto.SubscriptionListQuery) ([]*domain.Subscription, error) {
			got = q
			return []*domain.Subscription{{ID: "sub-1", UserID: userID}}, nil
		},
	}
	router := setupSubscriptionRouter(svc, "subscriber")

	w, _ := doRequest(t, router, http.MethodGet, "/core/subscription/?event_id="+testEventID+"&include_cancelled=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testEventID, got.EventID)
	assert.True(t, got.IncludeCancelled)

	w, _ = doRequest(t, router, http.MethodGet, "/core/subscription/?event_id=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionHandler_Cancel(t *testing.T) {
	subID := "1d2c3b4a-5f6e-4d7c-8b9a-0f1e2d3c4b5a"
	svc := &MockSubscriptionService{
		CancelFunc: func(ctx context.Context, caller *service.Caller, id string) (*dto.SubscriptionResponse, error) {
			switch id {
			case subID:
				return &dto.SubscriptionResponse{
					Subscription: &domain.Subscription{ID: id, IsCancelled: true},
					Balance:      domain.NewBalance(testEventID, 50, 50),
				}, nil
			case testEventID:
				return nil, domain.ErrForbidden
			default:
				return nil, domain.ErrSubscriptionNotFound
			}
		},
	}
	router := setupSubscriptionRouter(svc, "subscriber")

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{name: "cancelled", id: subID, wantStatus: http.StatusOK},
		{name: "not owner", id: testEventID, wantStatus: http.StatusForbidden},
		{name: "missing", id: testUserID, wantStatus: http.StatusNotFound},
		{name: "malformed id", id: "42", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doRequest(t, router, http.MethodPost, "/core/subscription/"+tt.id+"/cancel", nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var resp dto.SubscriptionResponse
				require.NoError(t, json.Unmarshal(env.Data, &resp))
				assert.True(t, resp.Subscription.IsCancelled)
				assert.Equal(t, 0.0, resp.Balance.Total)
			}
		})
	}
}
