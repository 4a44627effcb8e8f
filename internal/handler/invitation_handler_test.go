package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/internal/service"
	"github.com/stretchr/testify/assert"
)

func setupInvitationRouter(svc *MockInvitationService, role string) *gin.Engine {
	h := NewInvitationHandler(svc)
	router := newTestRouter(role)
	invites := router.Group("/core/invite")
	{
		invites.GET("/", h.List)
		invites.POST("/", h.Create)
		invites.DELETE("/:id", h.Delete)
	}
	return router
}

func TestInvitationHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		serviceErr error
		wantStatus int
	}{
		{name: "created", body: map[string]any{"event_id": testEventID, "email": "f@example.com", "discount": 10}, wantStatus: http.StatusCreated},
		{name: "discount above 100", body: map[string]any{"event_id": testEventID, "email": "f@example.com", "discount": 150}, wantStatus: http.StatusBadRequest},
		{name: "bad email", body: map[string]any{"event_id": testEventID, "email": "nope"}, wantStatus: http.StatusBadRequest},
		{name: "not organizer", body: map[string]any{"event_id": testEventID, "email": "f@example.com"}, serviceErr: domain.ErrForbidden, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockInvitationService{
				InviteFunc: func(ctx context.Context, caller *service.Caller, req *dto.CreateInvitationRequest) (*domain.Invitation, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &domain.Invitation{ID: "inv-1", EventID: req.EventID, Email: req.Email, Discount: req.Discount}, nil
				},
			}
			w, _ := doRequest(t, setupInvitationRouter(svc, "organizer"), http.MethodPost, "/core/invite/", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestInvitationHandler_ListAndDelete(t *testing.T) {
	invID := "7e6d5c4b-3a29-4182-8f7e-6d5c4b3a2918"
	svc := &MockInvitationService{
		ListFunc: func(ctx context.Context, caller *service.Caller, q *dto.InvitationListQuery) ([]*domain.Invitation, error) {
			assert.Equal(t, testEventID, q.EventID)
			return []*domain.Invitation{{ID: invID}}, nil
		},
		DeleteFunc: func(ctx context.Context, caller *service.Caller, id string) error {
			if id != invID {
				return domain.ErrInvitationNotFound
			}
			return nil
		},
	}
	router := setupInvitationRouter(svc, "organizer")

	w, _ := doRequest(t, router, http.MethodGet, "/core/invite/?event_id="+testEventID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := doRequest(t, router, http.MethodDelete, "/core/invite/"+invID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "invitation deleted", env.Message)

	w, _ = doRequest(t, router, http.MethodDelete, "/core/invite/"+testEventID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
