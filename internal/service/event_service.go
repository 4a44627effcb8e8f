package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/internal/repository"
	"github.com/prohmpiriya/eventhub/pkg/logger"
	"github.com/prohmpiriya/eventhub/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	defaultEventLimit = 20
	maxEventLimit     = 100
)

// Caller identifies the authenticated user making a request
type Caller struct {
	UserID string
	Email  string
	Role   domain.Role
}

// EventService manages events
type EventService interface {
	List(ctx context.Context, caller *Caller, q *dto.EventListQuery) (*dto.EventListResponse, error)
	Get(ctx context.Context, caller *Caller, id string) (*domain.EventView, error)
	Create(ctx context.Context, caller *Caller, req *dto.CreateEventRequest) (*domain.Event, error)
	Update(ctx context.Context, caller *Caller, id string, req *dto.UpdateEventRequest) (*domain.Event, error)
	// Cancel cancels the event and notifies its subscribers
	Cancel(ctx context.Context, caller *Caller, id string) (*domain.Event, error)
}

type eventService struct {
	eventRepo     repository.EventRepository
	notifications NotificationService
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repository.EventRepository, notifications NotificationService) EventService {
	return &eventService{
		eventRepo:     eventRepo,
		notifications: notifications,
	}
}

func viewerID(caller *Caller) string {
	if caller == nil {
		return ""
	}
	return caller.UserID
}

// List returns annotated events matching the query
func (s *eventService) List(ctx context.Context, caller *Caller, q *dto.EventListQuery) (*dto.EventListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list")
	defer span.End()

	filter := &domain.EventFilter{
		Search:           q.Search,
		OrganizerID:      q.OrganizerID,
		UpcomingOnly:     q.Upcoming,
		AvailableOnly:    q.Available,
		IncludeCancelled: q.IncludeCancelled,
		ViewerID:         viewerID(caller),
		Limit:            q.Limit,
		Offset:           q.Offset,
	}
	if q.Mine {
		if caller == nil {
			return nil, domain.ErrInvalidToken
		}
		filter.OrganizerID = caller.UserID
		filter.IncludeCancelled = true
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultEventLimit
	}
	if filter.Limit > maxEventLimit {
		filter.Limit = maxEventLimit
	}

	items, total, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}

	span.SetAttributes(attribute.Int("total", total))
	return &dto.EventListResponse{
		Items:  items,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// Get returns one annotated event
func (s *eventService) Get(ctx context.Context, caller *Caller, id string) (*domain.EventView, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	view, err := s.eventRepo.GetView(ctx, id, viewerID(caller))
	return view, telemetry.RecordError(span, err)
}

// Create creates an event owned by the caller
func (s *eventService) Create(ctx context.Context, caller *Caller, req *dto.CreateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	if !caller.Role.CanManageEvents() {
		return nil, domain.ErrForbidden
	}

	ts := time.Now()
	event := &domain.Event{
		ID:          uuid.New().String(),
		OrganizerID: caller.UserID,
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		StartAt:     req.StartAt.UTC(),
		EndAt:       req.EndAt.UTC(),
		Capacity:    req.Capacity,
		TicketPrice: domain.RoundMoney(req.TicketPrice),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, telemetry.RecordError(span, err)
	}

	span.SetAttributes(attribute.String("event_id", event.ID))
	return event, nil
}

func (s *eventService) loadOwned(ctx context.Context, caller *Caller, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.CanOrganize(caller.UserID, caller.Role) {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

// Update applies the provided fields to an event the caller organizes
func (s *eventService) Update(ctx context.Context, caller *Caller, id string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer span.End()

	event, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	if event.IsCancelled {
		return nil, domain.ErrEventCancelled
	}

	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.StartAt != nil {
		event.StartAt = req.StartAt.UTC()
	}
	if req.EndAt != nil {
		event.EndAt = req.EndAt.UTC()
	}
	if req.Capacity != nil {
		event.Capacity = *req.Capacity
	}
	if req.TicketPrice != nil {
		event.TicketPrice = domain.RoundMoney(*req.TicketPrice)
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, telemetry.RecordError(span, err)
	}

	subscribers, err := s.eventRepo.SubscriberIDs(ctx, id)
	if err != nil {
		logger.WithContext(ctx).Warn("failed to load subscribers for update notice", zap.String("event_id", id), zap.Error(err))
		return event, nil
	}
	s.notifications.Notify(ctx, subscribers, id, domain.NotificationEventUpdated,
		fmt.Sprintf("%s has been updated", event.Name))
	return event, nil
}

// Cancel cancels an event and notifies subscribers
func (s *eventService) Cancel(ctx context.Context, caller *Caller, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.cancel")
	defer span.End()

	event, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	if event.IsCancelled {
		return nil, domain.ErrEventAlreadyCancelled
	}

	if err := s.eventRepo.Cancel(ctx, id); err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	event.IsCancelled = true

	subscribers, err := s.eventRepo.SubscriberIDs(ctx, id)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	s.notifications.Notify(ctx, subscribers, id, domain.NotificationEventCancelled,
		fmt.Sprintf("%s has been cancelled", event.Name))

	span.SetAttributes(attribute.Int("subscribers_notified", len(subscribers)))
	return event, nil
}
