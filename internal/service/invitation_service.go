package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/internal/repository"
	"github.com/prohmpiriya/eventhub/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// InvitationService manages per-event discount invitations
type InvitationService interface {
	// List returns invitations for the caller's events when they organize,
	// and invitations addressed to them otherwise
	List(ctx context.Context, caller *Caller, q *dto.InvitationListQuery) ([]*domain.Invitation, error)
	// Invite updates or creates the invitation for (event, email)
	Invite(ctx context.Context, caller *Caller, req *dto.CreateInvitationRequest) (*domain.Invitation, error)
	Delete(ctx context.Context, caller *Caller, id string) error
}

type invitationService struct {
	invitationRepo repository.InvitationRepository
	eventRepo      repository.EventRepository
	userRepo       repository.UserRepository
	notifications  NotificationService
}

// NewInvitationService creates a new InvitationService
func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	eventRepo repository.EventRepository,
	userRepo repository.UserRepository,
	notifications NotificationService,
) InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		notifications:  notifications,
	}
}

// List returns the invitations visible to the caller
func (s *invitationService) List(ctx context.Context, caller *Caller, q *dto.InvitationListQuery) ([]*domain.Invitation, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.invitation.list")
	defer span.End()

	var (
		items []*domain.Invitation
		err   error
	)
	switch caller.Role {
	case domain.RoleAdmin:
		items, err = s.invitationRepo.ListByOrganizer(ctx, "", q.EventID)
	case domain.RoleOrganizer:
		items, err = s.invitationRepo.ListByOrganizer(ctx, caller.UserID, q.EventID)
	default:
		items, err = s.invitationRepo.ListForUser(ctx, caller.UserID, domain.NormalizeEmail(caller.Email))
	}
	return items, telemetry.RecordError(span, err)
}

// Invite upserts the invitation and notifies a registered invitee
func (s *invitationService) Invite(ctx context.Context, caller *Caller, req *dto.CreateInvitationRequest) (*domain.Invitation, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.invitation.invite")
	defer span.End()

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, domain.ErrUnknownEvent
		}
		return nil, telemetry.RecordError(span, err)
	}
	if !event.CanOrganize(caller.UserID, caller.Role) {
		return nil, domain.ErrForbidden
	}
	if event.IsCancelled {
		return nil, domain.ErrEventCancelled
	}

	inv := &domain.Invitation{
		ID:        uuid.New().String(),
		EventID:   event.ID,
		Email:     req.Email,
		Discount:  req.Discount,
		Message:   req.Message,
		CreatedBy: caller.UserID,
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	invitee, err := s.userRepo.GetByEmail(ctx, inv.Email)
	switch {
	case err == nil:
		inv.UserID = &invitee.ID
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, telemetry.RecordError(span, err)
	}

	if err := s.invitationRepo.Upsert(ctx, inv); err != nil {
		return nil, telemetry.RecordError(span, err)
	}

	span.SetAttributes(
		attribute.String("invitation_id", inv.ID),
		attribute.Bool("registered_invitee", inv.UserID != nil),
	)

	if inv.UserID != nil {
		msg := fmt.Sprintf("You are invited to %s", event.Name)
		if inv.Discount > 0 {
			msg = fmt.Sprintf("%s with a %.0f%% discount", msg, inv.Discount)
		}
		s.notifications.Notify(ctx, []string{*inv.UserID}, event.ID, domain.NotificationInvitation, msg)
	}
	return inv, nil
}

// Delete removes an invitation of an event the caller organizes
func (s *invitationService) Delete(ctx context.Context, caller *Caller, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.invitation.delete")
	defer span.End()

	inv, err := s.invitationRepo.GetByID(ctx, id)
	if err != nil {
		return telemetry.RecordError(span, err)
	}
	event, err := s.eventRepo.GetByID(ctx, inv.EventID)
	if err != nil {
		return telemetry.RecordError(span, err)
	}
	if !event.CanOrganize(caller.UserID, caller.Role) {
		return domain.ErrForbidden
	}
	return telemetry.RecordError(span, s.invitationRepo.Delete(ctx, id))
}
