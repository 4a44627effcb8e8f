package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/repository"
	"github.com/prohmpiriya/eventhub/pkg/telemetry"
)

// WishlistService manages saved events
type WishlistService interface {
	List(ctx context.Context, userID string) ([]*domain.WishListItem, error)
	Add(ctx context.Context, userID, eventID string) (*domain.WishListItem, error)
	Remove(ctx context.Context, userID, eventID string) error
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	eventRepo    repository.EventRepository
}

// NewWishlistService creates a new WishlistService
func NewWishlistService(wishlistRepo repository.WishlistRepository, eventRepo repository.EventRepository) WishlistService {
	return &wishlistService{wishlistRepo: wishlistRepo, eventRepo: eventRepo}
}

// List returns the caller's active wishlist
func (s *wishlistService) List(ctx context.Context, userID string) ([]*domain.WishListItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.wishlist.list")
	defer span.End()

	items, err := s.wishlistRepo.ListActive(ctx, userID)
	return items, telemetry.RecordError(span, err)
}

// Add saves an event, reviving a removed entry. A missing event is a 400.
func (s *wishlistService) Add(ctx context.Context, userID, eventID string) (*domain.WishListItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.wishlist.add")
	defer span.End()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, domain.ErrUnknownEvent
		}
		return nil, telemetry.RecordError(span, err)
	}

	item := &domain.WishListItem{
		ID:      uuid.New().String(),
		UserID:  userID,
		EventID: event.ID,
		Event:   event,
	}
	if err := s.wishlistRepo.Add(ctx, item); err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	return item, nil
}

// Remove soft-deletes an entry
func (s *wishlistService) Remove(ctx context.Context, userID, eventID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.wishlist.remove")
	defer span.End()

	removed, err := s.wishlistRepo.Remove(ctx, userID, eventID)
	if err != nil {
		return telemetry.RecordError(span, err)
	}
	if !removed {
		return domain.ErrWishlistNotFound
	}
	return nil
}
