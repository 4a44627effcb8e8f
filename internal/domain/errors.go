package domain

import "errors"

var (
	// Auth errors
	ErrUserAlreadyExists  = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user is inactive")
	ErrGuestLogin         = errors.New("guest accounts cannot log in, please complete registration")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrWrongPassword      = errors.New("old password is incorrect")
	ErrInvalidResetToken  = errors.New("reset token is invalid or expired")
	ErrWeakPassword       = errors.New("password must be at least 8 characters and contain upper case, lower case and a digit")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrInvalidRole        = errors.New("invalid role")

	// Permission errors
	ErrForbidden = errors.New("you do not have permission to perform this action")

	// Event errors
	ErrEventNotFound         = errors.New("event not found")
	ErrInvalidEventName      = errors.New("event name is required")
	ErrEventCancelled        = errors.New("event is cancelled")
	ErrEventStarted          = errors.New("event has already started")
	ErrInvalidEventDates     = errors.New("event end must be after its start")
	ErrInvalidCapacity       = errors.New("capacity must be greater than zero")
	ErrCapacityBelowSold     = errors.New("capacity cannot be lower than tickets already sold")
	ErrInvalidTicketPrice    = errors.New("ticket price cannot be negative")
	ErrEventAlreadyCancelled = errors.New("event is already cancelled")

	// Subscription errors
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrInvalidTickets        = errors.New("tickets must be greater than zero")
	ErrNotEnoughTickets      = errors.New("not enough tickets available")
	ErrPaymentRequired       = errors.New("payment is required for this event")
	ErrSubscriptionCancelled = errors.New("subscription is already cancelled")

	// Payment errors
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPaymentFailed       = errors.New("payment failed")
	ErrPaymentNotUsable    = errors.New("payment cannot be used for this subscription")
	ErrFreeEvent           = errors.New("event is free, no payment needed")
	ErrInvalidPaymentState = errors.New("invalid payment status transition")

	// Invitation errors
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvalidDiscount    = errors.New("discount must be between 0 and 100")
	ErrInvalidEmail       = errors.New("invalid email")

	// Notification errors
	ErrNoNotificationsSelected = errors.New("provide ids or set all to true")

	// Wishlist errors
	ErrWishlistNotFound = errors.New("event is not in the wishlist")
	ErrUnknownEvent     = errors.New("event does not exist")
)

// IsNotFoundError reports errors that map to 404 on path lookups
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrSubscriptionNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrInvitationNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsValidationError reports business-rule and input failures (400)
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrUserAlreadyExists, ErrWrongPassword, ErrInvalidResetToken, ErrWeakPassword, ErrPasswordTooLong, ErrInvalidRole,
		ErrInvalidEventName, ErrEventCancelled, ErrEventStarted, ErrInvalidEventDates, ErrInvalidCapacity, ErrCapacityBelowSold,
		ErrInvalidTicketPrice, ErrEventAlreadyCancelled,
		ErrInvalidTickets, ErrNotEnoughTickets, ErrPaymentRequired, ErrSubscriptionCancelled,
		ErrPaymentFailed, ErrPaymentNotUsable, ErrFreeEvent, ErrInvalidPaymentState,
		ErrInvalidDiscount, ErrInvalidEmail, ErrNoNotificationsSelected, ErrWishlistNotFound, ErrUnknownEvent,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsAuthError reports authentication failures (401)
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired)
}

// IsForbiddenError reports authorization failures (403)
func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrUserInactive) ||
		errors.Is(err, ErrGuestLogin)
}
