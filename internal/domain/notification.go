package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind classifies a notification
type NotificationKind string

const (
	NotificationInvitation     NotificationKind = "invitation"
	NotificationEventCancelled NotificationKind = "event_cancelled"
	NotificationEventUpdated   NotificationKind = "event_updated"
	NotificationSubscribed     NotificationKind = "subscribed"
	NotificationRefunded       NotificationKind = "refunded"
)

// Notification is a per-user message with a read flag
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	EventID   *string          `json:"event_id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotificationMessage is the payload published to the notifications topic
type NotificationMessage struct {
	MessageID string           `json:"message_id"`
	UserIDs   []string         `json:"user_ids"`
	EventID   string           `json:"event_id,omitempty"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}

// PasswordResetMessage is the payload published when a reset is requested
type PasswordResetMessage struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

var notificationNamespace = uuid.MustParse("8f14e45f-ceea-467f-a0e6-f1d7b1d5c2a4")

// NewNotificationMessage builds a message addressed to userIDs
func NewNotificationMessage(userIDs []string, eventID string, kind NotificationKind, message string) *NotificationMessage {
	return &NotificationMessage{
		MessageID: uuid.New().String(),
		UserIDs:   userIDs,
		EventID:   eventID,
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}

// Expand returns one notification per recipient. Ids derive from the
// message id so redelivery produces the same rows.
func (m *NotificationMessage) Expand() []*Notification {
	var eventID *string
	if m.EventID != "" {
		id := m.EventID
		eventID = &id
	}

	out := make([]*Notification, 0, len(m.UserIDs))
	for _, userID := range m.UserIDs {
		out = append(out, &Notification{
			ID:        uuid.NewSHA1(notificationNamespace, []byte(m.MessageID+":"+userID)).String(),
			UserID:    userID,
			EventID:   eventID,
			Kind:      m.Kind,
			Message:   m.Message,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}
