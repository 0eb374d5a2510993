package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationTarget is the recipient side of a decision email
type NotificationTarget struct {
	Kind          ApplicationKind
	ApplicationID uuid.UUID
	Email         string
	// Placeholders maps names used as {{name}} in templates to values
	Placeholders map[string]string
}

// EmailNotificationLog records one dispatch attempt. Rows are never updated.
// Exactly one of ApplicationID and SchoolApplicationID is set.
type EmailNotificationLog struct {
	ID                  int64            `json:"id" db:"id"`
	ApplicationID       *uuid.UUID       `json:"applicationId,omitempty" db:"application_id"`
	SchoolApplicationID *uuid.UUID       `json:"schoolApplicationId,omitempty" db:"school_application_id"`
	Type                NotificationType `json:"type" db:"type"`
	RecipientEmail      string           `json:"recipientEmail" db:"recipient_email"`
	Subject             string           `json:"subject" db:"subject"`
	SentAt              time.Time        `json:"sentAt" db:"sent_at"`
	Status              DeliveryStatus   `json:"status" db:"status"`
	ErrorMessage        *string          `json:"errorMessage,omitempty" db:"error_message"`
	ProviderMessageID   *string          `json:"providerMessageId,omitempty" db:"provider_message_id"`
}

// OwnerKind tells which application table owns the log row
func (l *EmailNotificationLog) OwnerKind() ApplicationKind {
	if l.SchoolApplicationID != nil {
		return KindSchool
	}
	return KindTeam
}

// EmailTemplate is an admin-editable decision email (table 'email_templates').
// Subject and Body may contain {{placeholder}} markers.
type EmailTemplate struct {
	ID        int64            `json:"id" db:"id"`
	Type      NotificationType `json:"type" db:"type"`
	Audience  ApplicationKind  `json:"audience" db:"audience"`
	Subject   string           `json:"subject" db:"subject"`
	Body      string           `json:"body" db:"body"`
	IsActive  bool             `json:"isActive" db:"is_active"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time        `json:"updatedAt" db:"updated_at"`
}
