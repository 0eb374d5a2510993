package models

// RoleType defines the user role type
type RoleType string

const (
	RoleReviewer      RoleType = "REVIEWER"
	RoleAdministrator RoleType = "ADMINISTRATOR"
)

// IsValid reports whether r is a known role
func (r RoleType) IsValid() bool {
	return r == RoleReviewer || r == RoleAdministrator
}

// ApplicationStatus is the review outcome of an application.
// Any status may follow any other, including a return to PENDING.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "PENDING"
	StatusAccepted ApplicationStatus = "ACCEPTED"
	StatusRejected ApplicationStatus = "REJECTED"
)

// IsValid reports whether s is one of the three statuses
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}

// ApplicationKind tells which store an application lives in
type ApplicationKind string

const (
	KindTeam   ApplicationKind = "TEAM"
	KindSchool ApplicationKind = "SCHOOL"
)

// IsValid reports whether k is a known kind
func (k ApplicationKind) IsValid() bool {
	return k == KindTeam || k == KindSchool
}

// NotificationType selects the template sent after a decision
type NotificationType string

const (
	NotificationAcceptance NotificationType = "ACCEPTANCE"
	NotificationRejection  NotificationType = "REJECTION"
)

// IsValid reports whether t is a known notification type
func (t NotificationType) IsValid() bool {
	return t == NotificationAcceptance || t == NotificationRejection
}

// DecisionFor maps a status to the notification it triggers.
// PENDING triggers nothing.
func DecisionFor(status ApplicationStatus) (NotificationType, bool) {
	switch status {
	case StatusAccepted:
		return NotificationAcceptance, true
	case StatusRejected:
		return NotificationRejection, true
	default:
		return "", false
	}
}

// DeliveryStatus is the outcome recorded for one dispatch attempt
type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "SENT"
	DeliveryFailed  DeliveryStatus = "FAILED"
	DeliveryPending DeliveryStatus = "PENDING"
)
