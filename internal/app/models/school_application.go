package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SchoolApplication is a school's workshop request (table 'school_applications')
type SchoolApplication struct {
	ID               uuid.UUID         `json:"id" db:"id"`
	SubmittedAt      time.Time         `json:"submittedAt" db:"submitted_at"`
	SchoolName       string            `json:"schoolName" db:"school_name"`
	CoordinatorName  string            `json:"coordinatorName" db:"coordinator_name"`
	CoordinatorEmail string            `json:"coordinatorEmail" db:"coordinator_email"`
	Phone            string            `json:"phone" db:"phone"`
	NumStudents      int               `json:"numStudents" db:"num_students"`
	PreferredDates   []string          `json:"preferredDates" db:"preferred_dates"`
	Comments         *string           `json:"comments,omitempty" db:"comments"`
	Status           ApplicationStatus `json:"status" db:"status"`
	Starred          bool              `json:"starred" db:"starred"`
	ReviewedBy       *int64            `json:"reviewedBy,omitempty" db:"reviewed_by"`
	ReviewedAt       *time.Time        `json:"reviewedAt,omitempty" db:"reviewed_at"`
	CreatedAt        time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time         `json:"updatedAt" db:"updated_at"`
}

// NotificationTarget returns what the dispatcher needs to email the coordinator
func (a *SchoolApplication) NotificationTarget() NotificationTarget {
	return NotificationTarget{
		Kind:          KindSchool,
		ApplicationID: a.ID,
		Email:         a.CoordinatorEmail,
		Placeholders: map[string]string{
			"schoolName":       a.SchoolName,
			"coordinatorName":  a.CoordinatorName,
			"coordinatorEmail": a.CoordinatorEmail,
			"numStudents":      strconv.Itoa(a.NumStudents),
		},
	}
}

// ReviewState returns the fields set by a status change
func (a *SchoolApplication) ReviewState() (ApplicationStatus, *time.Time) {
	return a.Status, a.ReviewedAt
}
