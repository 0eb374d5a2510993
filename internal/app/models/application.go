package models

import (
	"time"

	"github.com/google/uuid"
)

// Application is a hackathon team submission (table 'applications').
// ParticipantsCount is expected to equal len(Participants); the submission
// service enforces it, storage does not.
type Application struct {
	ID                uuid.UUID         `json:"id" db:"id"`
	SubmittedAt       time.Time         `json:"submittedAt" db:"submitted_at"`
	TeamName          string            `json:"teamName" db:"team_name"`
	School            string            `json:"school" db:"school"`
	GradeOrYear       string            `json:"gradeOrYear" db:"grade_or_year"`
	ContactEmail      string            `json:"contactEmail" db:"contact_email"`
	Participants      []string          `json:"participants" db:"participants"`
	ParticipantsCount int               `json:"participantsCount" db:"participants_count"`
	IDDocumentURL     *string           `json:"idDocumentUrl,omitempty" db:"id_document_url"`
	ExperienceText    *string           `json:"experienceText,omitempty" db:"experience_text"`
	IdeasText         *string           `json:"ideasText,omitempty" db:"ideas_text"`
	MotivationText    string            `json:"motivationText" db:"motivation_text"`
	Status            ApplicationStatus `json:"status" db:"status"`
	Starred           bool              `json:"starred" db:"starred"`
	ReviewedBy        *int64            `json:"reviewedBy,omitempty" db:"reviewed_by"`
	ReviewedAt        *time.Time        `json:"reviewedAt,omitempty" db:"reviewed_at"`
	CreatedAt         time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time         `json:"updatedAt" db:"updated_at"`
}

// NotificationTarget returns what the dispatcher needs to email the team
func (a *Application) NotificationTarget() NotificationTarget {
	return NotificationTarget{
		Kind:          KindTeam,
		ApplicationID: a.ID,
		Email:         a.ContactEmail,
		Placeholders: map[string]string{
			"teamName":     a.TeamName,
			"contactEmail": a.ContactEmail,
			"school":       a.School,
		},
	}
}

// ReviewState returns the fields set by a status change
func (a *Application) ReviewState() (ApplicationStatus, *time.Time) {
	return a.Status, a.ReviewedAt
}

// AcceptedTeam is the public projection of an accepted application
type AcceptedTeam struct {
	ID                uuid.UUID `json:"id"`
	TeamName          string    `json:"teamName"`
	School            string    `json:"school"`
	ParticipantsCount int       `json:"participantsCount"`
	AcceptedAt        time.Time `json:"acceptedAt"`
}

// StatusCounts summarises a store for the dashboard
type StatusCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Starred  int `json:"starred"`
}
