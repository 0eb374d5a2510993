package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/hackathon/internal/app/models"
)

// SubmitApplicationRequest is the public team submission form
type SubmitApplicationRequest struct {
	TeamName          string   `json:"teamName" binding:"required,max=120" example:"Alpha"`
	School            string   `json:"school" binding:"required,max=200" example:"Springfield High"`
	GradeOrYear       string   `json:"gradeOrYear" binding:"required,max=50" example:"11"`
	ContactEmail      string   `json:"contactEmail" binding:"required,email,max=254" example:"team@alpha.dev"`
	Participants      []string `json:"participants" binding:"required,min=1,max=10" example:"Ada,Linus"`
	ParticipantsCount int      `json:"participantsCount" binding:"required,min=1,max=10" example:"2"`
	IDDocumentURL     *string  `json:"idDocumentUrl,omitempty" binding:"omitempty,max=2048"`
	ExperienceText    *string  `json:"experienceText,omitempty" binding:"omitempty,max=5000"`
	IdeasText         *string  `json:"ideasText,omitempty" binding:"omitempty,max=5000"`
	MotivationText    string   `json:"motivationText" binding:"required,max=5000" example:"because"`
}

// ApplicationFilter holds list and export query parameters.
// Starred is kept as text so an empty "starred=" means no filter.
type ApplicationFilter struct {
	Status  models.ApplicationStatus `form:"status" binding:"omitempty,oneof=PENDING ACCEPTED REJECTED"`
	Starred string                   `form:"starred" binding:"omitempty,oneof=true false"`
	Search  string                   `form:"search" binding:"omitempty,max=200"`
	Page    int                      `form:"page"`
	Limit   int                      `form:"limit"`
}

// UpdateStatusRequest sets the review status of one application
type UpdateStatusRequest struct {
	Status models.ApplicationStatus `json:"status" binding:"required,oneof=PENDING ACCEPTED REJECTED" example:"ACCEPTED"`
}

// StatusResult confirms a status change
type StatusResult struct {
	Status     models.ApplicationStatus `json:"status" example:"ACCEPTED"`
	ReviewedAt time.Time                `json:"reviewedAt"`
}

// StarResult reports the starred flag after a toggle
type StarResult struct {
	Starred bool `json:"starred" example:"true"`
}

// BulkStatusRequest applies one status to many applications
type BulkStatusRequest struct {
	IDs    []uuid.UUID              `json:"ids" binding:"required,min=1,max=500"`
	Status models.ApplicationStatus `json:"status" binding:"required,oneof=PENDING ACCEPTED REJECTED"`
}

// BulkDeleteRequest deletes many applications
type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=500"`
}

// BulkFailure is one id a bulk operation could not process
type BulkFailure struct {
	ID    uuid.UUID `json:"id"`
	Error string    `json:"error"`
}

// BulkResult reports the outcome of a bulk operation per id
type BulkResult struct {
	Succeeded []uuid.UUID   `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// ApplicationListResponse is one page of team applications
type ApplicationListResponse struct {
	Items      []*models.Application `json:"items"`
	Pagination PaginationInfo        `json:"pagination"`
}

// SubmissionResponse is returned after a public submission
type SubmissionResponse struct {
	ID          uuid.UUID                `json:"id"`
	Status      models.ApplicationStatus `json:"status" example:"PENDING"`
	SubmittedAt time.Time                `json:"submittedAt"`
}

// EmailLogListResponse lists the notification attempts for one application
type EmailLogListResponse struct {
	Items []*models.EmailNotificationLog `json:"items"`
}

// StarredFilter returns the starred condition, nil when the parameter was omitted or empty
func (f ApplicationFilter) StarredFilter() *bool {
	switch f.Starred {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}
