package dto

import "github.com/yigit/hackathon/internal/app/models"

// SubmitSchoolApplicationRequest is the public workshop request form
type SubmitSchoolApplicationRequest struct {
	SchoolName       string   `json:"schoolName" binding:"required,max=200" example:"Springfield High"`
	CoordinatorName  string   `json:"coordinatorName" binding:"required,max=120" example:"Edna Krabappel"`
	CoordinatorEmail string   `json:"coordinatorEmail" binding:"required,email,max=254" example:"edna@springfield.edu"`
	Phone            string   `json:"phone" binding:"required,max=40" example:"+1 555 0100"`
	NumStudents      int      `json:"numStudents" binding:"required,min=1,max=1000" example:"30"`
	PreferredDates   []string `json:"preferredDates" binding:"required,min=1,max=10" example:"2025-05-12"`
	Comments         *string  `json:"comments,omitempty" binding:"omitempty,max=5000"`
}

// SchoolApplicationListResponse is one page of school applications
type SchoolApplicationListResponse struct {
	Items      []*models.SchoolApplication `json:"items"`
	Pagination PaginationInfo              `json:"pagination"`
}
