package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/yigit/hackathon/internal/app/models"
)

var applicationHeaders = []string{
	"ID", "Submitted At", "Team Name", "School", "Grade/Year", "Contact Email",
	"Participants", "Participants Count", "ID Document URL", "Experience", "Ideas",
	"Motivation", "Status", "Starred", "Reviewed At",
}

var schoolApplicationHeaders = []string{
	"ID", "Submitted At", "School Name", "Coordinator Name", "Coordinator Email", "Phone",
	"Number of Students", "Preferred Dates", "Comments", "Status", "Starred", "Reviewed At",
}

// ApplicationsTable builds the export table for team applications
func ApplicationsTable(apps []*models.Application) Table {
	rows := make([][]string, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, []string{
			a.ID.String(),
			formatTime(&a.SubmittedAt),
			a.TeamName,
			a.School,
			a.GradeOrYear,
			a.ContactEmail,
			strings.Join(a.Participants, "; "),
			strconv.Itoa(a.ParticipantsCount),
			deref(a.IDDocumentURL),
			deref(a.ExperienceText),
			deref(a.IdeasText),
			a.MotivationText,
			string(a.Status),
			strconv.FormatBool(a.Starred),
			formatTime(a.ReviewedAt),
		})
	}
	return Table{Sheet: "Applications", Headers: applicationHeaders, Rows: rows}
}

// SchoolApplicationsTable builds the export table for school applications
func SchoolApplicationsTable(apps []*models.SchoolApplication) Table {
	rows := make([][]string, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, []string{
			a.ID.String(),
			formatTime(&a.SubmittedAt),
			a.SchoolName,
			a.CoordinatorName,
			a.CoordinatorEmail,
			a.Phone,
			strconv.Itoa(a.NumStudents),
			strings.Join(a.PreferredDates, "; "),
			deref(a.Comments),
			string(a.Status),
			strconv.FormatBool(a.Starred),
			formatTime(a.ReviewedAt),
		})
	}
	return Table{Sheet: "School Applications", Headers: schoolApplicationHeaders, Rows: rows}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
