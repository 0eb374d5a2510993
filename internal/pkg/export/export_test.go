package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"github.com/yigit/hackathon/internal/app/models"
)

func sampleApps() []*models.Application {
	reviewed := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	return []*models.Application{
		{
			ID:                uuid.MustParse("11111111-1111-1111-1111-111111111111"),
			SubmittedAt:       time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
			TeamName:          "=HYPERLINK(\"x\")",
			School:            "Springfield High",
			ContactEmail:      "a@b.com",
			Participants:      []string{"A", "B"},
			ParticipantsCount: 2,
			MotivationText:    "because, we can",
			Status:            models.StatusAccepted,
			Starred:           true,
			ReviewedAt:        &reviewed,
		},
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatCSV {
		t.Errorf("empty format: %v %v", f, err)
	}
	if f, err := ParseFormat("XLSX"); err != nil || f != FormatXLSX {
		t.Errorf("xlsx format: %v %v", f, err)
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for pdf")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, ApplicationsTable(sampleApps())); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(records))
	}
	row := records[1]
	if row[2] != "'=HYPERLINK(\"x\")" {
		t.Errorf("formula not escaped: %q", row[2])
	}
	if row[6] != "A; B" || row[11] != "because, we can" {
		t.Errorf("unexpected row %v", row)
	}
	if row[14] != "2025-04-02T10:00:00Z" {
		t.Errorf("unexpected reviewedAt %q", row[14])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, ApplicationsTable(sampleApps())); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("output is not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Applications")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0][0] != "ID" || rows[1][3] != "Springfield High" {
		t.Errorf("unexpected rows %v", rows)
	}
}
