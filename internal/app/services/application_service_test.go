package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/app/models/dto"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
)

func strPtr(s string) *string { return &s }

func validTeam(name string) dto.SubmitApplicationRequest {
	return dto.SubmitApplicationRequest{
		TeamName:          name,
		School:            "Springfield High",
		GradeOrYear:       "11",
		ContactEmail:      strings.ToLower(name) + "@team.dev",
		Participants:      []string{"Ada", "Linus"},
		ParticipantsCount: 2,
		MotivationText:    "because",
	}
}

func submit(t *testing.T, h *harness, name string) *models.Application {
	t.Helper()
	app, err := h.svc.Submit(context.Background(), validTeam(name))
	if err != nil {
		t.Fatalf("submit %s: %v", name, err)
	}
	return app
}

func TestSubmit_StoresPendingUnstarred(t *testing.T) {
	h := newHarness()
	req := validTeam("Alpha")
	req.TeamName = "  Alpha  "
	req.ContactEmail = "  Team@Alpha.DEV "
	req.IdeasText = strPtr("   ")

	app, err := h.svc.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.Status != models.StatusPending || app.Starred {
		t.Fatalf("expected PENDING unstarred, got %s starred=%v", app.Status, app.Starred)
	}
	if app.TeamName != "Alpha" || app.ContactEmail != "team@alpha.dev" {
		t.Fatalf("expected trimmed values, got %q %q", app.TeamName, app.ContactEmail)
	}
	if app.IdeasText != nil {
		t.Fatalf("expected blank optional text to be dropped")
	}
	if app.ID == uuid.Nil || app.SubmittedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp")
	}
	if _, err := h.store.GetByID(context.Background(), app.ID); err != nil {
		t.Fatalf("expected application to be stored: %v", err)
	}
}

func TestSubmit_ReportsEveryProblem(t *testing.T) {
	h := newHarness()
	req := dto.SubmitApplicationRequest{
		TeamName:          " ",
		ContactEmail:      "not-an-email",
		Participants:      []string{"Ada", " "},
		ParticipantsCount: 3,
		IDDocumentURL:     strPtr("ftp://example.com/id.pdf"),
	}

	_, err := h.svc.Submit(context.Background(), req)
	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	fields := map[string]bool{}
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"teamName", "school", "gradeOrYear", "contactEmail", "participants", "participantsCount", "motivationText", "idDocumentUrl"} {
		if !fields[want] {
			t.Errorf("expected a problem for %s, got %+v", want, verr.Fields)
		}
	}
	if len(h.store.apps) != 0 {
		t.Fatalf("nothing should be stored on validation failure")
	}
}

func TestSubmit_AcceptsUploadedDocumentPath(t *testing.T) {
	h := newHarness()
	req := validTeam("Alpha")
	req.IDDocumentURL = strPtr("uploads/id-documents/3f1c.pdf")
	if _, err := h.svc.Submit(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req.IDDocumentURL = strPtr("uploads/../etc/passwd")
	if _, err := h.svc.Submit(context.Background(), req); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected traversal path to be rejected, got %v", err)
	}
}

func TestSetStatus_AnyTransitionAllowed(t *testing.T) {
	h := newHarness()
	app := submit(t, h, "Alpha")
	ctx := context.Background()

	steps := []models.ApplicationStatus{
		models.StatusAccepted, models.StatusRejected, models.StatusPending, models.StatusAccepted, models.StatusAccepted,
	}
	for _, status := range steps {
		res, err := h.svc.SetStatus(ctx, admin, app.ID, status)
		if err != nil {
			t.Fatalf("set %s: %v", status, err)
		}
		if res.Status != status || res.ReviewedAt.IsZero() {
			t.Fatalf("unexpected result %+v", res)
		}
	}

	stored, _ := h.store.GetByID(ctx, app.ID)
	if stored.ReviewedBy == nil || *stored.ReviewedBy != admin.UserID {
		t.Fatalf("expected reviewer attribution, got %v", stored.ReviewedBy)
	}
	// three ACCEPTED and one REJECTED; PENDING sends nothing
	if got := len(h.logs.all()); got != 4 {
		t.Fatalf("expected 4 notification logs, got %d", got)
	}
}

func TestSetStatus_RejectsUnknownStatus(t *testing.T) {
	h := newHarness()
	app := submit(t, h, "Alpha")

	_, err := h.svc.SetStatus(context.Background(), admin, app.ID, "ARCHIVED")
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetStatus_UnknownApplication(t *testing.T) {
	h := newHarness()
	_, err := h.svc.SetStatus(context.Background(), admin, uuid.New(), models.StatusAccepted)
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(h.logs.all()) != 0 {
		t.Fatalf("no email should be attempted for a missing application")
	}
}

func TestAuthorization_AnonymousVersusReviewer(t *testing.T) {
	h := newHarness()
	app := submit(t, h, "Alpha")
	ctx := context.Background()

	if _, err := h.svc.SetStatus(ctx, nil, app.ID, models.StatusAccepted); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Fatalf("anonymous: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := h.svc.SetStatus(ctx, reviewer, app.ID, models.StatusAccepted); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("reviewer: expected ErrPermissionDenied, got %v", err)
	}
	if _, err := h.svc.List(ctx, reviewer, dto.ApplicationFilter{}); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("reviewer list: expected ErrPermissionDenied, got %v", err)
	}

	stored, _ := h.store.GetByID(ctx, app.ID)
	if stored.Status != models.StatusPending {
		t.Fatalf("unauthorized calls must not change state")
	}
}

func TestToggleStar_TwiceRestores(t *testing.T) {
	h := newHarness()
	app := submit(t, h, "Alpha")
	ctx := context.Background()

	first, err := h.svc.ToggleStar(ctx, admin, app.ID)
	if err != nil || !first.Starred {
		t.Fatalf("first toggle: %+v %v", first, err)
	}
	second, err := h.svc.ToggleStar(ctx, admin, app.ID)
	if err != nil || second.Starred {
		t.Fatalf("second toggle: %+v %v", second, err)
	}

	stored, _ := h.store.GetByID(ctx, app.ID)
	if stored.Status != models.StatusPending {
		t.Fatalf("starring must not touch status")
	}
}

func TestNotificationFailure_DoesNotFailStatusChange(t *testing.T) {
	h := newHarness()
	h.sender.err = errors.New("smtp: connection refused")
	app := submit(t, h, "Alpha")

	res, err := h.svc.SetStatus(context.Background(), admin, app.ID, models.StatusAccepted)
	if err != nil {
		t.Fatalf("status change must succeed, got %v", err)
	}
	if res.Status != models.StatusAccepted {
		t.Fatalf("unexpected status %s", res.Status)
	}

	logs := h.logs.all()
	if len(logs) != 1 {
		t.Fatalf("expected exactly one log, got %d", len(logs))
	}
	if logs[0].Status != models.DeliveryFailed || logs[0].ErrorMessage == nil || !strings.Contains(*logs[0].ErrorMessage, "connection refused") {
		t.Fatalf("expected FAILED log with cause, got %+v", logs[0])
	}
}

func TestNotificationPanic_IsLoggedAsFailure(t *testing.T) {
	h := newHarness()
	h.sender.panic = true
	app := submit(t, h, "Alpha")

	if _, err := h.svc.SetStatus(context.Background(), admin, app.ID, models.StatusRejected); err != nil {
		t.Fatalf("status change must succeed, got %v", err)
	}
	logs := h.logs.all()
	if len(logs) != 1 || logs[0].Status != models.DeliveryFailed {
		t.Fatalf("expected one FAILED log, got %+v", logs)
	}
}

func TestBulkSetStatus_IndependentFailures(t *testing.T) {
	h := newHarness()
	a := submit(t, h, "Alpha")
	b := submit(t, h, "Beta")
	c := submit(t, h, "Gamma")
	missing := uuid.New()
	h.store.failIDs[c.ID] = errBoom

	res, err := h.svc.BulkSetStatus(context.Background(), admin, []uuid.UUID{a.ID, missing, b.ID, a.ID, c.ID}, models.StatusRejected)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Succeeded) != 2 || res.Succeeded[0] != a.ID || res.Succeeded[1] != b.ID {
		t.Fatalf("unexpected succeeded %v", res.Succeeded)
	}
	if len(res.Failed) != 2 {
		t.Fatalf("expected two failures, got %+v", res.Failed)
	}
	if res.Failed[0].ID != missing || res.Failed[0].Error != "application not found" {
		t.Fatalf("unexpected not-found failure %+v", res.Failed[0])
	}
	if res.Failed[1].ID != c.ID || res.Failed[1].Error != "internal error" {
		t.Fatalf("internal causes must be hidden, got %+v", res.Failed[1])
	}
	if got := len(h.logs.all()); got != 2 {
		t.Fatalf("expected a rejection email per updated application, got %d", got)
	}
}

func TestBulkDelete(t *testing.T) {
	h := newHarness()
	a := submit(t, h, "Alpha")
	missing := uuid.New()

	res, err := h.svc.BulkDelete(context.Background(), admin, []uuid.UUID{a.ID, missing})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Succeeded) != 1 || len(res.Failed) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, err := h.store.GetByID(context.Background(), a.ID); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("expected application to be gone")
	}
}

func TestDelete_RemovesUploadedDocument(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	req := validTeam("Alpha")
	req.IDDocumentURL = strPtr("uploads/id-documents/3f1c.pdf")
	withDoc, err := h.svc.Submit(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	withoutDoc := submit(t, h, "Beta")

	if err := h.svc.Delete(ctx, admin, withDoc.ID); err != nil {
		t.Fatal(err)
	}
	if err := h.svc.Delete(ctx, admin, withoutDoc.ID); err != nil {
		t.Fatal(err)
	}
	if len(h.documents.removed) != 1 || h.documents.removed[0] != "uploads/id-documents/3f1c.pdf" {
		t.Fatalf("unexpected removals %v", h.documents.removed)
	}

	if err := h.svc.Delete(ctx, admin, withDoc.ID); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if len(h.documents.removed) != 1 {
		t.Fatalf("failed delete must not remove documents, got %v", h.documents.removed)
	}
}

func TestDelete_DocumentRemovalFailureIsIgnored(t *testing.T) {
	h := newHarness()
	h.documents.err = errBoom
	req := validTeam("Alpha")
	req.IDDocumentURL = strPtr("uploads/id-documents/3f1c.pdf")
	app, err := h.svc.Submit(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	if err := h.svc.Delete(context.Background(), admin, app.ID); err != nil {
		t.Fatalf("delete must succeed when the file cannot be removed: %v", err)
	}
}

func TestList_OrderAndPaginationCoverEveryRow(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	names := []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7"}
	ids := map[uuid.UUID]bool{}
	var starred uuid.UUID
	for i, n := range names {
		app := submit(t, h, n)
		ids[app.ID] = true
		if i == 0 {
			starred = app.ID
		}
	}
	if _, err := h.svc.ToggleStar(ctx, admin, starred); err != nil {
		t.Fatal(err)
	}

	seen := map[uuid.UUID]bool{}
	var order []string
	for page := 1; ; page++ {
		res, err := h.svc.List(ctx, admin, dto.ApplicationFilter{Page: page, Limit: 3})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if res.Pagination.TotalCount != 7 || res.Pagination.TotalPages != 3 {
			t.Fatalf("unexpected pagination %+v", res.Pagination)
		}
		for _, app := range res.Items {
			if seen[app.ID] {
				t.Fatalf("duplicate %s across pages", app.TeamName)
			}
			seen[app.ID] = true
			order = append(order, app.TeamName)
		}
		if !res.Pagination.HasNext {
			break
		}
	}

	if len(seen) != len(ids) {
		t.Fatalf("expected every application exactly once, saw %d", len(seen))
	}
	want := []string{"A1", "A7", "A6", "A5", "A4", "A3", "A2"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected order %v, want %v", order, want)
	}
}

func TestList_EmptyResult(t *testing.T) {
	h := newHarness()
	res, err := h.svc.List(context.Background(), admin, dto.ApplicationFilter{Status: models.StatusAccepted})
	if err != nil {
		t.Fatal(err)
	}
	if res.Pagination.TotalPages != 0 || res.Pagination.HasNext || res.Pagination.HasPrev {
		t.Fatalf("unexpected pagination %+v", res.Pagination)
	}
}

func TestList_StarredFilter(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	a := submit(t, h, "Alpha")
	submit(t, h, "Beta")
	if _, err := h.svc.ToggleStar(ctx, admin, a.ID); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		starred string
		want    int
	}{
		{starred: "", want: 2},
		{starred: "true", want: 1},
		{starred: "false", want: 1},
	}
	for _, tt := range tests {
		res, err := h.svc.List(ctx, admin, dto.ApplicationFilter{Starred: tt.starred})
		if err != nil {
			t.Fatalf("starred=%q: %v", tt.starred, err)
		}
		if len(res.Items) != tt.want {
			t.Fatalf("starred=%q: got %d items, want %d", tt.starred, len(res.Items), tt.want)
		}
	}

	_, err := h.svc.Export(ctx, admin, dto.ApplicationFilter{Starred: "maybe"})
	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) != 1 || verr.Fields[0].Field != "starred" {
		t.Fatalf("expected starred validation error, got %v", err)
	}
}

func TestListAccepted_PublicProjection(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	a := submit(t, h, "Alpha")
	b := submit(t, h, "Beta")
	submit(t, h, "Gamma")

	if _, err := h.svc.SetStatus(ctx, admin, b.ID, models.StatusAccepted); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.SetStatus(ctx, admin, a.ID, models.StatusAccepted); err != nil {
		t.Fatal(err)
	}

	teams, err := h.svc.ListAccepted(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(teams) != 2 || teams[0].TeamName != "Beta" || teams[1].TeamName != "Alpha" {
		t.Fatalf("expected earliest acceptance first, got %+v", teams)
	}

	raw, err := json.Marshal(teams[0])
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatal(err)
	}
	for _, private := range []string{"contactEmail", "participants", "motivationText", "idDocumentUrl", "status", "starred", "reviewedBy"} {
		if _, ok := fields[private]; ok {
			t.Errorf("public projection leaks %s", private)
		}
	}
}

func TestListAccepted_CacheInvalidatedOnChange(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	a := submit(t, h, "Alpha")

	if _, err := h.svc.ListAccepted(ctx); err != nil {
		t.Fatal(err)
	}
	if !h.cache.hit {
		t.Fatalf("expected result to be cached")
	}

	if _, err := h.svc.SetStatus(ctx, admin, a.ID, models.StatusAccepted); err != nil {
		t.Fatal(err)
	}
	if h.cache.invalidated != 1 {
		t.Fatalf("expected cache invalidation, got %d", h.cache.invalidated)
	}

	teams, err := h.svc.ListAccepted(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(teams) != 1 {
		t.Fatalf("expected fresh result after invalidation, got %+v", teams)
	}
}

func TestListAccepted_ChangeDuringReadIsNotCached(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	a := submit(t, h, "Alpha")
	b := submit(t, h, "Beta")
	if _, err := h.svc.SetStatus(ctx, admin, a.ID, models.StatusAccepted); err != nil {
		t.Fatal(err)
	}

	// Beta is accepted after the projection was read but before it is cached
	h.store.afterAcceptedRead = func() {
		if _, err := h.svc.SetStatus(ctx, admin, b.ID, models.StatusAccepted); err != nil {
			t.Error(err)
		}
	}
	stale, err := h.svc.ListAccepted(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stale) != 1 {
		t.Fatalf("expected the in-flight read to see only Alpha, got %+v", stale)
	}
	if h.cache.hit {
		t.Fatal("a projection read before the invalidation must not be served")
	}

	teams, err := h.svc.ListAccepted(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected both accepted teams after the change, got %+v", teams)
	}
}

func TestEndToEnd_AcceptanceWithActiveTemplate(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.templates.templates = []*models.EmailTemplate{{
		ID:       1,
		Type:     models.NotificationAcceptance,
		Audience: models.KindTeam,
		Subject:  "Welcome, {{teamName}}!",
		Body:     "<p>{{teamName}} from {{school}}</p>",
		IsActive: true,
	}}

	app, err := h.svc.Submit(ctx, dto.SubmitApplicationRequest{
		TeamName:          "Alpha",
		School:            "Springfield High",
		GradeOrYear:       "11",
		ContactEmail:      "team@alpha.dev",
		Participants:      []string{"Ada", "Linus"},
		ParticipantsCount: 2,
		MotivationText:    "because",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := h.svc.SetStatus(ctx, admin, app.ID, models.StatusAccepted); err != nil {
		t.Fatal(err)
	}

	if len(h.sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(h.sender.sent))
	}
	msg := h.sender.sent[0]
	if msg.To != "team@alpha.dev" || msg.Subject != "Welcome, Alpha!" || msg.HTML != "<p>Alpha from Springfield High</p>" {
		t.Fatalf("unexpected message %+v", msg)
	}

	logs, err := h.svc.EmailLogs(ctx, admin, app.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].Status != models.DeliverySent || logs[0].Subject != "Welcome, Alpha!" {
		t.Fatalf("unexpected logs %+v", logs)
	}
	if logs[0].ProviderMessageID == nil || *logs[0].ProviderMessageID != "msg-team@alpha.dev" {
		t.Fatalf("expected provider message id, got %v", logs[0].ProviderMessageID)
	}

	res, err := h.svc.List(ctx, admin, dto.ApplicationFilter{Status: models.StatusAccepted})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 1 || res.Items[0].ID != app.ID {
		t.Fatalf("expected the accepted application in the filtered list")
	}
}

func TestEmailLogs_UnknownApplication(t *testing.T) {
	h := newHarness()
	_, err := h.svc.EmailLogs(context.Background(), admin, uuid.New())
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExport_IncludesEveryMatch(t *testing.T) {
	h := newHarness()
	for _, n := range []string{"A1", "A2", "A3"} {
		submit(t, h, n)
	}

	table, err := h.svc.Export(context.Background(), admin, dto.ApplicationFilter{Search: "a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table.Rows))
	}
	if len(table.Headers) != len(table.Rows[0]) {
		t.Fatalf("row width %d does not match headers %d", len(table.Rows[0]), len(table.Headers))
	}
}
