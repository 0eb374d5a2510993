package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/app/models/dto"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
)

func TestEmailTemplateService_ActivateKeepsOneActive(t *testing.T) {
	store := &fakeTemplateStore{}
	svc := NewEmailTemplateService(store, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Create(ctx, admin, dto.CreateEmailTemplateRequest{
		Type: models.NotificationAcceptance, Audience: models.KindTeam, Subject: "One {{teamName}}", Body: "<p>one</p>",
	})
	if err != nil {
		t.Fatal(err)
	}
	if first.IsActive {
		t.Fatalf("new templates start inactive")
	}
	second, err := svc.Create(ctx, admin, dto.CreateEmailTemplateRequest{
		Type: models.NotificationAcceptance, Audience: models.KindTeam, Subject: "Two", Body: "<p>two</p>",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Activate(ctx, admin, first.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Activate(ctx, admin, second.ID); err != nil {
		t.Fatal(err)
	}

	active, err := store.FindActive(ctx, models.NotificationAcceptance, models.KindTeam)
	if err != nil || active.ID != second.ID {
		t.Fatalf("expected second template active, got %+v %v", active, err)
	}
	all, _ := svc.List(ctx, admin, dto.EmailTemplateFilter{Type: models.NotificationAcceptance})
	count := 0
	for _, tmpl := range all {
		if tmpl.IsActive {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one active template, got %d", count)
	}
}

func TestEmailTemplateService_Validation(t *testing.T) {
	svc := NewEmailTemplateService(&fakeTemplateStore{}, zerolog.Nop())

	_, err := svc.Create(context.Background(), admin, dto.CreateEmailTemplateRequest{Type: "WELCOME", Audience: models.KindTeam, Subject: " ", Body: ""})
	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) != 3 {
		t.Fatalf("expected type, subject and body problems, got %v", err)
	}

	if _, err := svc.Update(context.Background(), admin, 99, dto.UpdateEmailTemplateRequest{Subject: "s", Body: "b"}); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.List(context.Background(), reviewer, dto.EmailTemplateFilter{}); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestEmailTemplateService_Preview(t *testing.T) {
	store := &fakeTemplateStore{templates: []*models.EmailTemplate{{ID: 1, Subject: "Hi {{teamName}}", Body: "{{school}}"}}}
	svc := NewEmailTemplateService(store, zerolog.Nop())

	subject, body, err := svc.Preview(context.Background(), admin, 1, map[string]string{"teamName": "Alpha", "school": "SHS"})
	if err != nil {
		t.Fatal(err)
	}
	if subject != "Hi Alpha" || body != "SHS" {
		t.Fatalf("unexpected preview %q %q", subject, body)
	}
}
