package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/app/models/dto"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
	"github.com/yigit/hackathon/internal/pkg/auth"
)

func newAuthService() (*AuthService, *fakeUserStore) {
	users := &fakeUserStore{}
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret-key-with-enough-length",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "hackathon-test",
	})
	return NewAuthService(users, jwtService, zerolog.Nop()), users
}

func TestAuthService_CreateAndLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, admin, &dto.CreateUserRequest{
		Email:    " Rev@Hackathon.app ",
		Password: "correct horse",
		Name:     "Rita Reviewer",
		Role:     models.RoleReviewer,
	}, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Email != "rev@hackathon.app" {
		t.Fatalf("expected normalized email, got %q", created.Email)
	}

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "rev@hackathon.app", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token.AccessToken == "" || resp.Token.TokenType != "Bearer" || resp.Token.ExpiresIn != 3600 {
		t.Fatalf("unexpected token %+v", resp.Token)
	}

	me, err := svc.Me(ctx, &models.Caller{UserID: created.ID, Role: models.RoleReviewer})
	if err != nil || me.Name != "Rita Reviewer" {
		t.Fatalf("me: %+v %v", me, err)
	}
}

func TestAuthService_LoginFailuresLookAlike(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, nil, &dto.CreateUserRequest{
		Email: "admin@hackathon.app", Password: "password123", Name: "Ada", Role: models.RoleAdministrator,
	}, true); err != nil {
		t.Fatal(err)
	}

	_, wrongPassword := svc.Login(ctx, &dto.LoginRequest{Email: "admin@hackathon.app", Password: "nope-nope"})
	_, unknownEmail := svc.Login(ctx, &dto.LoginRequest{Email: "ghost@hackathon.app", Password: "nope-nope"})

	if !errors.Is(wrongPassword, apperrors.ErrInvalidCredentials) || !errors.Is(unknownEmail, apperrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", wrongPassword, unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestAuthService_CreateUserRequiresAdministrator(t *testing.T) {
	svc, users := newAuthService()
	req := &dto.CreateUserRequest{Email: "x@hackathon.app", Password: "password123", Name: "X", Role: models.RoleReviewer}

	if _, err := svc.CreateUser(context.Background(), reviewer, req, false); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if len(users.users) != 0 {
		t.Fatalf("no user should be created")
	}
}

func TestAuthService_CreateUserValidation(t *testing.T) {
	svc, _ := newAuthService()
	_, err := svc.CreateUser(context.Background(), admin, &dto.CreateUserRequest{
		Email: "bad", Password: "short", Name: "", Role: "ROOT",
	}, false)

	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) != 4 {
		t.Fatalf("expected four field problems, got %v", err)
	}
}
