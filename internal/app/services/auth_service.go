package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/hackathon/internal/app/auth"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/app/models/dto"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
	"github.com/yigit/hackathon/internal/pkg/auth"
	"github.com/yigit/hackathon/internal/pkg/validation"
)

// dummyHash is compared against when the email is unknown so that both
// failure paths cost one bcrypt comparison
const dummyHash = "$2a$12$C6UzMDM.H6dfI/f/IKcEeO5KeQhF5yQzT6ESeT/9Wc8m2hpmVq/4i"

// AuthService handles authentication operations
type AuthService struct {
	userRepo   UserStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo UserStore, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login authenticates a user. Unknown email and wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := validation.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, err
		}
		auth.CheckPassword(dummyHash, req.Password)
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Info().Int64("userId", user.ID).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error().Err(err).Int64("userId", user.ID).Msg("Failed to sign access token")
		return nil, err
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
		},
		User: dto.FromUser(user),
	}, nil
}

// Me returns the account behind the caller
func (s *AuthService) Me(ctx context.Context, caller *models.Caller) (*dto.UserResponse, error) {
	if err := appauth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}
	resp := dto.FromUser(user)
	return &resp, nil
}

// CreateUser adds a reviewer or administrator account. caller may be nil only
// for the bootstrap paths (seed and CLI), which pass allowAnonymous.
func (s *AuthService) CreateUser(ctx context.Context, caller *models.Caller, req *dto.CreateUserRequest, allowAnonymous bool) (*dto.UserResponse, error) {
	if !allowAnonymous {
		if err := appauth.RequireAdministrator(caller); err != nil {
			return nil, err
		}
	}

	user, err := s.newUser(req)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userId", user.ID).Str("role", string(user.Role)).Msg("User created")
	resp := dto.FromUser(user)
	return &resp, nil
}

func (s *AuthService) newUser(req *dto.CreateUserRequest) (*models.User, error) {
	verr := apperrors.NewValidationError()

	email := validation.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)

	if !validation.IsEmail(email) {
		verr.Add("email", "email must be a valid email address")
	}
	if len([]rune(req.Password)) < validation.PasswordMinLength {
		verr.Add("password", "password must be at least 8 characters")
	}
	if !validation.NewStringValidation(name).
		WithMinLength(validation.NameMinLength).
		WithMaxLength(validation.NameMaxLength).
		Validate() {
		verr.Add("name", "name is required and must be at most 120 characters")
	}
	role := req.Role
	if role == "" {
		role = models.RoleReviewer
	}
	if !role.IsValid() {
		verr.Add("role", "role must be one of: REVIEWER ADMINISTRATOR")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	}, nil
}
