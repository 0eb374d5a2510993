// Package seed creates the data a fresh installation needs to be usable.
package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/app/models/dto"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
)

// AccountCreator creates user accounts. AuthService satisfies it.
type AccountCreator interface {
	CreateUser(ctx context.Context, caller *models.Caller, req *dto.CreateUserRequest, allowAnonymous bool) (*dto.UserResponse, error)
}

// AdminAccount is the bootstrap administrator taken from configuration
type AdminAccount struct {
	Email    string
	Password string
	Name     string
}

// CreateDefaultAdmin creates the configured administrator if it does not exist yet.
// An unconfigured account is skipped; an existing one is left untouched.
func CreateDefaultAdmin(ctx context.Context, accounts AccountCreator, admin AdminAccount, lgr zerolog.Logger) error {
	if admin.Email == "" || admin.Password == "" {
		lgr.Info().Msg("No bootstrap administrator configured, skipping creation")
		return nil
	}

	name := admin.Name
	if name == "" {
		name = "Administrator"
	}

	lgr.Info().Str("email", admin.Email).Msg("Checking/Creating default administrator...")
	user, err := accounts.CreateUser(ctx, nil, &dto.CreateUserRequest{
		Email:    admin.Email,
		Password: admin.Password,
		Name:     name,
		Role:     models.RoleAdministrator,
	}, true)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceAlreadyExists) {
			lgr.Info().Msg("Administrator already exists, skipping creation")
			return nil
		}
		lgr.Error().Err(err).Msg("Error creating default administrator")
		return err
	}

	lgr.Info().Int64("adminID", user.ID).Msg("Default administrator created successfully")
	return nil
}
