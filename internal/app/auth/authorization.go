// Package auth holds the role checks applied by services before touching data.
package auth

import (
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
)

// RequireAuthenticated fails with ErrUnauthenticated for anonymous callers
func RequireAuthenticated(caller *models.Caller) error {
	if caller == nil || caller.UserID <= 0 {
		return apperrors.ErrUnauthenticated
	}
	return nil
}

// RequireAdministrator distinguishes a missing identity (ErrUnauthenticated)
// from a valid identity with the wrong role (ErrPermissionDenied).
func RequireAdministrator(caller *models.Caller) error {
	if err := RequireAuthenticated(caller); err != nil {
		return err
	}
	if !caller.IsAdministrator() {
		return apperrors.NewForbiddenError("administrator role required")
	}
	return nil
}
