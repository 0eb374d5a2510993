package auth

import (
	"errors"
	"testing"

	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
)

func TestRequireAdministrator(t *testing.T) {
	tests := []struct {
		name   string
		caller *models.Caller
		want   error
	}{
		{"anonymous", nil, apperrors.ErrUnauthenticated},
		{"zero id", &models.Caller{Role: models.RoleAdministrator}, apperrors.ErrUnauthenticated},
		{"reviewer", &models.Caller{UserID: 2, Role: models.RoleReviewer}, apperrors.ErrPermissionDenied},
		{"administrator", &models.Caller{UserID: 1, Role: models.RoleAdministrator}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireAdministrator(tt.caller)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}
