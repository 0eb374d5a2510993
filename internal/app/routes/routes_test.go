package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/hackathon/internal/app/controllers"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/middleware"
	"github.com/yigit/hackathon/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Handlers are never reached in these tests, so the controllers carry no services
func newTestRouter(jwt *auth.JWTService) *gin.Engine {
	lgr := zerolog.Nop()
	r := gin.New()
	SetupRouter(r, Controllers{
		Auth:              controllers.NewAuthController(nil, lgr),
		Application:       controllers.NewApplicationController(nil, lgr),
		SchoolApplication: controllers.NewSchoolApplicationController(nil, lgr),
		EmailTemplate:     controllers.NewEmailTemplateController(nil, lgr),
		Upload:            controllers.NewUploadController(nil, lgr),
	}, middleware.NewAuthMiddleware(jwt), nil)
	return r
}

func isPublic(route gin.RouteInfo) bool {
	switch {
	case route.Method == http.MethodPost && route.Path == "/api/v1/applications",
		route.Method == http.MethodPost && route.Path == "/api/v1/school-applications",
		strings.HasPrefix(route.Path, "/api/v1/uploads/"),
		strings.HasPrefix(route.Path, "/api/v1/public/"),
		strings.HasPrefix(route.Path, "/api/v1/auth/"):
		return true
	}
	return false
}

func concretePath(path string) string {
	return strings.ReplaceAll(path, ":id", "7d0c3c7e-4b7a-4a4e-9d0e-3f5a1c2b9e10")
}

func TestAdminRoutesRequireAdministrator(t *testing.T) {
	jwt := auth.NewJWTService(auth.JWTConfig{SecretKey: "routes-test", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	reviewerToken, _, err := jwt.GenerateAccessToken(&models.User{ID: 2, Email: "r@hackathon.app", Role: models.RoleReviewer})
	if err != nil {
		t.Fatal(err)
	}

	r := newTestRouter(jwt)
	checked := 0
	for _, route := range r.Routes() {
		if isPublic(route) {
			continue
		}
		checked++

		req := httptest.NewRequest(route.Method, concretePath(route.Path), nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d, want 401", route.Method, route.Path, rec.Code)
		}

		req = httptest.NewRequest(route.Method, concretePath(route.Path), nil)
		req.Header.Set("Authorization", "Bearer "+reviewerToken)
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s as reviewer: status = %d, want 403", route.Method, route.Path, rec.Code)
		}
	}

	// 10 routes per application kind, 5 template routes and user creation
	if checked != 26 {
		t.Fatalf("checked %d admin routes, want 26", checked)
	}
}

func TestMeRequiresToken(t *testing.T) {
	r := newTestRouter(auth.NewJWTService(auth.JWTConfig{SecretKey: "routes-test", AccessTokenExp: time.Hour}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}
