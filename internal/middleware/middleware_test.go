package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
	"github.com/yigit/hackathon/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "middleware-test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "hackathon-test",
	})
}

func tokenFor(t *testing.T, jwt *auth.JWTService, id int64, role models.RoleType) string {
	t.Helper()
	token, _, err := jwt.GenerateAccessToken(&models.User{ID: id, Email: "u@hackathon.app", Role: role})
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func adminRouter(jwt *auth.JWTService) *gin.Engine {
	m := NewAuthMiddleware(jwt)
	r := gin.New()
	r.GET("/admin", m.JWTAuth(), m.RoleRequired(models.RoleAdministrator), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", CallerFromContext(c).UserID)
	})
	return r
}

func TestAuth_StatusCodes(t *testing.T) {
	jwt := newJWT()
	r := adminRouter(jwt)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"blank bearer", "Bearer   ", http.StatusUnauthorized},
		{"reviewer", "Bearer " + tokenFor(t, jwt, 2, models.RoleReviewer), http.StatusForbidden},
		{"administrator", "Bearer " + tokenFor(t, jwt, 1, models.RoleAdministrator), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestAuth_TokenFromOtherSecretRejected(t *testing.T) {
	other := auth.NewJWTService(auth.JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "hackathon-test"})
	r := adminRouter(newJWT())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, other, 1, models.RoleAdministrator))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestHandleAPIError_StatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
		code string
	}{
		{apperrors.NewValidationError().Add("status", "bad"), http.StatusBadRequest, "VAL_001"},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "AUTH_001"},
		{apperrors.ErrUnauthenticated, http.StatusUnauthorized, "AUTH_008"},
		{apperrors.NewForbiddenError("administrator role required"), http.StatusForbidden, "AUTH_009"},
		{apperrors.ErrApplicationNotFound, http.StatusNotFound, "RES_001"},
		{apperrors.ErrEmailAlreadyExists, http.StatusConflict, "RES_002"},
		{apperrors.ErrConflict, http.StatusConflict, "RES_004"},
		{apperrors.ErrRateLimited, http.StatusTooManyRequests, "RATE_001"},
		{fmt.Errorf("%w: list: %w", apperrors.ErrDatabase, errors.New("pq: boom")), http.StatusInternalServerError, "SRV_002"},
		{errors.New("unexpected"), http.StatusInternalServerError, "SRV_001"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			var body struct {
				Success bool `json:"success"`
				Error   struct {
					Code    string `json:"code"`
					Details any    `json:"details"`
				} `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Success || body.Error.Code != tt.code {
				t.Fatalf("unexpected body %s", w.Body.String())
			}
		})
	}
}

func TestHandleAPIError_ValidationIsItemized(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	HandleAPIError(c, apperrors.NewValidationError().Add("teamName", "teamName is required").Add("contactEmail", "bad email"))

	var body struct {
		Error struct {
			Details []apperrors.FieldError `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Error.Details) != 2 || body.Error.Details[1].Field != "contactEmail" {
		t.Fatalf("expected two itemized problems, got %s", w.Body.String())
	}
}

type countingLimiter struct {
	limit int
	seen  map[string]int
}

func (l *countingLimiter) Allow(_ context.Context, key string) bool {
	l.seen[key]++
	return l.seen[key] <= l.limit
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{limit: 2, seen: map[string]int{}}
	r := gin.New()
	r.POST("/submit", RateLimit(limiter, "submit"), func(c *gin.Context) { c.Status(http.StatusCreated) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusCreated || codes[1] != http.StatusCreated || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
	if limiter.seen["submit:203.0.113.7"] != 3 {
		t.Fatalf("expected requests keyed by client ip, got %v", limiter.seen)
	}
}
