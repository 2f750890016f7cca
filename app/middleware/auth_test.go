package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-wellness/app/middleware"
	"github.com/vibast-solutions/ms-go-wellness/app/token"
	"github.com/vibast-solutions/ms-go-wellness/config"

	"github.com/labstack/echo/v4"
)

// issuerValidator checks bearer tokens the way the account service does.
type issuerValidator struct {
	issuer *token.Issuer
}

func (v issuerValidator) ValidateAccessToken(raw string) (*token.Claims, error) {
	return v.issuer.Validate(raw, token.PurposeAccess)
}

func newMiddleware(t *testing.T) (*middleware.AuthMiddleware, *token.Issuer) {
	t.Helper()

	issuer := token.NewIssuer(config.JWTConfig{
		Secret:         "test-secret",
		Issuer:         "ms-go-wellness",
		Audience:       "wellness-app",
		AccessTokenTTL: 15 * time.Minute,
		Leeway:         5 * time.Minute,
	})
	return middleware.NewAuthMiddleware(issuerValidator{issuer: issuer}), issuer
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	authMiddleware, _ := newMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	ctx := echo.New().NewContext(req, rec)

	if err := authMiddleware.RequireAuth(okHandler)(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRequireAuth_InvalidHeaderFormat(t *testing.T) {
	authMiddleware, _ := newMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	ctx := echo.New().NewContext(req, rec)

	if err := authMiddleware.RequireAuth(okHandler)(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	authMiddleware, _ := newMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	rec := httptest.NewRecorder()
	ctx := echo.New().NewContext(req, rec)

	if err := authMiddleware.RequireAuth(okHandler)(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRequireAuth_RejectsLifecycleToken(t *testing.T) {
	authMiddleware, issuer := newMiddleware(t)

	issued, err := issuer.Issue(token.Subject{UserID: 1, Email: "user@example.com"}, "verify_email", time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	rec := httptest.NewRecorder()
	ctx := echo.New().NewContext(req, rec)

	if err := authMiddleware.RequireAuth(okHandler)(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRequireAuth_SetsContextOnValidToken(t *testing.T) {
	authMiddleware, issuer := newMiddleware(t)

	issued, err := issuer.Issue(token.Subject{UserID: 1, Email: "user@example.com", UserType: "Standard"}, token.PurposeAccess, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+issued.Token)
	rec := httptest.NewRecorder()
	ctx := echo.New().NewContext(req, rec)

	handler := authMiddleware.RequireAuth(func(c echo.Context) error {
		userID, ok := c.Get("user_id").(uint64)
		if !ok || userID != 1 {
			t.Fatalf("expected user_id 1, got %v", c.Get("user_id"))
		}
		email, ok := c.Get("user_email").(string)
		if !ok || email != "user@example.com" {
			t.Fatalf("expected user_email user@example.com, got %v", c.Get("user_email"))
		}
		if c.Get("user_type") != "Standard" {
			t.Fatalf("expected user_type Standard, got %v", c.Get("user_type"))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	authMiddleware, _ := newMiddleware(t)

	cases := []struct {
		userType any
		status   int
	}{
		{nil, http.StatusForbidden},
		{"Standard", http.StatusForbidden},
		{"Admin", http.StatusOK},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/getLogs", nil)
		rec := httptest.NewRecorder()
		ctx := echo.New().NewContext(req, rec)
		if tc.userType != nil {
			ctx.Set("user_type", tc.userType)
		}

		if err := authMiddleware.RequireAdmin(okHandler)(ctx); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != tc.status {
			t.Fatalf("user_type %v: expected status %d, got %d", tc.userType, tc.status, rec.Code)
		}
	}
}
