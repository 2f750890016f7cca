package middleware

import (
	"net/http"
	"strings"

	httpdto "github.com/vibast-solutions/ms-go-wellness/app/dto/http"
	"github.com/vibast-solutions/ms-go-wellness/app/entity"
	"github.com/vibast-solutions/ms-go-wellness/app/token"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type accessTokenValidator interface {
	ValidateAccessToken(raw string) (*token.Claims, error)
}

type AuthMiddleware struct {
	validator accessTokenValidator
}

func NewAuthMiddleware(validator accessTokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// RequireAuth accepts "Bearer <token>" and stores user_id, user_email and user_type on the context.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			logrus.Debug("Missing authorization header")
			return c.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Message: "Missing authorization header."})
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			logrus.Debug("Invalid authorization header format")
			return c.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Message: "Invalid authorization header format."})
		}

		claims, err := m.validator.ValidateAccessToken(parts[1])
		if err != nil {
			logrus.WithError(err).Debug("Invalid or expired access token")
			return c.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Message: "Invalid or expired token."})
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_type", claims.UserType)

		return next(c)
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userType, _ := c.Get("user_type").(string)
		if userType != string(entity.UserTypeAdmin) {
			logrus.WithField("user_id", c.Get("user_id")).Warn("Admin route refused")
			return c.JSON(http.StatusForbidden, httpdto.ErrorResponse{Message: "Forbidden."})
		}
		return next(c)
	}
}
