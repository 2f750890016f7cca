package controller

import (
	"errors"
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-wellness/app/dto/http"
	"github.com/vibast-solutions/ms-go-wellness/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	msgInvalidBody   = "Invalid request body."
	msgInvalidInput  = "Invalid input."
	msgUnauthorized  = "Unauthorized."
	msgInternalError = "Internal server error."
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrEmailNotVerified):
		return http.StatusForbidden
	}

	switch service.KindOf(err) {
	case service.KindValidation, service.KindAuth:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindThrottled:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) httpdto.ErrorResponse {
	var invalid *service.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		return httpdto.ErrorResponse{Message: msgInvalidInput, Errors: invalid.Fields}
	case errors.Is(err, service.ErrWeakPassword):
		return httpdto.ErrorResponse{Message: err.Error()}
	case errors.Is(err, service.ErrUserNotFound):
		return httpdto.ErrorResponse{Message: "User not found."}
	case errors.Is(err, service.ErrTokenExpired):
		return httpdto.ErrorResponse{Message: "Token has expired."}
	case errors.Is(err, service.ErrTokenUsed):
		return httpdto.ErrorResponse{Message: "Token has already been used."}
	case errors.Is(err, service.ErrInvalidToken):
		return httpdto.ErrorResponse{Message: "Invalid token."}
	case errors.Is(err, service.ErrMailDelivery):
		return httpdto.ErrorResponse{Message: "Email could not be sent. Please try again later."}
	case service.KindOf(err) == service.KindInfrastructure:
		return httpdto.ErrorResponse{Message: msgInternalError}
	default:
		return httpdto.ErrorResponse{Message: err.Error()}
	}
}

// fail writes the error reply for a workflow failure. Server-side failures log at Error, the rest at Warn.
func fail(ctx echo.Context, log *logrus.Entry, err error, msg string) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error(msg)
	} else {
		log.WithError(err).Warn(msg)
	}
	return ctx.JSON(status, errorBody(err))
}

func badBody(ctx echo.Context, err error, msg string) error {
	logrus.WithError(err).Debug(msg)
	return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Message: msgInvalidBody})
}

// currentUserID reads the id RequireAuth stored on the context.
func currentUserID(ctx echo.Context) (uint64, bool) {
	userID, ok := ctx.Get("user_id").(uint64)
	return userID, ok
}
