package controller

import (
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-wellness/app/dto/http"
	"github.com/vibast-solutions/ms-go-wellness/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func (c *AccountController) RequestEmailChange(ctx echo.Context) error {
	userID, ok := currentUserID(ctx)
	if !ok {
		logrus.Warn("Change email failed: missing user_id in context")
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Message: msgUnauthorized})
	}

	req, err := types.NewChangeEmailRequestFromContext(ctx)
	if err != nil {
		return badBody(ctx, err, "Failed to bind change email request")
	}

	log := logrus.WithFields(logrus.Fields{"user_id": userID, "new_email": req.NewEmail})
	if err = c.accountService.RequestEmailChange(ctx.Request().Context(), userID, req); err != nil {
		return fail(ctx, log, err, "Change email failed")
	}

	log.Info("Email change requested")
	return ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Confirmation email sent to the new address."})
}

func (c *AccountController) ConfirmEmailChange(ctx echo.Context) error {
	req, err := types.NewTokenRequestFromContext(ctx)
	if err != nil {
		return badBody(ctx, err, "Failed to bind confirm email change request")
	}

	result, err := c.accountService.ConfirmEmailChange(ctx.Request().Context(), req)
	if err != nil {
		return fail(ctx, logrus.NewEntry(logrus.StandardLogger()), err, "Confirm email change failed")
	}

	logrus.WithField("email", result.Email).Info("Email changed")
	return ctx.JSON(http.StatusOK, result)
}

func (c *AccountController) CancelEmailChange(ctx echo.Context) error {
	req, err := types.NewTokenRequestFromContext(ctx)
	if err != nil {
		return badBody(ctx, err, "Failed to bind cancel email change request")
	}

	if err = c.accountService.CancelEmailChange(ctx.Request().Context(), req); err != nil {
		return fail(ctx, logrus.NewEntry(logrus.StandardLogger()), err, "Cancel email change failed")
	}

	return ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Email change cancelled."})
}

func (c *AccountController) RequestAccountDeletion(ctx echo.Context) error {
	userID, ok := currentUserID(ctx)
	if !ok {
		logrus.Warn("Delete account failed: missing user_id in context")
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Message: msgUnauthorized})
	}
	if userID == 0 {
		logrus.Warn("Delete account failed: token carries no user id")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Message: "Invalid user id."})
	}

	log := logrus.WithField("user_id", userID)
	if err := c.accountService.RequestAccountDeletion(ctx.Request().Context(), userID); err != nil {
		return fail(ctx, log, err, "Delete account failed")
	}

	log.Info("Account deletion requested")
	return ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Confirmation email sent."})
}

func (c *AccountController) ConfirmAccountDeletion(ctx echo.Context) error {
	req, err := types.NewTokenRequestFromContext(ctx)
	if err != nil {
		return badBody(ctx, err, "Failed to bind confirm account deletion request")
	}

	if err = c.accountService.ConfirmAccountDeletion(ctx.Request().Context(), req); err != nil {
		return fail(ctx, logrus.NewEntry(logrus.StandardLogger()), err, "Confirm account deletion failed")
	}

	logrus.Info("Account deleted")
	return ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Account deleted successfully."})
}

func (c *AccountController) CancelAccountDeletion(ctx echo.Context) error {
	req, err := types.NewTokenRequestFromContext(ctx)
	if err != nil {
		return badBody(ctx, err, "Failed to bind cancel account deletion request")
	}

	if err = c.accountService.CancelAccountDeletion(ctx.Request().Context(), req); err != nil {
		return fail(ctx, logrus.NewEntry(logrus.StandardLogger()), err, "Cancel account deletion failed")
	}

	return ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Account deletion cancelled."})
}
