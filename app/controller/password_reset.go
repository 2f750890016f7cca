package controller

import (
	"net/http"

	"github.com/vibast-solutions/ms-go-wellness/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func (c *AccountController) ForgotPassword(ctx echo.Context) error {
	req, err := types.NewEmailRequestFromContext(ctx)
	if err != nil {
		return badBody(ctx, err, "Failed to bind forgot password request")
	}

	log := logrus.WithField("email", req.Email)
	log.Info("Forgot password request received")
	if err = c.accountService.ForgotPassword(ctx.Request().Context(), req); err != nil {
		return fail(ctx, log, err, "Forgot password failed")
	}

	return ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Password reset email sent."})
}

func (c *AccountController) ValidateResetPasswordToken(ctx echo.Context) error {
	req := types.NewTokenRequestFromQuery(ctx)

	result, err := c.accountService.ValidateResetPasswordToken(ctx.Request().Context(), req)
	if err != nil {
		return fail(ctx, logrus.NewEntry(logrus.StandardLogger()), err, "Reset token validation failed")
	}

	return ctx.JSON(http.StatusOK, result)
}

func (c *AccountController) ResetPassword(ctx echo.Context) error {
	req, err := types.NewResetPasswordRequestFromContext(ctx)
	if err != nil {
		return badBody(ctx, err, "Failed to bind reset password request")
	}

	log := logrus.NewEntry(logrus.StandardLogger())
	if err = c.accountService.ResetPassword(ctx.Request().Context(), req); err != nil {
		return fail(ctx, log, err, "Reset password failed")
	}

	log.Info("Password reset")
	return ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Password has been reset successfully."})
}
