package controller

import (
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-wellness/app/dto/http"
	"github.com/vibast-solutions/ms-go-wellness/app/service"
	"github.com/vibast-solutions/ms-go-wellness/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AccountController struct {
	accountService service.AccountService
}

func NewAccountController(accountService service.AccountService) *AccountController {
	return &AccountController{accountService: accountService}
}

func (c *AccountController) Register(ctx echo.Context) error {
	req, err := types.NewRegisterRequestFromContext(ctx)
	if err != nil {
		return badBody(ctx, err, "Failed to bind register request")
	}

	log := logrus.WithField("email", req.Email)
	log.Info("Register request received")
	result, err := c.accountService.Register(ctx.Request().Context(), req)
	if err != nil {
		return fail(ctx, log, err, "Register failed")
	}

	log.WithField("user_id", result.User.ID).Info("User registered")
	return ctx.JSON(http.StatusOK, result)
}

func (c *AccountController) VerifyEmail(ctx echo.Context) error {
	req := types.NewTokenRequestFromQuery(ctx)

	result, err := c.accountService.VerifyEmail(ctx.Request().Context(), req)
	if err != nil {
		return fail(ctx, logrus.NewEntry(logrus.StandardLogger()), err, "Verify email failed")
	}

	logrus.WithField("email", result.Email).Info("Email verified")
	return ctx.JSON(http.StatusOK, result)
}

func (c *AccountController) ResendVerification(ctx echo.Context) error {
	req, err := types.NewEmailRequestFromContext(ctx)
	if err != nil {
		return badBody(ctx, err, "Failed to bind resend verification request")
	}

	log := logrus.WithField("email", req.Email)
	if err = c.accountService.ResendVerification(ctx.Request().Context(), req); err != nil {
		return fail(ctx, log, err, "Resend verification failed")
	}

	log.Info("Verification email resent")
	return ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Verification email sent."})
}

func (c *AccountController) Login(ctx echo.Context) error {
	req, err := types.NewLoginRequestFromContext(ctx)
	if err != nil {
		return badBody(ctx, err, "Failed to bind login request")
	}

	log := logrus.WithField("email", req.Email)
	result, err := c.accountService.Login(ctx.Request().Context(), req)
	if err != nil {
		return fail(ctx, log, err, "Login failed")
	}

	log.Info("Login successful")
	return ctx.JSON(http.StatusOK, result)
}

func (c *AccountController) ChangePassword(ctx echo.Context) error {
	userID, ok := currentUserID(ctx)
	if !ok {
		logrus.Warn("Change password failed: missing user_id in context")
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Message: msgUnauthorized})
	}

	req, err := types.NewChangePasswordRequestFromContext(ctx)
	if err != nil {
		return badBody(ctx, err, "Failed to bind change password request")
	}

	log := logrus.WithField("user_id", userID)
	if err = c.accountService.ChangePassword(ctx.Request().Context(), userID, req); err != nil {
		return fail(ctx, log, err, "Change password failed")
	}

	log.Info("Password changed")
	return ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Password changed successfully."})
}
