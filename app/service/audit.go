package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-wellness/app/entity"

	"github.com/sirupsen/logrus"
)

const (
	ActionRegister               = "Register Attempt"
	ActionVerifyEmail            = "Verify Email Attempt"
	ActionResendVerification     = "Resend Verification Attempt"
	ActionLogin                  = "Login Attempt"
	ActionChangePassword         = "Change Password Attempt"
	ActionForgotPassword         = "Forgot Password Attempt"
	ActionValidateResetToken     = "Validate Reset Token Attempt"
	ActionResetPassword          = "Reset Password Attempt"
	ActionChangeEmail            = "Change Email Attempt"
	ActionConfirmEmailChange     = "Confirm Email Change Attempt"
	ActionCancelEmailChange      = "Cancel Email Change Attempt"
	ActionDeleteAccount          = "Delete Account Attempt"
	ActionConfirmAccountDeletion = "Confirm Account Deletion Attempt"
	ActionCancelAccountDeletion  = "Cancel Account Deletion Attempt"
)

const (
	StatusSuccess       = "Success"
	statusInternalError = "Failed: Internal Error"
)

// ErrTokenExpired and ErrTokenUsed wrap ErrInvalidToken, so they are listed before it.
var failureStatuses = []struct {
	err    error
	status string
}{
	{ErrInvalidInput, "Failed: Invalid Input"},
	{ErrWeakPassword, "Failed: Weak Password"},
	{ErrUnderage, "Failed: Underage"},
	{ErrEmailTaken, "Failed: Email Already Registered"},
	{ErrUsernameTaken, "Failed: Username Already Taken"},
	{ErrUserNotFound, "Failed: User Not Found"},
	{ErrInvalidCredentials, "Failed: Invalid Credentials"},
	{ErrEmailNotVerified, "Failed: Email Not Verified"},
	{ErrEmailAlreadyVerified, "Failed: Email Already Verified"},
	{ErrPasswordMismatch, "Failed: Incorrect Password"},
	{ErrSamePassword, "Failed: Password Unchanged"},
	{ErrSameEmail, "Failed: Email Unchanged"},
	{ErrTooManyRequests, "Failed: Throttled"},
	{ErrMailDelivery, "Failed: Email Not Sent"},
	{ErrTokenExpired, "Failed: Token Expired"},
	{ErrTokenUsed, "Failed: Token Already Used"},
	{ErrInvalidToken, "Failed: Invalid Token"},
}

// AuditStatus renders the status column for the outcome of an attempt.
func AuditStatus(err error) string {
	if err == nil {
		return StatusSuccess
	}
	for _, f := range failureStatuses {
		if errors.Is(err, f.err) {
			return f.status
		}
	}
	return statusInternalError
}

type auditLogWriter interface {
	Create(ctx context.Context, log *entity.AuditLog) error
}

// recordAudit appends one row for an attempt. A failed write is logged and never
// replaces the outcome the caller already has.
func recordAudit(ctx context.Context, repo auditLogWriter, now time.Time, action string, userID uint64, outcome error) {
	log := &entity.AuditLog{
		Timestamp: now,
		Action:    action,
		Status:    AuditStatus(outcome),
	}
	if userID != 0 {
		log.UserID = sql.NullInt64{Int64: int64(userID), Valid: true}
	}

	if err := repo.Create(context.WithoutCancel(ctx), log); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action":  action,
			"status":  log.Status,
			"user_id": userID,
		}).Error("Failed to write audit log")
	}
}
