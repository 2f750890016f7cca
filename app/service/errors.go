package service

import (
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-wellness/app/repository"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrWeakPassword         = errors.New("password does not meet policy requirements")
	ErrUnderage             = errors.New("user does not meet the minimum age requirement")
	ErrEmailTaken           = errors.New("email is already registered")
	ErrUsernameTaken        = errors.New("username is already taken")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailNotVerified     = errors.New("email is not verified")
	ErrEmailAlreadyVerified = errors.New("email is already verified")
	ErrPasswordMismatch     = errors.New("old password is incorrect")
	ErrSamePassword         = errors.New("new password must differ from the current password")
	ErrSameEmail            = errors.New("new email must differ from the current email")
	ErrAlreadyAdmin         = errors.New("user is already an admin")
	ErrTooManyRequests      = errors.New("too many emails requested, try again later")
	ErrMailDelivery         = errors.New("email could not be sent")

	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrTokenUsed    = fmt.Errorf("%w: already used", ErrInvalidToken)
)

// Kind groups workflow errors by how callers should react to them.
type Kind int

const (
	KindInfrastructure Kind = iota
	KindValidation
	KindNotFound
	KindAuth
	KindThrottled
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindThrottled:
		return "throttled"
	default:
		return "infrastructure"
	}
}

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrInvalidInput, KindValidation},
	{ErrWeakPassword, KindValidation},
	{ErrUnderage, KindValidation},
	{ErrEmailTaken, KindValidation},
	{ErrUsernameTaken, KindValidation},
	{ErrEmailAlreadyVerified, KindValidation},
	{ErrPasswordMismatch, KindValidation},
	{ErrSamePassword, KindValidation},
	{ErrSameEmail, KindValidation},
	{ErrAlreadyAdmin, KindValidation},
	{ErrUserNotFound, KindNotFound},
	{ErrInvalidToken, KindAuth},
	{ErrInvalidCredentials, KindAuth},
	{ErrEmailNotVerified, KindAuth},
	{ErrTooManyRequests, KindThrottled},
}

// KindOf classifies err. Anything unrecognised, mail delivery included, is infrastructure.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInfrastructure
}

// InvalidInputError carries per-field messages from request validation.
type InvalidInputError struct {
	Fields map[string]string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidInput, validation.Errors(toErrors(e.Fields)))
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

func invalidInput(err error) error {
	fields := map[string]string{}
	var errs validation.Errors
	if errors.As(err, &errs) {
		for field, fieldErr := range errs {
			fields[field] = fieldErr.Error()
		}
	} else {
		fields["request"] = err.Error()
	}
	return &InvalidInputError{Fields: fields}
}

func toErrors(fields map[string]string) map[string]error {
	out := make(map[string]error, len(fields))
	for field, msg := range fields {
		out[field] = errors.New(msg)
	}
	return out
}

// duplicateAs maps a storage uniqueness violation to the workflow error callers understand.
func duplicateAs(err, target error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return target
	}
	return err
}
