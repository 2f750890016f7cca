package types

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/labstack/echo/v4"
)

const BirthDateLayout = "2006-01-02"

type RegisterRequest struct {
	Username      string  `json:"username"`
	BirthDate     string  `json:"birthDate"`
	Email         string  `json:"email"`
	Height        float64 `json:"height"`
	Weight        float64 `json:"weight"`
	Gender        string  `json:"gender"`
	Password      string  `json:"password"`
	HeartProblems bool    `json:"heartProblems"`
}

func NewRegisterRequestFromContext(ctx echo.Context) (*RegisterRequest, error) {
	var body RegisterRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Username = strings.TrimSpace(body.Username)
	body.Email = strings.TrimSpace(body.Email)
	return &body, nil
}

// Validate checks request shape only. Password strength and age are business
// rules and are enforced by the registration workflow.
func (r *RegisterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&r.BirthDate, validation.Required, validation.Date(BirthDateLayout)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Height, validation.Required, validation.Max(300.0)),
		validation.Field(&r.Weight, validation.Required, validation.Max(700.0)),
		validation.Field(&r.Gender, validation.Required, validation.Length(1, 20)),
		validation.Field(&r.Password, validation.Required),
	)
}

func (r *RegisterRequest) ParsedBirthDate() (time.Time, error) {
	return time.Parse(BirthDateLayout, r.BirthDate)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewLoginRequestFromContext(ctx echo.Context) (*LoginRequest, error) {
	var body LoginRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// EmailRequest is the body of the forgot-password and resend-verification endpoints.
type EmailRequest struct {
	Email string `json:"email"`
}

func NewEmailRequestFromContext(ctx echo.Context) (*EmailRequest, error) {
	var body EmailRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Email = strings.TrimSpace(body.Email)
	return &body, nil
}

func (r *EmailRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type TokenRequest struct {
	Token string `json:"token"`
}

func NewTokenRequestFromContext(ctx echo.Context) (*TokenRequest, error) {
	var body TokenRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Token = strings.TrimSpace(body.Token)
	return &body, nil
}

// NewTokenRequestFromQuery reads the token from the ?token= parameter of an emailed link.
func NewTokenRequestFromQuery(ctx echo.Context) *TokenRequest {
	return &TokenRequest{Token: strings.TrimSpace(ctx.QueryParam("token"))}
}

func (r *TokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required),
	)
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func NewResetPasswordRequestFromContext(ctx echo.Context) (*ResetPasswordRequest, error) {
	var body ResetPasswordRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Token = strings.TrimSpace(body.Token)
	return &body, nil
}

func (r *ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func NewChangePasswordRequestFromContext(ctx echo.Context) (*ChangePasswordRequest, error) {
	var body ChangePasswordRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

type ChangeEmailRequest struct {
	NewEmail string `json:"newEmail"`
}

func NewChangeEmailRequestFromContext(ctx echo.Context) (*ChangeEmailRequest, error) {
	var body ChangeEmailRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.NewEmail = strings.TrimSpace(body.NewEmail)
	return &body, nil
}

func (r *ChangeEmailRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.NewEmail, validation.Required, validation.Length(3, 254), is.Email),
	)
}
