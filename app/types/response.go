package types

import "github.com/vibast-solutions/ms-go-wellness/app/entity"

type MessageResponse struct {
	Message string `json:"message"`
}

type EmailResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type UserResponse struct {
	ID               uint64  `json:"id"`
	Email            string  `json:"email"`
	Type             string  `json:"type"`
	IsEmailVerified  bool    `json:"isEmailVerified"`
	Username         string  `json:"username"`
	BirthDate        string  `json:"birthDate"`
	Height           float64 `json:"height"`
	Weight           float64 `json:"weight"`
	Gender           string  `json:"gender"`
	HasHeartProblems bool    `json:"heartProblems"`
}

func NewUserResponse(user *entity.User, profile *entity.Profile) *UserResponse {
	resp := &UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		Type:            string(user.Type),
		IsEmailVerified: user.IsEmailVerified,
	}
	if profile != nil {
		resp.Username = profile.Username
		resp.BirthDate = profile.BirthDate.Format(BirthDateLayout)
		resp.Height = profile.Height
		resp.Weight = profile.Weight
		resp.Gender = profile.Gender
		resp.HasHeartProblems = profile.HasHeartProblems
	}
	return resp
}

// RegisterResponse carries the email verification token alongside the created user.
type RegisterResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	User    *UserResponse `json:"user"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}
