package entity

import "time"

type UserType string

const (
	UserTypeStandard UserType = "Standard"
	UserTypeAdmin    UserType = "Admin"
)

type User struct {
	ID              uint64
	ProfileID       uint64
	Email           string
	CanonicalEmail  string
	PasswordHash    string
	Type            UserType
	IsEmailVerified bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (u *User) IsAdmin() bool {
	return u.Type == UserTypeAdmin
}

// Profile is owned one-to-one by a User and created in the same transaction.
type Profile struct {
	ID               uint64
	Username         string
	BirthDate        time.Time
	Height           float64
	Weight           float64
	Gender           string
	HasHeartProblems bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AgeAt returns the number of full years between the birth date and at.
func (p *Profile) AgeAt(at time.Time) int {
	years := at.Year() - p.BirthDate.Year()
	if at.Month() < p.BirthDate.Month() || (at.Month() == p.BirthDate.Month() && at.Day() < p.BirthDate.Day()) {
		years--
	}
	return years
}
