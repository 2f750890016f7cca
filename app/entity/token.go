package entity

import (
	"database/sql"
	"time"
)

// TokenKind names the workflow a token record guards. Each kind is stored in its own table.
type TokenKind string

const (
	TokenKindVerifyEmail   TokenKind = "verify_email"
	TokenKindResetPassword TokenKind = "reset_password"
	TokenKindResetEmail    TokenKind = "reset_email"
	TokenKindDeleteAccount TokenKind = "delete_account"
)

func (k TokenKind) Table() string {
	switch k {
	case TokenKindVerifyEmail:
		return "verify_email_tokens"
	case TokenKindResetPassword:
		return "reset_password_tokens"
	case TokenKindResetEmail:
		return "reset_email_tokens"
	case TokenKindDeleteAccount:
		return "delete_account_tokens"
	default:
		return ""
	}
}

func (k TokenKind) Valid() bool {
	return k.Table() != ""
}

// TokenRecord is the server-side counterpart of a signed token.
type TokenRecord struct {
	ID        uint64
	TokenID   string
	UserID    uint64
	NewEmail  sql.NullString
	CreatedAt time.Time
	ExpiresAt time.Time
	IsUsed    bool
}

func (r *TokenRecord) ExpiredAt(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
