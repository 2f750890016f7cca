// Package token signs and validates the time-boxed JWTs used by the account
// lifecycle workflows and by bearer authentication.
//
// Every lifecycle token embeds a random token id (the jti claim) that the
// caller persists as a server-side record. The signature and expiry checked
// here are necessary but not sufficient: one-shot use is enforced against the
// record, never by this package.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-wellness/config"

	"github.com/golang-jwt/jwt/v5"
)

// PurposeAccess marks bearer access tokens. Lifecycle tokens use the record kind as purpose.
const PurposeAccess = "access"

var (
	ErrInvalid          = errors.New("invalid token")
	ErrMalformed        = fmt.Errorf("%w: malformed", ErrInvalid)
	ErrSignatureInvalid = fmt.Errorf("%w: signature invalid", ErrInvalid)
	ErrExpired          = fmt.Errorf("%w: expired", ErrInvalid)
	ErrWrongPurpose     = fmt.Errorf("%w: not issued for this purpose", ErrInvalid)
)

type Claims struct {
	UserID   uint64 `json:"uid"`
	Email    string `json:"email"`
	UserType string `json:"type,omitempty"`
	Purpose  string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenID returns the correlation id shared with the persisted record.
func (c *Claims) TokenID() string {
	return c.ID
}

type Subject struct {
	UserID   uint64
	Email    string
	UserType string
}

type Issued struct {
	Token     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

type Option func(*Issuer)

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

func NewIssuer(cfg config.JWTConfig, opts ...Option) *Issuer {
	i := &Issuer{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		leeway:   cfg.Leeway,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Issuer) Issue(subject Subject, purpose string, ttl time.Duration) (*Issued, error) {
	tokenID, err := NewTokenID()
	if err != nil {
		return nil, err
	}

	now := i.now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		UserID:   subject.UserID,
		Email:    subject.Email,
		UserType: subject.UserType,
		Purpose:  purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   subject.Email,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, err
	}

	return &Issued{
		Token:     signed,
		TokenID:   tokenID,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate checks signature, issuer, audience and expiry (with the configured
// leeway) and that the token was minted for purpose. All failures wrap ErrInvalid.
func (i *Issuer) Validate(raw, purpose string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(i.leeway),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if claims.Purpose != purpose || claims.ID == "" || claims.UserID == 0 {
		return nil, ErrWrongPurpose
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrWrongPurpose
	default:
		return ErrMalformed
	}
}

// NewTokenID returns 32 random bytes as lowercase hex.
func NewTokenID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
