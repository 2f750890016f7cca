package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vibast-solutions/ms-go-wellness/app/entity"
	"github.com/vibast-solutions/ms-go-wellness/app/mailer"
	"github.com/vibast-solutions/ms-go-wellness/app/repository"
	"github.com/vibast-solutions/ms-go-wellness/app/throttle"
	"github.com/vibast-solutions/ms-go-wellness/app/token"
	"github.com/vibast-solutions/ms-go-wellness/app/types"
)

// Frontend routes the emailed links point at. Each receives the signed token as ?token=.
const (
	pathVerifyEmail          = "/verify-email"
	pathResetPassword        = "/reset-password"
	pathConfirmEmailChange   = "/change-email/confirm"
	pathCancelEmailChange    = "/change-email/cancel"
	pathConfirmAccountDelete = "/delete-account/confirm"
	pathCancelAccountDelete  = "/delete-account/cancel"
)

type tokenRecordCreator interface {
	Create(ctx context.Context, kind entity.TokenKind, record *entity.TokenRecord) error
}

type tokenRecordConsumer interface {
	FindByTokenIDForUpdate(ctx context.Context, kind entity.TokenKind, tokenID string) (*entity.TokenRecord, error)
	MarkUsed(ctx context.Context, kind entity.TokenKind, tokenID string) (int64, error)
}

func subjectOf(user *entity.User) token.Subject {
	return token.Subject{
		UserID:   user.ID,
		Email:    user.Email,
		UserType: string(user.Type),
	}
}

func (s *accountService) ttlFor(kind entity.TokenKind) time.Duration {
	switch kind {
	case entity.TokenKindVerifyEmail:
		return s.cfg.Tokens.VerifyEmailTTL
	case entity.TokenKindResetPassword:
		return s.cfg.Tokens.ResetPasswordTTL
	case entity.TokenKindResetEmail:
		return s.cfg.Tokens.ResetEmailTTL
	default:
		return s.cfg.Tokens.DeleteAccountTTL
	}
}

// issueToken signs a token for kind and persists its record before returning.
func (s *accountService) issueToken(ctx context.Context, repo tokenRecordCreator, user *entity.User, kind entity.TokenKind, newEmail string) (*token.Issued, error) {
	issued, err := s.issuer.Issue(subjectOf(user), string(kind), s.ttlFor(kind))
	if err != nil {
		return nil, err
	}

	record := &entity.TokenRecord{
		TokenID:   issued.TokenID,
		UserID:    user.ID,
		CreatedAt: issued.IssuedAt,
		ExpiresAt: issued.ExpiresAt,
	}
	if newEmail != "" {
		record.NewEmail = sql.NullString{String: newEmail, Valid: true}
	}
	if err = repo.Create(ctx, kind, record); err != nil {
		return nil, err
	}
	return issued, nil
}

// parseToken checks the request shape and the signed token. It never touches storage.
func (s *accountService) parseToken(req *types.TokenRequest, kind entity.TokenKind) (*token.Claims, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidInput(err)
	}
	return s.parseRawToken(req.Token, kind)
}

func (s *accountService) parseRawToken(raw string, kind entity.TokenKind) (*token.Claims, error) {
	claims, err := s.issuer.Validate(raw, string(kind))
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func (s *accountService) checkRecord(record *entity.TokenRecord, claims *token.Claims) error {
	if record == nil || record.UserID != claims.UserID {
		return ErrInvalidToken
	}
	if record.IsUsed {
		return ErrTokenUsed
	}
	if record.ExpiredAt(s.now()) {
		return ErrTokenExpired
	}
	return nil
}

// consumeRecord locks the record behind claims, checks it is live and marks it used.
// repo must be bound to the transaction that applies the token's effect.
func (s *accountService) consumeRecord(ctx context.Context, repo tokenRecordConsumer, claims *token.Claims, kind entity.TokenKind) (*entity.TokenRecord, error) {
	record, err := repo.FindByTokenIDForUpdate(ctx, kind, claims.TokenID())
	if err != nil {
		return nil, err
	}
	if err = s.checkRecord(record, claims); err != nil {
		return nil, err
	}

	rows, err := repo.MarkUsed(ctx, kind, record.TokenID)
	if err != nil {
		return nil, err
	}
	if rows != 1 {
		return nil, ErrTokenUsed
	}
	record.IsUsed = true
	return record, nil
}

// consumeOnly marks the token used without applying any effect.
func (s *accountService) consumeOnly(ctx context.Context, claims *token.Claims, kind entity.TokenKind) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = s.consumeRecord(ctx, repository.NewTokenRepository(tx), claims, kind); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *accountService) link(path, raw string) string {
	return s.cfg.App.BaseURL + path + "?" + url.Values{"token": {raw}}.Encode()
}

func (s *accountService) allowMail(ctx context.Context, key string) error {
	if s.limiter == nil {
		return nil
	}
	if err := s.limiter.Allow(ctx, key); err != nil {
		if errors.Is(err, throttle.ErrThrottled) {
			return ErrTooManyRequests
		}
		return err
	}
	return nil
}

func (s *accountService) sendMail(ctx context.Context, to string, tpl mailer.Template, data mailer.Data) error {
	subject, body, err := mailer.Render(tpl, data)
	if err != nil {
		return err
	}
	if err = s.mailer.Send(ctx, to, subject, body); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}
