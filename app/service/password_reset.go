package service

import (
	"context"
	"fmt"

	"github.com/vibast-solutions/ms-go-wellness/app/entity"
	"github.com/vibast-solutions/ms-go-wellness/app/mailer"
	"github.com/vibast-solutions/ms-go-wellness/app/repository"
	"github.com/vibast-solutions/ms-go-wellness/app/types"
)

func (s *accountService) ForgotPassword(ctx context.Context, req *types.EmailRequest) (err error) {
	var userID uint64
	defer func() { s.audit(ctx, ActionForgotPassword, userID, err) }()

	if err = req.Validate(); err != nil {
		return invalidInput(err)
	}

	user, err := s.userRepo.FindByCanonicalEmail(ctx, CanonicalizeEmail(req.Email))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	userID = user.ID
	if err = s.allowMail(ctx, user.CanonicalEmail); err != nil {
		return err
	}

	if err = s.tokenRepo.SupersedeForUser(ctx, entity.TokenKindResetPassword, user.ID); err != nil {
		return err
	}
	issued, err := s.issueToken(ctx, s.tokenRepo, user, entity.TokenKindResetPassword, "")
	if err != nil {
		return err
	}

	return s.sendMail(ctx, user.Email, mailer.TemplateResetPassword, mailer.Data{
		Email:     user.Email,
		Link:      s.link(pathResetPassword, issued.Token),
		ExpiresAt: issued.ExpiresAt,
	})
}

// ValidateResetPasswordToken is read-only and may be called any number of times
// before the token is consumed.
func (s *accountService) ValidateResetPasswordToken(ctx context.Context, req *types.TokenRequest) (resp *types.EmailResponse, err error) {
	var userID uint64
	defer func() { s.audit(ctx, ActionValidateResetToken, userID, err) }()

	claims, err := s.parseToken(req, entity.TokenKindResetPassword)
	if err != nil {
		return nil, err
	}
	userID = claims.UserID

	record, err := s.tokenRepo.FindByTokenID(ctx, entity.TokenKindResetPassword, claims.TokenID())
	if err != nil {
		return nil, err
	}
	if err = s.checkRecord(record, claims); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	return &types.EmailResponse{Message: "Token is valid.", Email: user.Email}, nil
}

func (s *accountService) ResetPassword(ctx context.Context, req *types.ResetPasswordRequest) (err error) {
	var userID uint64
	defer func() { s.audit(ctx, ActionResetPassword, userID, err) }()

	if err = req.Validate(); err != nil {
		return invalidInput(err)
	}
	claims, err := s.parseRawToken(req.Token, entity.TokenKindResetPassword)
	if err != nil {
		return err
	}
	userID = claims.UserID

	if err = s.cfg.Password.Policy.Validate(req.NewPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	txUserRepo := repository.NewUserRepository(tx)
	user, err := txUserRepo.FindByIDForUpdate(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidToken
	}
	if s.hasher.Matches(user.PasswordHash, req.NewPassword) {
		return ErrSamePassword
	}

	if _, err = s.consumeRecord(ctx, repository.NewTokenRepository(tx), claims, entity.TokenKindResetPassword); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	if err = txUserRepo.Update(ctx, user); err != nil {
		return err
	}

	return tx.Commit()
}
