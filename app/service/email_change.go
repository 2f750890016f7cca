package service

import (
	"context"

	"github.com/vibast-solutions/ms-go-wellness/app/entity"
	"github.com/vibast-solutions/ms-go-wellness/app/mailer"
	"github.com/vibast-solutions/ms-go-wellness/app/repository"
	"github.com/vibast-solutions/ms-go-wellness/app/types"
)

// RequestEmailChange mails a confirm link to the new address and a cancel link
// to the current one. Both links carry the same token.
func (s *accountService) RequestEmailChange(ctx context.Context, userID uint64, req *types.ChangeEmailRequest) (err error) {
	defer func() { s.audit(ctx, ActionChangeEmail, userID, err) }()

	if err = req.Validate(); err != nil {
		return invalidInput(err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	canonicalEmail := CanonicalizeEmail(req.NewEmail)
	if canonicalEmail == user.CanonicalEmail {
		return ErrSameEmail
	}
	existing, err := s.userRepo.FindByCanonicalEmail(ctx, canonicalEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}
	if err = s.allowMail(ctx, user.CanonicalEmail); err != nil {
		return err
	}

	if err = s.tokenRepo.SupersedeForUser(ctx, entity.TokenKindResetEmail, user.ID); err != nil {
		return err
	}
	issued, err := s.issueToken(ctx, s.tokenRepo, user, entity.TokenKindResetEmail, req.NewEmail)
	if err != nil {
		return err
	}

	data := mailer.Data{
		Email:      user.Email,
		NewEmail:   req.NewEmail,
		Link:       s.link(pathConfirmEmailChange, issued.Token),
		CancelLink: s.link(pathCancelEmailChange, issued.Token),
		ExpiresAt:  issued.ExpiresAt,
	}
	if err = s.sendMail(ctx, req.NewEmail, mailer.TemplateConfirmEmailChange, data); err != nil {
		return err
	}
	return s.sendMail(ctx, user.Email, mailer.TemplateNotifyEmailChange, data)
}

// ConfirmEmailChange swaps the address stored in the token record in and marks it verified.
func (s *accountService) ConfirmEmailChange(ctx context.Context, req *types.TokenRequest) (resp *types.EmailResponse, err error) {
	var userID uint64
	defer func() { s.audit(ctx, ActionConfirmEmailChange, userID, err) }()

	claims, err := s.parseToken(req, entity.TokenKindResetEmail)
	if err != nil {
		return nil, err
	}
	userID = claims.UserID

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txUserRepo := repository.NewUserRepository(tx)
	user, err := txUserRepo.FindByIDForUpdate(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	record, err := s.consumeRecord(ctx, repository.NewTokenRepository(tx), claims, entity.TokenKindResetEmail)
	if err != nil {
		return nil, err
	}
	if !record.NewEmail.Valid || record.NewEmail.String == "" {
		return nil, ErrInvalidToken
	}

	user.Email = record.NewEmail.String
	user.CanonicalEmail = CanonicalizeEmail(record.NewEmail.String)
	user.IsEmailVerified = true
	if err = txUserRepo.Update(ctx, user); err != nil {
		return nil, duplicateAs(err, ErrEmailTaken)
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &types.EmailResponse{Message: "Email changed successfully.", Email: user.Email}, nil
}

func (s *accountService) CancelEmailChange(ctx context.Context, req *types.TokenRequest) (err error) {
	var userID uint64
	defer func() { s.audit(ctx, ActionCancelEmailChange, userID, err) }()

	claims, err := s.parseToken(req, entity.TokenKindResetEmail)
	if err != nil {
		return err
	}
	userID = claims.UserID

	return s.consumeOnly(ctx, claims, entity.TokenKindResetEmail)
}
