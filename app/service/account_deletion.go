package service

import (
	"context"

	"github.com/vibast-solutions/ms-go-wellness/app/entity"
	"github.com/vibast-solutions/ms-go-wellness/app/mailer"
	"github.com/vibast-solutions/ms-go-wellness/app/repository"
	"github.com/vibast-solutions/ms-go-wellness/app/types"
)

func (s *accountService) RequestAccountDeletion(ctx context.Context, userID uint64) (err error) {
	defer func() { s.audit(ctx, ActionDeleteAccount, userID, err) }()

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err = s.allowMail(ctx, user.CanonicalEmail); err != nil {
		return err
	}

	if err = s.tokenRepo.SupersedeForUser(ctx, entity.TokenKindDeleteAccount, user.ID); err != nil {
		return err
	}
	issued, err := s.issueToken(ctx, s.tokenRepo, user, entity.TokenKindDeleteAccount, "")
	if err != nil {
		return err
	}

	return s.sendMail(ctx, user.Email, mailer.TemplateConfirmDeletion, mailer.Data{
		Email:      user.Email,
		Link:       s.link(pathConfirmAccountDelete, issued.Token),
		CancelLink: s.link(pathCancelAccountDelete, issued.Token),
		ExpiresAt:  issued.ExpiresAt,
	})
}

// ConfirmAccountDeletion removes the user and its profile. Token rows go with the
// user through ON DELETE CASCADE, so a replayed token no longer resolves.
func (s *accountService) ConfirmAccountDeletion(ctx context.Context, req *types.TokenRequest) (err error) {
	var userID uint64
	defer func() { s.audit(ctx, ActionConfirmAccountDeletion, userID, err) }()

	claims, err := s.parseToken(req, entity.TokenKindDeleteAccount)
	if err != nil {
		return err
	}
	userID = claims.UserID

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

	if _, err = s.consumeRecord(ctx, repository.NewTokenRepository(tx), claims, entity.TokenKindDeleteAccount); err != nil {
		return err
	}

	if _, err = txUserRepo.Delete(ctx, user.ID); err != nil {
		return err
	}
	if err = repository.NewProfileRepository(tx).Delete(ctx, user.ProfileID); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *accountService) CancelAccountDeletion(ctx context.Context, req *types.TokenRequest) (err error) {
	var userID uint64
	defer func() { s.audit(ctx, ActionCancelAccountDeletion, userID, err) }()

	claims, err := s.parseToken(req, entity.TokenKindDeleteAccount)
	if err != nil {
		return err
	}
	userID = claims.UserID

	return s.consumeOnly(ctx, claims, entity.TokenKindDeleteAccount)
}
