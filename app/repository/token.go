package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-wellness/app/entity"
)

var ErrUnknownTokenKind = errors.New("unknown token kind")

// TokenRepository stores token records. Every method addresses the table of the given kind.
type TokenRepository struct {
	db DBTX
}

func NewTokenRepository(db DBTX) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, kind entity.TokenKind, record *entity.TokenRecord) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ` + table + ` (token_id, user_id, new_email, created_at, expires_at, is_used)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		record.TokenID,
		record.UserID,
		record.NewEmail,
		record.CreatedAt,
		record.ExpiresAt,
		record.IsUsed,
	)
	if err != nil {
		return translateError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	record.ID = uint64(id)
	return nil
}

func (r *TokenRepository) FindByTokenID(ctx context.Context, kind entity.TokenKind, tokenID string) (*entity.TokenRecord, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, token_id, user_id, new_email, created_at, expires_at, is_used
		FROM ` + table + ` WHERE token_id = ?
	`
	return r.findOne(ctx, query, tokenID)
}

func (r *TokenRepository) FindByTokenIDForUpdate(ctx context.Context, kind entity.TokenKind, tokenID string) (*entity.TokenRecord, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, token_id, user_id, new_email, created_at, expires_at, is_used
		FROM ` + table + ` WHERE token_id = ? FOR UPDATE
	`
	return r.findOne(ctx, query, tokenID)
}

// MarkUsed flips is_used for an unused record and returns the affected row count.
// Zero rows means the token was already consumed by a concurrent request.
func (r *TokenRepository) MarkUsed(ctx context.Context, kind entity.TokenKind, tokenID string) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	query := `UPDATE ` + table + ` SET is_used = 1 WHERE token_id = ? AND is_used = 0`
	result, err := r.db.ExecContext(ctx, query, tokenID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// SupersedeForUser marks every outstanding record of the user as used.
func (r *TokenRepository) SupersedeForUser(ctx context.Context, kind entity.TokenKind, userID uint64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	query := `UPDATE ` + table + ` SET is_used = 1 WHERE user_id = ? AND is_used = 0`
	_, err = r.db.ExecContext(ctx, query, userID)
	return err
}

func (r *TokenRepository) findOne(ctx context.Context, query string, arg any) (*entity.TokenRecord, error) {
	record := &entity.TokenRecord{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&record.ID,
		&record.TokenID,
		&record.UserID,
		&record.NewEmail,
		&record.CreatedAt,
		&record.ExpiresAt,
		&record.IsUsed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func tableFor(kind entity.TokenKind) (string, error) {
	table := kind.Table()
	if table == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownTokenKind, kind)
	}
	return table, nil
}
