package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-wellness/app/entity"
)

const userColumns = `id, profile_id, email, canonical_email, password_hash, type, is_email_verified, created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (profile_id, email, canonical_email, password_hash, type, is_email_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		user.ProfileID,
		user.Email,
		user.CanonicalEmail,
		user.PasswordHash,
		string(user.Type),
		user.IsEmailVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = uint64(id)
	return nil
}

func (r *UserRepository) FindByCanonicalEmail(ctx context.Context, canonicalEmail string) (*entity.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users WHERE canonical_email = ?`
	return r.findOne(ctx, query, canonicalEmail)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entity.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users WHERE id = ?`
	return r.findOne(ctx, query, id)
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
func (r *UserRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*entity.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users WHERE id = ? FOR UPDATE`
	return r.findOne(ctx, query, id)
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET
			email = ?,
			canonical_email = ?,
			password_hash = ?,
			type = ?,
			is_email_verified = ?,
			updated_at = ?
		WHERE id = ?
	`
	user.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.CanonicalEmail,
		user.PasswordHash,
		string(user.Type),
		user.IsEmailVerified,
		user.UpdatedAt,
		user.ID,
	)
	return translateError(err)
}

func (r *UserRepository) Delete(ctx context.Context, id uint64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	user := &entity.User{}
	var userType string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.ProfileID,
		&user.Email,
		&user.CanonicalEmail,
		&user.PasswordHash,
		&userType,
		&user.IsEmailVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user.Type = entity.UserType(userType)
	return user, nil
}
