package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-wellness/app/entity"
)

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	query := `
		INSERT INTO profiles (username, birth_date, height, weight, gender, has_heart_problems, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		profile.Username,
		profile.BirthDate,
		profile.Height,
		profile.Weight,
		profile.Gender,
		profile.HasHeartProblems,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	profile.ID = uint64(id)
	return nil
}

func (r *ProfileRepository) FindByUsername(ctx context.Context, username string) (*entity.Profile, error) {
	query := `
		SELECT id, username, birth_date, height, weight, gender, has_heart_problems, created_at, updated_at
		FROM profiles WHERE username = ?
	`
	profile := &entity.Profile{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&profile.ID,
		&profile.Username,
		&profile.BirthDate,
		&profile.Height,
		&profile.Weight,
		&profile.Gender,
		&profile.HasHeartProblems,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *ProfileRepository) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	return err
}
