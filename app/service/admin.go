package service

import (
	"context"

	"github.com/vibast-solutions/ms-go-wellness/app/entity"
)

type AdminService interface {
	Promote(ctx context.Context, email string) (*entity.User, error)
}

type adminService struct {
	userRepo userRepository
}

func NewAdminService(userRepo userRepository) AdminService {
	return &adminService{userRepo: userRepo}
}

// Promote grants the Admin type, which is required to read audit logs.
func (s *adminService) Promote(ctx context.Context, email string) (*entity.User, error) {
	user, err := s.userRepo.FindByCanonicalEmail(ctx, CanonicalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.IsAdmin() {
		return nil, ErrAlreadyAdmin
	}

	user.Type = entity.UserTypeAdmin
	if err = s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
