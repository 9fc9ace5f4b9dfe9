package service

import (
	"context"
	"errors"

	"examportal/internal/model"
	"examportal/internal/repository"
)

// ErrWrongPassword reports a password change with a bad current password.
var ErrWrongPassword = errors.New("current password is incorrect")

// AdminService handles admin account business logic.
type AdminService struct {
	adminRepo   *repository.AdminRepository
	authService *AuthService
}

// NewAdminService creates a new AdminService.
func NewAdminService(adminRepo *repository.AdminRepository, authService *AuthService) *AdminService {
	return &AdminService{adminRepo: adminRepo, authService: authService}
}

// GetByID retrieves an admin profile.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return s.adminRepo.GetByID(ctx, id)
}

// GetByUsername retrieves an admin by username.
func (s *AdminService) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	return s.adminRepo.GetByUsername(ctx, username)
}

// ChangePassword verifies the current password, stores the new hash and
// clears the forced-change flag set by a reset.
func (s *AdminService) ChangePassword(ctx context.Context, adminID int, current, next string) error {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return err
	}
	if err := s.authService.CheckPassword(admin.PasswordHash, current); err != nil {
		return ErrWrongPassword
	}

	hash, err := s.authService.HashPassword(next)
	if err != nil {
		return err
	}
	return s.adminRepo.UpdatePassword(ctx, adminID, hash, false)
}
