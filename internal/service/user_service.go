package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"examportal/internal/model"
	"examportal/internal/repository"
	"examportal/internal/response"
)

// ErrServiceNoTaken reports a registration against an existing service number.
var ErrServiceNoTaken = errors.New("service number already registered")

// UserService handles user account business logic.
type UserService struct {
	userRepo    *repository.UserRepository
	authService *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, authService *AuthService) *UserService {
	return &UserService{userRepo: userRepo, authService: authService}
}

// Register creates a user account with a hashed password.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if _, err := s.userRepo.GetByServiceNo(ctx, req.ServiceNo); err == nil {
		return nil, ErrServiceNoTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ServiceNo:    req.ServiceNo,
		Name:         req.Name,
		WingName:     req.WingName,
		DivisionName: req.DivisionName,
		DistrictName: req.DistrictName,
		SectionName:  req.SectionName,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user profile.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetByServiceNo retrieves a user by service number.
func (s *UserService) GetByServiceNo(ctx context.Context, serviceNo string) (*model.User, error) {
	return s.userRepo.GetByServiceNo(ctx, serviceNo)
}

// List retrieves users with pagination for the admin views.
func (s *UserService) List(ctx context.Context, page, perPage int) ([]model.User, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	users, total, err := s.userRepo.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if users == nil {
		users = []model.User{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return users, pagination, nil
}
