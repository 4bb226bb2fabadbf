package service

import (
	"context"
	"strings"

	"petmatch/internal/models"
	"petmatch/internal/repository"
)

type RegisterUserRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

type UserService interface {
	Register(ctx context.Context, req RegisterUserRequest) (*models.User, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	UpdateNotificationToken(ctx context.Context, userID int64, token string) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{
		userRepo: userRepo,
	}
}

func (s *userService) Register(ctx context.Context, req RegisterUserRequest) (*models.User, error) {
	user := &models.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser returns the profile with the current points balance.
func (s *userService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) UpdateNotificationToken(ctx context.Context, userID int64, token string) error {
	return s.userRepo.UpdateNotificationToken(ctx, userID, token)
}
