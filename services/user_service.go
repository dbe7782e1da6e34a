package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arenaops/esports-platform/models"
	"github.com/arenaops/esports-platform/repositories"
	"github.com/arenaops/esports-platform/storage"
)

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error)
	ChangeRole(ctx context.Context, userID int, role string) error
	List(ctx context.Context) ([]models.User, error)
}

type UpdateProfileInput struct {
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	GameHandle *string `json:"game_handle,omitempty"`
	AvatarKey  *string `json:"avatar_key,omitempty"`
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{userRepo: userRepo, uploader: uploader}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	s.fillAvatarURL(user)
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.GameHandle != nil {
		handle := strings.TrimSpace(*input.GameHandle)
		if handle == "" {
			user.GameHandle = nil
		} else {
			user.GameHandle = &handle
		}
	}
	if input.AvatarKey != nil {
		user.AvatarKey = input.AvatarKey
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserGameHandleConflict):
			return nil, ErrUserGameHandleConflict
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrUserEmailConflict
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}

	s.fillAvatarURL(user)
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) ChangeRole(ctx context.Context, userID int, role string) error {
	normalized := models.UserRole(strings.ToLower(strings.TrimSpace(role)))
	if !normalized.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrValidationFailed, role)
	}
	if err := s.userRepo.UpdateRole(ctx, userID, normalized); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to change role for user %d: %w", userID, err)
	}
	return nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
		s.fillAvatarURL(&users[i])
	}
	return users, nil
}

func (s *userService) fillAvatarURL(user *models.User) {
	if s.uploader == nil || user.AvatarKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*user.AvatarKey)
	if url != "" {
		user.AvatarURL = &url
	}
}
