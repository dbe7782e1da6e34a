package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arenaops/esports-platform/models"
	"github.com/arenaops/esports-platform/repositories"
	"golang.org/x/crypto/bcrypt"
)

const (
	referralCodeLength  = 8
	referralCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referralAwardPoints = 50

	minPasswordLength = 6
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
}

type RegisterInput struct {
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	GameHandle   *string `json:"game_handle,omitempty"`
	ReferralCode string  `json:"referral_code,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var referrer *models.User
	if code := strings.TrimSpace(input.ReferralCode); code != "" {
		referrer, err = s.userRepo.GetByReferralCode(ctx, strings.ToUpper(code))
		if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up referral code: %w", err)
		}
		// An unknown referral code does not block registration.
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hashedPassword),
		GameHandle:   input.GameHandle,
		Role:         models.RoleUser,
	}
	if referrer != nil {
		user.ReferredBy = &referrer.ID
	}

	if err := s.createWithUniqueReferralCode(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrUserEmailConflict
		case errors.Is(err, repositories.ErrUserGameHandleConflict):
			return nil, ErrUserGameHandleConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if referrer != nil {
		if err := s.userRepo.AwardReferralPoints(ctx, referrer.ID, referralAwardPoints); err != nil {
			// Registration succeeded; the missed award is recoverable by staff.
			return user, nil
		}
	}

	user.PasswordHash = ""
	return user, nil
}

// createWithUniqueReferralCode retries on referral-code collisions and falls
// back to a timestamp-suffixed code when randomness keeps colliding.
func (s *authService) createWithUniqueReferralCode(ctx context.Context, user *models.User) error {
	const maxAttempts = 5

	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := randomCode(referralCodeLength, referralCodeCharset)
		if err != nil {
			break
		}
		user.ReferralCode = code
		err = s.userRepo.Create(ctx, user)
		if !errors.Is(err, repositories.ErrUserReferralCodeConflict) {
			return err
		}
	}

	user.ReferralCode = fmt.Sprintf("R%07s", strconv.FormatInt(time.Now().UnixNano()%10000000, 10))
	return s.userRepo.Create(ctx, user)
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}
