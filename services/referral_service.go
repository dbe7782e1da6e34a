package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenaops/esports-platform/models"
	"github.com/arenaops/esports-platform/repositories"
)

// ReferralConversionRate is the wallet credit per referral point.
const ReferralConversionRate int64 = 10

type ReferralService interface {
	Summary(ctx context.Context, userID int) (*ReferralSummary, error)
	// Convert exchanges the caller's full point balance for wallet credit.
	Convert(ctx context.Context, userID int) (*ConversionResult, error)
}

type ReferralSummary struct {
	ReferralCode   string         `json:"referral_code"`
	ReferralPoints int            `json:"referral_points"`
	ReferredUsers  []ReferredUser `json:"referred_users"`
	Rate           int64          `json:"conversion_rate"`
}

type ReferredUser struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ConversionResult struct {
	PointsConverted int   `json:"points_converted"`
	AmountCredited  int64 `json:"amount_credited"`
	NewBalance      int64 `json:"new_balance"`
}

type referralService struct {
	db              *sql.DB
	userRepo        repositories.UserRepository
	transactionRepo repositories.TransactionRepository
}

func NewReferralService(
	db *sql.DB,
	userRepo repositories.UserRepository,
	transactionRepo repositories.TransactionRepository,
) ReferralService {
	return &referralService{
		db:              db,
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
	}
}

func (s *referralService) Summary(ctx context.Context, userID int) (*ReferralSummary, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	referred, err := s.userRepo.ListReferred(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list referred users for %d: %w", userID, err)
	}

	summary := &ReferralSummary{
		ReferralCode:   user.ReferralCode,
		ReferralPoints: user.ReferralPoints,
		ReferredUsers:  make([]ReferredUser, 0, len(referred)),
		Rate:           ReferralConversionRate,
	}
	for _, r := range referred {
		summary.ReferredUsers = append(summary.ReferredUsers, ReferredUser{
			ID:        r.ID,
			FirstName: r.FirstName,
			LastName:  r.LastName,
		})
	}
	return summary, nil
}

// Convert spends all points at once. The zeroing update is guarded by the
// point count read here, so two concurrent conversions cannot both pay out:
// the loser hits ErrReferralPointsChanged and rolls back.
func (s *referralService) Convert(ctx context.Context, userID int) (*ConversionResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	if user.ReferralPoints <= 0 {
		return nil, ErrNoReferralPoints
	}

	points := user.ReferralPoints
	amount := int64(points) * ReferralConversionRate

	err = runInTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.userRepo.ZeroReferralPoints(ctx, tx, userID, points); err != nil {
			return err
		}
		if err := s.userRepo.CreditBalance(ctx, tx, userID, amount); err != nil {
			return err
		}

		note := fmt.Sprintf("Converted %d referral points", points)
		entry := &models.Transaction{
			UserID: userID,
			Kind:   models.TransactionCredit,
			Amount: amount,
			Status: models.TransactionCompleted,
			Note:   &note,
		}
		return s.transactionRepo.Create(ctx, tx, entry)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrReferralPointsChanged) {
			return nil, ErrConversionConflict
		}
		return nil, fmt.Errorf("failed to convert referral points for user %d: %w", userID, err)
	}

	return &ConversionResult{
		PointsConverted: points,
		AmountCredited:  amount,
		NewBalance:      user.WalletBalance + amount,
	}, nil
}
