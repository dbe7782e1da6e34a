package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/arenaops/esports-platform/models"
	"github.com/arenaops/esports-platform/repositories"
	"github.com/go-playground/validator/v10"
)

// MinWithdrawalAmount is the smallest withdrawal the platform accepts.
const MinWithdrawalAmount int64 = 100

type WalletService interface {
	GetWallet(ctx context.Context, userID int) (*models.User, error)
	ListTransactions(ctx context.Context, userID int) ([]models.Transaction, error)
	ListAllTransactions(ctx context.Context, filter repositories.TransactionFilter) ([]models.Transaction, error)

	Credit(ctx context.Context, input CreditInput) (*models.Transaction, error)
	RequestWithdrawal(ctx context.Context, input WithdrawInput) (*models.Transaction, error)
	ApproveWithdrawal(ctx context.Context, transactionID int, utr string, actorID int) error
	RejectWithdrawal(ctx context.Context, transactionID int, reason string, actorID int) error

	ValidateUPI(upiID string) UPIValidation
}

type CreditInput struct {
	TargetUserID int    `json:"user_id"`
	Amount       int64  `json:"amount"`
	Note         string `json:"note"`
	ActorID      int    `json:"-"`
}

// WithdrawInput carries the payout method details. Method-conditional fields
// are enforced with validator tags.
type WithdrawInput struct {
	UserID int `json:"-"`

	Amount int64                   `json:"amount" validate:"required,gt=0"`
	Method models.WithdrawalMethod `json:"method" validate:"required,oneof=upi bank"`

	UPIID   string `json:"upi_id" validate:"required_if=Method upi"`
	UPIName string `json:"upi_name" validate:"required_if=Method upi"`

	AccountNumber string `json:"account_number" validate:"required_if=Method bank"`
	IFSC          string `json:"ifsc" validate:"required_if=Method bank"`
	HolderName    string `json:"holder_name" validate:"required_if=Method bank"`
}

// UPIValidation is advisory only: a format check plus a display name guessed
// from the id's local part, not a bank lookup.
type UPIValidation struct {
	UPIID       string `json:"upi_id"`
	Valid       bool   `json:"valid"`
	DisplayName string `json:"display_name,omitempty"`
}

type walletService struct {
	db              *sql.DB
	userRepo        repositories.UserRepository
	transactionRepo repositories.TransactionRepository
	notifications   NotificationService
	validate        *validator.Validate
}

func NewWalletService(
	db *sql.DB,
	userRepo repositories.UserRepository,
	transactionRepo repositories.TransactionRepository,
	notifications NotificationService,
) WalletService {
	return &walletService{
		db:              db,
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		notifications:   notifications,
		validate:        validator.New(),
	}
}

func (s *walletService) GetWallet(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *walletService) ListTransactions(ctx context.Context, userID int) ([]models.Transaction, error) {
	transactions, err := s.transactionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %d: %w", userID, err)
	}
	return transactions, nil
}

func (s *walletService) ListAllTransactions(ctx context.Context, filter repositories.TransactionFilter) ([]models.Transaction, error) {
	transactions, err := s.transactionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

func (s *walletService) Credit(ctx context.Context, input CreditInput) (*models.Transaction, error) {
	if input.Amount <= 0 {
		return nil, ErrAmountNotPositive
	}

	if _, err := s.userRepo.GetByID(ctx, input.TargetUserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", input.TargetUserID, err)
	}

	note := strings.TrimSpace(input.Note)
	transaction := &models.Transaction{
		UserID:  input.TargetUserID,
		Kind:    models.TransactionCredit,
		Amount:  input.Amount,
		Status:  models.TransactionCompleted,
		ActorID: &input.ActorID,
	}
	if note != "" {
		transaction.Note = &note
	}

	err := runInTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.userRepo.CreditBalance(ctx, tx, input.TargetUserID, input.Amount); err != nil {
			return err
		}
		return s.transactionRepo.Create(ctx, tx, transaction)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to credit user %d: %w", input.TargetUserID, err)
	}

	_ = s.notifications.Notify(ctx, input.TargetUserID, models.NotifyWalletCredit,
		"Wallet credited",
		fmt.Sprintf("%d has been added to your wallet.", input.Amount))

	return transaction, nil
}

func (s *walletService) RequestWithdrawal(ctx context.Context, input WithdrawInput) (*models.Transaction, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, describeValidationError(err))
	}
	if input.Amount < MinWithdrawalAmount {
		return nil, ErrWithdrawalBelowMinimum
	}
	if input.Method == models.MethodUPI {
		if v := s.ValidateUPI(input.UPIID); !v.Valid {
			return nil, ErrInvalidUPIFormat
		}
	}

	transaction := &models.Transaction{
		UserID: input.UserID,
		Kind:   models.TransactionDebit,
		Amount: input.Amount,
		Status: models.TransactionPending,
		Method: &input.Method,
	}
	switch input.Method {
	case models.MethodUPI:
		transaction.UPIID = &input.UPIID
		transaction.UPIName = &input.UPIName
	case models.MethodBank:
		transaction.AccountNumber = &input.AccountNumber
		transaction.IFSC = &input.IFSC
		transaction.HolderName = &input.HolderName
	}

	// The balance is reserved at request time: it is debited here, before any
	// staff decision, and restored only if the withdrawal is rejected.
	err := runInTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.userRepo.DebitBalance(ctx, tx, input.UserID, input.Amount); err != nil {
			return err
		}
		return s.transactionRepo.Create(ctx, tx, transaction)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrInsufficientBalance):
			return nil, ErrInsufficientBalance
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create withdrawal for user %d: %w", input.UserID, err)
	}

	return transaction, nil
}

func (s *walletService) ApproveWithdrawal(ctx context.Context, transactionID int, utr string, actorID int) error {
	utr = strings.TrimSpace(utr)
	if utr == "" {
		return ErrUTRRequired
	}

	// The debit was applied at request time, so approval only flips the entry.
	err := s.transactionRepo.MarkCompleted(ctx, nil, transactionID, utr, actorID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrTransactionNotFound):
			return ErrTransactionNotFound
		case errors.Is(err, repositories.ErrTransactionDecided):
			return ErrTransactionDecided
		}
		return fmt.Errorf("failed to approve withdrawal %d: %w", transactionID, err)
	}

	if transaction, getErr := s.transactionRepo.GetByID(ctx, transactionID); getErr == nil {
		_ = s.notifications.Notify(ctx, transaction.UserID, models.NotifyWithdrawalApproved,
			"Withdrawal approved",
			fmt.Sprintf("Your withdrawal of %d has been paid out (UTR %s).", transaction.Amount, utr))
	}
	return nil
}

func (s *walletService) RejectWithdrawal(ctx context.Context, transactionID int, reason string, actorID int) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}

	var rejected *models.Transaction
	err := runInTransaction(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		rejected, err = s.transactionRepo.MarkRejected(ctx, tx, transactionID, reason, actorID)
		if err != nil {
			return err
		}

		if err := s.userRepo.CreditBalance(ctx, tx, rejected.UserID, rejected.Amount); err != nil {
			return err
		}

		// Ledger stays append-only: the refund is recorded as its own credit
		// entry linked back to the rejected debit.
		note := fmt.Sprintf("Refund for rejected withdrawal #%d", rejected.ID)
		reversal := &models.Transaction{
			UserID:               rejected.UserID,
			Kind:                 models.TransactionCredit,
			Amount:               rejected.Amount,
			Status:               models.TransactionCompleted,
			Note:                 &note,
			ActorID:              &actorID,
			RelatedTransactionID: &rejected.ID,
		}
		return s.transactionRepo.Create(ctx, tx, reversal)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrTransactionNotFound):
			return ErrTransactionNotFound
		case errors.Is(err, repositories.ErrTransactionDecided):
			return ErrTransactionDecided
		}
		return fmt.Errorf("failed to reject withdrawal %d: %w", transactionID, err)
	}

	_ = s.notifications.Notify(ctx, rejected.UserID, models.NotifyWithdrawalRejected,
		"Withdrawal rejected",
		fmt.Sprintf("Your withdrawal of %d was rejected: %s. The amount has been refunded.", rejected.Amount, reason))
	return nil
}

// upiPattern matches the local@psp shape used by UPI virtual payment addresses.
var upiPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{1,255}@[a-zA-Z]{2,64}$`)

func (s *walletService) ValidateUPI(upiID string) UPIValidation {
	upiID = strings.TrimSpace(upiID)
	result := UPIValidation{UPIID: upiID}

	if !upiPattern.MatchString(upiID) {
		return result
	}
	result.Valid = true

	// Guess a display name from the local part: split on separators and
	// title-case the alphabetic fragments.
	local := upiID[:strings.Index(upiID, "@")]
	fragments := regexp.MustCompile(`[._\-0-9]+`).Split(local, -1)
	parts := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		if fragment == "" {
			continue
		}
		parts = append(parts, strings.ToUpper(fragment[:1])+strings.ToLower(fragment[1:]))
	}
	result.DisplayName = strings.Join(parts, " ")
	return result
}

func describeValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fieldErr := validationErrors[0]
		return fmt.Sprintf("field %s failed on the %s rule", fieldErr.Field(), fieldErr.Tag())
	}
	return err.Error()
}
