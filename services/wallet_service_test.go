package services

import (
	"context"
	"errors"
	"testing"

	"github.com/arenaops/esports-platform/models"
)

func newWalletFixture(t *testing.T, balance int64) (WalletService, *fakeUserRepo, *fakeTransactionRepo, int) {
	t.Helper()
	userRepo := newFakeUserRepo()
	user := userRepo.add(&models.User{
		FirstName:     "Asha",
		LastName:      "Rao",
		Email:         "asha@example.com",
		Role:          models.RoleUser,
		WalletBalance: balance,
		ReferralCode:  "ASHA1234",
	})
	transactionRepo := newFakeTransactionRepo()
	svc := NewWalletService(newTestDB(t), userRepo, transactionRepo, newTestNotificationService())
	return svc, userRepo, transactionRepo, user.ID
}

func validWithdrawInput(userID int, amount int64) WithdrawInput {
	return WithdrawInput{
		UserID:  userID,
		Amount:  amount,
		Method:  models.MethodUPI,
		UPIID:   "asha.rao@okbank",
		UPIName: "Asha Rao",
	}
}

func TestRequestWithdrawalValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*WithdrawInput)
		wantErr error
	}{
		{
			name:    "below minimum",
			mutate:  func(in *WithdrawInput) { in.Amount = MinWithdrawalAmount - 1 },
			wantErr: ErrWithdrawalBelowMinimum,
		},
		{
			name:    "missing upi id",
			mutate:  func(in *WithdrawInput) { in.UPIID = "" },
			wantErr: ErrValidationFailed,
		},
		{
			name:    "malformed upi id",
			mutate:  func(in *WithdrawInput) { in.UPIID = "not a upi" },
			wantErr: ErrInvalidUPIFormat,
		},
		{
			name:    "unknown method",
			mutate:  func(in *WithdrawInput) { in.Method = "cheque" },
			wantErr: ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, userID := newWalletFixture(t, 1000)
			input := validWithdrawInput(userID, 500)
			tt.mutate(&input)

			_, err := svc.RequestWithdrawal(context.Background(), input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequestWithdrawalReservesBalance(t *testing.T) {
	svc, userRepo, _, userID := newWalletFixture(t, 1000)

	transaction, err := svc.RequestWithdrawal(context.Background(), validWithdrawInput(userID, 600))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transaction.Status != models.TransactionPending {
		t.Errorf("got status %q, want pending", transaction.Status)
	}
	if transaction.Kind != models.TransactionDebit {
		t.Errorf("got kind %q, want debit", transaction.Kind)
	}

	user, _ := userRepo.GetByID(context.Background(), userID)
	if user.WalletBalance != 400 {
		t.Errorf("got balance %d, want 400 after reservation", user.WalletBalance)
	}
}

func TestRequestWithdrawalInsufficientBalance(t *testing.T) {
	svc, userRepo, _, userID := newWalletFixture(t, 500)

	_, err := svc.RequestWithdrawal(context.Background(), validWithdrawInput(userID, 600))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("got error %v, want ErrInsufficientBalance", err)
	}

	user, _ := userRepo.GetByID(context.Background(), userID)
	if user.WalletBalance != 500 {
		t.Errorf("balance changed on failed withdrawal: got %d, want 500", user.WalletBalance)
	}
}

func TestApproveWithdrawal(t *testing.T) {
	svc, userRepo, transactionRepo, userID := newWalletFixture(t, 1000)
	ctx := context.Background()

	withdrawal, err := svc.RequestWithdrawal(ctx, validWithdrawInput(userID, 500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.ApproveWithdrawal(ctx, withdrawal.ID, "", 99); !errors.Is(err, ErrUTRRequired) {
		t.Fatalf("got error %v, want ErrUTRRequired", err)
	}

	if err := svc.ApproveWithdrawal(ctx, withdrawal.ID, "UTR123456", 99); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := transactionRepo.GetByID(ctx, withdrawal.ID)
	if stored.Status != models.TransactionCompleted {
		t.Errorf("got status %q, want completed", stored.Status)
	}
	if stored.UTR == nil || *stored.UTR != "UTR123456" {
		t.Errorf("UTR not recorded: %v", stored.UTR)
	}

	// Balance was already debited at request time; approval must not change it.
	user, _ := userRepo.GetByID(ctx, userID)
	if user.WalletBalance != 500 {
		t.Errorf("got balance %d, want 500", user.WalletBalance)
	}

	// A second decision on the same withdrawal is a conflict.
	if err := svc.ApproveWithdrawal(ctx, withdrawal.ID, "UTR999", 99); !errors.Is(err, ErrTransactionDecided) {
		t.Errorf("got error %v, want ErrTransactionDecided", err)
	}
}

func TestRejectWithdrawalRefundsWithReversal(t *testing.T) {
	svc, userRepo, transactionRepo, userID := newWalletFixture(t, 1000)
	ctx := context.Background()

	withdrawal, err := svc.RequestWithdrawal(ctx, validWithdrawInput(userID, 500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.RejectWithdrawal(ctx, withdrawal.ID, "", 99); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("got error %v, want ErrReasonRequired", err)
	}

	if err := svc.RejectWithdrawal(ctx, withdrawal.ID, "name mismatch", 99); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, _ := userRepo.GetByID(ctx, userID)
	if user.WalletBalance != 1000 {
		t.Errorf("got balance %d, want 1000 after refund", user.WalletBalance)
	}

	rejected, _ := transactionRepo.GetByID(ctx, withdrawal.ID)
	if rejected.Status != models.TransactionRejected {
		t.Errorf("got status %q, want rejected", rejected.Status)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "name mismatch" {
		t.Errorf("rejection reason not recorded: %v", rejected.RejectionReason)
	}

	// The refund must be its own ledger entry linked back to the rejected debit.
	entries, _ := transactionRepo.ListByUser(ctx, userID)
	var reversal *models.Transaction
	for i := range entries {
		if entries[i].RelatedTransactionID != nil && *entries[i].RelatedTransactionID == withdrawal.ID {
			reversal = &entries[i]
		}
	}
	if reversal == nil {
		t.Fatal("no reversal entry linked to the rejected withdrawal")
	}
	if reversal.Kind != models.TransactionCredit || reversal.Amount != 500 {
		t.Errorf("reversal entry is %s/%d, want credit/500", reversal.Kind, reversal.Amount)
	}
	if reversal.Status != models.TransactionCompleted {
		t.Errorf("got reversal status %q, want completed", reversal.Status)
	}

	// Rejecting again must fail and must not refund twice.
	if err := svc.RejectWithdrawal(ctx, withdrawal.ID, "again", 99); !errors.Is(err, ErrTransactionDecided) {
		t.Errorf("got error %v, want ErrTransactionDecided", err)
	}
	user, _ = userRepo.GetByID(ctx, userID)
	if user.WalletBalance != 1000 {
		t.Errorf("balance changed on repeated rejection: got %d, want 1000", user.WalletBalance)
	}
}

func TestCredit(t *testing.T) {
	svc, userRepo, _, userID := newWalletFixture(t, 100)
	ctx := context.Background()

	if _, err := svc.Credit(ctx, CreditInput{TargetUserID: userID, Amount: 0, ActorID: 99}); !errors.Is(err, ErrAmountNotPositive) {
		t.Fatalf("got error %v, want ErrAmountNotPositive", err)
	}

	transaction, err := svc.Credit(ctx, CreditInput{TargetUserID: userID, Amount: 250, Note: "prize", ActorID: 99})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transaction.Status != models.TransactionCompleted || transaction.Kind != models.TransactionCredit {
		t.Errorf("got %s/%s, want credit/completed", transaction.Kind, transaction.Status)
	}

	user, _ := userRepo.GetByID(ctx, userID)
	if user.WalletBalance != 350 {
		t.Errorf("got balance %d, want 350", user.WalletBalance)
	}
}

func TestValidateUPI(t *testing.T) {
	svc, _, _, _ := newWalletFixture(t, 0)

	tests := []struct {
		upiID    string
		valid    bool
		wantName string
	}{
		{"asha.rao@okbank", true, "Asha Rao"},
		{"rahul123@paytm", true, "Rahul"},
		{"ab@ok", true, "Ab"},
		{"no-at-sign", false, ""},
		{"@okbank", false, ""},
		{"asha@", false, ""},
		{"asha@123", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.upiID, func(t *testing.T) {
			result := svc.ValidateUPI(tt.upiID)
			if result.Valid != tt.valid {
				t.Fatalf("ValidateUPI(%q).Valid = %v, want %v", tt.upiID, result.Valid, tt.valid)
			}
			if tt.valid && result.DisplayName != tt.wantName {
				t.Errorf("got display name %q, want %q", result.DisplayName, tt.wantName)
			}
		})
	}
}
