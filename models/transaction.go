package models

import "time"

type TransactionKind string

const (
	TransactionCredit TransactionKind = "credit"
	TransactionDebit  TransactionKind = "debit"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionRejected  TransactionStatus = "rejected"
)

type WithdrawalMethod string

const (
	MethodUPI  WithdrawalMethod = "upi"
	MethodBank WithdrawalMethod = "bank"
)

// Transaction is one append-only wallet ledger entry. Debit entries that
// represent withdrawals carry the payout method details. A rejected debit is
// refunded through a separate reversal credit whose RelatedTransactionID points
// back at the rejected entry, so the ledger alone reproduces every balance.
type Transaction struct {
	ID     int               `json:"id" db:"id"`
	UserID int               `json:"user_id" db:"user_id"`
	Kind   TransactionKind   `json:"kind" db:"kind"`
	Amount int64             `json:"amount" db:"amount"`
	Status TransactionStatus `json:"status" db:"status"`
	Note   *string           `json:"note,omitempty" db:"note"`

	// ActorID is the staff member who credited, approved or rejected.
	ActorID *int `json:"actor_id,omitempty" db:"actor_id"`

	Method        *WithdrawalMethod `json:"method,omitempty" db:"method"`
	UPIID         *string           `json:"upi_id,omitempty" db:"upi_id"`
	UPIName       *string           `json:"upi_name,omitempty" db:"upi_name"`
	AccountNumber *string           `json:"account_number,omitempty" db:"account_number"`
	IFSC          *string           `json:"ifsc,omitempty" db:"ifsc"`
	HolderName    *string           `json:"holder_name,omitempty" db:"holder_name"`

	UTR                  *string    `json:"utr,omitempty" db:"utr"`
	RejectionReason      *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	RelatedTransactionID *int       `json:"related_transaction_id,omitempty" db:"related_transaction_id"`
	DecidedAt            *time.Time `json:"decided_at,omitempty" db:"decided_at"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
}
