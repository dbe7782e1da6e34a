package models

import "time"

type NotificationKind string

const (
	NotifyMatchResult        NotificationKind = "match_result"
	NotifyWalletCredit       NotificationKind = "wallet_credit"
	NotifyWithdrawalApproved NotificationKind = "withdrawal_approved"
	NotifyWithdrawalRejected NotificationKind = "withdrawal_rejected"
	NotifyTeamInvitation     NotificationKind = "team_invitation"
	NotifyRegistration       NotificationKind = "registration_decision"
)

type Notification struct {
	ID        int              `json:"id" db:"id"`
	UserID    int              `json:"user_id" db:"user_id"`
	Kind      NotificationKind `json:"kind" db:"kind"`
	Title     string           `json:"title" db:"title"`
	Body      string           `json:"body" db:"body"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
