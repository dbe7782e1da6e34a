package models

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
	InvitationExpired  InvitationStatus = "expired"
)

// TeamInvitation grants one pending join to a team. Expiry is checked lazily
// against ExpiresAt on read; the code is consumed exactly once.
type TeamInvitation struct {
	ID        int              `json:"id" db:"id"`
	TeamID    int              `json:"team_id" db:"team_id"`
	InviterID int              `json:"inviter_id" db:"inviter_id"`
	Code      string           `json:"code" db:"code"`
	Status    InvitationStatus `json:"status" db:"status"`
	ExpiresAt time.Time        `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}
