package models

import "time"

// TournamentStatus mirrors the status ENUM in the database.
type TournamentStatus string

const (
	TournamentStatusUpcoming     TournamentStatus = "upcoming"
	TournamentStatusRegistration TournamentStatus = "registration"
	TournamentStatusLive         TournamentStatus = "live"
	TournamentStatusCompleted    TournamentStatus = "completed"
	TournamentStatusCanceled     TournamentStatus = "canceled"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentStatusUpcoming, TournamentStatusRegistration, TournamentStatusLive,
		TournamentStatusCompleted, TournamentStatusCanceled:
		return true
	}
	return false
}

type Tournament struct {
	ID              int              `json:"id" db:"id"`
	Title           string           `json:"title" db:"title"`
	GameID          int              `json:"game_id" db:"game_id"`
	TypeID          *int             `json:"type_id,omitempty" db:"type_id"`
	ModeID          *int             `json:"mode_id,omitempty" db:"mode_id"`
	RegOpen         time.Time        `json:"reg_open" db:"reg_open"`
	RegClose        time.Time        `json:"reg_close" db:"reg_close"`
	StartDate       time.Time        `json:"start_date" db:"start_date"`
	EntryFee        int64            `json:"entry_fee" db:"entry_fee"`
	PrizePool       int64            `json:"prize_pool" db:"prize_pool"`
	MaxTeams        int              `json:"max_teams" db:"max_teams"`
	RegisteredTeams int              `json:"registered_teams" db:"registered_teams"`
	Status          TournamentStatus `json:"status" db:"status"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`

	Game *Game   `json:"game,omitempty" db:"-"`
	Type *Format `json:"type,omitempty" db:"-"`
	Mode *Format `json:"mode,omitempty" db:"-"`
}

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

type TournamentRegistration struct {
	ID           int                `json:"id" db:"id"`
	TournamentID int                `json:"tournament_id" db:"tournament_id"`
	TeamID       int                `json:"team_id" db:"team_id"`
	Status       RegistrationStatus `json:"status" db:"status"`
	Reason       *string            `json:"reason,omitempty" db:"reason"`
	DecidedBy    *int               `json:"decided_by,omitempty" db:"decided_by"`
	DecidedAt    *time.Time         `json:"decided_at,omitempty" db:"decided_at"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`

	Tournament *Tournament `json:"tournament,omitempty" db:"-"`
	Team       *Team       `json:"team,omitempty" db:"-"`
}
