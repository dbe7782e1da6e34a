package models

import "time"

type MatchSchedule struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Round        string    `json:"round" db:"round"`
	TeamAID      *int      `json:"team_a_id,omitempty" db:"team_a_id"`
	TeamBID      *int      `json:"team_b_id,omitempty" db:"team_b_id"`
	ScheduledAt  time.Time `json:"scheduled_at" db:"scheduled_at"`
	ResultNote   *string   `json:"result_note,omitempty" db:"result_note"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
