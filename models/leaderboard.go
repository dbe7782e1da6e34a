package models

import "time"

// LeaderboardEntry is a per-tournament ranking row. TeamID may be nil for
// placeholder teams imported by name only; aggregation then keys on TeamName.
type LeaderboardEntry struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	TeamID       *int      `json:"team_id,omitempty" db:"team_id"`
	TeamName     string    `json:"team_name" db:"team_name"`
	Rank         int       `json:"rank" db:"rank"`
	Kills        int       `json:"kills" db:"kills"`
	Earnings     int64     `json:"earnings" db:"earnings"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// TeamStanding is a cross-tournament aggregate for the public top-teams view.
type TeamStanding struct {
	TeamID      *int   `json:"team_id,omitempty"`
	TeamName    string `json:"team_name"`
	Rank        int    `json:"rank"`
	Tournaments int    `json:"tournaments"`
	Kills       int    `json:"kills"`
	Earnings    int64  `json:"earnings"`
}
