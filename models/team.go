package models

import "time"

// MaxTeamMembers is the roster size limit.
const MaxTeamMembers = 4

type Team struct {
	ID         int       `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	GameID     int       `json:"game_id" db:"game_id"`
	CaptainID  int       `json:"captain_id" db:"captain_id"`
	Terminated bool      `json:"terminated" db:"terminated"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	Game    *Game        `json:"game,omitempty" db:"-"`
	Captain *User        `json:"captain,omitempty" db:"-"`
	Members []TeamMember `json:"members,omitempty" db:"-"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}

type TeamMember struct {
	ID         int       `json:"id" db:"id"`
	TeamID     int       `json:"team_id" db:"team_id"`
	UserID     *int      `json:"user_id,omitempty" db:"user_id"`
	GameHandle string    `json:"game_handle" db:"game_handle"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
