package models

import "time"

type Game struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type FormatKind string

const (
	FormatTournamentType FormatKind = "tournament_type"
	FormatModeType       FormatKind = "mode_type"
)

// Format covers both tournament-type and mode-type lookups; Kind tells them apart.
type Format struct {
	ID        int        `json:"id" db:"id"`
	Kind      FormatKind `json:"kind" db:"kind"`
	Name      string     `json:"name" db:"name"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
