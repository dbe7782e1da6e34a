package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arenaops/esports-platform/models"
)

var ErrScheduleNotFound = errors.New("match schedule not found")

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *models.MatchSchedule) error
	GetByID(ctx context.Context, id int) (*models.MatchSchedule, error)
	Update(ctx context.Context, schedule *models.MatchSchedule) error
	Delete(ctx context.Context, id int) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.MatchSchedule, error)
}

type postgresScheduleRepository struct {
	db *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) ScheduleRepository {
	return &postgresScheduleRepository{db: db}
}

func (r *postgresScheduleRepository) Create(ctx context.Context, s *models.MatchSchedule) error {
	query := `
		INSERT INTO match_schedules (tournament_id, round, team_a_id, team_b_id, scheduled_at, result_note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		s.TournamentID, s.Round, s.TeamAID, s.TeamBID, s.ScheduledAt, s.ResultNote,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *postgresScheduleRepository) GetByID(ctx context.Context, id int) (*models.MatchSchedule, error) {
	query := `
		SELECT id, tournament_id, round, team_a_id, team_b_id, scheduled_at, result_note, created_at
		FROM match_schedules
		WHERE id = $1`

	s := &models.MatchSchedule{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.TournamentID, &s.Round, &s.TeamAID, &s.TeamBID,
		&s.ScheduledAt, &s.ResultNote, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresScheduleRepository) Update(ctx context.Context, s *models.MatchSchedule) error {
	query := `
		UPDATE match_schedules
		SET round = $1, team_a_id = $2, team_b_id = $3, scheduled_at = $4, result_note = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		s.Round, s.TeamAID, s.TeamBID, s.ScheduledAt, s.ResultNote, s.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrScheduleNotFound)
}

func (r *postgresScheduleRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM match_schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrScheduleNotFound)
}

func (r *postgresScheduleRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.MatchSchedule, error) {
	query := `
		SELECT id, tournament_id, round, team_a_id, team_b_id, scheduled_at, result_note, created_at
		FROM match_schedules
		WHERE tournament_id = $1
		ORDER BY scheduled_at ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]models.MatchSchedule, 0)
	for rows.Next() {
		var s models.MatchSchedule
		scanErr := rows.Scan(
			&s.ID, &s.TournamentID, &s.Round, &s.TeamAID, &s.TeamBID,
			&s.ScheduledAt, &s.ResultNote, &s.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		schedules = append(schedules, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return schedules, nil
}
