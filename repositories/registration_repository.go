package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/arenaops/esports-platform/models"
	"github.com/lib/pq"
)

var (
	ErrRegistrationNotFound = errors.New("tournament registration not found")
	ErrRegistrationConflict = errors.New("team already registered for this tournament")
	// ErrRegistrationDecided means the registration is no longer pending.
	ErrRegistrationDecided = errors.New("registration already decided")
)

type RegistrationRepository interface {
	Create(ctx context.Context, registration *models.TournamentRegistration) error
	GetByID(ctx context.Context, id int) (*models.TournamentRegistration, error)
	// Approve flips pending → approved; zero affected rows maps to
	// ErrRegistrationDecided so a concurrent double-approval is a clean conflict.
	Approve(ctx context.Context, exec SQLExecutor, id, actorID int) error
	Reject(ctx context.Context, exec SQLExecutor, id, actorID int, reason string) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentRegistration, error)
	ListByTeam(ctx context.Context, teamID int) ([]models.TournamentRegistration, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.TournamentRegistration) error {
	query := `
		INSERT INTO tournament_registrations (tournament_id, team_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		reg.TournamentID, reg.TeamID, reg.Status,
	).Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "tournament_registrations_live_key" {
			return ErrRegistrationConflict
		}
		return err
	}
	return nil
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id int) (*models.TournamentRegistration, error) {
	query := `
		SELECT id, tournament_id, team_id, status, reason, decided_by, decided_at, created_at
		FROM tournament_registrations
		WHERE id = $1`

	reg := &models.TournamentRegistration{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reg.ID, &reg.TournamentID, &reg.TeamID, &reg.Status,
		&reg.Reason, &reg.DecidedBy, &reg.DecidedAt, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) Approve(ctx context.Context, exec SQLExecutor, id, actorID int) error {
	return r.decide(ctx, exec, id, actorID, models.RegistrationApproved, nil)
}

func (r *postgresRegistrationRepository) Reject(ctx context.Context, exec SQLExecutor, id, actorID int, reason string) error {
	return r.decide(ctx, exec, id, actorID, models.RegistrationRejected, &reason)
}

func (r *postgresRegistrationRepository) decide(ctx context.Context, exec SQLExecutor, id, actorID int, status models.RegistrationStatus, reason *string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE tournament_registrations
		 SET status = $1, reason = $2, decided_by = $3, decided_at = $4
		 WHERE id = $5 AND status = 'pending'`,
		status, reason, actorID, time.Now(), id,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		var exists bool
		if scanErr := executor.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM tournament_registrations WHERE id = $1)`, id,
		).Scan(&exists); scanErr != nil {
			return scanErr
		}
		if !exists {
			return ErrRegistrationNotFound
		}
		return ErrRegistrationDecided
	}
	return nil
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentRegistration, error) {
	query := `
		SELECT id, tournament_id, team_id, status, reason, decided_by, decided_at, created_at
		FROM tournament_registrations
		WHERE tournament_id = $1
		ORDER BY created_at ASC`
	return r.scanRegistrations(ctx, query, tournamentID)
}

func (r *postgresRegistrationRepository) ListByTeam(ctx context.Context, teamID int) ([]models.TournamentRegistration, error) {
	query := `
		SELECT id, tournament_id, team_id, status, reason, decided_by, decided_at, created_at
		FROM tournament_registrations
		WHERE team_id = $1
		ORDER BY created_at DESC`
	return r.scanRegistrations(ctx, query, teamID)
}

func (r *postgresRegistrationRepository) scanRegistrations(ctx context.Context, query string, args ...interface{}) ([]models.TournamentRegistration, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]models.TournamentRegistration, 0)
	for rows.Next() {
		var reg models.TournamentRegistration
		scanErr := rows.Scan(
			&reg.ID, &reg.TournamentID, &reg.TeamID, &reg.Status,
			&reg.Reason, &reg.DecidedBy, &reg.DecidedAt, &reg.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		registrations = append(registrations, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return registrations, nil
}
