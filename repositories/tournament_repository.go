package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arenaops/esports-platform/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrTournamentTitleConflict = errors.New("tournament title conflict")
	ErrTournamentFull          = errors.New("tournament has reached its team capacity")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]models.Tournament, error)

	// IncrementRegisteredTeams bumps the counter, guarded by max_teams; the
	// guard failing maps to ErrTournamentFull.
	IncrementRegisteredTeams(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, title, game_id, type_id, mode_id, reg_open, reg_close, start_date,
	entry_fee, prize_pool, max_teams, registered_teams, status, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments
			(title, game_id, type_id, mode_id, reg_open, reg_close, start_date, entry_fee, prize_pool, max_teams, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, registered_teams, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Title, t.GameID, t.TypeID, t.ModeID, t.RegOpen, t.RegClose,
		t.StartDate, t.EntryFee, t.PrizePool, t.MaxTeams, t.Status,
	).Scan(&t.ID, &t.RegisteredTeams, &t.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "tournaments_title_key" {
			return ErrTournamentTitleConflict
		}
		return err
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	return scanTournament(row)
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			title = $1, game_id = $2, type_id = $3, mode_id = $4,
			reg_open = $5, reg_close = $6, start_date = $7,
			entry_fee = $8, prize_pool = $9, max_teams = $10, status = $11
		WHERE id = $12`

	result, err := r.db.ExecContext(ctx, query,
		t.Title, t.GameID, t.TypeID, t.ModeID, t.RegOpen, t.RegClose,
		t.StartDate, t.EntryFee, t.PrizePool, t.MaxTeams, t.Status, t.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "tournaments_title_key" {
			return ErrTournamentTitleConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments ORDER BY start_date DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) IncrementRegisteredTeams(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE tournaments SET registered_teams = registered_teams + 1
		 WHERE id = $1 AND registered_teams < max_teams`,
		id,
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
			`SELECT EXISTS (SELECT 1 FROM tournaments WHERE id = $1)`, id,
		).Scan(&exists); scanErr != nil {
			return scanErr
		}
		if !exists {
			return ErrTournamentNotFound
		}
		return ErrTournamentFull
	}
	return nil
}

func scanTournament(rowScanner interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := rowScanner.Scan(
		&t.ID, &t.Title, &t.GameID, &t.TypeID, &t.ModeID,
		&t.RegOpen, &t.RegClose, &t.StartDate,
		&t.EntryFee, &t.PrizePool, &t.MaxTeams, &t.RegisteredTeams,
		&t.Status, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}
