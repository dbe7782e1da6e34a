package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenaops/esports-platform/models"
	"github.com/lib/pq"
)

var (
	ErrLeaderboardEntryNotFound = errors.New("leaderboard entry not found")
	ErrLeaderboardRankConflict  = errors.New("rank already taken for this tournament")
)

type LeaderboardRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entry *models.LeaderboardEntry) error
	// ReplaceForTournament swaps out all entries of one tournament atomically.
	ReplaceForTournament(ctx context.Context, tournamentID int, entries []*models.LeaderboardEntry) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.LeaderboardEntry, error)
	// AggregateTopTeams sums earnings and kills per team across all tournaments,
	// grouping placeholder entries (nil team id) by stored team name, ordered by
	// descending earnings.
	AggregateTopTeams(ctx context.Context, limit int) ([]models.TeamStanding, error)
}

type postgresLeaderboardRepository struct {
	db *sql.DB
}

func NewPostgresLeaderboardRepository(db *sql.DB) LeaderboardRepository {
	return &postgresLeaderboardRepository{db: db}
}

func (r *postgresLeaderboardRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLeaderboardRepository) Create(ctx context.Context, exec SQLExecutor, entry *models.LeaderboardEntry) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO leaderboard_entries (tournament_id, team_id, team_name, rank, kills, earnings)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		entry.TournamentID, entry.TeamID, entry.TeamName,
		entry.Rank, entry.Kills, entry.Earnings,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "leaderboard_entries_rank_key" {
			return ErrLeaderboardRankConflict
		}
		return err
	}
	return nil
}

func (r *postgresLeaderboardRepository) ReplaceForTournament(ctx context.Context, tournamentID int, entries []*models.LeaderboardEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM leaderboard_entries WHERE tournament_id = $1`, tournamentID); err != nil {
		return err
	}

	for _, entry := range entries {
		entry.TournamentID = tournamentID
		if err = r.Create(ctx, tx, entry); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *postgresLeaderboardRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT id, tournament_id, team_id, team_name, rank, kills, earnings, created_at
		FROM leaderboard_entries
		WHERE tournament_id = $1
		ORDER BY rank ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0)
	for rows.Next() {
		var e models.LeaderboardEntry
		scanErr := rows.Scan(
			&e.ID, &e.TournamentID, &e.TeamID, &e.TeamName,
			&e.Rank, &e.Kills, &e.Earnings, &e.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *postgresLeaderboardRepository) AggregateTopTeams(ctx context.Context, limit int) ([]models.TeamStanding, error) {
	// Entries linked to a real team group by team id and take the current team
	// name; placeholder entries group by the name they were imported with.
	query := `
		SELECT
			le.team_id,
			COALESCE(t.name, le.team_name) AS team_name,
			COUNT(DISTINCT le.tournament_id) AS tournaments,
			SUM(le.kills) AS kills,
			SUM(le.earnings) AS earnings
		FROM leaderboard_entries le
		LEFT JOIN teams t ON le.team_id = t.id
		GROUP BY le.team_id, COALESCE(t.name, le.team_name)
		ORDER BY earnings DESC, kills DESC, team_name ASC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.TeamStanding, 0)
	for rows.Next() {
		var s models.TeamStanding
		if scanErr := rows.Scan(&s.TeamID, &s.TeamName, &s.Tournaments, &s.Kills, &s.Earnings); scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}
