package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arenaops/esports-platform/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound             = errors.New("team not found")
	ErrTeamNameConflict         = errors.New("team name conflict")
	ErrTeamCaptainConflict      = errors.New("user already captains an active team")
	ErrTeamMemberNotFound       = errors.New("team member not found")
	ErrTeamMemberHandleConflict = errors.New("game handle already on the roster")
	ErrTeamRosterFull           = errors.New("team roster is full")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetActiveByCaptain(ctx context.Context, captainID int) (*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]models.Team, error)
	SetTerminated(ctx context.Context, id int, terminated bool) error

	ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error)
	AddMember(ctx context.Context, exec SQLExecutor, member *models.TeamMember) error
	RemoveMemberByUser(ctx context.Context, teamID, userID int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func mapTeamConstraintError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "teams_name_key":
			return ErrTeamNameConflict
		case "teams_active_captain_key":
			return ErrTeamCaptainConflict
		case "team_members_handle_key":
			return ErrTeamMemberHandleConflict
		}
	}
	return err
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (name, game_id, captain_id, logo_key)
		VALUES ($1, $2, $3, $4)
		RETURNING id, terminated, created_at`

	err := r.db.QueryRowContext(ctx, query,
		team.Name, team.GameID, team.CaptainID, team.LogoKey,
	).Scan(&team.ID, &team.Terminated, &team.CreatedAt)
	if err != nil {
		return mapTeamConstraintError(err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, name, game_id, captain_id, terminated, logo_key, created_at
		FROM teams
		WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID, &team.Name, &team.GameID, &team.CaptainID,
		&team.Terminated, &team.LogoKey, &team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	members, err := r.ListMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Members = members
	return team, nil
}

func (r *postgresTeamRepository) GetActiveByCaptain(ctx context.Context, captainID int) (*models.Team, error) {
	query := `
		SELECT id, name, game_id, captain_id, terminated, logo_key, created_at
		FROM teams
		WHERE captain_id = $1 AND NOT terminated`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, captainID).Scan(
		&team.ID, &team.Name, &team.GameID, &team.CaptainID,
		&team.Terminated, &team.LogoKey, &team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams SET name = $1, game_id = $2, logo_key = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, team.Name, team.GameID, team.LogoKey, team.ID)
	if err != nil {
		return mapTeamConstraintError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	query := `
		SELECT id, name, game_id, captain_id, terminated, logo_key, created_at
		FROM teams
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var team models.Team
		scanErr := rows.Scan(
			&team.ID, &team.Name, &team.GameID, &team.CaptainID,
			&team.Terminated, &team.LogoKey, &team.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) SetTerminated(ctx context.Context, id int, terminated bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE teams SET terminated = $1 WHERE id = $2`, terminated, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	query := `
		SELECT id, team_id, user_id, game_handle, created_at
		FROM team_members
		WHERE team_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0)
	for rows.Next() {
		var m models.TeamMember
		if scanErr := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.GameHandle, &m.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember inserts a roster row. The insert re-checks the roster cap so two
// invitation codes accepted concurrently cannot push the roster past it.
func (r *postgresTeamRepository) AddMember(ctx context.Context, exec SQLExecutor, member *models.TeamMember) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO team_members (team_id, user_id, game_handle)
		SELECT $1, $2, $3
		WHERE (SELECT count(*) FROM team_members WHERE team_id = $1) < $4
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		member.TeamID, member.UserID, member.GameHandle, models.MaxTeamMembers,
	).Scan(&member.ID, &member.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTeamRosterFull
		}
		return mapTeamConstraintError(err)
	}
	return nil
}

func (r *postgresTeamRepository) RemoveMemberByUser(ctx context.Context, teamID, userID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamMemberNotFound)
}
