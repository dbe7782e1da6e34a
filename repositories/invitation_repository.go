package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arenaops/esports-platform/models"
	"github.com/lib/pq"
)

var (
	ErrInvitationNotFound     = errors.New("team invitation not found")
	ErrInvitationCodeConflict = errors.New("team invitation code conflict")
	// ErrInvitationConsumed means the code is no longer pending or has expired.
	ErrInvitationConsumed = errors.New("team invitation already used or expired")
)

type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.TeamInvitation) error
	GetByCode(ctx context.Context, code string) (*models.TeamInvitation, error)
	// Consume flips a pending, unexpired invitation to the given terminal status.
	// The guarded update makes the code single-use: a second call affects zero
	// rows and returns ErrInvitationConsumed.
	Consume(ctx context.Context, exec SQLExecutor, code string, status models.InvitationStatus) (*models.TeamInvitation, error)
	MarkExpired(ctx context.Context, id int) error
	ListByTeam(ctx context.Context, teamID int) ([]models.TeamInvitation, error)
}

type postgresInvitationRepository struct {
	db *sql.DB
}

func NewPostgresInvitationRepository(db *sql.DB) InvitationRepository {
	return &postgresInvitationRepository{db: db}
}

func (r *postgresInvitationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresInvitationRepository) Create(ctx context.Context, invitation *models.TeamInvitation) error {
	query := `
		INSERT INTO team_invitations (team_id, inviter_id, code, status, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		invitation.TeamID, invitation.InviterID, invitation.Code,
		invitation.Status, invitation.ExpiresAt,
	).Scan(&invitation.ID, &invitation.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "team_invitations_code_key" {
			return ErrInvitationCodeConflict
		}
		return err
	}
	return nil
}

func (r *postgresInvitationRepository) GetByCode(ctx context.Context, code string) (*models.TeamInvitation, error) {
	query := `
		SELECT id, team_id, inviter_id, code, status, expires_at, created_at
		FROM team_invitations
		WHERE code = $1`

	inv := &models.TeamInvitation{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&inv.ID, &inv.TeamID, &inv.InviterID, &inv.Code,
		&inv.Status, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *postgresInvitationRepository) Consume(ctx context.Context, exec SQLExecutor, code string, status models.InvitationStatus) (*models.TeamInvitation, error) {
	executor := r.getExecutor(exec)
	query := `
		UPDATE team_invitations
		SET status = $1
		WHERE code = $2 AND status = 'pending' AND expires_at > now()
		RETURNING id, team_id, inviter_id, code, status, expires_at, created_at`

	inv := &models.TeamInvitation{}
	err := executor.QueryRowContext(ctx, query, status, code).Scan(
		&inv.ID, &inv.TeamID, &inv.InviterID, &inv.Code,
		&inv.Status, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvitationConsumed
		}
		return nil, err
	}
	return inv, nil
}

func (r *postgresInvitationRepository) MarkExpired(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE team_invitations SET status = 'expired' WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrInvitationNotFound)
}

func (r *postgresInvitationRepository) ListByTeam(ctx context.Context, teamID int) ([]models.TeamInvitation, error) {
	query := `
		SELECT id, team_id, inviter_id, code, status, expires_at, created_at
		FROM team_invitations
		WHERE team_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invitations := make([]models.TeamInvitation, 0)
	for rows.Next() {
		var inv models.TeamInvitation
		scanErr := rows.Scan(
			&inv.ID, &inv.TeamID, &inv.InviterID, &inv.Code,
			&inv.Status, &inv.ExpiresAt, &inv.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		invitations = append(invitations, inv)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return invitations, nil
}
