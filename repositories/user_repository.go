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
	ErrUserNotFound             = errors.New("user not found")
	ErrUserEmailConflict        = errors.New("user email conflict")
	ErrUserGameHandleConflict   = errors.New("user game handle conflict")
	ErrUserReferralCodeConflict = errors.New("user referral code conflict")
	ErrInsufficientBalance      = errors.New("insufficient wallet balance")
	ErrReferralPointsChanged    = errors.New("referral points changed concurrently")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByReferralCode(ctx context.Context, code string) (*models.User, error)
	GetByGameHandle(ctx context.Context, handle string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id int, role models.UserRole) error
	List(ctx context.Context) ([]models.User, error)
	ListReferred(ctx context.Context, referrerID int) ([]models.User, error)

	// CreditBalance unconditionally adds amount to the stored balance.
	CreditBalance(ctx context.Context, exec SQLExecutor, userID int, amount int64) error
	// DebitBalance subtracts amount, guarded by a sufficient-balance predicate;
	// returns ErrInsufficientBalance when the guard fails.
	DebitBalance(ctx context.Context, exec SQLExecutor, userID int, amount int64) error

	AwardReferralPoints(ctx context.Context, userID int, points int) error
	// ZeroReferralPoints resets the counter only if it still equals expected,
	// so a concurrent conversion cannot spend the same points twice.
	ZeroReferralPoints(ctx context.Context, exec SQLExecutor, userID int, expected int) error

	AddStats(ctx context.Context, exec SQLExecutor, userID int, wins, kills int, earnings int64) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const userColumns = `
	id, first_name, last_name, email, password_hash, game_handle, role,
	wallet_balance, wins, kills, earnings,
	referral_code, referral_points, referred_by, avatar_key, created_at`

func mapUserConstraintError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "users_email_key":
			return ErrUserEmailConflict
		case "users_game_handle_key":
			return ErrUserGameHandleConflict
		case "users_referral_code_key":
			return ErrUserReferralCodeConflict
		}
	}
	return err
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (first_name, last_name, email, password_hash, game_handle, role, referral_code, referred_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.GameHandle,
		user.Role,
		user.ReferralCode,
		user.ReferredBy,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return mapUserConstraintError(err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(ctx, query, email)
}

func (r *postgresUserRepository) GetByReferralCode(ctx context.Context, code string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE referral_code = $1`
	return r.scanUser(ctx, query, code)
}

func (r *postgresUserRepository) GetByGameHandle(ctx context.Context, handle string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE lower(game_handle) = lower($1)`
	return r.scanUser(ctx, query, handle)
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			first_name = $1,
			last_name = $2,
			email = $3,
			password_hash = $4,
			game_handle = $5,
			avatar_key = $6
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.GameHandle,
		user.AvatarKey,
		user.ID,
	)
	if err != nil {
		return mapUserConstraintError(err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateRole(ctx context.Context, id int, role models.UserRole) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT` + userColumns + ` FROM users ORDER BY created_at DESC`
	return r.scanUsers(ctx, query)
}

func (r *postgresUserRepository) ListReferred(ctx context.Context, referrerID int) ([]models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE referred_by = $1 ORDER BY created_at DESC`
	return r.scanUsers(ctx, query, referrerID)
}

func (r *postgresUserRepository) CreditBalance(ctx context.Context, exec SQLExecutor, userID int, amount int64) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE users SET wallet_balance = wallet_balance + $1 WHERE id = $2`,
		amount, userID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) DebitBalance(ctx context.Context, exec SQLExecutor, userID int, amount int64) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE users SET wallet_balance = wallet_balance - $1 WHERE id = $2 AND wallet_balance >= $1`,
		amount, userID,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		// Distinguish a missing user from a guard failure.
		var exists bool
		if scanErr := executor.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID,
		).Scan(&exists); scanErr != nil {
			return scanErr
		}
		if !exists {
			return ErrUserNotFound
		}
		return ErrInsufficientBalance
	}
	return nil
}

func (r *postgresUserRepository) AwardReferralPoints(ctx context.Context, userID int, points int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET referral_points = referral_points + $1 WHERE id = $2`,
		points, userID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) ZeroReferralPoints(ctx context.Context, exec SQLExecutor, userID int, expected int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE users SET referral_points = 0 WHERE id = $1 AND referral_points = $2`,
		userID, expected,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrReferralPointsChanged)
}

func (r *postgresUserRepository) AddStats(ctx context.Context, exec SQLExecutor, userID int, wins, kills int, earnings int64) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE users SET wins = wins + $1, kills = kills + $2, earnings = earnings + $3 WHERE id = $4`,
		wins, kills, earnings, userID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.GameHandle,
		&user.Role,
		&user.WalletBalance,
		&user.Wins,
		&user.Kills,
		&user.Earnings,
		&user.ReferralCode,
		&user.ReferralPoints,
		&user.ReferredBy,
		&user.AvatarKey,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *postgresUserRepository) scanUsers(ctx context.Context, query string, args ...interface{}) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		scanErr := rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.PasswordHash,
			&user.GameHandle,
			&user.Role,
			&user.WalletBalance,
			&user.Wins,
			&user.Kills,
			&user.Earnings,
			&user.ReferralCode,
			&user.ReferralPoints,
			&user.ReferredBy,
			&user.AvatarKey,
			&user.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
