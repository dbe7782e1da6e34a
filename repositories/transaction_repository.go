package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/arenaops/esports-platform/models"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrTransactionDecided means the entry has already left the pending state.
	ErrTransactionDecided = errors.New("transaction already decided")
)

// TransactionFilter narrows the staff ledger listing.
type TransactionFilter struct {
	Status models.TransactionStatus
	Kind   models.TransactionKind
}

type TransactionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, transaction *models.Transaction) error
	GetByID(ctx context.Context, id int) (*models.Transaction, error)
	ListByUser(ctx context.Context, userID int) ([]models.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error)

	// MarkCompleted flips a pending debit to completed, storing UTR and actor.
	// Zero affected rows maps to ErrTransactionDecided.
	MarkCompleted(ctx context.Context, exec SQLExecutor, id int, utr string, actorID int) error
	// MarkRejected flips a pending debit to rejected, storing the reason and
	// actor, and returns the rejected entry so the caller can refund it.
	MarkRejected(ctx context.Context, exec SQLExecutor, id int, reason string, actorID int) (*models.Transaction, error)
}

type postgresTransactionRepository struct {
	db *sql.DB
}

func NewPostgresTransactionRepository(db *sql.DB) TransactionRepository {
	return &postgresTransactionRepository{db: db}
}

func (r *postgresTransactionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const transactionColumns = `
	id, user_id, kind, amount, status, note, actor_id,
	method, upi_id, upi_name, account_number, ifsc, holder_name,
	utr, rejection_reason, related_transaction_id, decided_at, created_at`

func (r *postgresTransactionRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Transaction) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO transactions
			(user_id, kind, amount, status, note, actor_id,
			 method, upi_id, upi_name, account_number, ifsc, holder_name,
			 related_transaction_id, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		t.UserID, t.Kind, t.Amount, t.Status, t.Note, t.ActorID,
		t.Method, t.UPIID, t.UPIName, t.AccountNumber, t.IFSC, t.HolderName,
		t.RelatedTransactionID, t.DecidedAt,
	).Scan(&t.ID, &t.CreatedAt)
	return err
}

func (r *postgresTransactionRepository) GetByID(ctx context.Context, id int) (*models.Transaction, error) {
	query := `SELECT` + transactionColumns + ` FROM transactions WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	return scanTransaction(row)
}

func (r *postgresTransactionRepository) ListByUser(ctx context.Context, userID int) ([]models.Transaction, error) {
	query := `SELECT` + transactionColumns + ` FROM transactions WHERE user_id = $1 ORDER BY created_at DESC`
	return r.scanTransactions(ctx, query, userID)
}

func (r *postgresTransactionRepository) List(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	query := `SELECT` + transactionColumns + ` FROM transactions WHERE 1=1`
	args := make([]interface{}, 0, 2)
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $1`
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		if len(args) == 2 {
			query += ` AND kind = $2`
		} else {
			query += ` AND kind = $1`
		}
	}
	query += ` ORDER BY created_at DESC`
	return r.scanTransactions(ctx, query, args...)
}

func (r *postgresTransactionRepository) MarkCompleted(ctx context.Context, exec SQLExecutor, id int, utr string, actorID int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE transactions
		 SET status = 'completed', utr = $1, actor_id = $2, decided_at = $3
		 WHERE id = $4 AND kind = 'debit' AND status = 'pending'`,
		utr, actorID, time.Now(), id,
	)
	if err != nil {
		return err
	}
	return r.checkDecided(ctx, executor, result, id)
}

func (r *postgresTransactionRepository) MarkRejected(ctx context.Context, exec SQLExecutor, id int, reason string, actorID int) (*models.Transaction, error) {
	executor := r.getExecutor(exec)
	query := `
		UPDATE transactions
		SET status = 'rejected', rejection_reason = $1, actor_id = $2, decided_at = $3
		WHERE id = $4 AND kind = 'debit' AND status = 'pending'
		RETURNING` + transactionColumns

	row := executor.QueryRowContext(ctx, query, reason, actorID, time.Now(), id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			return nil, r.describeMiss(ctx, executor, id)
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTransactionRepository) checkDecided(ctx context.Context, executor SQLExecutor, result sql.Result, id int) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return r.describeMiss(ctx, executor, id)
	}
	return nil
}

// describeMiss distinguishes a missing entry from one already decided.
func (r *postgresTransactionRepository) describeMiss(ctx context.Context, executor SQLExecutor, id int) error {
	var exists bool
	if err := executor.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1 AND kind = 'debit')`, id,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrTransactionNotFound
	}
	return ErrTransactionDecided
}

func (r *postgresTransactionRepository) scanTransactions(ctx context.Context, query string, args ...interface{}) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		t, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}

func scanTransaction(rowScanner interface{ Scan(...interface{}) error }) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := rowScanner.Scan(
		&t.ID, &t.UserID, &t.Kind, &t.Amount, &t.Status, &t.Note, &t.ActorID,
		&t.Method, &t.UPIID, &t.UPIName, &t.AccountNumber, &t.IFSC, &t.HolderName,
		&t.UTR, &t.RejectionReason, &t.RelatedTransactionID, &t.DecidedAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return t, nil
}
