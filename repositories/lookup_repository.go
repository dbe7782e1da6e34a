package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arenaops/esports-platform/models"
	"github.com/lib/pq"
)

var (
	ErrGameNotFound       = errors.New("game not found")
	ErrGameNameConflict   = errors.New("game name conflict")
	ErrFormatNotFound     = errors.New("format not found")
	ErrFormatNameConflict = errors.New("format name conflict")
)

type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	Update(ctx context.Context, game *models.Game) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]models.Game, error)
}

type FormatRepository interface {
	Create(ctx context.Context, format *models.Format) error
	GetByID(ctx context.Context, id int) (*models.Format, error)
	Delete(ctx context.Context, id int) error
	ListByKind(ctx context.Context, kind models.FormatKind) ([]models.Format, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) Create(ctx context.Context, game *models.Game) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO games (name) VALUES ($1) RETURNING id, created_at`,
		game.Name,
	).Scan(&game.ID, &game.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrGameNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	game := &models.Game{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM games WHERE id = $1`, id,
	).Scan(&game.ID, &game.Name, &game.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return game, nil
}

func (r *postgresGameRepository) Update(ctx context.Context, game *models.Game) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE games SET name = $1 WHERE id = $2`, game.Name, game.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrGameNameConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) List(ctx context.Context) ([]models.Game, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM games ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		var g models.Game
		if scanErr := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		games = append(games, g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

type postgresFormatRepository struct {
	db *sql.DB
}

func NewPostgresFormatRepository(db *sql.DB) FormatRepository {
	return &postgresFormatRepository{db: db}
}

func (r *postgresFormatRepository) Create(ctx context.Context, format *models.Format) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO formats (kind, name) VALUES ($1, $2) RETURNING id, created_at`,
		format.Kind, format.Name,
	).Scan(&format.ID, &format.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrFormatNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresFormatRepository) GetByID(ctx context.Context, id int) (*models.Format, error) {
	format := &models.Format{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, kind, name, created_at FROM formats WHERE id = $1`, id,
	).Scan(&format.ID, &format.Kind, &format.Name, &format.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFormatNotFound
		}
		return nil, err
	}
	return format, nil
}

func (r *postgresFormatRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM formats WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrFormatNotFound)
}

func (r *postgresFormatRepository) ListByKind(ctx context.Context, kind models.FormatKind) ([]models.Format, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, name, created_at FROM formats WHERE kind = $1 ORDER BY name ASC`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	formats := make([]models.Format, 0)
	for rows.Next() {
		var f models.Format
		if scanErr := rows.Scan(&f.ID, &f.Kind, &f.Name, &f.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		formats = append(formats, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return formats, nil
}
