package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arenaops/esports-platform/models"
	"github.com/arenaops/esports-platform/repositories"
)

// LookupService manages the small reference tables behind tournaments:
// games, tournament types and mode types.
type LookupService interface {
	CreateGame(ctx context.Context, name string) (*models.Game, error)
	UpdateGame(ctx context.Context, id int, name string) (*models.Game, error)
	DeleteGame(ctx context.Context, id int) error
	ListGames(ctx context.Context) ([]models.Game, error)

	CreateFormat(ctx context.Context, kind models.FormatKind, name string) (*models.Format, error)
	DeleteFormat(ctx context.Context, id int) error
	ListFormats(ctx context.Context, kind models.FormatKind) ([]models.Format, error)
}

type lookupService struct {
	gameRepo   repositories.GameRepository
	formatRepo repositories.FormatRepository
}

func NewLookupService(gameRepo repositories.GameRepository, formatRepo repositories.FormatRepository) LookupService {
	return &lookupService{gameRepo: gameRepo, formatRepo: formatRepo}
}

func (s *lookupService) CreateGame(ctx context.Context, name string) (*models.Game, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: game name is required", ErrValidationFailed)
	}

	game := &models.Game{Name: name}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		if errors.Is(err, repositories.ErrGameNameConflict) {
			return nil, fmt.Errorf("%w: game %q already exists", ErrValidationFailed, name)
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return game, nil
}

func (s *lookupService) UpdateGame(ctx context.Context, id int, name string) (*models.Game, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: game name is required", ErrValidationFailed)
	}

	game, err := s.gameRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %d: %w", id, err)
	}

	game.Name = name
	if err := s.gameRepo.Update(ctx, game); err != nil {
		if errors.Is(err, repositories.ErrGameNameConflict) {
			return nil, fmt.Errorf("%w: game %q already exists", ErrValidationFailed, name)
		}
		return nil, fmt.Errorf("failed to update game %d: %w", id, err)
	}
	return game, nil
}

func (s *lookupService) DeleteGame(ctx context.Context, id int) error {
	if err := s.gameRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to delete game %d: %w", id, err)
	}
	return nil
}

func (s *lookupService) ListGames(ctx context.Context) ([]models.Game, error) {
	games, err := s.gameRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

func (s *lookupService) CreateFormat(ctx context.Context, kind models.FormatKind, name string) (*models.Format, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: format name is required", ErrValidationFailed)
	}
	if kind != models.FormatTournamentType && kind != models.FormatModeType {
		return nil, fmt.Errorf("%w: unknown format kind %q", ErrValidationFailed, kind)
	}

	format := &models.Format{Kind: kind, Name: name}
	if err := s.formatRepo.Create(ctx, format); err != nil {
		if errors.Is(err, repositories.ErrFormatNameConflict) {
			return nil, fmt.Errorf("%w: format %q already exists", ErrValidationFailed, name)
		}
		return nil, fmt.Errorf("failed to create format: %w", err)
	}
	return format, nil
}

func (s *lookupService) DeleteFormat(ctx context.Context, id int) error {
	if err := s.formatRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrFormatNotFound) {
			return ErrFormatNotFound
		}
		return fmt.Errorf("failed to delete format %d: %w", id, err)
	}
	return nil
}

func (s *lookupService) ListFormats(ctx context.Context, kind models.FormatKind) ([]models.Format, error) {
	formats, err := s.formatRepo.ListByKind(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s formats: %w", kind, err)
	}
	return formats, nil
}
