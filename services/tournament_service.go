package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arenaops/esports-platform/models"
	"github.com/arenaops/esports-platform/repositories"
)

type TournamentService interface {
	Create(ctx context.Context, input TournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	Update(ctx context.Context, id int, input TournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error
	ChangeStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
}

type TournamentInput struct {
	Title     string    `json:"title"`
	GameID    int       `json:"game_id"`
	TypeID    *int      `json:"type_id"`
	ModeID    *int      `json:"mode_id"`
	RegOpen   time.Time `json:"reg_open"`
	RegClose  time.Time `json:"reg_close"`
	StartDate time.Time `json:"start_date"`
	EntryFee  int64     `json:"entry_fee"`
	PrizePool int64     `json:"prize_pool"`
	MaxTeams  int       `json:"max_teams"`
	Status    string    `json:"status"`
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	gameRepo       repositories.GameRepository
	formatRepo     repositories.FormatRepository
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	gameRepo repositories.GameRepository,
	formatRepo repositories.FormatRepository,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		gameRepo:       gameRepo,
		formatRepo:     formatRepo,
	}
}

func (s *tournamentService) Create(ctx context.Context, input TournamentInput) (*models.Tournament, error) {
	tournament, err := s.buildFromInput(ctx, input)
	if err != nil {
		return nil, err
	}
	if tournament.Status == "" {
		tournament.Status = models.TournamentStatusUpcoming
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentTitleConflict) {
			return nil, ErrTournamentTitleConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return s.expand(ctx, tournament), nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return s.expand(ctx, tournament), nil
}

func (s *tournamentService) List(ctx context.Context) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for i := range tournaments {
		s.expand(ctx, &tournaments[i])
	}
	return tournaments, nil
}

func (s *tournamentService) Update(ctx context.Context, id int, input TournamentInput) (*models.Tournament, error) {
	existing, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}

	tournament, err := s.buildFromInput(ctx, input)
	if err != nil {
		return nil, err
	}
	tournament.ID = existing.ID
	tournament.RegisteredTeams = existing.RegisteredTeams
	if tournament.Status == "" {
		tournament.Status = existing.Status
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrTournamentTitleConflict):
			return nil, ErrTournamentTitleConflict
		}
		return nil, fmt.Errorf("failed to update tournament %d: %w", id, err)
	}
	return s.expand(ctx, tournament), nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return nil
}

func (s *tournamentService) ChangeStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	status = models.TournamentStatus(strings.ToLower(string(status)))
	if !status.Valid() {
		return nil, ErrTournamentInvalidStatus
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}

	tournament.Status = status
	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to update tournament %d status: %w", id, err)
	}
	return s.expand(ctx, tournament), nil
}

func (s *tournamentService) buildFromInput(ctx context.Context, input TournamentInput) (*models.Tournament, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidationFailed)
	}
	if input.MaxTeams <= 0 {
		return nil, ErrTournamentInvalidCapacity
	}
	if !input.RegClose.After(input.RegOpen) {
		return nil, ErrTournamentInvalidRegWindow
	}
	if input.StartDate.Before(input.RegClose) {
		return nil, ErrTournamentInvalidDates
	}
	if input.EntryFee < 0 || input.PrizePool < 0 {
		return nil, ErrAmountNotPositive
	}

	if _, err := s.gameRepo.GetByID(ctx, input.GameID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %d: %w", input.GameID, err)
	}
	if err := s.checkFormat(ctx, input.TypeID, models.FormatTournamentType); err != nil {
		return nil, err
	}
	if err := s.checkFormat(ctx, input.ModeID, models.FormatModeType); err != nil {
		return nil, err
	}

	var status models.TournamentStatus
	if raw := strings.ToLower(strings.TrimSpace(input.Status)); raw != "" {
		status = models.TournamentStatus(raw)
		if !status.Valid() {
			return nil, ErrTournamentInvalidStatus
		}
	}

	return &models.Tournament{
		Title:     input.Title,
		GameID:    input.GameID,
		TypeID:    input.TypeID,
		ModeID:    input.ModeID,
		RegOpen:   input.RegOpen,
		RegClose:  input.RegClose,
		StartDate: input.StartDate,
		EntryFee:  input.EntryFee,
		PrizePool: input.PrizePool,
		MaxTeams:  input.MaxTeams,
		Status:    status,
	}, nil
}

func (s *tournamentService) checkFormat(ctx context.Context, id *int, kind models.FormatKind) error {
	if id == nil {
		return nil
	}
	format, err := s.formatRepo.GetByID(ctx, *id)
	if err != nil {
		if errors.Is(err, repositories.ErrFormatNotFound) {
			return ErrFormatNotFound
		}
		return fmt.Errorf("failed to get format %d: %w", *id, err)
	}
	if format.Kind != kind {
		return fmt.Errorf("%w: format %d is not a %s", ErrValidationFailed, *id, kind)
	}
	return nil
}

// expand attaches the game and format lookups for API responses. Lookup
// failures are tolerated; the ids remain authoritative.
func (s *tournamentService) expand(ctx context.Context, tournament *models.Tournament) *models.Tournament {
	if game, err := s.gameRepo.GetByID(ctx, tournament.GameID); err == nil {
		tournament.Game = game
	}
	if tournament.TypeID != nil {
		if format, err := s.formatRepo.GetByID(ctx, *tournament.TypeID); err == nil {
			tournament.Type = format
		}
	}
	if tournament.ModeID != nil {
		if format, err := s.formatRepo.GetByID(ctx, *tournament.ModeID); err == nil {
			tournament.Mode = format
		}
	}
	return tournament
}
