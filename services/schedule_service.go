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

type ScheduleService interface {
	Create(ctx context.Context, input ScheduleInput) (*models.MatchSchedule, error)
	Update(ctx context.Context, id int, input ScheduleInput) (*models.MatchSchedule, error)
	Delete(ctx context.Context, id int) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.MatchSchedule, error)
}

type ScheduleInput struct {
	TournamentID int       `json:"tournament_id"`
	Round        string    `json:"round"`
	TeamAID      *int      `json:"team_a_id"`
	TeamBID      *int      `json:"team_b_id"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	ResultNote   *string   `json:"result_note"`
}

type scheduleService struct {
	scheduleRepo   repositories.ScheduleRepository
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
}

func NewScheduleService(
	scheduleRepo repositories.ScheduleRepository,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
) ScheduleService {
	return &scheduleService{
		scheduleRepo:   scheduleRepo,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
	}
}

func (s *scheduleService) Create(ctx context.Context, input ScheduleInput) (*models.MatchSchedule, error) {
	schedule, err := s.buildFromInput(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to create schedule for tournament %d: %w", input.TournamentID, err)
	}
	return schedule, nil
}

func (s *scheduleService) Update(ctx context.Context, id int, input ScheduleInput) (*models.MatchSchedule, error) {
	existing, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrScheduleNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get schedule %d: %w", id, err)
	}

	input.TournamentID = existing.TournamentID
	schedule, err := s.buildFromInput(ctx, input)
	if err != nil {
		return nil, err
	}
	schedule.ID = existing.ID

	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		if errors.Is(err, repositories.ErrScheduleNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to update schedule %d: %w", id, err)
	}
	return schedule, nil
}

func (s *scheduleService) Delete(ctx context.Context, id int) error {
	if err := s.scheduleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrScheduleNotFound) {
			return ErrScheduleNotFound
		}
		return fmt.Errorf("failed to delete schedule %d: %w", id, err)
	}
	return nil
}

func (s *scheduleService) ListByTournament(ctx context.Context, tournamentID int) ([]models.MatchSchedule, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}

	schedules, err := s.scheduleRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules for tournament %d: %w", tournamentID, err)
	}
	return schedules, nil
}

func (s *scheduleService) buildFromInput(ctx context.Context, input ScheduleInput) (*models.MatchSchedule, error) {
	round := strings.TrimSpace(input.Round)
	if round == "" {
		return nil, fmt.Errorf("%w: round is required", ErrValidationFailed)
	}
	if input.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: scheduled_at is required", ErrValidationFailed)
	}

	if _, err := s.tournamentRepo.GetByID(ctx, input.TournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", input.TournamentID, err)
	}

	for _, teamID := range []*int{input.TeamAID, input.TeamBID} {
		if teamID == nil {
			continue
		}
		if _, err := s.teamRepo.GetByID(ctx, *teamID); err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, fmt.Errorf("failed to get team %d: %w", *teamID, err)
		}
	}

	return &models.MatchSchedule{
		TournamentID: input.TournamentID,
		Round:        round,
		TeamAID:      input.TeamAID,
		TeamBID:      input.TeamBID,
		ScheduledAt:  input.ScheduledAt,
		ResultNote:   input.ResultNote,
	}, nil
}
