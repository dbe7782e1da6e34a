package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arenaops/esports-platform/models"
	"github.com/arenaops/esports-platform/repositories"
)

type RegistrationService interface {
	Register(ctx context.Context, tournamentID, teamID, actorID int) (*models.TournamentRegistration, error)
	Approve(ctx context.Context, registrationID, actorID int) error
	Reject(ctx context.Context, registrationID, actorID int, reason string) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentRegistration, error)
	ListByTeam(ctx context.Context, teamID int) ([]models.TournamentRegistration, error)
}

type registrationService struct {
	db               *sql.DB
	registrationRepo repositories.RegistrationRepository
	tournamentRepo   repositories.TournamentRepository
	teamRepo         repositories.TeamRepository
	notifications    NotificationService
}

func NewRegistrationService(
	db *sql.DB,
	registrationRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	notifications NotificationService,
) RegistrationService {
	return &registrationService{
		db:               db,
		registrationRepo: registrationRepo,
		tournamentRepo:   tournamentRepo,
		teamRepo:         teamRepo,
		notifications:    notifications,
	}
}

// Register files a pending registration for a team. Only the captain may
// register, and only inside the tournament's registration window. Capacity is
// not consumed here; the seat is taken when staff approve.
func (s *registrationService) Register(ctx context.Context, tournamentID, teamID, actorID int) (*models.TournamentRegistration, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}

	now := time.Now()
	if now.Before(tournament.RegOpen) || now.After(tournament.RegClose) {
		return nil, ErrRegistrationNotOpen
	}
	switch tournament.Status {
	case models.TournamentStatusCompleted, models.TournamentStatusCanceled, models.TournamentStatusLive:
		return nil, ErrRegistrationNotOpen
	}
	if tournament.RegisteredTeams >= tournament.MaxTeams {
		return nil, ErrTournamentFull
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	if team.Terminated {
		return nil, ErrTeamTerminated
	}
	if team.CaptainID != actorID {
		return nil, ErrCaptainActionForbidden
	}

	registration := &models.TournamentRegistration{
		TournamentID: tournamentID,
		TeamID:       teamID,
		Status:       models.RegistrationPending,
	}
	if err := s.registrationRepo.Create(ctx, registration); err != nil {
		if errors.Is(err, repositories.ErrRegistrationConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, fmt.Errorf("failed to register team %d for tournament %d: %w", teamID, tournamentID, err)
	}
	return registration, nil
}

// Approve flips a pending registration and consumes one tournament seat in
// the same transaction, so capacity can never be oversold by concurrent
// approvals.
func (s *registrationService) Approve(ctx context.Context, registrationID, actorID int) error {
	registration, err := s.getRegistration(ctx, registrationID)
	if err != nil {
		return err
	}

	err = runInTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.registrationRepo.Approve(ctx, tx, registrationID, actorID); err != nil {
			return err
		}
		return s.tournamentRepo.IncrementRegisteredTeams(ctx, tx, registration.TournamentID)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrRegistrationNotFound):
			return ErrRegistrationNotFound
		case errors.Is(err, repositories.ErrRegistrationDecided):
			return ErrRegistrationDecided
		case errors.Is(err, repositories.ErrTournamentFull):
			return ErrTournamentFull
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to approve registration %d: %w", registrationID, err)
	}

	s.notifyCaptain(ctx, registration, "Registration approved",
		"Your team's tournament registration has been approved.")
	return nil
}

func (s *registrationService) Reject(ctx context.Context, registrationID, actorID int, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}

	registration, err := s.getRegistration(ctx, registrationID)
	if err != nil {
		return err
	}

	if err := s.registrationRepo.Reject(ctx, nil, registrationID, actorID, reason); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRegistrationNotFound):
			return ErrRegistrationNotFound
		case errors.Is(err, repositories.ErrRegistrationDecided):
			return ErrRegistrationDecided
		}
		return fmt.Errorf("failed to reject registration %d: %w", registrationID, err)
	}

	s.notifyCaptain(ctx, registration, "Registration rejected",
		fmt.Sprintf("Your team's tournament registration was rejected: %s", reason))
	return nil
}

func (s *registrationService) ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentRegistration, error) {
	registrations, err := s.registrationRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for tournament %d: %w", tournamentID, err)
	}
	s.attachTeams(ctx, registrations)
	return registrations, nil
}

func (s *registrationService) ListByTeam(ctx context.Context, teamID int) ([]models.TournamentRegistration, error) {
	registrations, err := s.registrationRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for team %d: %w", teamID, err)
	}
	for i := range registrations {
		if tournament, getErr := s.tournamentRepo.GetByID(ctx, registrations[i].TournamentID); getErr == nil {
			registrations[i].Tournament = tournament
		}
	}
	return registrations, nil
}

func (s *registrationService) getRegistration(ctx context.Context, id int) (*models.TournamentRegistration, error) {
	registration, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration %d: %w", id, err)
	}
	return registration, nil
}

func (s *registrationService) notifyCaptain(ctx context.Context, registration *models.TournamentRegistration, title, body string) {
	team, err := s.teamRepo.GetByID(ctx, registration.TeamID)
	if err != nil {
		return
	}
	_ = s.notifications.Notify(ctx, team.CaptainID, models.NotifyRegistration, title, body)
}

func (s *registrationService) attachTeams(ctx context.Context, registrations []models.TournamentRegistration) {
	for i := range registrations {
		if team, err := s.teamRepo.GetByID(ctx, registrations[i].TeamID); err == nil {
			registrations[i].Team = team
		}
	}
}
