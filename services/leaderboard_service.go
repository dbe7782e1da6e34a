package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/arenaops/esports-platform/models"
	"github.com/arenaops/esports-platform/repositories"
)

const (
	defaultTopTeamsLimit = 10
	maxTopTeamsLimit     = 100
)

type LeaderboardService interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]models.LeaderboardEntry, error)
	// TopTeams returns the cross-tournament standings, re-ranked contiguously
	// from 1 after aggregation.
	TopTeams(ctx context.Context, limit int) ([]models.TeamStanding, error)

	RecordResult(ctx context.Context, input ResultInput) (*models.LeaderboardEntry, error)
	ReplaceForTournament(ctx context.Context, tournamentID int, inputs []ResultInput) ([]models.LeaderboardEntry, error)
}

// ResultInput is one team's placement in a finished tournament. TeamID may be
// zero for placeholder teams known only by name.
type ResultInput struct {
	TournamentID int    `json:"tournament_id"`
	TeamID       int    `json:"team_id"`
	TeamName     string `json:"team_name"`
	Rank         int    `json:"rank"`
	Kills        int    `json:"kills"`
	Earnings     int64  `json:"earnings"`
}

type leaderboardService struct {
	db              *sql.DB
	leaderboardRepo repositories.LeaderboardRepository
	tournamentRepo  repositories.TournamentRepository
	teamRepo        repositories.TeamRepository
	userRepo        repositories.UserRepository
	notifications   NotificationService
}

func NewLeaderboardService(
	db *sql.DB,
	leaderboardRepo repositories.LeaderboardRepository,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
) LeaderboardService {
	return &leaderboardService{
		db:              db,
		leaderboardRepo: leaderboardRepo,
		tournamentRepo:  tournamentRepo,
		teamRepo:        teamRepo,
		userRepo:        userRepo,
		notifications:   notifications,
	}
}

func (s *leaderboardService) ListByTournament(ctx context.Context, tournamentID int) ([]models.LeaderboardEntry, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}

	entries, err := s.leaderboardRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard for tournament %d: %w", tournamentID, err)
	}
	return entries, nil
}

func (s *leaderboardService) TopTeams(ctx context.Context, limit int) ([]models.TeamStanding, error) {
	if limit <= 0 {
		limit = defaultTopTeamsLimit
	}
	if limit > maxTopTeamsLimit {
		limit = maxTopTeamsLimit
	}

	standings, err := s.leaderboardRepo.AggregateTopTeams(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top teams: %w", err)
	}

	// The repository orders by earnings; ranks are assigned here so they stay
	// contiguous whatever subset the limit selects.
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings, nil
}

// RecordResult stores one placement row and folds the result into the member
// stats of the linked team, all in one transaction.
func (s *leaderboardService) RecordResult(ctx context.Context, input ResultInput) (*models.LeaderboardEntry, error) {
	entry, team, err := s.prepareEntry(ctx, input)
	if err != nil {
		return nil, err
	}

	err = runInTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.leaderboardRepo.Create(ctx, tx, entry); err != nil {
			return err
		}
		return s.applyMemberStats(ctx, tx, team, entry)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrLeaderboardRankConflict) {
			return nil, fmt.Errorf("%w: rank %d already recorded", ErrValidationFailed, entry.Rank)
		}
		return nil, fmt.Errorf("failed to record result for tournament %d: %w", input.TournamentID, err)
	}

	s.notifyMembers(ctx, team, entry)
	return entry, nil
}

// ReplaceForTournament swaps the whole board of a tournament. Member stats are
// not re-derived here; replacement is a correction tool for imported boards.
func (s *leaderboardService) ReplaceForTournament(ctx context.Context, tournamentID int, inputs []ResultInput) ([]models.LeaderboardEntry, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}

	entries := make([]*models.LeaderboardEntry, 0, len(inputs))
	for _, input := range inputs {
		input.TournamentID = tournamentID
		entry, _, err := s.prepareEntry(ctx, input)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := s.leaderboardRepo.ReplaceForTournament(ctx, tournamentID, entries); err != nil {
		if errors.Is(err, repositories.ErrLeaderboardRankConflict) {
			return nil, fmt.Errorf("%w: duplicate rank in submitted board", ErrValidationFailed)
		}
		return nil, fmt.Errorf("failed to replace leaderboard for tournament %d: %w", tournamentID, err)
	}

	result := make([]models.LeaderboardEntry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, *entry)
	}
	return result, nil
}

// prepareEntry validates a result row and resolves its team link. The team
// return is nil for placeholder entries.
func (s *leaderboardService) prepareEntry(ctx context.Context, input ResultInput) (*models.LeaderboardEntry, *models.Team, error) {
	if input.Rank <= 0 {
		return nil, nil, fmt.Errorf("%w: rank must be positive", ErrValidationFailed)
	}
	if input.Kills < 0 || input.Earnings < 0 {
		return nil, nil, fmt.Errorf("%w: kills and earnings cannot be negative", ErrValidationFailed)
	}

	if _, err := s.tournamentRepo.GetByID(ctx, input.TournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, nil, ErrTournamentNotFound
		}
		return nil, nil, fmt.Errorf("failed to get tournament %d: %w", input.TournamentID, err)
	}

	entry := &models.LeaderboardEntry{
		TournamentID: input.TournamentID,
		TeamName:     strings.TrimSpace(input.TeamName),
		Rank:         input.Rank,
		Kills:        input.Kills,
		Earnings:     input.Earnings,
	}

	var team *models.Team
	if input.TeamID > 0 {
		var err error
		team, err = s.teamRepo.GetByID(ctx, input.TeamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, nil, ErrTeamNotFound
			}
			return nil, nil, fmt.Errorf("failed to get team %d: %w", input.TeamID, err)
		}
		entry.TeamID = &team.ID
		entry.TeamName = team.Name
	}
	if entry.TeamName == "" {
		return nil, nil, fmt.Errorf("%w: team name is required for placeholder entries", ErrValidationFailed)
	}
	return entry, team, nil
}

// applyMemberStats credits each roster member with the team's kills and an
// even share of the earnings. A first-place finish also counts as a win.
func (s *leaderboardService) applyMemberStats(ctx context.Context, tx *sql.Tx, team *models.Team, entry *models.LeaderboardEntry) error {
	if team == nil || len(team.Members) == 0 {
		return nil
	}

	wins := 0
	if entry.Rank == 1 {
		wins = 1
	}
	share := entry.Earnings / int64(len(team.Members))

	// Only roster slots linked to a platform account carry stats.
	for _, member := range team.Members {
		if member.UserID == nil {
			continue
		}
		if err := s.userRepo.AddStats(ctx, tx, *member.UserID, wins, entry.Kills, share); err != nil {
			return err
		}
	}
	return nil
}

func (s *leaderboardService) notifyMembers(ctx context.Context, team *models.Team, entry *models.LeaderboardEntry) {
	if team == nil || len(team.Members) == 0 {
		return
	}
	userIDs := make([]int, 0, len(team.Members))
	for _, member := range team.Members {
		if member.UserID == nil {
			continue
		}
		userIDs = append(userIDs, *member.UserID)
	}
	if len(userIDs) == 0 {
		return
	}
	_ = s.notifications.FanOut(ctx, userIDs, models.NotifyMatchResult,
		"Match result posted",
		fmt.Sprintf("%s placed #%d with %d kills.", team.Name, entry.Rank, entry.Kills))
}
