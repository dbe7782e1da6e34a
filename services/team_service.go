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

type TeamService interface {
	Create(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetMine(ctx context.Context, captainID int) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	Update(ctx context.Context, teamID, actorID int, input UpdateTeamInput) (*models.Team, error)

	RemoveMember(ctx context.Context, teamID, captainID, memberUserID int) error
	Leave(ctx context.Context, teamID, userID int) error
	Terminate(ctx context.Context, teamID, actorID int, actorRole models.UserRole) error
	Reinstate(ctx context.Context, teamID int) error
}

type CreateTeamInput struct {
	Name       string `json:"name"`
	GameID     int    `json:"game_id"`
	CaptainID  int    `json:"-"`
	GameHandle string `json:"game_handle"`
	LogoKey    string `json:"logo_key"`
}

type UpdateTeamInput struct {
	Name    *string `json:"name"`
	GameID  *int    `json:"game_id"`
	LogoKey *string `json:"logo_key"`
}

type teamService struct {
	db       *sql.DB
	teamRepo repositories.TeamRepository
	userRepo repositories.UserRepository
	gameRepo repositories.GameRepository
}

func NewTeamService(
	db *sql.DB,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	gameRepo repositories.GameRepository,
) TeamService {
	return &teamService{
		db:       db,
		teamRepo: teamRepo,
		userRepo: userRepo,
		gameRepo: gameRepo,
	}
}

// Create registers a new team with the creator as captain and first roster
// member. A user may captain at most one active team; the partial unique
// index on teams enforces this against concurrent creates.
func (s *teamService) Create(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}

	captain, err := s.userRepo.GetByID(ctx, input.CaptainID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", input.CaptainID, err)
	}

	handle := strings.TrimSpace(input.GameHandle)
	if handle == "" && captain.GameHandle != nil {
		handle = *captain.GameHandle
	}
	if handle == "" {
		return nil, ErrGameHandleRequired
	}

	if _, err := s.gameRepo.GetByID(ctx, input.GameID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %d: %w", input.GameID, err)
	}

	if _, err := s.teamRepo.GetActiveByCaptain(ctx, input.CaptainID); err == nil {
		return nil, ErrAlreadyCaptain
	} else if !errors.Is(err, repositories.ErrTeamNotFound) {
		return nil, fmt.Errorf("failed to check existing team for user %d: %w", input.CaptainID, err)
	}

	team := &models.Team{
		Name:      input.Name,
		GameID:    input.GameID,
		CaptainID: input.CaptainID,
	}
	if key := strings.TrimSpace(input.LogoKey); key != "" {
		team.LogoKey = &key
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		case errors.Is(err, repositories.ErrTeamCaptainConflict):
			return nil, ErrAlreadyCaptain
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	member := &models.TeamMember{
		TeamID:     team.ID,
		UserID:     &input.CaptainID,
		GameHandle: handle,
	}
	if err := s.teamRepo.AddMember(ctx, nil, member); err != nil {
		// Best effort rollback of the orphan team row.
		_ = s.teamRepo.Delete(ctx, team.ID)
		if errors.Is(err, repositories.ErrTeamMemberHandleConflict) {
			return nil, ErrDuplicateGameHandle
		}
		return nil, fmt.Errorf("failed to add captain to team %d: %w", team.ID, err)
	}
	team.Members = []models.TeamMember{*member}

	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}
	return team, nil
}

func (s *teamService) GetMine(ctx context.Context, captainID int) (*models.Team, error) {
	team, err := s.teamRepo.GetActiveByCaptain(ctx, captainID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team for captain %d: %w", captainID, err)
	}
	return s.GetByID(ctx, team.ID)
}

func (s *teamService) List(ctx context.Context) ([]models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (s *teamService) Update(ctx context.Context, teamID, actorID int, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.requireActiveTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.CaptainID != actorID {
		return nil, ErrCaptainActionForbidden
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team.Name = name
	}
	if input.GameID != nil {
		if _, err := s.gameRepo.GetByID(ctx, *input.GameID); err != nil {
			if errors.Is(err, repositories.ErrGameNotFound) {
				return nil, ErrGameNotFound
			}
			return nil, fmt.Errorf("failed to get game %d: %w", *input.GameID, err)
		}
		team.GameID = *input.GameID
	}
	if input.LogoKey != nil {
		if key := strings.TrimSpace(*input.LogoKey); key != "" {
			team.LogoKey = &key
		} else {
			team.LogoKey = nil
		}
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to update team %d: %w", teamID, err)
	}
	return team, nil
}

func (s *teamService) RemoveMember(ctx context.Context, teamID, captainID, memberUserID int) error {
	team, err := s.requireActiveTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.CaptainID != captainID {
		return ErrCaptainActionForbidden
	}
	if memberUserID == team.CaptainID {
		return ErrCaptainCannotLeave
	}

	if err := s.teamRepo.RemoveMemberByUser(ctx, teamID, memberUserID); err != nil {
		if errors.Is(err, repositories.ErrTeamMemberNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to remove member %d from team %d: %w", memberUserID, teamID, err)
	}
	return nil
}

// Leave removes the caller from the roster. The captain cannot leave; they
// must terminate the team instead.
func (s *teamService) Leave(ctx context.Context, teamID, userID int) error {
	team, err := s.requireActiveTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if userID == team.CaptainID {
		return ErrCaptainCannotLeave
	}

	if err := s.teamRepo.RemoveMemberByUser(ctx, teamID, userID); err != nil {
		if errors.Is(err, repositories.ErrTeamMemberNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to leave team %d: %w", teamID, err)
	}
	return nil
}

// Terminate soft-deletes a team. Allowed for the captain or an admin. The
// roster and history remain for leaderboard attribution.
func (s *teamService) Terminate(ctx context.Context, teamID, actorID int, actorRole models.UserRole) error {
	team, err := s.requireActiveTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.CaptainID != actorID && actorRole != models.RoleAdmin {
		return ErrCaptainActionForbidden
	}

	if err := s.teamRepo.SetTerminated(ctx, teamID, true); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to terminate team %d: %w", teamID, err)
	}
	return nil
}

// Reinstate lifts a termination. Role enforcement happens at the route layer;
// only staff routes reach this.
func (s *teamService) Reinstate(ctx context.Context, teamID int) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	if !team.Terminated {
		return nil
	}

	// The captain may have started another active team in the meantime; the
	// one-active-team rule still holds.
	if existing, err := s.teamRepo.GetActiveByCaptain(ctx, team.CaptainID); err == nil && existing.ID != teamID {
		return ErrAlreadyCaptain
	} else if err != nil && !errors.Is(err, repositories.ErrTeamNotFound) {
		return fmt.Errorf("failed to check active team for captain %d: %w", team.CaptainID, err)
	}

	if err := s.teamRepo.SetTerminated(ctx, teamID, false); err != nil {
		return fmt.Errorf("failed to reinstate team %d: %w", teamID, err)
	}
	return nil
}

func (s *teamService) requireActiveTeam(ctx context.Context, teamID int) (*models.Team, error) {
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
	return team, nil
}
