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

const (
	invitationCodeLength  = 12
	invitationCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// InvitationTTL is how long an invitation code stays redeemable.
	InvitationTTL = 5 * time.Hour
)

type InvitationService interface {
	Create(ctx context.Context, teamID, inviterID int) (*models.TeamInvitation, error)
	// Preview resolves a code for display without consuming it, expiring it
	// lazily when its deadline has passed.
	Preview(ctx context.Context, code string) (*models.TeamInvitation, error)
	Accept(ctx context.Context, code string, userID int, gameHandle string) (*models.Team, error)
	Reject(ctx context.Context, code string, userID int) error
	ListByTeam(ctx context.Context, teamID, actorID int) ([]models.TeamInvitation, error)
}

type invitationService struct {
	db             *sql.DB
	invitationRepo repositories.InvitationRepository
	teamRepo       repositories.TeamRepository
	userRepo       repositories.UserRepository
	notifications  NotificationService
}

func NewInvitationService(
	db *sql.DB,
	invitationRepo repositories.InvitationRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
) InvitationService {
	return &invitationService{
		db:             db,
		invitationRepo: invitationRepo,
		teamRepo:       teamRepo,
		userRepo:       userRepo,
		notifications:  notifications,
	}
}

// Create issues a new invitation code for the team. Only the captain may
// invite, and the roster must have room at issue time.
func (s *invitationService) Create(ctx context.Context, teamID, inviterID int) (*models.TeamInvitation, error) {
	team, err := s.activeTeamWithRoom(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.CaptainID != inviterID {
		return nil, ErrCaptainActionForbidden
	}

	invitation := &models.TeamInvitation{
		TeamID:    teamID,
		InviterID: inviterID,
		Status:    models.InvitationPending,
		ExpiresAt: time.Now().Add(InvitationTTL),
	}

	const maxAttempts = 5
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, codeErr := randomCode(invitationCodeLength, invitationCodeCharset)
		if codeErr != nil {
			return nil, fmt.Errorf("failed to generate invitation code: %w", codeErr)
		}
		invitation.Code = code

		err = s.invitationRepo.Create(ctx, invitation)
		if !errors.Is(err, repositories.ErrInvitationCodeConflict) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation for team %d: %w", teamID, err)
	}
	return invitation, nil
}

func (s *invitationService) Preview(ctx context.Context, code string) (*models.TeamInvitation, error) {
	invitation, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, invitation.TeamID)
	if err == nil {
		invitation.Team = team
	}
	return invitation, nil
}

// Accept redeems an invitation and adds the caller to the roster. The guarded
// status flip in Consume makes the code single-use even under a concurrent
// double-accept.
func (s *invitationService) Accept(ctx context.Context, code string, userID int, gameHandle string) (*models.Team, error) {
	invitation, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	team, err := s.activeTeamWithRoom(ctx, invitation.TeamID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	handle := strings.TrimSpace(gameHandle)
	if handle == "" && user.GameHandle != nil {
		handle = *user.GameHandle
	}
	if handle == "" {
		return nil, ErrGameHandleRequired
	}

	for _, member := range team.Members {
		if member.UserID != nil && *member.UserID == userID {
			return nil, ErrRegistrationConflict
		}
	}

	err = runInTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.invitationRepo.Consume(ctx, tx, code, models.InvitationAccepted); err != nil {
			return err
		}
		member := &models.TeamMember{
			TeamID:     team.ID,
			UserID:     &userID,
			GameHandle: handle,
		}
		return s.teamRepo.AddMember(ctx, tx, member)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrInvitationConsumed):
			return nil, ErrInvitationInvalid
		case errors.Is(err, repositories.ErrTeamMemberHandleConflict):
			return nil, ErrDuplicateGameHandle
		case errors.Is(err, repositories.ErrTeamRosterFull):
			return nil, ErrTeamFull
		}
		return nil, fmt.Errorf("failed to accept invitation %s: %w", code, err)
	}

	_ = s.notifications.Notify(ctx, invitation.InviterID, models.NotifyTeamInvitation,
		"Invitation accepted",
		fmt.Sprintf("%s %s joined %s.", user.FirstName, user.LastName, team.Name))

	return s.teamRepo.GetByID(ctx, team.ID)
}

func (s *invitationService) Reject(ctx context.Context, code string, userID int) error {
	invitation, err := s.lookup(ctx, code)
	if err != nil {
		return err
	}

	if _, err := s.invitationRepo.Consume(ctx, nil, code, models.InvitationRejected); err != nil {
		if errors.Is(err, repositories.ErrInvitationConsumed) {
			return ErrInvitationInvalid
		}
		return fmt.Errorf("failed to reject invitation %s: %w", code, err)
	}

	_ = s.notifications.Notify(ctx, invitation.InviterID, models.NotifyTeamInvitation,
		"Invitation declined",
		"Your team invitation was declined.")
	return nil
}

func (s *invitationService) ListByTeam(ctx context.Context, teamID, actorID int) ([]models.TeamInvitation, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	if team.CaptainID != actorID {
		return nil, ErrCaptainActionForbidden
	}

	invitations, err := s.invitationRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations for team %d: %w", teamID, err)
	}

	now := time.Now()
	for i := range invitations {
		if invitations[i].Status == models.InvitationPending && now.After(invitations[i].ExpiresAt) {
			invitations[i].Status = models.InvitationExpired
			_ = s.invitationRepo.MarkExpired(ctx, invitations[i].ID)
		}
	}
	return invitations, nil
}

// lookup fetches a pending invitation by code, applying lazy expiry.
func (s *invitationService) lookup(ctx context.Context, code string) (*models.TeamInvitation, error) {
	invitation, err := s.invitationRepo.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, repositories.ErrInvitationNotFound) {
			return nil, ErrInvitationInvalid
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	if invitation.Status == models.InvitationPending && time.Now().After(invitation.ExpiresAt) {
		invitation.Status = models.InvitationExpired
		_ = s.invitationRepo.MarkExpired(ctx, invitation.ID)
	}
	if invitation.Status != models.InvitationPending {
		return nil, ErrInvitationInvalid
	}
	return invitation, nil
}

// activeTeamWithRoom loads a team and verifies it is active and under the
// roster cap.
func (s *invitationService) activeTeamWithRoom(ctx context.Context, teamID int) (*models.Team, error) {
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
	if len(team.Members) >= models.MaxTeamMembers {
		return nil, ErrTeamFull
	}
	return team, nil
}
