package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arenaops/esports-platform/models"
)

type registrationFixture struct {
	svc            RegistrationService
	userRepo       *fakeUserRepo
	teamRepo       *fakeTeamRepo
	tournamentRepo *fakeTournamentRepo
	captain        *models.User
	team           *models.Team
	tournament     *models.Tournament
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	ctx := context.Background()

	userRepo := newFakeUserRepo()
	captain := userRepo.add(&models.User{Email: "cap@example.com", ReferralCode: "CAP00001"})

	teamRepo := newFakeTeamRepo()
	team := &models.Team{Name: "Contenders", GameID: 1, CaptainID: captain.ID}
	if err := teamRepo.Create(ctx, team); err != nil {
		t.Fatalf("seed team failed: %v", err)
	}

	tournamentRepo := newFakeTournamentRepo()
	tournament := &models.Tournament{
		Title:     "Summer Cup",
		GameID:    1,
		RegOpen:   time.Now().Add(-time.Hour),
		RegClose:  time.Now().Add(time.Hour),
		StartDate: time.Now().Add(24 * time.Hour),
		MaxTeams:  2,
		Status:    models.TournamentStatusRegistration,
	}
	if err := tournamentRepo.Create(ctx, tournament); err != nil {
		t.Fatalf("seed tournament failed: %v", err)
	}

	svc := NewRegistrationService(newTestDB(t), newFakeRegistrationRepo(), tournamentRepo, teamRepo, newTestNotificationService())
	return &registrationFixture{
		svc:            svc,
		userRepo:       userRepo,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		captain:        captain,
		team:           team,
		tournament:     tournament,
	}
}

func (fx *registrationFixture) addTeam(t *testing.T, name string) *models.Team {
	t.Helper()
	captain := fx.userRepo.add(&models.User{Email: name + "@example.com", ReferralCode: name + "0001"})
	team := &models.Team{Name: name, GameID: 1, CaptainID: captain.ID}
	if err := fx.teamRepo.Create(context.Background(), team); err != nil {
		t.Fatalf("seed team failed: %v", err)
	}
	return team
}

func TestRegisterForTournament(t *testing.T) {
	fx := newRegistrationFixture(t)
	ctx := context.Background()

	registration, err := fx.svc.Register(ctx, fx.tournament.ID, fx.team.ID, fx.captain.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if registration.Status != models.RegistrationPending {
		t.Errorf("got status %q, want pending", registration.Status)
	}

	// Same team cannot file twice while a live registration exists.
	if _, err := fx.svc.Register(ctx, fx.tournament.ID, fx.team.ID, fx.captain.ID); !errors.Is(err, ErrRegistrationConflict) {
		t.Errorf("duplicate registration: got %v, want ErrRegistrationConflict", err)
	}
}

func TestRegisterChecks(t *testing.T) {
	fx := newRegistrationFixture(t)
	ctx := context.Background()

	stranger := fx.userRepo.add(&models.User{Email: "str@example.com", ReferralCode: "STR00001"})
	if _, err := fx.svc.Register(ctx, fx.tournament.ID, fx.team.ID, stranger.ID); !errors.Is(err, ErrCaptainActionForbidden) {
		t.Errorf("non-captain: got %v, want ErrCaptainActionForbidden", err)
	}

	closed := &models.Tournament{
		Title:     "Closed Cup",
		GameID:    1,
		RegOpen:   time.Now().Add(-48 * time.Hour),
		RegClose:  time.Now().Add(-24 * time.Hour),
		StartDate: time.Now().Add(time.Hour),
		MaxTeams:  8,
		Status:    models.TournamentStatusRegistration,
	}
	if err := fx.tournamentRepo.Create(ctx, closed); err != nil {
		t.Fatalf("seed tournament failed: %v", err)
	}
	if _, err := fx.svc.Register(ctx, closed.ID, fx.team.ID, fx.captain.ID); !errors.Is(err, ErrRegistrationNotOpen) {
		t.Errorf("closed window: got %v, want ErrRegistrationNotOpen", err)
	}

	if err := fx.teamRepo.SetTerminated(ctx, fx.team.ID, true); err != nil {
		t.Fatalf("terminate failed: %v", err)
	}
	if _, err := fx.svc.Register(ctx, fx.tournament.ID, fx.team.ID, fx.captain.ID); !errors.Is(err, ErrTeamTerminated) {
		t.Errorf("terminated team: got %v, want ErrTeamTerminated", err)
	}
}

func TestApproveRegistrationConsumesCapacity(t *testing.T) {
	fx := newRegistrationFixture(t)
	ctx := context.Background()

	first, err := fx.svc.Register(ctx, fx.tournament.ID, fx.team.ID, fx.captain.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := fx.svc.Approve(ctx, first.ID, 99); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	tournament, _ := fx.tournamentRepo.GetByID(ctx, fx.tournament.ID)
	if tournament.RegisteredTeams != 1 {
		t.Errorf("got %d registered teams, want 1", tournament.RegisteredTeams)
	}

	// A second decision on the same registration is rejected and must not bump
	// the counter again.
	if err := fx.svc.Approve(ctx, first.ID, 99); !errors.Is(err, ErrRegistrationDecided) {
		t.Errorf("double approve: got %v, want ErrRegistrationDecided", err)
	}
	tournament, _ = fx.tournamentRepo.GetByID(ctx, fx.tournament.ID)
	if tournament.RegisteredTeams != 1 {
		t.Errorf("counter moved on double approve: got %d, want 1", tournament.RegisteredTeams)
	}
}

func TestApproveRegistrationWhenFull(t *testing.T) {
	fx := newRegistrationFixture(t)
	ctx := context.Background()

	// Fill both seats, then approve a third registration.
	teamB := fx.addTeam(t, "Bravo")
	teamC := fx.addTeam(t, "Charlie")

	regA, _ := fx.svc.Register(ctx, fx.tournament.ID, fx.team.ID, fx.captain.ID)
	regB, _ := fx.svc.Register(ctx, fx.tournament.ID, teamB.ID, teamB.CaptainID)
	regC, _ := fx.svc.Register(ctx, fx.tournament.ID, teamC.ID, teamC.CaptainID)

	if err := fx.svc.Approve(ctx, regA.ID, 99); err != nil {
		t.Fatalf("approve A failed: %v", err)
	}
	if err := fx.svc.Approve(ctx, regB.ID, 99); err != nil {
		t.Fatalf("approve B failed: %v", err)
	}
	if err := fx.svc.Approve(ctx, regC.ID, 99); !errors.Is(err, ErrTournamentFull) {
		t.Fatalf("approve over capacity: got %v, want ErrTournamentFull", err)
	}
}

func TestRejectRegistration(t *testing.T) {
	fx := newRegistrationFixture(t)
	ctx := context.Background()

	registration, _ := fx.svc.Register(ctx, fx.tournament.ID, fx.team.ID, fx.captain.ID)

	if err := fx.svc.Reject(ctx, registration.ID, 99, ""); !errors.Is(err, ErrReasonRequired) {
		t.Errorf("blank reason: got %v, want ErrReasonRequired", err)
	}
	if err := fx.svc.Reject(ctx, registration.ID, 99, "roster incomplete"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	// Rejection does not consume a seat, and the team may register again.
	tournament, _ := fx.tournamentRepo.GetByID(ctx, fx.tournament.ID)
	if tournament.RegisteredTeams != 0 {
		t.Errorf("got %d registered teams, want 0", tournament.RegisteredTeams)
	}
	if _, err := fx.svc.Register(ctx, fx.tournament.ID, fx.team.ID, fx.captain.ID); err != nil {
		t.Errorf("re-register after rejection failed: %v", err)
	}
}
