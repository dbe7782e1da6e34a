package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arenaops/esports-platform/models"
)

type tournamentFixture struct {
	svc        TournamentService
	gameRepo   *fakeGameRepo
	formatRepo *fakeFormatRepo
	gameID     int
}

func newTournamentFixture(t *testing.T) *tournamentFixture {
	t.Helper()
	gameRepo := newFakeGameRepo()
	game := gameRepo.add("Valorant")
	formatRepo := newFakeFormatRepo()

	return &tournamentFixture{
		svc:        NewTournamentService(newFakeTournamentRepo(), gameRepo, formatRepo),
		gameRepo:   gameRepo,
		formatRepo: formatRepo,
		gameID:     game.ID,
	}
}

func validTournamentInput(gameID int) TournamentInput {
	return TournamentInput{
		Title:     "Clash of Clans Cup",
		GameID:    gameID,
		RegOpen:   time.Now().Add(time.Hour),
		RegClose:  time.Now().Add(24 * time.Hour),
		StartDate: time.Now().Add(48 * time.Hour),
		EntryFee:  100,
		PrizePool: 5000,
		MaxTeams:  16,
	}
}

func TestCreateTournament(t *testing.T) {
	fx := newTournamentFixture(t)
	ctx := context.Background()

	tournament, err := fx.svc.Create(ctx, validTournamentInput(fx.gameID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tournament.Status != models.TournamentStatusUpcoming {
		t.Errorf("got status %q, want default upcoming", tournament.Status)
	}
	if tournament.Game == nil || tournament.Game.Name != "Valorant" {
		t.Errorf("game lookup not attached: %+v", tournament.Game)
	}

	if _, err := fx.svc.Create(ctx, validTournamentInput(fx.gameID)); !errors.Is(err, ErrTournamentTitleConflict) {
		t.Errorf("duplicate title: got %v, want ErrTournamentTitleConflict", err)
	}
}

func TestCreateTournamentValidation(t *testing.T) {
	fx := newTournamentFixture(t)
	ctx := context.Background()

	format := &models.Format{Name: "Battle Royale", Kind: models.FormatModeType}
	if err := fx.formatRepo.Create(ctx, format); err != nil {
		t.Fatalf("seed format failed: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*TournamentInput)
		wantErr error
	}{
		{"blank title", func(in *TournamentInput) { in.Title = "  " }, ErrValidationFailed},
		{"zero capacity", func(in *TournamentInput) { in.MaxTeams = 0 }, ErrTournamentInvalidCapacity},
		{"window closes before it opens", func(in *TournamentInput) {
			in.RegClose = in.RegOpen.Add(-time.Hour)
		}, ErrTournamentInvalidRegWindow},
		{"starts before registration closes", func(in *TournamentInput) {
			in.StartDate = in.RegClose.Add(-time.Hour)
		}, ErrTournamentInvalidDates},
		{"negative entry fee", func(in *TournamentInput) { in.EntryFee = -1 }, ErrAmountNotPositive},
		{"unknown game", func(in *TournamentInput) { in.GameID = 999 }, ErrGameNotFound},
		{"unknown status", func(in *TournamentInput) { in.Status = "paused" }, ErrTournamentInvalidStatus},
		{"mode format used as type", func(in *TournamentInput) { in.TypeID = &format.ID }, ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validTournamentInput(fx.gameID)
			tt.mutate(&input)
			if _, err := fx.svc.Create(ctx, input); !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateTournamentKeepsCounters(t *testing.T) {
	fx := newTournamentFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, validTournamentInput(fx.gameID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input := validTournamentInput(fx.gameID)
	input.Title = "Renamed Cup"
	input.PrizePool = 9000
	updated, err := fx.svc.Update(ctx, created.ID, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Title != "Renamed Cup" || updated.PrizePool != 9000 {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Status != created.Status {
		t.Errorf("got status %q, want status preserved when input omits it", updated.Status)
	}
}

func TestChangeTournamentStatus(t *testing.T) {
	fx := newTournamentFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, validTournamentInput(fx.gameID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Status input is case-insensitive.
	updated, err := fx.svc.ChangeStatus(ctx, created.ID, "LIVE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != models.TournamentStatusLive {
		t.Errorf("got status %q, want live", updated.Status)
	}

	if _, err := fx.svc.ChangeStatus(ctx, created.ID, "archived"); !errors.Is(err, ErrTournamentInvalidStatus) {
		t.Errorf("unknown status: got %v, want ErrTournamentInvalidStatus", err)
	}
	if _, err := fx.svc.ChangeStatus(ctx, 999, models.TournamentStatusLive); !errors.Is(err, ErrTournamentNotFound) {
		t.Errorf("unknown tournament: got %v, want ErrTournamentNotFound", err)
	}
}
