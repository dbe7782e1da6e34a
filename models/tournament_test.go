package models

import "testing"

func TestTournamentStatusValid(t *testing.T) {
	tests := []struct {
		status TournamentStatus
		want   bool
	}{
		{TournamentStatusUpcoming, true},
		{TournamentStatusRegistration, true},
		{TournamentStatusLive, true},
		{TournamentStatusCompleted, true},
		{TournamentStatusCanceled, true},
		{"", false},
		{"archived", false},
		{"Registration", false},
	}

	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestRegistrationStatusSpace(t *testing.T) {
	// A pending registration on a registration-phase tournament keeps the two
	// status spaces apart.
	reg := TournamentRegistration{Status: RegistrationPending}
	tour := Tournament{Status: TournamentStatusRegistration}
	if reg.Status != RegistrationPending || tour.Status != TournamentStatusRegistration {
		t.Fatalf("unexpected statuses: %q / %q", reg.Status, tour.Status)
	}
}
