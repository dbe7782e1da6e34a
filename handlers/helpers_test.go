package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arenaops/esports-platform/services"
)

func TestStatusForServiceError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrValidationFailed, http.StatusBadRequest},
		{services.ErrWithdrawalBelowMinimum, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", services.ErrInvalidUPIFormat), http.StatusBadRequest},
		{services.ErrAuthInvalidCredentials, http.StatusUnauthorized},
		{services.ErrCaptainActionForbidden, http.StatusForbidden},
		{services.ErrTournamentNotFound, http.StatusNotFound},
		{services.ErrTransactionDecided, http.StatusConflict},
		{services.ErrTeamTerminated, http.StatusConflict},
		{services.ErrInvitationInvalid, http.StatusGone},
		{services.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{services.ErrNoReferralPoints, http.StatusUnprocessableEntity},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusForServiceError(tt.err); got != tt.want {
				t.Errorf("got status %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteServiceErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Errorf("internal error detail leaked: %s", rec.Body.String())
	}
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"name":"ok"}`, ""},
		{"empty body", ``, "body must not be empty"},
		{"malformed", `{"name":`, "badly-formed JSON"},
		{"wrong type", `{"name":42}`, `incorrect JSON type for field "name"`},
		{"unknown field", `{"nope":"x"}`, "unknown field"},
		{"trailing value", `{"name":"a"}{"name":"b"}`, "single JSON value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var dst payload
			err := readJSON(rec, req, &dst)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
