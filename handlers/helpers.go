package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/arenaops/esports-platform/services"
	"github.com/go-chi/chi/v5"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type envelope map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		default:
			return err
		}
	}

	if decoder.More() {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"error": message})
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := statusForServiceError(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

// statusForServiceError maps service sentinel errors onto HTTP status codes.
// Anything unrecognized is a 500 with a generic message left to the caller.
func statusForServiceError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrGameHandleRequired),
		errors.Is(err, services.ErrWithdrawalBelowMinimum),
		errors.Is(err, services.ErrAmountNotPositive),
		errors.Is(err, services.ErrUTRRequired),
		errors.Is(err, services.ErrReasonRequired),
		errors.Is(err, services.ErrInvalidUPIFormat),
		errors.Is(err, services.ErrTournamentInvalidRegWindow),
		errors.Is(err, services.ErrTournamentInvalidDates),
		errors.Is(err, services.ErrTournamentInvalidCapacity),
		errors.Is(err, services.ErrTournamentInvalidStatus):
		return http.StatusBadRequest

	case errors.Is(err, services.ErrAuthInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, services.ErrForbiddenOperation),
		errors.Is(err, services.ErrCaptainActionForbidden),
		errors.Is(err, services.ErrCaptainCannotLeave):
		return http.StatusForbidden

	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrGameNotFound),
		errors.Is(err, services.ErrFormatNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrRegistrationNotFound),
		errors.Is(err, services.ErrInvitationNotFound),
		errors.Is(err, services.ErrTransactionNotFound),
		errors.Is(err, services.ErrScheduleNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		return http.StatusNotFound

	case errors.Is(err, services.ErrUserEmailConflict),
		errors.Is(err, services.ErrUserGameHandleConflict),
		errors.Is(err, services.ErrTeamNameConflict),
		errors.Is(err, services.ErrTournamentTitleConflict),
		errors.Is(err, services.ErrRegistrationConflict),
		errors.Is(err, services.ErrRegistrationDecided),
		errors.Is(err, services.ErrTransactionDecided),
		errors.Is(err, services.ErrConversionConflict),
		errors.Is(err, services.ErrAlreadyCaptain),
		errors.Is(err, services.ErrDuplicateGameHandle),
		errors.Is(err, services.ErrTournamentFull),
		errors.Is(err, services.ErrTeamFull),
		errors.Is(err, services.ErrTeamTerminated):
		return http.StatusConflict

	case errors.Is(err, services.ErrInvitationInvalid):
		return http.StatusGone

	case errors.Is(err, services.ErrRegistrationNotOpen),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrNoReferralPoints):
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}

// getIDFromURL reads a positive integer chi route parameter.
func getIDFromURL(r *http.Request, param string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s parameter", param)
	}
	return id, nil
}
