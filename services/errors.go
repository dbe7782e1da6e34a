package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password must be at least 6 characters")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrTeamFull               = errors.New("team roster is full")
	ErrDuplicateGameHandle    = errors.New("game handle already on the roster")
	ErrAlreadyCaptain         = errors.New("user already captains an active team")
	ErrCaptainCannotLeave     = errors.New("the captain cannot leave the team")
	ErrTeamTerminated         = errors.New("team has been terminated")
	ErrGameHandleRequired     = errors.New("a game handle is required to join a team")
	ErrInvitationInvalid      = errors.New("invitation is invalid or expired")
	ErrRegistrationNotOpen    = errors.New("tournament registration is not open")
	ErrWithdrawalBelowMinimum = errors.New("withdrawal amount is below the minimum")
	ErrInsufficientBalance    = errors.New("insufficient wallet balance")
	ErrAmountNotPositive      = errors.New("amount must be positive")
	ErrUTRRequired            = errors.New("a UTR reference is required to approve a withdrawal")
	ErrReasonRequired         = errors.New("a reason is required to reject a withdrawal")
	ErrNoReferralPoints       = errors.New("no referral points to convert")
	ErrInvalidUPIFormat       = errors.New("UPI id is not in a valid format")

	// Conflicts
	ErrUserEmailConflict       = errors.New("email address is already in use")
	ErrUserGameHandleConflict  = errors.New("game handle is already in use")
	ErrTeamNameConflict        = errors.New("team name is already in use")
	ErrTournamentTitleConflict = errors.New("tournament title already exists")
	ErrRegistrationConflict    = errors.New("team is already registered for this tournament")
	ErrRegistrationDecided     = errors.New("registration has already been decided")
	ErrTransactionDecided      = errors.New("withdrawal has already been decided")
	ErrTournamentFull          = errors.New("tournament has reached its team capacity")
	ErrConversionConflict      = errors.New("referral points were converted concurrently")

	// Authentication and authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrCaptainActionForbidden = errors.New("only the team captain can perform this action")

	// Entity-specific lookups
	ErrUserNotFound         = errors.New("user not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrGameNotFound         = errors.New("game not found")
	ErrFormatNotFound       = errors.New("format not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrRegistrationNotFound = errors.New("tournament registration not found")
	ErrInvitationNotFound   = errors.New("team invitation not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrScheduleNotFound     = errors.New("match schedule not found")
	ErrNotificationNotFound = errors.New("notification not found")

	// Tournament validation
	ErrTournamentInvalidRegWindow = errors.New("registration close must be after registration open")
	ErrTournamentInvalidDates     = errors.New("tournament start date must be after registration close")
	ErrTournamentInvalidCapacity  = errors.New("tournament max teams must be positive")
	ErrTournamentInvalidStatus    = errors.New("invalid tournament status provided")
)
