package models

import "time"

type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleAccountant UserRole = "accountant"
	RoleAdmin      UserRole = "admin"
)

// Valid reports whether the role is one of the known roles. Comparison is done
// on the normalized (lower-case) form; roles are stored normalized.
func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleAccountant, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID            int      `json:"id" db:"id"`
	FirstName     string   `json:"first_name" db:"first_name"`
	LastName      string   `json:"last_name" db:"last_name"`
	Email         string   `json:"email" db:"email"`
	PasswordHash  string   `json:"-" db:"password_hash"`
	GameHandle    *string  `json:"game_handle,omitempty" db:"game_handle"`
	Role          UserRole `json:"role" db:"role"`
	WalletBalance int64    `json:"wallet_balance" db:"wallet_balance"`

	Wins     int   `json:"wins" db:"wins"`
	Kills    int   `json:"kills" db:"kills"`
	Earnings int64 `json:"earnings" db:"earnings"`

	ReferralCode   string `json:"referral_code" db:"referral_code"`
	ReferralPoints int    `json:"referral_points" db:"referral_points"`
	ReferredBy     *int   `json:"referred_by,omitempty" db:"referred_by"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
