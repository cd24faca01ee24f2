package entity

import "time"

// AuthType tags an authentication result with the subsystem that produced it.
type AuthType string

const (
	AuthTypeBetterAuth AuthType = "betterauth"
	AuthTypeLegacy     AuthType = "legacy"
	AuthTypeNone       AuthType = "none"
)

// Strategy selects which credential systems participate in authentication.
type Strategy string

const (
	StrategyDual       Strategy = "dual"
	StrategyNewOnly    Strategy = "new-only"
	StrategyLegacyOnly Strategy = "legacy-only"
)

// LegacyUser is a row in the original `users` table. The Migrated flag is
// advisory; the existence of the matching AuthUser row is what actually
// marks an identity as migrated.
type LegacyUser struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	Migrated     bool      `db:"migrated"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// AuthUser is a row in the new system's `auth_users` table. Its ID always
// equals the corresponding LegacyUser.ID so account and transaction foreign
// keys survive migration untouched.
type AuthUser struct {
	ID            string    `db:"id"`
	Email         string    `db:"email"`
	Name          string    `db:"name"`
	EmailVerified bool      `db:"email_verified"`
	PasswordHash  string    `db:"password_hash"`
	CreatedAt     time.Time `db:"created_at"`
}

// Session is a row in `auth_sessions`, created on successful sign-in
// against the new identity store.
type Session struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// AuthenticatedUser is the caller-facing projection of an identity.
type AuthenticatedUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	IsMigrated bool   `json:"isMigrated"`
}

// AuthResult reports how (and whether) a request was authenticated.
// Invariants: AuthType betterauth implies User.IsMigrated == true, legacy
// implies false, none implies User == nil.
type AuthResult struct {
	Authenticated bool
	AuthType      AuthType
	User          *AuthenticatedUser
}

// Unauthenticated is the well-formed failure value of AuthResult.
func Unauthenticated() AuthResult {
	return AuthResult{Authenticated: false, AuthType: AuthTypeNone}
}
