package model

import "time"

// Username uniquely identifies an account across the system
type Username string

// Account is a registered player.
// Accounts are immutable once created and are never deleted.
type Account struct {
	Username     Username
	PasswordHash string // bcrypt hash
	Region       string
	MMR          int
	CreatedAt    time.Time
}

// AccountView is the public projection of an Account (no password hash)
type AccountView struct {
	Username Username
	Region   string
	MMR      int
}

// View returns the public projection of the account
func (a *Account) View() AccountView {
	return AccountView{
		Username: a.Username,
		Region:   a.Region,
		MMR:      a.MMR,
	}
}

// Session represents one authenticated login
type Session struct {
	Token     string
	Username  Username
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at the given time
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
