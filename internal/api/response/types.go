package response

import (
	"time"

	"github.com/mcoot/matchqueue/internal/model"
	"github.com/mcoot/matchqueue/internal/services/auth"
	"github.com/mcoot/matchqueue/internal/services/matchmaking"
)

// Account represents an account in API responses
type Account struct {
	Username string `json:"username"`
	Region   string `json:"region"`
	MMR      int    `json:"mmr"`
}

// AccountFromModel converts a model.AccountView to a response Account
func AccountFromModel(a model.AccountView) Account {
	return Account{
		Username: string(a.Username),
		Region:   a.Region,
		MMR:      a.MMR,
	}
}

// LoginResponse is the response for a successful login
type LoginResponse struct {
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Account      Account   `json:"account"`
}

// LoginResponseFromResult creates a LoginResponse from a login result
func LoginResponseFromResult(r *auth.LoginResult) LoginResponse {
	return LoginResponse{
		SessionToken: r.Session.Token,
		ExpiresAt:    r.Session.ExpiresAt,
		Account:      AccountFromModel(r.Account),
	}
}

// QueueEntry represents a queued matchmaking request
type QueueEntry struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// QueueEntryFromModel converts a model.QueueEntry
func QueueEntryFromModel(e model.QueueEntry) QueueEntry {
	return QueueEntry{
		ID:         string(e.ID),
		Kind:       string(e.Kind),
		EnqueuedAt: e.EnqueuedAt,
	}
}

// Match represents a completed pairing
type Match struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Players       []Account `json:"players"`
	MMRDifference int       `json:"mmr_difference"`
	CreatedAt     time.Time `json:"created_at"`
}

// MatchFromModel converts a model.Match
func MatchFromModel(m *model.Match) Match {
	return Match{
		ID:            string(m.ID),
		Kind:          string(m.Kind),
		Players:       []Account{AccountFromModel(m.Players[0]), AccountFromModel(m.Players[1])},
		MMRDifference: m.MMRDifference,
		CreatedAt:     m.CreatedAt,
	}
}

// MatchStatus is the response for a matchmaking status lookup
type MatchStatus struct {
	State    string      `json:"state"`
	Entry    *QueueEntry `json:"entry,omitempty"`
	Position int         `json:"position,omitempty"`
	Match    *Match      `json:"match,omitempty"`
}

// MatchStatusFromModel converts a matchmaking.Status
func MatchStatusFromModel(s matchmaking.Status) MatchStatus {
	status := MatchStatus{
		State:    string(s.State),
		Position: s.Position,
	}
	if s.Entry != nil {
		entry := QueueEntryFromModel(*s.Entry)
		status.Entry = &entry
	}
	if s.Match != nil {
		match := MatchFromModel(s.Match)
		status.Match = &match
	}
	return status
}

// Health is the response for the health check
type Health struct {
	Status string `json:"status"`
}
