package model

import "time"

// MatchID uniquely identifies a pairing produced by the engine
type MatchID string

// Match is a pair of players accepted by the matchmaking rules
type Match struct {
	ID            MatchID
	Kind          QueueKind
	Players       [2]AccountView
	MMRDifference int
	CreatedAt     time.Time
}

// Opponent returns the other player in the match, if username took part in it
func (m *Match) Opponent(username Username) (AccountView, bool) {
	switch username {
	case m.Players[0].Username:
		return m.Players[1], true
	case m.Players[1].Username:
		return m.Players[0], true
	default:
		return AccountView{}, false
	}
}

// OutcomeResult is the verdict for one evaluated pair
type OutcomeResult string

const (
	OutcomeMatched  OutcomeResult = "matched"
	OutcomeRejected OutcomeResult = "rejected"
)

// RejectReason explains why a pair was not matched
type RejectReason string

const (
	RejectNotLoggedIn    RejectReason = "not_logged_in"
	RejectRegionMismatch RejectReason = "region_mismatch"
	RejectSkillWindow    RejectReason = "skill_window"
)

// Outcome records one decision taken by the matchmaking engine
type Outcome struct {
	Kind    QueueKind
	Result  OutcomeResult
	Reason  RejectReason // empty when matched
	Entries []QueueEntry
	// Requeued is true when both rejected entries went back into the queue
	Requeued bool
	Match    *Match
}

// State returns the resulting state of the entries covered by this outcome
func (o Outcome) State() EntryState {
	switch {
	case o.Result == OutcomeMatched:
		return EntryMatched
	case o.Requeued:
		return EntryRejectedRequeued
	default:
		return EntryRejectedDropped
	}
}
