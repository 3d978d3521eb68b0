package matchmaking

import "github.com/mcoot/matchqueue/internal/model"

// StatusState summarises a player's matchmaking state
type StatusState string

const (
	StatusIdle    StatusState = "idle"
	StatusQueued  StatusState = "queued"
	StatusMatched StatusState = "matched"
)

// Status is a player's view of matchmaking
type Status struct {
	State StatusState
	// Entry and Position are set while queued
	Entry    *model.QueueEntry
	Position int
	// Match is the most recent pairing, kept until the player queues again
	Match *model.Match
}
