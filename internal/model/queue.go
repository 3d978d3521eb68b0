package model

import (
	"fmt"
	"time"
)

// QueueKind selects a matchmaking queue
type QueueKind string

const (
	QueueQuick  QueueKind = "quick"
	QueueRanked QueueKind = "ranked"
)

// QueueKinds lists every queue in the order the engine drains them
var QueueKinds = []QueueKind{QueueQuick, QueueRanked}

// ParseQueueKind validates a queue kind supplied by a caller
func ParseQueueKind(s string) (QueueKind, error) {
	switch kind := QueueKind(s); kind {
	case QueueQuick, QueueRanked:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: unknown queue kind %q", ErrInvalidInput, s)
	}
}

// EntryID uniquely identifies one enqueue request
type EntryID string

// QueueEntry is a single player's pending request to be matched
type QueueEntry struct {
	ID         EntryID
	Username   Username
	Kind       QueueKind
	EnqueuedAt time.Time
}

// EntryState is where one engine decision left a QueueEntry
type EntryState string

const (
	EntryMatched          EntryState = "matched"
	EntryRejectedRequeued EntryState = "rejected_requeued"
	EntryRejectedDropped  EntryState = "rejected_dropped"
)
