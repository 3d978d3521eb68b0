package matchmaking

import (
	"sync"

	"github.com/mcoot/matchqueue/internal/model"
)

// Queue is a FIFO of entries for one match kind.
// It does not enforce membership rules; the Engine does.
type Queue struct {
	kind model.QueueKind

	mu      sync.Mutex
	entries []model.QueueEntry
}

// NewQueue creates an empty queue
func NewQueue(kind model.QueueKind) *Queue {
	return &Queue{kind: kind}
}

// Kind returns the match kind served by this queue
func (q *Queue) Kind() model.QueueKind {
	return q.kind
}

// Enqueue appends entry at the tail
func (q *Queue) Enqueue(entry model.QueueEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, entry)
}

// DequeuePair removes the two longest-waiting entries.
// It returns model.ErrInsufficientPlayers, leaving the queue untouched,
// if fewer than two are present.
func (q *Queue) DequeuePair() ([2]model.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) < 2 {
		return [2]model.QueueEntry{}, model.ErrInsufficientPlayers
	}

	pair := [2]model.QueueEntry{q.entries[0], q.entries[1]}
	q.entries[0] = model.QueueEntry{}
	q.entries[1] = model.QueueEntry{}
	q.entries = q.entries[2:]
	if len(q.entries) == 0 {
		q.entries = nil
	}
	return pair, nil
}

// Requeue appends entries at the tail in the given order.
// Entries keep their original EnqueuedAt.
func (q *Queue) Requeue(entries ...model.QueueEntry) {
	if len(entries) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, entries...)
}

// Restore puts entries back at the head in the given order,
// undoing a DequeuePair that was not acted on
func (q *Queue) Restore(entries ...model.QueueEntry) {
	if len(entries) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	restored := make([]model.QueueEntry, 0, len(entries)+len(q.entries))
	restored = append(restored, entries...)
	q.entries = append(restored, q.entries...)
}

// Remove deletes the entry with the given ID. It returns false if the entry
// is not in the queue.
func (q *Queue) Remove(id model.EntryID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, entry := range q.entries {
		if entry.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Position returns the 1-based position of the entry with the given ID
func (q *Queue) Position(id model.EntryID) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, entry := range q.entries {
		if entry.ID == id {
			return i + 1, true
		}
	}
	return 0, false
}

// Len returns the number of waiting entries
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Snapshot returns a copy of the waiting entries, head first
func (q *Queue) Snapshot() []model.QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	snapshot := make([]model.QueueEntry, len(q.entries))
	copy(snapshot, q.entries)
	return snapshot
}
