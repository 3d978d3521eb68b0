package matchmaking

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/matchqueue/internal/model"
)

func entry(id string) model.QueueEntry {
	return model.QueueEntry{
		ID:       model.EntryID(id),
		Username: model.Username("user-" + id),
		Kind:     model.QueueQuick,
	}
}

func ids(entries []model.QueueEntry) []model.EntryID {
	out := make([]model.EntryID, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestQueueDequeuePairIsFIFO(t *testing.T) {
	q := NewQueue(model.QueueQuick)
	q.Enqueue(entry("1"))
	q.Enqueue(entry("2"))
	q.Enqueue(entry("3"))

	pair, err := q.DequeuePair()
	require.NoError(t, err)
	assert.Equal(t, model.EntryID("1"), pair[0].ID)
	assert.Equal(t, model.EntryID("2"), pair[1].ID)
	assert.Equal(t, 1, q.Len())
}

func TestQueueDequeuePairInsufficientPlayers(t *testing.T) {
	q := NewQueue(model.QueueQuick)

	_, err := q.DequeuePair()
	assert.ErrorIs(t, err, model.ErrInsufficientPlayers)

	q.Enqueue(entry("1"))
	_, err = q.DequeuePair()
	assert.ErrorIs(t, err, model.ErrInsufficientPlayers)
	assert.Equal(t, 1, q.Len(), "a failed dequeue leaves the queue untouched")
}

func TestQueueRequeueAppendsAtTail(t *testing.T) {
	q := NewQueue(model.QueueQuick)
	q.Enqueue(entry("1"))
	q.Enqueue(entry("2"))
	q.Enqueue(entry("3"))

	pair, _ := q.DequeuePair()
	q.Requeue(pair[0], pair[1])

	assert.Equal(t, []model.EntryID{"3", "1", "2"}, ids(q.Snapshot()))
}

func TestQueueRestorePutsBackAtHead(t *testing.T) {
	q := NewQueue(model.QueueQuick)
	q.Enqueue(entry("1"))
	q.Enqueue(entry("2"))
	q.Enqueue(entry("3"))

	pair, _ := q.DequeuePair()
	q.Enqueue(entry("4"))
	q.Restore(pair[0], pair[1])

	assert.Equal(t, []model.EntryID{"1", "2", "3", "4"}, ids(q.Snapshot()))
}

func TestQueueRemoveAndPosition(t *testing.T) {
	q := NewQueue(model.QueueRanked)
	q.Enqueue(entry("1"))
	q.Enqueue(entry("2"))
	q.Enqueue(entry("3"))

	pos, ok := q.Position("3")
	assert.True(t, ok)
	assert.Equal(t, 3, pos)

	assert.True(t, q.Remove("2"))
	assert.False(t, q.Remove("2"))

	pos, _ = q.Position("3")
	assert.Equal(t, 2, pos)
	_, ok = q.Position("2")
	assert.False(t, ok)
	assert.Equal(t, model.QueueRanked, q.Kind())
}

func TestQueueSnapshotIsCopy(t *testing.T) {
	q := NewQueue(model.QueueQuick)
	q.Enqueue(entry("1"))

	snapshot := q.Snapshot()
	snapshot[0].ID = "changed"

	assert.Equal(t, []model.EntryID{"1"}, ids(q.Snapshot()))
}

func TestQueueConcurrentDequeueNeverDuplicates(t *testing.T) {
	q := NewQueue(model.QueueQuick)
	const total = 1000
	for i := 0; i < total; i++ {
		q.Enqueue(entry(fmt.Sprint(i)))
	}

	var mu sync.Mutex
	seen := make(map[model.EntryID]int)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				pair, err := q.DequeuePair()
				if err != nil {
					return
				}
				mu.Lock()
				seen[pair[0].ID]++
				seen[pair[1].ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, total)
	for id, count := range seen {
		assert.Equal(t, 1, count, "entry %s dequeued more than once", id)
	}
	assert.Equal(t, 0, q.Len())
}
