package matchmaking

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/matchqueue/internal/dependencies/clock"
	"github.com/mcoot/matchqueue/internal/metrics"
	"github.com/mcoot/matchqueue/internal/model"
)

// SessionChecker resolves tokens and reports session liveness
type SessionChecker interface {
	ResolveSession(token string) (model.Username, bool)
	HasLiveSession(username model.Username) bool
}

// AccountLookup fetches account details for players being evaluated
type AccountLookup interface {
	GetAccount(ctx context.Context, username model.Username) (model.AccountView, error)
}

// MatchListener is told about every committed match. It must not block.
type MatchListener interface {
	MatchFound(match model.Match)
}

// Config holds configuration for the matchmaking engine
type Config struct {
	// Interval between scheduled drain passes
	Interval time.Duration
}

// DefaultConfig returns default matchmaking configuration
func DefaultConfig() Config {
	return Config{
		Interval: time.Second,
	}
}

// Engine owns the matchmaking queues and pairs their entries.
//
// Lock order is e.mu then a queue's lock. Session and account lookups are
// made with neither held.
type Engine struct {
	sessions SessionChecker
	accounts AccountLookup
	clock    clock.Clock
	metrics  *metrics.Metrics
	logger   *slog.Logger

	queues map[model.QueueKind]*Queue

	mu      sync.Mutex
	members map[model.Username]model.QueueEntry
	matches map[model.Username]*model.Match

	listeners []MatchListener

	trigger  chan struct{}
	interval time.Duration
}

// New creates a new matchmaking Engine
func New(sessions SessionChecker, accounts AccountLookup, clock clock.Clock, m *metrics.Metrics, cfg Config, logger *slog.Logger) *Engine {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}

	queues := make(map[model.QueueKind]*Queue, len(model.QueueKinds))
	for _, kind := range model.QueueKinds {
		queues[kind] = NewQueue(kind)
	}

	return &Engine{
		sessions: sessions,
		accounts: accounts,
		clock:    clock,
		metrics:  m,
		logger:   logger,
		queues:   queues,
		members:  make(map[model.Username]model.QueueEntry),
		matches:  make(map[model.Username]*model.Match),
		trigger:  make(chan struct{}, 1),
		interval: cfg.Interval,
	}
}

// OnMatch registers l to hear about matches. Call it before Run.
func (e *Engine) OnMatch(l MatchListener) {
	e.listeners = append(e.listeners, l)
}

// Queue returns the queue for kind
func (e *Engine) Queue(kind model.QueueKind) *Queue {
	return e.queues[kind]
}

// EnqueueForMatch queues the player holding token.
// Errors: model.ErrUnauthorized, model.ErrInvalidInput for an unknown kind,
// model.ErrAlreadyQueued.
func (e *Engine) EnqueueForMatch(ctx context.Context, token string, kind string) (model.QueueEntry, error) {
	username, ok := e.sessions.ResolveSession(token)
	if !ok {
		return model.QueueEntry{}, model.ErrUnauthorized
	}

	queueKind, err := model.ParseQueueKind(kind)
	if err != nil {
		return model.QueueEntry{}, err
	}

	return e.Enqueue(ctx, username, queueKind)
}

// Enqueue adds username to the queue for kind. An account may hold only one
// outstanding entry across all queues. Any previous match record is cleared.
func (e *Engine) Enqueue(ctx context.Context, username model.Username, kind model.QueueKind) (model.QueueEntry, error) {
	q, ok := e.queues[kind]
	if !ok {
		return model.QueueEntry{}, model.ErrInvalidInput
	}

	entry := model.QueueEntry{
		ID:         model.EntryID(uuid.NewString()),
		Username:   username,
		Kind:       kind,
		EnqueuedAt: e.clock.Now(),
	}

	e.mu.Lock()
	if existing, queued := e.members[username]; queued {
		e.mu.Unlock()
		e.logger.Debug("already queued",
			slog.String("username", string(username)),
			slog.String("queue", string(existing.Kind)),
		)
		return model.QueueEntry{}, model.ErrAlreadyQueued
	}
	e.members[username] = entry
	delete(e.matches, username)
	q.Enqueue(entry)
	e.mu.Unlock()

	e.metrics.SetQueueDepth(kind, q.Len())
	e.logger.Info("player queued",
		slog.String("username", string(username)),
		slog.String("queue", string(kind)),
		slog.String("entry_id", string(entry.ID)),
	)

	e.Trigger()
	return entry, nil
}

// CancelMatch withdraws the queued entry of the player holding token.
// Errors: model.ErrUnauthorized, model.ErrNotQueued.
func (e *Engine) CancelMatch(ctx context.Context, token string) error {
	username, ok := e.sessions.ResolveSession(token)
	if !ok {
		return model.ErrUnauthorized
	}
	return e.Cancel(ctx, username)
}

// Cancel withdraws username's queued entry. An entry the engine is evaluating
// at that moment is discarded when the evaluation finishes.
func (e *Engine) Cancel(ctx context.Context, username model.Username) error {
	e.mu.Lock()
	entry, ok := e.members[username]
	if !ok {
		e.mu.Unlock()
		return model.ErrNotQueued
	}
	delete(e.members, username)
	q := e.queues[entry.Kind]
	q.Remove(entry.ID)
	e.mu.Unlock()

	e.metrics.SetQueueDepth(entry.Kind, q.Len())
	e.logger.Info("player left queue",
		slog.String("username", string(username)),
		slog.String("queue", string(entry.Kind)),
	)
	return nil
}

// MatchStatus reports where the player holding token stands
func (e *Engine) MatchStatus(ctx context.Context, token string) (Status, error) {
	username, ok := e.sessions.ResolveSession(token)
	if !ok {
		return Status{}, model.ErrUnauthorized
	}
	return e.Status(username), nil
}

// Status reports whether username is idle, queued or matched
func (e *Engine) Status(username model.Username) Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if entry, ok := e.members[username]; ok {
		// Position is 0 while the entry is being evaluated
		position, _ := e.queues[entry.Kind].Position(entry.ID)
		return Status{State: StatusQueued, Entry: &entry, Position: position}
	}
	if match, ok := e.matches[username]; ok {
		return Status{State: StatusMatched, Match: match}
	}
	return Status{State: StatusIdle}
}

// Trigger requests a drain pass without waiting for the next tick.
// It never blocks; requests made while one is pending are coalesced.
func (e *Engine) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Run drains the queues every interval and whenever triggered,
// until ctx is cancelled
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.logger.Info("matchmaking engine started", slog.Duration("interval", e.interval))

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("matchmaking engine stopped")
			return
		case <-ticker.C:
			e.RunPass(ctx)
		case <-e.trigger:
			e.RunPass(ctx)
		}
	}
}

// RunPass drains every queue once, quick first, and returns the outcomes
func (e *Engine) RunPass(ctx context.Context) []model.Outcome {
	start := time.Now()

	var outcomes []model.Outcome
	for _, kind := range model.QueueKinds {
		if ctx.Err() != nil {
			break
		}
		outcomes = append(outcomes, e.DrainQueue(ctx, kind)...)
	}

	e.metrics.ObservePass(time.Since(start))
	if len(outcomes) > 0 {
		e.logger.Debug("matchmaking pass complete",
			slog.Int("outcomes", len(outcomes)),
			slog.Duration("duration", time.Since(start)),
		)
	}
	return outcomes
}

// DrainQueue pairs entries from the head of one queue.
//
// The pass makes at most as many pair attempts as the queue held when it
// started, and stops early when fewer than two entries remain or when ctx is
// cancelled. After a rejection the longer-waiting entry keeps the head and
// meets the next partner while the other goes to the tail. A pair already
// evaluated in this pass is not evaluated again: its head entry has met every
// partner, so it moves to the tail and the other entry takes the head.
func (e *Engine) DrainQueue(ctx context.Context, kind model.QueueKind) []model.Outcome {
	q, ok := e.queues[kind]
	if !ok {
		return nil
	}

	budget := q.Len()
	tried := make(map[pairKey]struct{})

	var outcomes []model.Outcome
	for attempt := 0; attempt < budget; attempt++ {
		if ctx.Err() != nil {
			e.logger.Info("matchmaking pass cancelled", slog.String("queue", string(kind)))
			break
		}

		pair, err := q.DequeuePair()
		if errors.Is(err, model.ErrInsufficientPlayers) {
			break
		}

		key := newPairKey(pair[0].ID, pair[1].ID)
		if _, seen := tried[key]; seen {
			e.rotate(q, pair[1], pair[0])
			continue
		}
		tried[key] = struct{}{}

		for _, outcome := range e.evaluate(ctx, q, pair) {
			e.record(outcome)
			outcomes = append(outcomes, outcome)
		}
	}

	e.metrics.SetQueueDepth(kind, q.Len())
	return outcomes
}

// evaluate applies the liveness, region and skill-window gates to a dequeued
// pair and settles both entries
func (e *Engine) evaluate(ctx context.Context, q *Queue, pair [2]model.QueueEntry) []model.Outcome {
	kind := q.Kind()

	var players [2]model.AccountView
	var live [2]bool
	for i, entry := range pair {
		if !e.sessions.HasLiveSession(entry.Username) {
			continue
		}
		account, err := e.accounts.GetAccount(ctx, entry.Username)
		if err != nil {
			if !errors.Is(err, model.ErrAccountNotFound) {
				// Backend trouble is not the players' fault; try again next pass
				e.logger.Error("account lookup failed",
					slog.String("username", string(entry.Username)),
					slog.String("error", err.Error()),
				)
				e.requeue(q, pair[0], pair[1])
				return nil
			}
			continue
		}
		players[i] = account
		live[i] = true
	}

	if !live[0] || !live[1] {
		var outcomes []model.Outcome
		for i, entry := range pair {
			if live[i] {
				if e.requeue(q, entry) {
					e.logger.Debug("partner requeued after liveness rejection",
						slog.String("queue", string(kind)),
						slog.String("username", string(entry.Username)),
					)
				}
				continue
			}
			e.release(entry)
			outcomes = append(outcomes, model.Outcome{
				Kind:    kind,
				Result:  model.OutcomeRejected,
				Reason:  model.RejectNotLoggedIn,
				Entries: []model.QueueEntry{entry},
			})
		}
		return outcomes
	}

	if reason, ok := Evaluate(kind, players[0], players[1]); !ok {
		return []model.Outcome{{
			Kind:     kind,
			Result:   model.OutcomeRejected,
			Reason:   reason,
			Entries:  pair[:],
			Requeued: e.rotate(q, pair[0], pair[1]),
		}}
	}

	match := &model.Match{
		ID:            model.MatchID(uuid.NewString()),
		Kind:          kind,
		Players:       players,
		MMRDifference: MMRDifference(players[0].MMR, players[1].MMR),
		CreatedAt:     e.clock.Now(),
	}
	if !e.complete(q, pair, match) {
		return nil
	}

	return []model.Outcome{{
		Kind:    kind,
		Result:  model.OutcomeMatched,
		Entries: pair[:],
		Match:   match,
	}}
}

// current reports whether entry still holds its owner's membership.
// e.mu must be held.
func (e *Engine) current(entry model.QueueEntry) bool {
	member, ok := e.members[entry.Username]
	return ok && member.ID == entry.ID
}

// requeue returns entries to the tail, skipping any cancelled meanwhile.
// It returns true if every entry went back.
func (e *Engine) requeue(q *Queue, entries ...model.QueueEntry) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := make([]model.QueueEntry, 0, len(entries))
	for _, entry := range entries {
		if e.current(entry) {
			kept = append(kept, entry)
		}
	}
	q.Requeue(kept...)
	return len(kept) == len(entries)
}

// rotate puts front back at the head and back at the tail, skipping any
// cancelled meanwhile. It returns true if both went back.
func (e *Engine) rotate(q *Queue, front, back model.QueueEntry) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := 0
	if e.current(back) {
		q.Requeue(back)
		kept++
	}
	if e.current(front) {
		q.Restore(front)
		kept++
	}
	return kept == 2
}

// release drops a dead entry's membership
func (e *Engine) release(entry model.QueueEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current(entry) {
		delete(e.members, entry.Username)
	}
}

// complete commits a match. If either entry was cancelled while being
// evaluated, the other is requeued and no match is made.
func (e *Engine) complete(q *Queue, pair [2]model.QueueEntry, match *model.Match) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.current(pair[0]) || !e.current(pair[1]) {
		for _, entry := range pair {
			if e.current(entry) {
				q.Requeue(entry)
			}
		}
		return false
	}

	for _, entry := range pair {
		delete(e.members, entry.Username)
		e.matches[entry.Username] = match
	}
	return true
}

func (e *Engine) record(outcome model.Outcome) {
	e.metrics.ObserveOutcome(outcome)

	if outcome.Result == model.OutcomeMatched {
		e.logger.Info("match found",
			slog.String("match_id", string(outcome.Match.ID)),
			slog.String("queue", string(outcome.Kind)),
			slog.String("player1", string(outcome.Match.Players[0].Username)),
			slog.String("player2", string(outcome.Match.Players[1].Username)),
			slog.Int("mmr_difference", outcome.Match.MMRDifference),
		)
		for _, l := range e.listeners {
			l.MatchFound(*outcome.Match)
		}
		return
	}

	usernames := make([]string, len(outcome.Entries))
	for i, entry := range outcome.Entries {
		usernames[i] = string(entry.Username)
	}
	e.logger.Debug("pair rejected",
		slog.String("queue", string(outcome.Kind)),
		slog.String("reason", string(outcome.Reason)),
		slog.Any("players", usernames),
		slog.String("state", string(outcome.State())),
	)
}

// pairKey identifies an unordered pair of entries
type pairKey struct {
	a, b model.EntryID
}

func newPairKey(x, y model.EntryID) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}
