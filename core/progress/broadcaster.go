package progress

import (
	"sync"
	"time"

	"Bt1QDL/logger"
	"Bt1QDL/model"
)

// subscriberBuffer bounds how far a slow subscriber may fall behind before
// events are dropped. Delivery is best-effort, at-most-once: there is no
// replay for late or reconnecting subscribers.
const subscriberBuffer = 32

// entry holds one session's broadcast state. ch is nil while no subscriber
// is attached; cancel stays bound for the session's whole lifetime so a
// session remains cancellable after its subscriber disconnects.
type entry struct {
	ch     chan model.ProgressEvent
	cancel func()
}

// Broadcaster is the per-session publish point decoupling orchestrators from
// their single live subscriber. Safe for concurrent use across sessions.
type Broadcaster struct {
	mu      sync.Mutex
	entries map[string]*entry
	grace   time.Duration
}

// NewBroadcaster creates a Broadcaster. grace is how long a subscriber stays
// registered after a terminal event, so a slow final flush is not lost.
func NewBroadcaster(grace time.Duration) *Broadcaster {
	return &Broadcaster{
		entries: make(map[string]*entry),
		grace:   grace,
	}
}

// Register attaches the single subscriber for a session and returns its event
// channel plus an unsubscribe function. A second Register for the same
// session replaces the first; the old channel is closed. Unsubscribing only
// detaches the channel this call created, so a stale handler's deferred
// unsubscribe cannot tear down a reconnected subscriber, and it never drops
// the session's cancel binding.
func (b *Broadcaster) Register(sessionID string) (<-chan model.ProgressEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[sessionID]
	if !ok {
		e = &entry{}
		b.entries[sessionID] = e
	}
	if e.ch != nil {
		close(e.ch)
	}

	ch := make(chan model.ProgressEvent, subscriberBuffer)
	e.ch = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if cur, ok := b.entries[sessionID]; ok && cur.ch == ch {
			close(cur.ch)
			cur.ch = nil
		}
	}
	return ch, unsubscribe
}

// BindCancel records the session's cancel function so RequestCancel can reach
// a running orchestrator. Called by the orchestrator at session start.
func (b *Broadcaster) BindCancel(sessionID string, cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e, ok := b.entries[sessionID]; ok {
		e.cancel = cancel
		return
	}
	b.entries[sessionID] = &entry{cancel: cancel}
}

// Publish delivers an event to the session's subscriber, if any. Events with
// no registered subscriber, and events a full subscriber cannot accept, are
// silently dropped. A terminal event schedules removal of all session state
// after the grace period.
func (b *Broadcaster) Publish(ev model.ProgressEvent) {
	b.mu.Lock()
	e, ok := b.entries[ev.SessionID]
	if ok && e.ch != nil {
		select {
		case e.ch <- ev:
		default:
			logger.Debug("progress event dropped, subscriber buffer full",
				logger.String("sessionId", ev.SessionID))
		}
	}
	b.mu.Unlock()

	if ev.Type.Terminal() {
		time.AfterFunc(b.grace, func() {
			b.Unregister(ev.SessionID)
		})
	}
}

// Unregister drops all session state: the subscriber channel is closed and
// the cancel binding is released. Only the post-terminal grace path calls
// this; live subscribers detach through their own unsubscribe function.
// Idempotent.
func (b *Broadcaster) Unregister(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[sessionID]
	if !ok {
		return
	}
	if e.ch != nil {
		close(e.ch)
	}
	delete(b.entries, sessionID)
}

// RequestCancel signals the session's orchestrator to stop. Returns false if
// the session is unknown or has no cancel bound.
func (b *Broadcaster) RequestCancel(sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[sessionID]
	if !ok || e.cancel == nil {
		return false
	}
	e.cancel()
	logger.Info("cancellation requested", logger.String("sessionId", sessionID))
	return true
}
