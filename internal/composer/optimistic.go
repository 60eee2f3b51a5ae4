package composer

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/naviohq/navio/internal/core"
	"github.com/naviohq/navio/internal/types"
)

const (
	// MatchWindow bounds how far a confirmed message's timestamp may sit
	// from the echo's send time and still count as the same message. The
	// fallback query uses it to floor its lookup.
	MatchWindow = 8 * time.Second
	// fallbackDelay is how long the reconciler waits for the realtime
	// confirmation before querying the store directly.
	fallbackDelay = 2 * time.Second
)

// NewTempMessage builds an optimistic echo with a client-generated id.
func NewTempMessage(roomID, author, body string, now time.Time) types.Message {
	return types.Message{
		ID:        types.TempIDPrefix + uuid.NewString(),
		RoomID:    roomID,
		Author:    author,
		Body:      body,
		CreatedAt: core.FormatISO(now),
		Pending:   true,
	}
}

type pendingEcho struct {
	message types.Message
	sentAt  time.Time
	timer   *time.Timer
}

// Reconciler matches optimistic echoes against the durable insert feed.
// When the realtime confirmation does not arrive within the fallback
// delay it asks the owner to run a direct store query.
type Reconciler struct {
	now      func() time.Time
	confirm  func(tempID string, confirmed types.Message)
	fallback func(tempID string, echo types.Message)

	mu      sync.Mutex
	pending map[string]pendingEcho
}

// NewReconciler wires the callbacks. confirm runs when an arrival
// matches an echo; fallback runs on the timer goroutine when no arrival
// came in time.
func NewReconciler(confirm func(string, types.Message), fallback func(string, types.Message)) *Reconciler {
	return &Reconciler{
		now:      time.Now,
		confirm:  confirm,
		fallback: fallback,
		pending:  make(map[string]pendingEcho),
	}
}

// SetClock replaces the time source.
func (r *Reconciler) SetClock(now func() time.Time) {
	r.now = now
}

// Track registers an echo and arms its fallback timer.
func (r *Reconciler) Track(echo types.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := pendingEcho{message: echo, sentAt: r.now()}
	if r.fallback != nil {
		tempID := echo.ID
		p.timer = time.AfterFunc(fallbackDelay, func() {
			r.runFallback(tempID)
		})
	}
	r.pending[echo.ID] = p
}

func (r *Reconciler) runFallback(tempID string) {
	r.mu.Lock()
	p, ok := r.pending[tempID]
	r.mu.Unlock()
	if !ok {
		return
	}
	r.fallback(tempID, p.message)
}

// Observe feeds one durable arrival through the matcher. When it matches
// a pending echo (same author, exact body, created within the window of
// the send time) the echo is resolved and true is returned.
func (r *Reconciler) Observe(arrival types.Message) bool {
	if strings.HasPrefix(arrival.ID, types.TempIDPrefix) {
		return false
	}

	r.mu.Lock()
	var matchID string
	for tempID, p := range r.pending {
		if p.message.Author != arrival.Author || p.message.Body != arrival.Body {
			continue
		}
		created := core.ParseISO(arrival.CreatedAt)
		if created.IsZero() {
			continue
		}
		delta := created.Sub(p.sentAt)
		if delta < -MatchWindow || delta > MatchWindow {
			continue
		}
		matchID = tempID
		break
	}
	if matchID == "" {
		r.mu.Unlock()
		return false
	}
	p := r.pending[matchID]
	if p.timer != nil {
		p.timer.Stop()
	}
	delete(r.pending, matchID)
	r.mu.Unlock()

	r.confirm(matchID, arrival)
	return true
}

// Resolve settles an echo out of band, for the fallback query path.
func (r *Reconciler) Resolve(tempID string, confirmed types.Message) {
	r.mu.Lock()
	p, ok := r.pending[tempID]
	if ok {
		if p.timer != nil {
			p.timer.Stop()
		}
		delete(r.pending, tempID)
	}
	r.mu.Unlock()
	if ok {
		r.confirm(tempID, confirmed)
	}
}

// Abandon forgets an echo without confirming, for failed sends.
func (r *Reconciler) Abandon(tempID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pending[tempID]; ok {
		if p.timer != nil {
			p.timer.Stop()
		}
		delete(r.pending, tempID)
	}
}

// PendingCount reports unresolved echoes.
func (r *Reconciler) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
