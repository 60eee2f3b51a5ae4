package workspace

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/naviohq/navio/internal/logging"
	"github.com/naviohq/navio/internal/types"
	"go.uber.org/zap"
)

const persistDebounce = 80 * time.Millisecond

// Persister writes the serialized workspace document to the per-user
// profile field, debounced so bursts of mutations coalesce into one
// write. A queued write superseded before the timer fires is aborted.
type Persister struct {
	userID string
	save   func(userID, state string) error
	delay  time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	closed  bool
}

func NewPersister(userID string, save func(userID, state string) error) *Persister {
	return &Persister{userID: userID, save: save, delay: persistDebounce}
}

// Queue schedules a write of the given document, replacing any write
// still waiting on the debounce timer.
func (p *Persister) Queue(state types.WorkspaceState) {
	raw, err := json.Marshal(state)
	if err != nil {
		logging.Warn("workspace state marshal failed", zap.Error(err))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.pending = string(raw)
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.delay, p.flush)
}

func (p *Persister) flush() {
	p.mu.Lock()
	state := p.pending
	p.pending = ""
	p.timer = nil
	closed := p.closed
	p.mu.Unlock()

	if closed || state == "" {
		return
	}
	if err := p.save(p.userID, state); err != nil {
		logging.Warn("workspace state write failed", zap.Error(err))
	}
}

// Flush writes any pending document immediately. Used on sign-out so
// the last mutations are not lost to the debounce window.
func (p *Persister) Flush() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()
	p.flush()
}

// Close flushes and stops accepting writes.
func (p *Persister) Close() {
	p.Flush()
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
