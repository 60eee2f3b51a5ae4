package nav

import (
	"strings"
	"sync"

	"github.com/naviohq/navio/internal/logging"
	"github.com/naviohq/navio/internal/types"
	"go.uber.org/zap"
)

// maxDepth bounds each stack so a long session cannot grow without limit.
const maxDepth = 100

// Storage persists the navigation stacks across reloads of one session.
type Storage interface {
	Load() (types.HistoryState, bool, error)
	Save(types.HistoryState) error
}

// History is the back/forward navigation stack. A path is pushed only
// when its segment portion (everything before "?") changes; query-only
// moves update the current pointer in place.
type History struct {
	mu      sync.Mutex
	back    []string
	forward []string
	current string
	storage Storage
}

// New rehydrates from storage when a saved state exists.
func New(storage Storage) *History {
	h := &History{storage: storage}
	if storage == nil {
		return h
	}
	state, ok, err := storage.Load()
	if err != nil {
		logging.Warn("history load failed", zap.Error(err))
		return h
	}
	if ok {
		h.back = state.Back
		h.forward = state.Forward
		h.current = state.Current
	}
	return h
}

// segment strips any query string from a path.
func segment(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

// Navigate records a move to path. Returns true when the previous path
// was pushed onto the back stack, false for a query-only update.
func (h *History) Navigate(path string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current == "" {
		h.current = path
		h.persist()
		return false
	}
	if segment(path) == segment(h.current) {
		h.current = path
		h.persist()
		return false
	}

	h.back = append(h.back, h.current)
	if len(h.back) > maxDepth {
		h.back = h.back[len(h.back)-maxDepth:]
	}
	h.forward = nil
	h.current = path
	h.persist()
	return true
}

// GoBack pops the back stack, moving the current path to the forward
// stack. Returns the new current path, or "" when the stack is empty.
func (h *History) GoBack() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.back) == 0 {
		return ""
	}
	target := h.back[len(h.back)-1]
	h.back = h.back[:len(h.back)-1]
	h.forward = append(h.forward, h.current)
	h.current = target
	h.persist()
	return target
}

// GoForward is the exact inverse of GoBack.
func (h *History) GoForward() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.forward) == 0 {
		return ""
	}
	target := h.forward[len(h.forward)-1]
	h.forward = h.forward[:len(h.forward)-1]
	h.back = append(h.back, h.current)
	h.current = target
	h.persist()
	return target
}

// JumpTo navigates to the n-th most recent back entry (0 = most
// recent). Entries above the target and the current path transfer to
// the forward stack in visit order, so GoForward retraces them.
func (h *History) JumpTo(n int) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n < 0 || n >= len(h.back) {
		return ""
	}
	at := len(h.back) - 1 - n
	target := h.back[at]

	h.forward = append(h.forward, h.current)
	for i := len(h.back) - 1; i > at; i-- {
		h.forward = append(h.forward, h.back[i])
	}
	h.back = h.back[:at]
	h.current = target
	h.persist()
	return target
}

// Current returns the recorded current path.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// CanGoBack reports whether the back stack is non-empty.
func (h *History) CanGoBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.back) > 0
}

// CanGoForward reports whether the forward stack is non-empty.
func (h *History) CanGoForward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.forward) > 0
}

// Back returns a copy of the back stack, oldest first.
func (h *History) Back() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.back...)
}

// Forward returns a copy of the forward stack.
func (h *History) Forward() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.forward...)
}

func (h *History) persist() {
	if h.storage == nil {
		return
	}
	state := types.HistoryState{
		Back:    append([]string(nil), h.back...),
		Forward: append([]string(nil), h.forward...),
		Current: h.current,
	}
	if err := h.storage.Save(state); err != nil {
		logging.Warn("history save failed", zap.Error(err))
	}
}
