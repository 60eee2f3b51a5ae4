package workspace

import (
	"encoding/json"

	"github.com/naviohq/navio/internal/logging"
	"github.com/naviohq/navio/internal/realtime"
	"github.com/naviohq/navio/internal/types"
	"go.uber.org/zap"
)

// Session wires one user's workspace manager to its persistence and to
// the profile change feed for cross-device sync. Create on sign-in,
// Close on sign-out.
type Session struct {
	Manager *Manager

	persister *Persister
	sub       *realtime.Subscription
}

// NewSession rehydrates the manager from the stored document, hooks the
// debounced persister onto every mutation, and subscribes to the user's
// profile topic so a write from another device lands here wholesale.
func NewSession(userID, stored string, bus *realtime.Bus, save func(userID, state string) error) *Session {
	mgr := NewManager(decodeState(stored))
	s := &Session{
		Manager:   mgr,
		persister: NewPersister(userID, save),
	}
	mgr.OnChange(s.persister.Queue)
	s.sub = bus.Subscribe(realtime.ChangeProfile, userID, func(change realtime.Change) {
		if change.Profile == nil || change.Profile.TabState == "" {
			return
		}
		mgr.Replace(decodeState(change.Profile.TabState))
	})
	return s
}

// Close flushes pending writes and releases the sync subscription.
func (s *Session) Close() {
	s.sub.Unsubscribe()
	s.persister.Close()
}

func decodeState(raw string) types.WorkspaceState {
	if raw == "" {
		return types.WorkspaceState{}
	}
	var state types.WorkspaceState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		logging.Warn("workspace state decode failed", zap.Error(err))
		return types.WorkspaceState{}
	}
	return state
}
