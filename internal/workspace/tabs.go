package workspace

import (
	"fmt"
	"strings"
	"sync"

	"github.com/naviohq/navio/internal/core"
	"github.com/naviohq/navio/internal/types"
)

const (
	defaultSplitRatio = 0.6
	minSplitRatio     = 0.2
	maxSplitRatio     = 0.8
)

// defaultTitles maps a tab kind to the title new tabs request when the
// caller supplies none.
var defaultTitles = map[types.TabKind]string{
	types.TabKindCells: "Untitled Cells",
	types.TabKindDocs:  "Untitled Doc",
	types.TabKindBoard: "Untitled Board",
}

// Manager owns the workspace document for one signed-in session. Tabs
// are kept in one slice with the pinned group as a contiguous prefix.
// Every mutation notifies onChange with a snapshot, which is how the
// debounced persister hooks in.
type Manager struct {
	mu       sync.Mutex
	state    types.WorkspaceState
	onChange func(types.WorkspaceState)
}

func NewManager(initial types.WorkspaceState) *Manager {
	return &Manager{state: initial}
}

// OnChange registers the snapshot hook. Call before the first mutation.
func (m *Manager) OnChange(fn func(types.WorkspaceState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// State returns a snapshot of the workspace document.
func (m *Manager) State() types.WorkspaceState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Manager) snapshot() types.WorkspaceState {
	s := m.state
	s.Tabs = append([]types.Tab(nil), m.state.Tabs...)
	if m.state.ActiveTabID != nil {
		id := *m.state.ActiveTabID
		s.ActiveTabID = &id
	}
	if m.state.RightTabID != nil {
		id := *m.state.RightTabID
		s.RightTabID = &id
	}
	return s
}

func (m *Manager) changed() {
	if m.onChange != nil {
		m.onChange(m.snapshot())
	}
}

func (m *Manager) indexOf(id string) int {
	for i, tab := range m.state.Tabs {
		if tab.ID == id {
			return i
		}
	}
	return -1
}

// lastOfGroup returns the index just past the last tab in the given
// pin-group, which is where a new member of that group is inserted.
func (m *Manager) lastOfGroup(pinned bool) int {
	if !pinned {
		return len(m.state.Tabs)
	}
	for i, tab := range m.state.Tabs {
		if !tab.Pinned {
			return i
		}
	}
	return len(m.state.Tabs)
}

// autoNumber suffixes a kind-default title when other tabs of the same
// kind already use it. The unnumbered tab implicitly occupies 0 and is
// never relabeled.
func (m *Manager) autoNumber(tab types.Tab) string {
	base, ok := defaultTitles[tab.Kind]
	if !ok || tab.Title != base {
		return tab.Title
	}
	taken := map[int]bool{}
	for _, other := range m.state.Tabs {
		if other.Kind != tab.Kind || !strings.HasPrefix(other.Title, base) {
			continue
		}
		rest := strings.TrimPrefix(other.Title, base)
		if rest == "" {
			taken[0] = true
			continue
		}
		var n int
		if _, err := fmt.Sscanf(rest, " %d", &n); err == nil {
			taken[n] = true
		}
	}
	if !taken[0] {
		return base
	}
	for n := 1; ; n++ {
		if !taken[n] {
			return fmt.Sprintf("%s %d", base, n)
		}
	}
}

// Open adds a tab and activates it. If the supplied id already exists
// the call only activates, never duplicates. New tabs append to the end
// of their pin-group.
func (m *Manager) Open(tab types.Tab) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tab.ID != "" {
		if m.indexOf(tab.ID) >= 0 {
			m.state.ActiveTabID = &tab.ID
			m.changed()
			return tab.ID
		}
	} else {
		tab.ID = core.MustGUID("tab")
	}
	if tab.Title == "" {
		tab.Title = defaultTitles[tab.Kind]
	}
	tab.Title = m.autoNumber(tab)

	at := m.lastOfGroup(tab.Pinned)
	m.state.Tabs = append(m.state.Tabs, types.Tab{})
	copy(m.state.Tabs[at+1:], m.state.Tabs[at:])
	m.state.Tabs[at] = tab

	m.state.ActiveTabID = &tab.ID
	m.changed()
	return tab.ID
}

// Close removes a tab. The active id falls back to the tab now sitting
// at max(0, closedIndex-1), or the new last tab, or home. The right
// pane falls back the same way but prefers mirroring the new left id.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	at := m.indexOf(id)
	if at < 0 {
		return
	}
	m.state.Tabs = append(m.state.Tabs[:at], m.state.Tabs[at+1:]...)

	if m.state.ActiveTabID != nil && *m.state.ActiveTabID == id {
		m.state.ActiveTabID = m.fallbackID(at)
	}
	if m.state.RightTabID != nil && *m.state.RightTabID == id {
		if m.state.ActiveTabID != nil {
			next := *m.state.ActiveTabID
			m.state.RightTabID = &next
		} else {
			m.state.RightTabID = m.fallbackID(at)
		}
	}
	m.changed()
}

func (m *Manager) fallbackID(closedIndex int) *string {
	if len(m.state.Tabs) == 0 {
		return nil
	}
	at := closedIndex - 1
	if at < 0 {
		at = 0
	}
	if at >= len(m.state.Tabs) {
		at = len(m.state.Tabs) - 1
	}
	id := m.state.Tabs[at].ID
	return &id
}

// Activate focuses an existing tab in the left pane.
func (m *Manager) Activate(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(id) < 0 {
		return
	}
	m.state.ActiveTabID = &id
	m.changed()
}

// ActivateRight focuses a tab in the right pane; empty id clears it.
func (m *Manager) ActivateRight(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		m.state.RightTabID = nil
	} else {
		if m.indexOf(id) < 0 {
			return
		}
		m.state.RightTabID = &id
	}
	m.changed()
}

// ActivateNone goes home: no tab focused in the left pane.
func (m *Manager) ActivateNone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.ActiveTabID = nil
	m.changed()
}

// TogglePin flips a tab's pin flag and moves it to the end of its new
// group, keeping the pinned prefix contiguous.
func (m *Manager) TogglePin(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	at := m.indexOf(id)
	if at < 0 {
		return
	}
	tab := m.state.Tabs[at]
	tab.Pinned = !tab.Pinned
	m.state.Tabs = append(m.state.Tabs[:at], m.state.Tabs[at+1:]...)

	to := m.lastOfGroup(tab.Pinned)
	m.state.Tabs = append(m.state.Tabs, types.Tab{})
	copy(m.state.Tabs[to+1:], m.state.Tabs[to:])
	m.state.Tabs[to] = tab
	m.changed()
}

// Reorder moves dragID to targetID's position. Moves across pin-groups
// are a no-op.
func (m *Manager) Reorder(dragID, targetID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.indexOf(dragID)
	to := m.indexOf(targetID)
	if from < 0 || to < 0 || from == to {
		return
	}
	if m.state.Tabs[from].Pinned != m.state.Tabs[to].Pinned {
		return
	}
	tab := m.state.Tabs[from]
	m.state.Tabs = append(m.state.Tabs[:from], m.state.Tabs[from+1:]...)
	m.state.Tabs = append(m.state.Tabs, types.Tab{})
	copy(m.state.Tabs[to+1:], m.state.Tabs[to:])
	m.state.Tabs[to] = tab
	m.changed()
}

// SetSplit toggles the split view. Enabling defaults the ratio to 0.6
// when unset and auto-assigns a right tab distinct from the left when
// none is focused there.
func (m *Manager) SetSplit(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Split = on
	if on {
		if m.state.SplitRatio == 0 {
			m.state.SplitRatio = defaultSplitRatio
		}
		if m.state.RightTabID == nil {
			for _, tab := range m.state.Tabs {
				if m.state.ActiveTabID != nil && tab.ID == *m.state.ActiveTabID {
					continue
				}
				id := tab.ID
				m.state.RightTabID = &id
				break
			}
		}
	}
	m.changed()
}

// SetSplitRatio clamps the ratio into [0.2, 0.8].
func (m *Manager) SetSplitRatio(r float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r < minSplitRatio {
		r = minSplitRatio
	}
	if r > maxSplitRatio {
		r = maxSplitRatio
	}
	m.state.SplitRatio = r
	m.changed()
}

// SetCollapse switches the chrome collapse mode.
func (m *Manager) SetCollapse(mode types.CollapseMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Collapse = mode
	m.changed()
}

// FocusPane records which split pane has keyboard focus.
func (m *Manager) FocusPane(p types.Pane) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.FocusedPane = p
	m.changed()
}

// Replace swaps in a remote workspace document wholesale. Last writer
// wins at whole-document granularity; this is the sync entry point.
func (m *Manager) Replace(state types.WorkspaceState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
}
