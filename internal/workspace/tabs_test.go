package workspace

import (
	"testing"

	"github.com/naviohq/navio/internal/types"
)

func titles(m *Manager) []string {
	state := m.State()
	out := make([]string, len(state.Tabs))
	for i, tab := range state.Tabs {
		out[i] = tab.Title
	}
	return out
}

func ids(m *Manager) []string {
	state := m.State()
	out := make([]string, len(state.Tabs))
	for i, tab := range state.Tabs {
		out[i] = tab.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOpenAutoNumbersDefaultTitles(t *testing.T) {
	m := NewManager(types.WorkspaceState{})
	m.Open(types.Tab{Kind: types.TabKindCells, Title: "Untitled Cells"})
	m.Open(types.Tab{Kind: types.TabKindCells, Title: "Untitled Cells"})
	m.Open(types.Tab{Kind: types.TabKindCells, Title: "Untitled Cells"})

	want := []string{"Untitled Cells", "Untitled Cells 1", "Untitled Cells 2"}
	if got := titles(m); !equal(got, want) {
		t.Fatalf("titles: %v", got)
	}
}

func TestOpenNumberingIsPerKind(t *testing.T) {
	m := NewManager(types.WorkspaceState{})
	m.Open(types.Tab{Kind: types.TabKindCells}) // empty title takes the kind default
	m.Open(types.Tab{Kind: types.TabKindDocs})
	m.Open(types.Tab{Kind: types.TabKindDocs})

	want := []string{"Untitled Cells", "Untitled Doc", "Untitled Doc 1"}
	if got := titles(m); !equal(got, want) {
		t.Fatalf("titles: %v", got)
	}

	// A custom title never gets suffixed.
	m.Open(types.Tab{Kind: types.TabKindCells, Title: "Q3 Rates"})
	if got := titles(m); got[3] != "Q3 Rates" {
		t.Fatalf("titles: %v", got)
	}
}

func TestOpenExistingIDActivatesOnly(t *testing.T) {
	m := NewManager(types.WorkspaceState{})
	a := m.Open(types.Tab{ID: "tab-a", Kind: types.TabKindDocs, Title: "SLA"})
	m.Open(types.Tab{Kind: types.TabKindDocs, Title: "Rates"})

	got := m.Open(types.Tab{ID: "tab-a", Kind: types.TabKindDocs, Title: "SLA"})
	if got != a {
		t.Fatalf("open returned %q", got)
	}
	state := m.State()
	if len(state.Tabs) != 2 {
		t.Fatalf("duplicated: %v", titles(m))
	}
	if state.ActiveTabID == nil || *state.ActiveTabID != a {
		t.Fatalf("active: %v", state.ActiveTabID)
	}
}

func TestOpenAppendsToPinGroup(t *testing.T) {
	m := NewManager(types.WorkspaceState{})
	m.Open(types.Tab{ID: "p1", Title: "P1", Pinned: true})
	m.Open(types.Tab{ID: "u1", Title: "U1"})
	m.Open(types.Tab{ID: "p2", Title: "P2", Pinned: true})
	m.Open(types.Tab{ID: "u2", Title: "U2"})

	if got := ids(m); !equal(got, []string{"p1", "p2", "u1", "u2"}) {
		t.Fatalf("order: %v", got)
	}
}

func TestCloseFallsBackToPreviousIndex(t *testing.T) {
	m := NewManager(types.WorkspaceState{})
	a := m.Open(types.Tab{ID: "tab-a", Title: "A"})
	b := m.Open(types.Tab{ID: "tab-b", Title: "B"})
	m.Open(types.Tab{ID: "tab-c", Title: "C"})
	m.Activate(b)

	m.Close(b)

	state := m.State()
	if state.ActiveTabID == nil || *state.ActiveTabID != a {
		t.Fatalf("active after close: %v", state.ActiveTabID)
	}
}

func TestCloseFirstAndLast(t *testing.T) {
	m := NewManager(types.WorkspaceState{})
	a := m.Open(types.Tab{ID: "tab-a", Title: "A"})
	b := m.Open(types.Tab{ID: "tab-b", Title: "B"})
	m.Activate(a)

	// Closing index 0 falls back to the new index 0.
	m.Close(a)
	state := m.State()
	if state.ActiveTabID == nil || *state.ActiveTabID != b {
		t.Fatalf("active: %v", state.ActiveTabID)
	}

	// Closing the only tab goes home.
	m.Close(b)
	if state = m.State(); state.ActiveTabID != nil {
		t.Fatalf("active: %v", *state.ActiveTabID)
	}
}

func TestCloseInactiveKeepsActive(t *testing.T) {
	m := NewManager(types.WorkspaceState{})
	m.Open(types.Tab{ID: "tab-a", Title: "A"})
	b := m.Open(types.Tab{ID: "tab-b", Title: "B"})

	m.Close("tab-a")
	state := m.State()
	if state.ActiveTabID == nil || *state.ActiveTabID != b {
		t.Fatalf("active: %v", state.ActiveTabID)
	}
}

func TestCloseRightPaneMirrorsLeft(t *testing.T) {
	m := NewManager(types.WorkspaceState{})
	a := m.Open(types.Tab{ID: "tab-a", Title: "A"})
	b := m.Open(types.Tab{ID: "tab-b", Title: "B"})
	m.Activate(a)
	m.ActivateRight(b)

	m.Close(b)
	state := m.State()
	if state.RightTabID == nil || *state.RightTabID != a {
		t.Fatalf("right after close: %v", state.RightTabID)
	}
}

func TestReorderWithinGroup(t *testing.T) {
	m := NewManager(types.WorkspaceState{})
	m.Open(types.Tab{ID: "u1", Title: "U1"})
	m.Open(types.Tab{ID: "u2", Title: "U2"})
	m.Open(types.Tab{ID: "u3", Title: "U3"})

	m.Reorder("u3", "u1")
	if got := ids(m); !equal(got, []string{"u3", "u1", "u2"}) {
		t.Fatalf("order: %v", got)
	}
}

func TestReorderAcrossGroupsIsNoOp(t *testing.T) {
	m := NewManager(types.WorkspaceState{})
	m.Open(types.Tab{ID: "p1", Title: "P1", Pinned: true})
	m.Open(types.Tab{ID: "p2", Title: "P2", Pinned: true})
	m.Open(types.Tab{ID: "u1", Title: "U1"})
	m.Open(types.Tab{ID: "u2", Title: "U2"})

	m.Reorder("p1", "u1")
	if got := ids(m); !equal(got, []string{"p1", "p2", "u1", "u2"}) {
		t.Fatalf("order changed: %v", got)
	}
}

func TestTogglePinMovesToGroupEnd(t *testing.T) {
	m := NewManager(types.WorkspaceState{})
	m.Open(types.Tab{ID: "p1", Title: "P1", Pinned: true})
	m.Open(types.Tab{ID: "u1", Title: "U1"})
	m.Open(types.Tab{ID: "u2", Title: "U2"})

	m.TogglePin("u1")
	if got := ids(m); !equal(got, []string{"p1", "u1", "u2"}) {
		t.Fatalf("order: %v", got)
	}
	state := m.State()
	if !state.Tabs[1].Pinned {
		t.Fatal("u1 not pinned")
	}

	m.TogglePin("p1")
	if got := ids(m); !equal(got, []string{"u1", "u2", "p1"}) {
		t.Fatalf("order: %v", got)
	}
}

func TestSetSplitDefaults(t *testing.T) {
	m := NewManager(types.WorkspaceState{})
	a := m.Open(types.Tab{ID: "tab-a", Title: "A"})
	m.Open(types.Tab{ID: "tab-b", Title: "B"})
	m.Activate(a)

	m.SetSplit(true)
	state := m.State()
	if !state.Split || state.SplitRatio != 0.6 {
		t.Fatalf("split: %v ratio %v", state.Split, state.SplitRatio)
	}
	if state.RightTabID == nil || *state.RightTabID != "tab-b" {
		t.Fatalf("right must differ from left: %v", state.RightTabID)
	}
}

func TestSetSplitRatioClamps(t *testing.T) {
	m := NewManager(types.WorkspaceState{})
	m.SetSplitRatio(0.05)
	if got := m.State().SplitRatio; got != 0.2 {
		t.Fatalf("low clamp: %v", got)
	}
	m.SetSplitRatio(0.95)
	if got := m.State().SplitRatio; got != 0.8 {
		t.Fatalf("high clamp: %v", got)
	}
	m.SetSplitRatio(0.5)
	if got := m.State().SplitRatio; got != 0.5 {
		t.Fatalf("in range: %v", got)
	}
}

func TestCollapseModes(t *testing.T) {
	m := NewManager(types.WorkspaceState{})
	for _, mode := range []types.CollapseMode{types.CollapseOthers, types.CollapseBar, types.CollapseNone} {
		m.SetCollapse(mode)
		if got := m.State().Collapse; got != mode {
			t.Fatalf("collapse: %q", got)
		}
	}
}

func TestStateSnapshotIsDetached(t *testing.T) {
	m := NewManager(types.WorkspaceState{})
	m.Open(types.Tab{ID: "tab-a", Title: "A"})

	snap := m.State()
	snap.Tabs[0].Title = "mutated"
	if m.State().Tabs[0].Title != "A" {
		t.Fatal("snapshot aliases manager state")
	}
}
