package types

// TabKind discriminates workspace tab content.
type TabKind string

const (
	TabKindCells TabKind = "cells"
	TabKindDocs  TabKind = "docs"
	TabKindBoard TabKind = "board"
)

// Tab is an open workspace document tab.
type Tab struct {
	ID     string  `json:"id"`
	Kind   TabKind `json:"kind"`
	Title  string  `json:"title"`
	Icon   string  `json:"icon,omitempty"` // stable icon name, resolved at render time
	Pinned bool    `json:"pinned,omitempty"`
}

// CollapseMode controls workspace chrome collapsing.
type CollapseMode string

const (
	CollapseNone   CollapseMode = "none"
	CollapseOthers CollapseMode = "others"
	CollapseBar    CollapseMode = "bar"
)

// Pane identifies the focused split pane.
type Pane string

const (
	PaneLeft  Pane = "left"
	PaneRight Pane = "right"
)

// WorkspaceState is the whole persisted workspace document. A nil
// ActiveTabID means "home".
type WorkspaceState struct {
	Tabs        []Tab        `json:"tabs"`
	ActiveTabID *string      `json:"active_tab_id,omitempty"`
	RightTabID  *string      `json:"right_tab_id,omitempty"`
	Split       bool         `json:"split,omitempty"`
	SplitRatio  float64      `json:"split_ratio,omitempty"`
	Collapse    CollapseMode `json:"collapse,omitempty"`
	FocusedPane Pane         `json:"focused_pane,omitempty"`
}

// HistoryState is the persisted navigation stack for one session.
type HistoryState struct {
	Back    []string `json:"back"`
	Forward []string `json:"forward"`
	Current string   `json:"current"`
}
