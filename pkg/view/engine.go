// Package view computes which part of the graph is shown. The Engine is a
// small state machine driven by reset, search and click events; every
// transition recomputes the visible set from the full store.
package view

import (
	"fmt"
	"strings"

	"github.com/TomasH60/semantic-blockchain/pkg/graph"
)

// Mode is the state the visible set was last derived in.
type Mode int

const (
	ModeReset Mode = iota
	ModeSearch
	ModeClickExpand
	ModeClickReplace
)

func (m Mode) String() string {
	switch m {
	case ModeSearch:
		return "search"
	case ModeClickExpand:
		return "click-expand"
	case ModeClickReplace:
		return "click-replace"
	default:
		return "reset"
	}
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "reset", "":
		*m = ModeReset
	case "search":
		*m = ModeSearch
	case "click-expand":
		*m = ModeClickExpand
	case "click-replace":
		*m = ModeClickReplace
	default:
		return fmt.Errorf("unknown view mode %q", text)
	}
	return nil
}

// Engine holds the visible set for one graph.
//
// The accumulate flag is read at click time only; toggling it never changes
// the current visible set.
type Engine struct {
	store *graph.Store

	visible     map[string]struct{}
	mode        Mode
	query       string
	lastClicked string
	accumulate  bool
}

// NewEngine returns an engine showing every node of store.
func NewEngine(store *graph.Store) *Engine {
	e := &Engine{store: store}
	e.Reset()
	return e
}

// Reset shows every node and clears the search query.
func (e *Engine) Reset() {
	e.visible = make(map[string]struct{}, e.store.Len())
	for _, n := range e.store.Nodes() {
		e.visible[n.ID] = struct{}{}
	}
	e.mode = ModeReset
	e.query = ""
}

// Search shows the nodes whose label contains query, ignoring case, plus
// their direct neighbors. An empty query resets the view.
func (e *Engine) Search(query string) {
	if query == "" {
		e.Reset()
		return
	}

	needle := strings.ToLower(query)
	matched := make(map[string]struct{})
	for _, n := range e.store.Nodes() {
		if n.Label == "" || !strings.Contains(strings.ToLower(n.Label), needle) {
			continue
		}
		matched[n.ID] = struct{}{}
		for _, nb := range e.store.Neighbors(n.ID) {
			matched[nb] = struct{}{}
		}
	}

	e.visible = matched
	e.mode = ModeSearch
	e.query = query
}

// Click focuses a node. With accumulation on, the node and its neighbors are
// added to the visible set; otherwise they replace it. Clicking an unknown
// node does nothing and returns false.
func (e *Engine) Click(id string) bool {
	if !e.store.Has(id) {
		return false
	}

	next := make(map[string]struct{})
	mode := ModeClickReplace
	if e.accumulate {
		for v := range e.visible {
			next[v] = struct{}{}
		}
		mode = ModeClickExpand
	}

	next[id] = struct{}{}
	for _, nb := range e.store.Neighbors(id) {
		next[nb] = struct{}{}
	}

	e.visible = next
	e.mode = mode
	e.lastClicked = id
	return true
}

// SetAccumulate toggles accumulation mode for later clicks.
func (e *Engine) SetAccumulate(on bool) {
	e.accumulate = on
}

// Accumulate reports whether accumulation mode is on.
func (e *Engine) Accumulate() bool {
	return e.accumulate
}

// Refresh brings the view back in line after the store changed. Without
// preserve the view resets. With preserve a reset view is recomputed so it
// still shows every node, an active search is re-run against the new graph,
// and a click set is kept minus vanished nodes.
func (e *Engine) Refresh(preserve bool) {
	if e.lastClicked != "" && !e.store.Has(e.lastClicked) {
		e.lastClicked = ""
	}

	if !preserve {
		e.Reset()
		return
	}
	switch e.mode {
	case ModeReset:
		e.Reset()
		return
	case ModeSearch:
		e.Search(e.query)
		return
	}
	for id := range e.visible {
		if !e.store.Has(id) {
			delete(e.visible, id)
		}
	}
}

// Mode returns the current state.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Query returns the active search query.
func (e *Engine) Query() string {
	return e.query
}

// LastClicked returns the ID of the most recently clicked node.
func (e *Engine) LastClicked() string {
	return e.lastClicked
}

// IsVisible reports whether id is in the visible set.
func (e *Engine) IsVisible(id string) bool {
	_, ok := e.visible[id]
	return ok
}

// Visible returns the visible node IDs in store order.
func (e *Engine) Visible() []string {
	out := make([]string, 0, len(e.visible))
	for _, n := range e.store.Nodes() {
		if _, ok := e.visible[n.ID]; ok {
			out = append(out, n.ID)
		}
	}
	return out
}

// ClipboardText returns the text copied on a secondary click: the label,
// falling back to the title and then the ID.
func (e *Engine) ClipboardText(id string) (string, bool) {
	n, ok := e.store.Node(id)
	if !ok {
		return "", false
	}
	switch {
	case n.Label != "":
		return n.Label, true
	case n.Title != "":
		return n.Title, true
	default:
		return n.ID, true
	}
}
