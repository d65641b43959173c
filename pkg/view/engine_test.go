package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomasH60/semantic-blockchain/pkg/color"
	"github.com/TomasH60/semantic-blockchain/pkg/graph"
)

func transferStore() *graph.Store {
	b := graph.NewBatch()
	b.AddNode(graph.Node{ID: "A", Label: "Person", Title: "A"})
	b.AddNode(graph.Node{ID: "B", Label: "Account", Title: "B"})
	b.AddNode(graph.Node{ID: "C", Label: "Transfer", Title: "C"})
	b.AddEdge(graph.Edge{From: "A", To: "C", Label: "sends"})
	b.AddEdge(graph.Edge{From: "C", To: "B", Label: "to"})

	s := graph.NewStore()
	s.Merge(b)
	return s
}

func xyzStore() *graph.Store {
	b := graph.NewBatch()
	b.AddNode(graph.Node{ID: "X", Label: "X"})
	b.AddNode(graph.Node{ID: "Y", Label: "Y"})
	b.AddNode(graph.Node{ID: "Z", Label: "Z"})
	b.AddEdge(graph.Edge{From: "Y", To: "Z", Label: "near"})

	s := graph.NewStore()
	s.Merge(b)
	return s
}

func TestNewEngineShowsEverything(t *testing.T) {
	e := NewEngine(transferStore())

	assert.Equal(t, ModeReset, e.Mode())
	assert.Equal(t, []string{"A", "B", "C"}, e.Visible())
}

func TestSearchMatchesLabelAndNeighbors(t *testing.T) {
	e := NewEngine(transferStore())

	e.Search("person")

	assert.Equal(t, ModeSearch, e.Mode())
	assert.Equal(t, "person", e.Query())
	assert.Equal(t, []string{"A", "C"}, e.Visible())
}

func TestSearchIgnoresCurrentVisibleSet(t *testing.T) {
	e := NewEngine(transferStore())
	e.Search("person")

	e.Search("ACCOUNT")

	assert.Equal(t, []string{"B", "C"}, e.Visible())
}

func TestSearchWithoutMatches(t *testing.T) {
	e := NewEngine(transferStore())

	e.Search("wallet")

	assert.Empty(t, e.Visible())
	assert.Empty(t, e.Render(color.NewAssigner()).Edges)
}

func TestEmptySearchResets(t *testing.T) {
	e := NewEngine(transferStore())
	e.Search("person")

	e.Search("")

	assert.Equal(t, ModeReset, e.Mode())
	assert.Len(t, e.Visible(), 3)
}

func TestClickReplaceAndExpand(t *testing.T) {
	tests := []struct {
		name       string
		accumulate bool
		wantMode   Mode
		want       []string
	}{
		{name: "replace", accumulate: false, wantMode: ModeClickReplace, want: []string{"Y", "Z"}},
		{name: "expand", accumulate: true, wantMode: ModeClickExpand, want: []string{"X", "Y", "Z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(xyzStore())
			require.True(t, e.Click("X"))
			require.Equal(t, []string{"X"}, e.Visible())

			e.SetAccumulate(tt.accumulate)
			require.True(t, e.Click("Y"))

			assert.Equal(t, tt.wantMode, e.Mode())
			assert.Equal(t, tt.want, e.Visible())
			assert.Equal(t, "Y", e.LastClicked())
		})
	}
}

func TestToggleAccumulateKeepsVisibleSet(t *testing.T) {
	e := NewEngine(xyzStore())
	e.Click("X")

	e.SetAccumulate(true)

	assert.True(t, e.Accumulate())
	assert.Equal(t, []string{"X"}, e.Visible())
}

func TestClickUnknownNodeIsNoop(t *testing.T) {
	e := NewEngine(transferStore())
	e.Search("person")

	assert.False(t, e.Click("missing"))
	assert.Equal(t, ModeSearch, e.Mode())
	assert.Equal(t, []string{"A", "C"}, e.Visible())
	assert.Empty(t, e.LastClicked())
}

func TestClickIsIdempotent(t *testing.T) {
	for _, accumulate := range []bool{false, true} {
		e := NewEngine(transferStore())
		e.SetAccumulate(accumulate)

		e.Click("B")
		first := e.Visible()
		e.Click("B")

		assert.Equal(t, first, e.Visible())
	}
}

func TestRefresh(t *testing.T) {
	s := transferStore()
	e := NewEngine(s)
	e.Search("person")

	extra := graph.NewBatch()
	extra.AddNode(graph.Node{ID: "D", Label: "Personal wallet"})
	s.Merge(extra)

	e.Refresh(true)
	assert.Equal(t, ModeSearch, e.Mode())
	assert.Equal(t, []string{"A", "C", "D"}, e.Visible())

	e.Refresh(false)
	assert.Equal(t, ModeReset, e.Mode())
	assert.Len(t, e.Visible(), 4)
}

func TestRefreshPreservingResetShowsNewNodes(t *testing.T) {
	s := transferStore()
	e := NewEngine(s)

	extra := graph.NewBatch()
	extra.AddNode(graph.Node{ID: "D", Label: "Personal wallet"})
	extra.AddNode(graph.Node{ID: "E", Label: "Exchange"})
	s.Merge(extra)

	e.Refresh(true)
	assert.Equal(t, ModeReset, e.Mode())
	assert.Len(t, e.Visible(), s.Len())
	assert.True(t, e.IsVisible("D"))
	assert.True(t, e.IsVisible("E"))
}

func TestRefreshDropsVanishedNodes(t *testing.T) {
	s := transferStore()
	e := NewEngine(s)
	e.Click("A")

	s.Replace(nil)
	e.Refresh(true)

	assert.Empty(t, e.Visible())
	assert.Empty(t, e.LastClicked())
}

func TestClipboardText(t *testing.T) {
	b := graph.NewBatch()
	b.AddNode(graph.Node{ID: "n1", Label: "Block", Title: "http://ex.org/Block"})
	b.AddNode(graph.Node{ID: "n2", Title: "only title"})
	b.AddNode(graph.Node{ID: "n3"})
	s := graph.NewStore()
	s.Merge(b)
	e := NewEngine(s)

	tests := []struct {
		id   string
		want string
	}{
		{id: "n1", want: "Block"},
		{id: "n2", want: "only title"},
		{id: "n3", want: "n3"},
	}
	for _, tt := range tests {
		got, ok := e.ClipboardText(tt.id)
		assert.True(t, ok)
		assert.Equal(t, tt.want, got)
	}

	_, ok := e.ClipboardText("missing")
	assert.False(t, ok)
}
