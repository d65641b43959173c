package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomasH60/semantic-blockchain/pkg/color"
	"github.com/TomasH60/semantic-blockchain/pkg/graph"
)

const ns = "http://example.org/blon#"

func styledStore() *graph.Store {
	schema := graph.NewSchemaIndex()
	schema.AddClass(ns+"Wallet", "Wallet")
	schema.AddAttribute(ns + "balance")

	s := graph.NewStore()
	s.Replace(schema)

	b := graph.NewBatch()
	b.AddNode(graph.Node{ID: ns + "Wallet", Label: "Wallet", Kind: graph.KindClass})
	b.AddNode(graph.Node{ID: ns + "balance", Label: "balance", Kind: graph.KindAttribute})
	b.AddNode(graph.Node{ID: ns + "w1", Label: "w1", Kind: graph.KindInstance})
	b.AddNode(graph.Node{ID: "1000", Label: "1000"})
	b.AddNode(graph.Node{ID: ns + "misc", Label: "misc"})
	b.AddEdge(graph.Edge{From: ns + "w1", To: ns + "Wallet", Label: "type"})
	b.AddEdge(graph.Edge{From: ns + "w1", To: "1000", Label: "balance"})
	b.SetMembership(ns+"w1", ns+"Wallet")
	s.Merge(b)
	return s
}

func nodeByID(t *testing.T, v View, id string) VisibleNode {
	t.Helper()
	for _, n := range v.Nodes {
		if n.ID == id {
			return n
		}
	}
	require.Failf(t, "node not rendered", "%s", id)
	return VisibleNode{}
}

func TestRenderStyles(t *testing.T) {
	a := color.NewAssigner()
	e := NewEngine(styledStore())

	v := e.Render(a)
	require.Len(t, v.Nodes, 5)

	instance := nodeByID(t, v, ns+"w1")
	assert.Equal(t, ShapeDot, instance.Shape)
	assert.Equal(t, a.ColorFor("Wallet"), instance.Color)

	class := nodeByID(t, v, ns+"Wallet")
	assert.Equal(t, ShapeSquare, class.Shape)
	assert.Equal(t, a.ColorFor("Wallet"), class.Color)

	for _, id := range []string{ns + "balance", "1000"} {
		attr := nodeByID(t, v, id)
		assert.Equal(t, ShapeEllipse, attr.Shape, id)
		assert.Equal(t, a.AttributeColor(), attr.Color, id)
	}

	misc := nodeByID(t, v, ns+"misc")
	assert.Equal(t, ShapeSquare, misc.Shape)
	assert.Equal(t, color.NeutralColor, misc.Color)

	for _, n := range v.Nodes {
		assert.False(t, n.Highlighted)
		assert.Equal(t, 1, n.BorderWidth)
	}
}

func TestRenderHighlightsLastClicked(t *testing.T) {
	e := NewEngine(styledStore())
	e.Click(ns + "w1")

	v := e.Render(color.NewAssigner())

	clicked := nodeByID(t, v, ns+"w1")
	assert.True(t, clicked.Highlighted)
	assert.Equal(t, color.HighlightBorder, clicked.BorderColor)
	assert.Equal(t, 4, clicked.BorderWidth)

	other := nodeByID(t, v, ns+"Wallet")
	assert.False(t, other.Highlighted)
	assert.Equal(t, 1, other.BorderWidth)
}

func TestRenderEdgesNeedBothEndsVisible(t *testing.T) {
	e := NewEngine(transferStore())
	e.Search("account")

	v := e.Render(color.NewAssigner())

	require.Len(t, v.Edges, 1)
	assert.Equal(t, VisibleEdge{From: "C", To: "B", Label: "to"}, v.Edges[0])
}

func TestRenderTypeHintUsesDot(t *testing.T) {
	b := graph.NewBatch()
	b.AddNode(graph.Node{ID: ns + "tx1", Label: "tx1"})
	b.AddNode(graph.Node{ID: ns + "Transfer", Label: "Transfer"})
	b.AddEdge(graph.Edge{From: ns + "tx1", To: ns + "Transfer", Label: "type"})
	b.SetTypeHint(ns+"tx1", ns+"Transfer")
	s := graph.NewStore()
	s.Merge(b)

	a := color.NewAssigner()
	v := NewEngine(s).Render(a)

	tx := nodeByID(t, v, ns+"tx1")
	assert.Equal(t, ShapeDot, tx.Shape)
	assert.Equal(t, a.ColorFor("Transfer"), tx.Color)

	class := nodeByID(t, v, ns+"Transfer")
	assert.Equal(t, ShapeSquare, class.Shape)
	assert.Equal(t, a.ColorFor("Transfer"), class.Color)
}
