package view

import (
	"github.com/TomasH60/semantic-blockchain/pkg/color"
	"github.com/TomasH60/semantic-blockchain/pkg/graph"
	"github.com/TomasH60/semantic-blockchain/pkg/rdf"
)

// Shape categories understood by render clients.
const (
	ShapeDot     = "dot"
	ShapeEllipse = "ellipse"
	ShapeSquare  = "square"
)

const (
	borderWidth            = 1
	highlightedBorderWidth = 4
)

// VisibleNode is a node as handed to a renderer.
type VisibleNode struct {
	ID          string     `json:"id" yaml:"id"`
	Label       string     `json:"label" yaml:"label"`
	Title       string     `json:"title" yaml:"title"`
	Kind        graph.Kind `json:"kind" yaml:"kind"`
	Shape       string     `json:"shape" yaml:"shape"`
	Color       string     `json:"color" yaml:"color"`
	BorderColor string     `json:"border_color" yaml:"border_color"`
	BorderWidth int        `json:"border_width" yaml:"border_width"`
	Highlighted bool       `json:"highlighted" yaml:"highlighted"`
}

// VisibleEdge is an edge whose endpoints are both visible.
type VisibleEdge struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Label string `json:"label" yaml:"label"`
}

// View is the complete render payload for one engine state. It is rebuilt
// from scratch on every transition.
type View struct {
	Mode        Mode          `json:"mode" yaml:"mode"`
	Query       string        `json:"query,omitempty" yaml:"query,omitempty"`
	LastClicked string        `json:"last_clicked,omitempty" yaml:"last_clicked,omitempty"`
	Accumulate  bool          `json:"accumulate" yaml:"accumulate"`
	Nodes       []VisibleNode `json:"nodes" yaml:"nodes"`
	Edges       []VisibleEdge `json:"edges" yaml:"edges"`
}

// Render builds the render payload using assigner for class colors.
func (e *Engine) Render(assigner *color.Assigner) View {
	v := View{
		Mode:        e.mode,
		Query:       e.query,
		LastClicked: e.lastClicked,
		Accumulate:  e.accumulate,
		Nodes:       make([]VisibleNode, 0, len(e.visible)),
		Edges:       make([]VisibleEdge, 0),
	}

	for _, n := range e.store.Nodes() {
		if !e.IsVisible(n.ID) {
			continue
		}
		shape, fill := e.style(n, assigner)
		vn := VisibleNode{
			ID:          n.ID,
			Label:       n.Label,
			Title:       n.Title,
			Kind:        n.Kind,
			Shape:       shape,
			Color:       fill,
			BorderColor: fill,
			BorderWidth: borderWidth,
		}
		if n.ID == e.lastClicked {
			vn.Highlighted = true
			vn.BorderColor = color.HighlightBorder
			vn.BorderWidth = highlightedBorderWidth
		}
		v.Nodes = append(v.Nodes, vn)
	}

	for _, edge := range e.store.Edges() {
		if e.IsVisible(edge.From) && e.IsVisible(edge.To) {
			v.Edges = append(v.Edges, VisibleEdge{From: edge.From, To: edge.To, Label: edge.Label})
		}
	}

	return v
}

// style picks shape and fill. Typed nodes are dots in their class color,
// attribute-like nodes are ellipses in the attribute color, and everything
// else is a square, colored only when its own label names a class.
func (e *Engine) style(n graph.Node, assigner *color.Assigner) (string, string) {
	if classID, ok := e.store.ClassOf(n.ID); ok {
		return ShapeDot, assigner.ColorFor(e.classLabel(classID))
	}
	if typeID, ok := e.store.TypeHint(n.ID); ok {
		return ShapeDot, assigner.ColorFor(e.classLabel(typeID))
	}
	if n.Kind == graph.KindAttribute || color.LooksLikeAttribute(n.Label) {
		return ShapeEllipse, assigner.AttributeColor()
	}
	if n.Kind == graph.KindClass || e.store.IsTypeTarget(n.ID) {
		return ShapeSquare, assigner.ColorFor(n.Label)
	}
	return ShapeSquare, color.NeutralColor
}

func (e *Engine) classLabel(id string) string {
	if label, ok := e.store.Schema().ClassLabel(id); ok {
		return label
	}
	if n, ok := e.store.Node(id); ok {
		return n.Label
	}
	return rdf.LocalName(id)
}
