package graph

import (
	"fmt"
)

// Kind classifies a node. Kinds only ever move from Unknown to something more
// specific; Class and Attribute are never rewritten once set.
type Kind int

const (
	KindUnknown Kind = iota
	KindClass
	KindInstance
	KindAttribute
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "class":
		*k = KindClass
	case "instance":
		*k = KindInstance
	case "attribute":
		*k = KindAttribute
	case "unknown", "":
		*k = KindUnknown
	default:
		return fmt.Errorf("unknown node kind %q", text)
	}
	return nil
}

// refine returns the kind a node ends up with when an existing kind meets a
// newly observed one.
func refine(existing, observed Kind) Kind {
	if existing == KindUnknown {
		return observed
	}
	return existing
}

// Node is a vertex in the explorer graph.
//
// ID is the canonical identity of the source term, Label its display name and
// Title the full original identifier.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Title string `json:"title"`
	Kind  Kind   `json:"kind"`
}

// Edge is a directed, labeled connection between two nodes.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// EdgeKey is the composite identity used for edge deduplication.
type EdgeKey struct {
	From  string
	To    string
	Label string
}

// Key returns the deduplication key of the edge.
func (e Edge) Key() EdgeKey {
	return EdgeKey{From: e.From, To: e.To, Label: e.Label}
}

// UnknownTermWarning records a term that could not be classified. It never
// interrupts ingestion; the node is kept with KindUnknown.
type UnknownTermWarning struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

func (w UnknownTermWarning) String() string {
	return fmt.Sprintf("%s: %s", w.ID, w.Reason)
}
