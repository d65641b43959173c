// Package graph provides the in-memory explorer graph: typed nodes, labeled
// edges, class memberships and the schema index, with idempotent incremental
// merging of ingested batches.
package graph

import (
	"sort"

	"github.com/TomasH60/semantic-blockchain/pkg/rdf"
)

// Store is the owned, mutable graph built from ingested statements.
//
// A Store is not safe for concurrent mutation; the session serializes access.
type Store struct {
	nodes     []Node
	nodeIndex map[string]int

	edges    []Edge
	edgeKeys map[EdgeKey]struct{}

	adjacency map[string]map[string]struct{}

	memberships map[string]string
	typeHints   map[string]string
	typeTargets map[string]struct{}

	schema *SchemaIndex
}

// NewStore returns an empty store with an empty schema.
func NewStore() *Store {
	s := &Store{}
	s.Replace(nil)
	return s
}

// Replace empties the store and installs schema as its schema index. A nil
// schema installs an empty one.
func (s *Store) Replace(schema *SchemaIndex) {
	if schema == nil {
		schema = NewSchemaIndex()
	}
	s.nodes = nil
	s.nodeIndex = make(map[string]int)
	s.edges = nil
	s.edgeKeys = make(map[EdgeKey]struct{})
	s.adjacency = make(map[string]map[string]struct{})
	s.memberships = make(map[string]string)
	s.typeHints = make(map[string]string)
	s.typeTargets = make(map[string]struct{})
	s.schema = schema
}

// Schema returns the store's schema index.
func (s *Store) Schema() *SchemaIndex {
	return s.schema
}

// Len returns the number of nodes.
func (s *Store) Len() int {
	return len(s.nodes)
}

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int {
	return len(s.edges)
}

// Node returns the node with the given ID.
func (s *Store) Node(id string) (Node, bool) {
	idx, ok := s.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return s.nodes[idx], true
}

// Has reports whether a node with the given ID exists.
func (s *Store) Has(id string) bool {
	_, ok := s.nodeIndex[id]
	return ok
}

// Nodes returns all nodes in insertion order. The slice is a copy.
func (s *Store) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Edges returns all edges in insertion order. The slice is a copy.
func (s *Store) Edges() []Edge {
	out := make([]Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// Neighbors returns the IDs directly connected to id by an edge in either
// direction, sorted.
func (s *Store) Neighbors(id string) []string {
	adj := s.adjacency[id]
	out := make([]string, 0, len(adj))
	for n := range adj {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ClassOf returns the class an instance was classified into.
func (s *Store) ClassOf(id string) (string, bool) {
	class, ok := s.memberships[id]
	return class, ok
}

// TypeHint returns the declared type of a node in a schema-less dataset.
func (s *Store) TypeHint(id string) (string, bool) {
	t, ok := s.typeHints[id]
	return t, ok
}

// IsTypeTarget reports whether id is a schema class or the object of a
// recorded membership or type hint.
func (s *Store) IsTypeTarget(id string) bool {
	if s.schema.IsClass(id) {
		return true
	}
	_, ok := s.typeTargets[id]
	return ok
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	c := &Store{}
	c.Replace(s.schema.Clone())
	c.nodes = append([]Node(nil), s.nodes...)
	for id, idx := range s.nodeIndex {
		c.nodeIndex[id] = idx
	}
	c.edges = append([]Edge(nil), s.edges...)
	for k := range s.edgeKeys {
		c.edgeKeys[k] = struct{}{}
	}
	for id, adj := range s.adjacency {
		m := make(map[string]struct{}, len(adj))
		for n := range adj {
			m[n] = struct{}{}
		}
		c.adjacency[id] = m
	}
	for k, v := range s.memberships {
		c.memberships[k] = v
	}
	for k, v := range s.typeHints {
		c.typeHints[k] = v
	}
	for k := range s.typeTargets {
		c.typeTargets[k] = struct{}{}
	}
	return c
}

func (s *Store) insertNode(n Node) {
	s.nodeIndex[n.ID] = len(s.nodes)
	s.nodes = append(s.nodes, n)
}

func (s *Store) link(a, b string) {
	if s.adjacency[a] == nil {
		s.adjacency[a] = make(map[string]struct{})
	}
	if s.adjacency[b] == nil {
		s.adjacency[b] = make(map[string]struct{})
	}
	s.adjacency[a][b] = struct{}{}
	s.adjacency[b][a] = struct{}{}
}

// placeholder builds a node for an edge endpoint that was never declared.
func placeholder(id string) Node {
	return Node{ID: id, Label: rdf.LocalName(id), Title: id, Kind: KindUnknown}
}
