package graph

import (
	"sort"
)

// SchemaIndex is the set of class IDs and attribute property IDs learned from
// an ontology. Instance merges consult it to classify nodes.
type SchemaIndex struct {
	classes    map[string]string
	attributes map[string]struct{}
}

// NewSchemaIndex returns an empty index.
func NewSchemaIndex() *SchemaIndex {
	return &SchemaIndex{
		classes:    make(map[string]string),
		attributes: make(map[string]struct{}),
	}
}

// AddClass records a class ID together with its display label.
func (s *SchemaIndex) AddClass(id, label string) {
	s.classes[id] = label
}

// AddAttribute records an attribute (datatype property) ID.
func (s *SchemaIndex) AddAttribute(id string) {
	s.attributes[id] = struct{}{}
}

// IsClass reports whether id is a known class.
func (s *SchemaIndex) IsClass(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.classes[id]
	return ok
}

// IsAttribute reports whether id is a known attribute property.
func (s *SchemaIndex) IsAttribute(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.attributes[id]
	return ok
}

// ClassLabel returns the display label of a known class.
func (s *SchemaIndex) ClassLabel(id string) (string, bool) {
	if s == nil {
		return "", false
	}
	label, ok := s.classes[id]
	return label, ok
}

// Empty reports whether nothing has been learned yet.
func (s *SchemaIndex) Empty() bool {
	return s == nil || (len(s.classes) == 0 && len(s.attributes) == 0)
}

// Classes returns the known class IDs in sorted order.
func (s *SchemaIndex) Classes() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.classes))
	for id := range s.classes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Attributes returns the known attribute IDs in sorted order.
func (s *SchemaIndex) Attributes() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.attributes))
	for id := range s.attributes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy.
func (s *SchemaIndex) Clone() *SchemaIndex {
	c := NewSchemaIndex()
	if s == nil {
		return c
	}
	for id, label := range s.classes {
		c.classes[id] = label
	}
	for id := range s.attributes {
		c.attributes[id] = struct{}{}
	}
	return c
}
