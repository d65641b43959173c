// Package rdf holds the term and statement types shared by every ingestion
// path, together with the canonical identity rules that decide when two
// parsed terms describe the same graph node.
package rdf

import (
	"strings"
)

// TermKind tells named resources, blank nodes and literals apart.
type TermKind int

const (
	TermIRI TermKind = iota
	TermBlank
	TermLiteral
)

func (k TermKind) String() string {
	switch k {
	case TermIRI:
		return "iri"
	case TermBlank:
		return "blank"
	case TermLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// BlankPrefix is prepended to blank node names so they never collide with a
// literal or resource spelled the same way.
const BlankPrefix = "_:"

// Term is a single parsed subject, predicate or object.
type Term struct {
	Kind  TermKind
	Value string
}

// IRI returns a named resource term.
func IRI(value string) Term {
	return Term{Kind: TermIRI, Value: value}
}

// Blank returns a blank node term. The name may or may not carry the "_:" prefix.
func Blank(name string) Term {
	return Term{Kind: TermBlank, Value: name}
}

// Literal returns a literal term.
func Literal(text string) Term {
	return Term{Kind: TermLiteral, Value: text}
}

// Statement is one subject-predicate-object fact. Every input format is
// reduced to a slice of statements before it reaches the graph.
type Statement struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// Canonicalize maps a term to its stable node ID.
//
// Literals and IRIs use their trimmed text. Blank nodes use the trimmed local
// name behind BlankPrefix.
func Canonicalize(t Term) string {
	switch t.Kind {
	case TermBlank:
		name := strings.TrimSpace(t.Value)
		name = strings.TrimPrefix(name, BlankPrefix)
		return BlankPrefix + strings.TrimSpace(name)
	default:
		return strings.TrimSpace(t.Value)
	}
}

// Label returns the display label for a term.
func Label(t Term) string {
	switch t.Kind {
	case TermLiteral:
		return strings.TrimSpace(t.Value)
	case TermBlank:
		return Canonicalize(t)
	default:
		return LocalName(t.Value)
	}
}

// LocalName returns the part of an identifier after its last '/' or '#'.
// Identifiers without a separator, or ending in one, are returned whole.
func LocalName(id string) string {
	id = strings.TrimSpace(id)
	idx := strings.LastIndexAny(id, "/#")
	if idx < 0 || idx == len(id)-1 {
		return id
	}
	return id[idx+1:]
}
