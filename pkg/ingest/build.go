package ingest

import (
	"fmt"

	"github.com/TomasH60/semantic-blockchain/pkg/graph"
	"github.com/TomasH60/semantic-blockchain/pkg/rdf"
)

func nodeFor(t rdf.Term, kind graph.Kind) graph.Node {
	id := rdf.Canonicalize(t)
	return graph.Node{ID: id, Label: rdf.Label(t), Title: id, Kind: kind}
}

func edgeFor(s rdf.Statement) graph.Edge {
	return graph.Edge{
		From:  rdf.Canonicalize(s.Subject),
		To:    rdf.Canonicalize(s.Object),
		Label: rdf.Label(s.Predicate),
	}
}

// BuildTriples converts a standalone dataset into a batch. Every statement
// yields a subject node, an object node and an edge labeled with the
// predicate. Type statements additionally leave a styling hint but do not
// classify anything.
func BuildTriples(stmts []rdf.Statement) *graph.Batch {
	b := graph.NewBatch()
	for _, s := range stmts {
		b.AddNode(nodeFor(s.Subject, graph.KindUnknown))
		b.AddNode(nodeFor(s.Object, graph.KindUnknown))
		b.AddEdge(edgeFor(s))

		if rdf.IsTypePredicate(rdf.Canonicalize(s.Predicate)) {
			b.SetTypeHint(rdf.Canonicalize(s.Subject), rdf.Canonicalize(s.Object))
		}
	}
	return b
}

// BuildInstances converts an instance dump into a batch classified against
// schema. It fails with ErrMissingSchema when schema is empty.
//
// A type statement whose object is a known class marks its subject as an
// instance and records the membership. When the object is not a known class
// the statement is kept as a plain edge and a warning is recorded.
func BuildInstances(stmts []rdf.Statement, schema *graph.SchemaIndex) (*graph.Batch, error) {
	if schema.Empty() {
		return nil, ErrMissingSchema
	}

	classify := func(t rdf.Term) graph.Kind {
		id := rdf.Canonicalize(t)
		switch {
		case schema.IsClass(id):
			return graph.KindClass
		case schema.IsAttribute(id):
			return graph.KindAttribute
		default:
			return graph.KindUnknown
		}
	}

	b := graph.NewBatch()
	for _, s := range stmts {
		subjectKind := classify(s.Subject)
		objectKind := classify(s.Object)
		predicateID := rdf.Canonicalize(s.Predicate)
		subjectID := rdf.Canonicalize(s.Subject)
		objectID := rdf.Canonicalize(s.Object)

		if rdf.IsTypePredicate(predicateID) {
			if schema.IsClass(objectID) {
				if subjectKind == graph.KindUnknown {
					subjectKind = graph.KindInstance
				}
				b.SetMembership(subjectID, objectID)
			} else {
				b.Warn(objectID, fmt.Sprintf("type of %s is not a known class", subjectID))
			}
		}

		if schema.IsAttribute(predicateID) && objectKind == graph.KindUnknown {
			objectKind = graph.KindAttribute
		}

		b.AddNode(nodeFor(s.Subject, subjectKind))
		b.AddNode(nodeFor(s.Object, objectKind))
		b.AddEdge(edgeFor(s))
	}
	return b, nil
}

// BuildSchema walks class and datatype property declarations. It returns the
// batch of schema nodes and edges together with the index of what was
// declared. Statements that are not declarations, and blank node parents or
// domains such as OWL restrictions, are skipped.
func BuildSchema(stmts []rdf.Statement) (*graph.Batch, *graph.SchemaIndex) {
	classes := make(map[string]rdf.Term)
	properties := make(map[string]rdf.Term)
	var classOrder, propertyOrder []string

	for _, s := range stmts {
		if s.Subject.Kind != rdf.TermIRI || s.Object.Kind != rdf.TermIRI {
			continue
		}
		if !rdf.IsTypePredicate(rdf.Canonicalize(s.Predicate)) {
			continue
		}
		id := rdf.Canonicalize(s.Subject)
		object := rdf.Canonicalize(s.Object)
		switch {
		case rdf.IsClassDeclaration(object):
			if _, ok := classes[id]; !ok {
				classes[id] = s.Subject
				classOrder = append(classOrder, id)
			}
		case rdf.IsDatatypePropertyDeclaration(object):
			if _, ok := properties[id]; !ok {
				properties[id] = s.Subject
				propertyOrder = append(propertyOrder, id)
			}
		}
	}

	b := graph.NewBatch()
	index := graph.NewSchemaIndex()
	addClass := func(t rdf.Term) graph.Node {
		n := nodeFor(t, graph.KindClass)
		b.AddNode(n)
		index.AddClass(n.ID, n.Label)
		return n
	}

	for _, id := range classOrder {
		addClass(classes[id])
	}
	for _, id := range propertyOrder {
		n := nodeFor(properties[id], graph.KindAttribute)
		b.AddNode(n)
		index.AddAttribute(n.ID)
	}

	for _, s := range stmts {
		if s.Object.Kind != rdf.TermIRI {
			continue
		}
		subjectID := rdf.Canonicalize(s.Subject)
		switch rdf.Canonicalize(s.Predicate) {
		case rdf.RDFSSubClass:
			if _, ok := classes[subjectID]; !ok {
				continue
			}
			parent := addClass(s.Object)
			b.AddEdge(graph.Edge{From: subjectID, To: parent.ID, Label: rdf.EdgeSubclassOf})
		case rdf.RDFSDomain:
			if _, ok := properties[subjectID]; !ok {
				continue
			}
			domain := addClass(s.Object)
			b.AddEdge(graph.Edge{From: domain.ID, To: subjectID, Label: rdf.EdgeHasAttribute})
		}
	}

	return b, index
}
