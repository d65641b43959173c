package rdf

// Namespaces used by schema ingestion.
const (
	NamespaceRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NamespaceRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	NamespaceOWL  = "http://www.w3.org/2002/07/owl#"
)

const (
	RDFType      = NamespaceRDF + "type"
	RDFSClass    = NamespaceRDFS + "Class"
	RDFSSubClass = NamespaceRDFS + "subClassOf"
	RDFSDomain   = NamespaceRDFS + "domain"

	OWLClass            = NamespaceOWL + "Class"
	OWLDatatypeProperty = NamespaceOWL + "DatatypeProperty"
)

// Edge labels produced by schema ingestion.
const (
	EdgeSubclassOf   = "subclass-of"
	EdgeHasAttribute = "has-attribute"
)

// IsTypePredicate reports whether a predicate IRI is the is-a relation.
// Besides rdf:type, any IRI whose local name is "type" counts, which keeps
// dumps that mint their own type predicate working.
func IsTypePredicate(iri string) bool {
	if iri == RDFType {
		return true
	}
	return LocalName(iri) == "type"
}

// IsClassDeclaration reports whether a type object declares a class.
func IsClassDeclaration(iri string) bool {
	return iri == OWLClass || iri == RDFSClass
}

// IsDatatypePropertyDeclaration reports whether a type object declares a
// datatype property.
func IsDatatypePropertyDeclaration(iri string) bool {
	return iri == OWLDatatypeProperty
}
