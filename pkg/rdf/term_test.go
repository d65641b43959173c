package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		term Term
		want string
	}{
		{name: "literal is trimmed", term: Literal("  42 "), want: "42"},
		{name: "iri is trimmed", term: IRI(" http://ex.org/onto#Person\n"), want: "http://ex.org/onto#Person"},
		{name: "blank gets prefix", term: Blank("b0"), want: "_:b0"},
		{name: "blank keeps single prefix", term: Blank("_:b0"), want: "_:b0"},
		{name: "blank name is trimmed", term: Blank(" b1 "), want: "_:b1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(tt.term)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Canonicalize(tt.term), "canonical id must be stable")
		})
	}
}

func TestCanonicalizeSeparatesBlankFromLiteral(t *testing.T) {
	assert.NotEqual(t, Canonicalize(Literal("x")), Canonicalize(Blank("x")))
	assert.NotEqual(t, Canonicalize(IRI("x")), Canonicalize(Blank("x")))
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		term Term
		want string
	}{
		{name: "hash iri", term: IRI("http://ex.org/onto#Person"), want: "Person"},
		{name: "slash iri", term: IRI("http://ex.org/people/alice"), want: "alice"},
		{name: "no separator", term: IRI("urn:thing"), want: "urn:thing"},
		{name: "trailing separator", term: IRI("http://ex.org/"), want: "http://ex.org/"},
		{name: "literal untouched", term: Literal("2024-01-01"), want: "2024-01-01"},
		{name: "literal trimmed like its id", term: Literal("  30 "), want: "30"},
		{name: "blank shows prefix", term: Blank("n3"), want: "_:n3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.term))
		})
	}
}

func TestIsTypePredicate(t *testing.T) {
	assert.True(t, IsTypePredicate(RDFType))
	assert.True(t, IsTypePredicate("http://ex.org/vocab#type"))
	assert.False(t, IsTypePredicate("http://ex.org/vocab#bloodtype"))
	assert.False(t, IsTypePredicate(RDFSSubClass))
}
