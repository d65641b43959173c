package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const rdfxmlHead = `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:owl="http://www.w3.org/2002/07/owl#">`

func TestNormalizeCollections(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		unchanged bool
		contains  []string
		absent    []string
		lifted    []string
	}{
		{
			name:      "no collections",
			doc:       rdfxmlHead + `<owl:Class rdf:about="http://ex.org/A"/></rdf:RDF>`,
			unchanged: true,
		},
		{
			name:      "malformed xml left for the decoder",
			doc:       rdfxmlHead + `<owl:Class rdf:about="http://ex.org/A"><owl:unionOf rdf:parseType="Collection">`,
			unchanged: true,
		},
		{
			name:      "bare descriptions already readable",
			doc:       rdfxmlHead + `<owl:Class rdf:about="http://ex.org/A"><owl:unionOf rdf:parseType="Collection"><rdf:Description rdf:about="http://ex.org/B"/><rdf:Description rdf:about="http://ex.org/C"></rdf:Description></owl:unionOf></owl:Class></rdf:RDF>`,
			unchanged: true,
		},
		{
			name:      "empty collection",
			doc:       rdfxmlHead + `<owl:Class rdf:about="http://ex.org/A"><owl:unionOf rdf:parseType="Collection"/></owl:Class></rdf:RDF>`,
			unchanged: true,
		},
		{
			name: "typed members become references and are lifted",
			doc:  rdfxmlHead + `<owl:Class rdf:about="http://ex.org/A"><owl:unionOf rdf:parseType="Collection"><owl:Class rdf:about="http://ex.org/B"/><rdf:Description rdf:about="http://ex.org/C"/></owl:unionOf></owl:Class></rdf:RDF>`,
			contains: []string{
				`<owl:unionOf rdf:parseType="Collection"><rdfcoll:Description xmlns:rdfcoll="http://www.w3.org/1999/02/22-rdf-syntax-ns#" rdfcoll:about="http://ex.org/B"/>`,
				`rdfcoll:about="http://ex.org/C"/></owl:unionOf>`,
			},
			lifted: []string{`<owl:Class rdf:about="http://ex.org/B"/>`},
		},
		{
			name:   "member without an iri drops the list",
			doc:    rdfxmlHead + `<owl:Class rdf:about="http://ex.org/A"><owl:intersectionOf rdf:parseType="Collection"><owl:Class rdf:about="http://ex.org/B"><owl:versionInfo>1</owl:versionInfo></owl:Class><owl:Restriction><owl:onProperty rdf:resource="http://ex.org/p"/></owl:Restriction></owl:intersectionOf></owl:Class></rdf:RDF>`,
			absent: []string{"intersectionOf", "Restriction"},
			lifted: []string{`<owl:Class rdf:about="http://ex.org/B"><owl:versionInfo>1</owl:versionInfo></owl:Class>`},
		},
		{
			name: "nested collections are rewritten once lifted",
			doc:  rdfxmlHead + `<owl:Class rdf:about="http://ex.org/A"><owl:unionOf rdf:parseType="Collection"><owl:Class rdf:about="http://ex.org/B"><owl:unionOf rdf:parseType="Collection"><owl:Class rdf:about="http://ex.org/C"/></owl:unionOf></owl:Class></owl:unionOf></owl:Class></rdf:RDF>`,
			contains: []string{
				`rdfcoll:about="http://ex.org/B"/>`,
				`rdfcoll:about="http://ex.org/C"/>`,
			},
			lifted: []string{`<owl:Class rdf:about="http://ex.org/C"/>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := string(normalizeCollections([]byte(tt.doc)))
			if tt.unchanged {
				assert.Equal(t, tt.doc, out)
				return
			}
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
			for _, s := range tt.lifted {
				assert.True(t, strings.HasSuffix(out, s+"\n</rdf:RDF>"), out)
			}
		})
	}
}
