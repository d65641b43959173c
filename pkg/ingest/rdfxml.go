package ingest

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

const rdfNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

// collectionPrefix is bound on every generated element so the rewrite does
// not depend on the prefix the document uses for the RDF namespace.
const collectionPrefix = "rdfcoll"

// maxCollectionPasses bounds the rewrite of collections nested inside
// collection members; each pass lifts one level.
const maxCollectionPasses = 8

// normalizeCollections rewrites rdf:parseType="Collection" lists into the
// only form the RDF/XML decoder accepts: a sequence of empty rdf:Description
// elements carrying rdf:about. Members that declare more than their IRI, such
// as <owl:Class rdf:about="x"/>, are lifted to the top level so their
// statements survive. A list with a member that has no IRI is dropped, and
// its IRI members are still lifted. Documents that are not well formed XML
// are returned unchanged so the decoder reports the syntax error.
func normalizeCollections(doc []byte) []byte {
	if !bytes.Contains(doc, []byte("Collection")) {
		return doc
	}
	for range maxCollectionPasses {
		next, changed := collectionPass(doc)
		if !changed {
			break
		}
		doc = next
	}
	return doc
}

type splice struct {
	start, end int64
	text       string
}

type collMember struct {
	about      string
	hasAbout   bool
	rich       bool
	start, end int64
}

type collection struct {
	depth      int
	openStart  int64
	openEnd    int64
	members    []collMember
	selfClosed bool
}

func collectionPass(doc []byte) ([]byte, bool) {
	dec := xml.NewDecoder(bytes.NewReader(doc))

	var (
		edits   []splice
		lifted  strings.Builder
		depth   int
		rootRDF bool
		coll    *collection
	)

	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return doc, false
		}
		end := dec.InputOffset()

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			raw := doc[start:end]
			if depth == 1 {
				rootRDF = t.Name.Space == rdfNS && t.Name.Local == "RDF"
			}

			switch {
			case coll == nil:
				if parseTypeCollection(t) {
					coll = &collection{depth: depth, openStart: start, openEnd: end, selfClosed: bytes.HasSuffix(raw, []byte("/>"))}
				}
			case depth == coll.depth+1:
				m := collMember{start: start, end: end}
				m.about, m.hasAbout = rdfAttr(t, "about")
				m.rich = !isBareDescription(t)
				coll.members = append(coll.members, m)
			default:
				// anything below a member makes it carry more than its IRI
				coll.members[len(coll.members)-1].rich = true
			}

		case xml.EndElement:
			if coll != nil {
				switch depth {
				case coll.depth + 1:
					coll.members[len(coll.members)-1].end = end
				case coll.depth:
					if edit, ok := coll.rewrite(doc, start, end, rootRDF, &lifted); ok {
						edits = append(edits, edit)
					}
					coll = nil
				}
			}
			if depth == 1 && lifted.Len() > 0 {
				edits = append(edits, splice{start: start, end: start, text: lifted.String()})
			}
			depth--
		}
	}

	if len(edits) == 0 {
		return doc, false
	}

	var out bytes.Buffer
	out.Grow(len(doc) + lifted.Len() + len(edits)*64)
	var last int64
	for _, e := range edits {
		out.Write(doc[last:e.start])
		out.WriteString(e.text)
		last = e.end
	}
	out.Write(doc[last:])
	return out.Bytes(), true
}

// rewrite returns the replacement for the whole collection property element
// spanning openStart to closeEnd, or false when the list is already in the
// decoder's form.
func (c *collection) rewrite(doc []byte, closeStart, closeEnd int64, liftable bool, lifted *strings.Builder) (splice, bool) {
	if c.selfClosed {
		return splice{}, false
	}

	allIRIs, anyRich := true, false
	for _, m := range c.members {
		allIRIs = allIRIs && m.hasAbout
		anyRich = anyRich || m.rich
	}
	if allIRIs && !anyRich {
		return splice{}, false
	}

	if liftable {
		for _, m := range c.members {
			if m.hasAbout && m.rich {
				lifted.Write(doc[m.start:m.end])
				lifted.WriteByte('\n')
			}
		}
	}

	if !allIRIs {
		return splice{start: c.openStart, end: closeEnd}, true
	}

	var b strings.Builder
	b.Write(doc[c.openStart:c.openEnd])
	for _, m := range c.members {
		b.WriteString("<" + collectionPrefix + ":Description xmlns:" + collectionPrefix + `="` + rdfNS + `" ` + collectionPrefix + `:about="`)
		_ = xml.EscapeText(&b, []byte(m.about))
		b.WriteString(`"/>`)
	}
	b.Write(doc[closeStart:closeEnd])
	return splice{start: c.openStart, end: closeEnd, text: b.String()}, true
}

func parseTypeCollection(t xml.StartElement) bool {
	v, ok := rdfAttr(t, "parseType")
	return ok && v == "Collection"
}

func rdfAttr(t xml.StartElement, local string) (string, bool) {
	for _, a := range t.Attr {
		if a.Name.Space == rdfNS && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// isBareDescription reports whether t is an rdf:Description whose only
// attribute, namespace declarations aside, is rdf:about.
func isBareDescription(t xml.StartElement) bool {
	if t.Name.Space != rdfNS || t.Name.Local != "Description" {
		return false
	}
	about := false
	for _, a := range t.Attr {
		switch {
		case a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns"):
		case a.Name.Space == rdfNS && a.Name.Local == "about":
			about = true
		default:
			return false
		}
	}
	return about
}
