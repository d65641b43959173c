// Package ingest turns serialized triple text into statements and statements
// into graph batches. Decoding is all-or-nothing: a syntax error anywhere in
// the input yields a ParseError and no statements.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/TomasH60/semantic-blockchain/pkg/rdf"

	knakk "github.com/knakk/rdf"
)

// Format names a supported serialization.
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "ntriples"
	FormatRDFXML   Format = "rdfxml"
)

var (
	// ErrParse marks malformed input.
	ErrParse = errors.New("parse error")
	// ErrMissingSchema is returned when an instance dump arrives before any
	// schema has been ingested.
	ErrMissingSchema = errors.New("no schema loaded")
	// ErrUnsupportedFormat is returned for formats the decoder cannot read.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// ParseError describes a failed decode. Decoded is the number of statements
// read successfully before the failure.
type ParseError struct {
	Format  Format
	Decoded int
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s input after %d statements: %v", e.Format, e.Decoded, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// ParseFormat resolves a user supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "turtle", "ttl", "n3":
		return FormatTurtle, nil
	case "ntriples", "nt", "n-triples":
		return FormatNTriples, nil
	case "rdfxml", "rdf", "owl", "xml", "rdf/xml":
		return FormatRDFXML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

func (f Format) decoderFormat() (knakk.Format, error) {
	switch f {
	case FormatTurtle:
		return knakk.Turtle, nil
	case FormatNTriples:
		return knakk.NTriples, nil
	case FormatRDFXML:
		return knakk.RDFXML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
}

const cancelCheckInterval = 1024

// Decode reads every statement from r. Statements containing terms the
// decoder does not model are skipped.
func Decode(ctx context.Context, r io.Reader, format Format) (stmts []rdf.Statement, err error) {
	df, err := format.decoderFormat()
	if err != nil {
		return nil, err
	}

	read := 0
	defer func() {
		if p := recover(); p != nil {
			stmts = nil
			err = &ParseError{Format: format, Decoded: read, Err: fmt.Errorf("decoder panic: %v", p)}
		}
	}()

	if format == FormatRDFXML {
		doc, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(normalizeCollections(doc))
	}

	dec := knakk.NewTripleDecoder(r, df)
	out := make([]rdf.Statement, 0, 256)
	for {
		if read%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		triple, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Format: format, Decoded: read, Err: err}
		}
		read++

		stmt, ok := fromTriple(triple)
		if !ok {
			continue
		}
		out = append(out, stmt)
	}

	return out, nil
}

// DecodeString is Decode over an in-memory document.
func DecodeString(ctx context.Context, text string, format Format) ([]rdf.Statement, error) {
	return Decode(ctx, strings.NewReader(text), format)
}

func fromTriple(t knakk.Triple) (rdf.Statement, bool) {
	subj, ok := fromTerm(t.Subj)
	if !ok {
		return rdf.Statement{}, false
	}
	pred, ok := fromTerm(t.Pred)
	if !ok || pred.Kind != rdf.TermIRI {
		return rdf.Statement{}, false
	}
	obj, ok := fromTerm(t.Obj)
	if !ok {
		return rdf.Statement{}, false
	}
	return rdf.Statement{Subject: subj, Predicate: pred, Object: obj}, true
}

func fromTerm(t knakk.Term) (rdf.Term, bool) {
	if t == nil {
		return rdf.Term{}, false
	}
	switch t.Type() {
	case knakk.TermIRI:
		return rdf.IRI(t.String()), true
	case knakk.TermBlank:
		return rdf.Blank(t.String()), true
	case knakk.TermLiteral:
		return rdf.Literal(t.String()), true
	default:
		return rdf.Term{}, false
	}
}
