package explorer

import (
	"errors"
	"fmt"

	"github.com/TomasH60/semantic-blockchain/pkg/graph"
	"github.com/TomasH60/semantic-blockchain/pkg/ingest"
)

// ErrSuperseded is returned for a load whose result was discarded because a
// newer load started after it.
var ErrSuperseded = errors.New("load superseded by a newer request")

// ErrUnknownOperation is returned for requests with an unrecognized operation.
var ErrUnknownOperation = errors.New("unknown load operation")

// Operation selects how loaded text is applied to the graph.
type Operation string

const (
	// OpOntology replaces the graph and schema with a parsed ontology.
	OpOntology Operation = "ontology"
	// OpDataset replaces the graph with a standalone dataset and clears the schema.
	OpDataset Operation = "dataset"
	// OpInstances merges an instance dump into the current graph.
	OpInstances Operation = "instances"
)

// ParseOperation resolves an operation name.
func ParseOperation(name string) (Operation, error) {
	switch op := Operation(name); op {
	case OpOntology, OpDataset, OpInstances:
		return op, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
}

// Request is one load of serialized triples.
type Request struct {
	Operation    Operation
	Text         string
	Format       ingest.Format
	PreserveView bool
	// Source is a free form description used in logs, usually a file name.
	Source string
}

// Result is the outcome of a load.
type Result struct {
	ID         string            `json:"id"`
	Generation uint64            `json:"generation"`
	Operation  Operation         `json:"operation"`
	Source     string            `json:"source,omitempty"`
	Report     graph.MergeReport `json:"report"`
	Stats      Stats             `json:"stats"`
	Err        error             `json:"-"`
}

// Stats is a summary of the session's current graph.
type Stats struct {
	Nodes      int    `json:"nodes" yaml:"nodes"`
	Edges      int    `json:"edges" yaml:"edges"`
	Classes    int    `json:"classes" yaml:"classes"`
	Attributes int    `json:"attributes" yaml:"attributes"`
	Visible    int    `json:"visible" yaml:"visible"`
	Colors     int    `json:"colors" yaml:"colors"`
	Generation uint64 `json:"generation" yaml:"generation"`
}
