package queue

import (
	"github.com/TomasH60/semantic-blockchain/pkg/explorer"
	"github.com/TomasH60/semantic-blockchain/pkg/graph"
)

// Topics published on the event exchange.
const (
	TopicLoaded = "graph.loaded"
	TopicFailed = "graph.failed"
)

// LoadMessage asks the explorer to load a triple file.
type LoadMessage struct {
	CorrelationID string `json:"correlation_id,omitempty"`
	Operation     string `json:"operation" validate:"required,oneof=ontology dataset instances"`
	Source        string `json:"source" validate:"required,oneof=fs s3"`
	Path          string `json:"path" validate:"required"`
	Format        string `json:"format,omitempty"`
	PreserveView  bool   `json:"preserve_view,omitempty"`
}

// LoadEvent reports the outcome of a LoadMessage.
type LoadEvent struct {
	CorrelationID string             `json:"correlation_id,omitempty"`
	RequestID     string             `json:"request_id,omitempty"`
	Operation     string             `json:"operation"`
	Source        string             `json:"source"`
	Path          string             `json:"path"`
	Report        *graph.MergeReport `json:"report,omitempty"`
	Stats         *explorer.Stats    `json:"stats,omitempty"`
	Error         string             `json:"error,omitempty"`
}
