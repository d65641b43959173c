package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "blocks.ttl", want: "text/turtle"},
		{name: "dump.NT", want: "application/n-triples"},
		{name: "ontology.owl", want: "application/rdf+xml"},
		{name: "ontology.rdf", want: "application/rdf+xml"},
		{name: "noext", want: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentType(tt.name))
		})
	}
}

func TestUploadKey(t *testing.T) {
	assert.Equal(t, "uploads/abc123.ttl", UploadKey("uploads", "abc123", "Blocks.TTL"))
	assert.Equal(t, "abc123.owl", UploadKey("", "abc123", "ontology.owl"))
}
