package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/TomasH60/semantic-blockchain/pkg/explorer"
	"github.com/TomasH60/semantic-blockchain/pkg/ingest"
)

// SourceFile is a serialized triple file that can be fed into a session.
// The content is fetched through the associated SourceLoader, which may read
// from disk, object storage, or any other backend.
type SourceFile struct {
	ID     string
	Path   string
	Format ingest.Format
	Loader SourceLoader
}

// NewSourceFileParams defines the input for NewSourceFile.
type NewSourceFileParams struct {
	ID     string
	Path   string
	Format string
	Loader SourceLoader
}

// NewSourceFile creates a SourceFile. When Format is empty it is derived
// from the path's extension.
func NewSourceFile(params NewSourceFileParams) (SourceFile, error) {
	var (
		format ingest.Format
		err    error
	)
	if strings.TrimSpace(params.Format) != "" {
		format, err = ingest.ParseFormat(params.Format)
	} else {
		format, err = ingest.FormatFromPath(params.Path)
	}
	if err != nil {
		return SourceFile{}, err
	}

	id := params.ID
	if id == "" {
		id = params.Path
	}

	return SourceFile{
		ID:     id,
		Path:   params.Path,
		Format: format,
		Loader: params.Loader,
	}, nil
}

// GetText retrieves the raw content of the file using its Loader.
//
// Example:
//
//	text, err := file.GetText(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(string(text))
func (f *SourceFile) GetText(ctx context.Context) ([]byte, error) {
	if f.Loader == nil {
		return nil, fmt.Errorf("no loader configured for %s", f.Path)
	}
	return f.Loader.GetFileText(ctx, *f)
}

// Request fetches the file and wraps it into a session load request.
func (f *SourceFile) Request(ctx context.Context, op explorer.Operation, preserveView bool) (explorer.Request, error) {
	text, err := f.GetText(ctx)
	if err != nil {
		return explorer.Request{}, fmt.Errorf("failed to load %s: %w", f.Path, err)
	}
	return explorer.Request{
		Operation:    op,
		Text:         string(text),
		Format:       f.Format,
		PreserveView: preserveView,
		Source:       f.Path,
	}, nil
}

// SourceLoader loads the contents of a SourceFile.
type SourceLoader interface {
	GetFileText(ctx context.Context, file SourceFile) ([]byte, error)
}

// CacheKey generates a unique cache key for a SourceFile based on its ID and path.
func CacheKey(file SourceFile) string {
	return file.ID + ":" + file.Path
}
