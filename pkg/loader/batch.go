package loader

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/TomasH60/semantic-blockchain/pkg/explorer"
	"github.com/TomasH60/semantic-blockchain/pkg/logger"
)

// DefaultParallelFiles bounds concurrent fetches in ApplyAll.
const DefaultParallelFiles = 4

// Step is one file applied to a session by ApplyAll.
type Step struct {
	File         SourceFile
	Operation    explorer.Operation
	PreserveView bool
}

// ApplyAll fetches every step's file concurrently and then applies the loads
// to the session in order, stopping at the first failure. The results of the
// applied steps are returned even when a later step fails.
func ApplyAll(ctx context.Context, session *explorer.Session, steps []Step, parallelFiles int) ([]explorer.Result, error) {
	if parallelFiles <= 0 {
		parallelFiles = DefaultParallelFiles
	}

	reqs := make([]explorer.Request, len(steps))
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelFiles)
	for i, step := range steps {
		eg.Go(func() error {
			req, err := step.File.Request(gCtx, step.Operation, step.PreserveView)
			if err != nil {
				return err
			}
			reqs[i] = req
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	logger.Info("[Loader] Fetched files", "count", len(reqs))

	results := make([]explorer.Result, 0, len(reqs))
	for _, req := range reqs {
		res, err := session.Load(ctx, req)
		if err != nil {
			return results, fmt.Errorf("failed to apply %s: %w", req.Source, err)
		}
		results = append(results, res)
	}
	return results, nil
}
