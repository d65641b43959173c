// Package explorer ties ingestion, the graph store, color assignment and the
// visibility engine into one session that a transport can drive.
package explorer

import (
	"context"
	"fmt"
	"slices"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/TomasH60/semantic-blockchain/pkg/color"
	"github.com/TomasH60/semantic-blockchain/pkg/graph"
	"github.com/TomasH60/semantic-blockchain/pkg/ingest"
	"github.com/TomasH60/semantic-blockchain/pkg/logger"
	"github.com/TomasH60/semantic-blockchain/pkg/view"
)

// MergeOptions controls how an instance merge affects the view.
type MergeOptions struct {
	PreserveView bool
}

// Session owns one graph and its view state.
//
// Loads are last-request-wins: starting a load cancels the one in flight, and
// a load that finishes after a newer one started is discarded with
// ErrSuperseded. Parsing happens before the graph is touched, so a failed load
// leaves the session unchanged.
//
// Change listeners run with the session locked and must not call back into it.
type Session struct {
	mu sync.Mutex

	store    *graph.Store
	assigner *color.Assigner
	engine   *view.Engine

	generation uint64
	cancel     context.CancelFunc

	changeListeners []func(view.View)
	loadListeners   []func(Result)
}

// New returns a session with an empty graph.
func New() *Session {
	store := graph.NewStore()
	return &Session{
		store:    store,
		assigner: color.NewAssigner(),
		engine:   view.NewEngine(store),
	}
}

// OnChange registers fn to receive every recomputed view.
func (s *Session) OnChange(fn func(view.View)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changeListeners = append(s.changeListeners, fn)
}

// OnLoad registers fn to receive the result of every load, failed or not.
func (s *Session) OnLoad(fn func(Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadListeners = append(s.loadListeners, fn)
}

// LoadOntology replaces the graph with the classes and attribute properties
// declared in text and installs them as the schema.
func (s *Session) LoadOntology(ctx context.Context, text string, format ingest.Format) (Result, error) {
	return s.Load(ctx, Request{Operation: OpOntology, Text: text, Format: format})
}

// LoadDataset replaces the graph with a standalone dataset. The schema is
// cleared.
func (s *Session) LoadDataset(ctx context.Context, text string, format ingest.Format) (Result, error) {
	return s.Load(ctx, Request{Operation: OpDataset, Text: text, Format: format})
}

// MergeInstances merges an instance dump into the current graph. It fails
// with ingest.ErrMissingSchema when no ontology has been loaded.
func (s *Session) MergeInstances(ctx context.Context, text string, format ingest.Format, opts MergeOptions) (Result, error) {
	return s.Load(ctx, Request{Operation: OpInstances, Text: text, Format: format, PreserveView: opts.PreserveView})
}

// Load runs req to completion.
func (s *Session) Load(ctx context.Context, req Request) (Result, error) {
	res := <-s.Submit(ctx, req)
	return res, res.Err
}

// Submit starts req in the background and returns a channel that receives
// exactly one Result.
func (s *Session) Submit(ctx context.Context, req Request) <-chan Result {
	out := make(chan Result, 1)

	res := Result{Operation: req.Operation, Source: req.Source}
	id, err := gonanoid.New()
	if err != nil {
		res.Err = fmt.Errorf("failed to generate request id: %w", err)
		s.deliver(out, res)
		return out
	}
	res.ID = id

	req, err = resolve(req)
	if err != nil {
		res.Err = err
		s.deliver(out, res)
		return out
	}

	gen, loadCtx, schema, err := s.begin(ctx, req.Operation)
	if err != nil {
		res.Err = err
		s.deliver(out, res)
		return out
	}
	res.Generation = gen

	logger.Debug("[Session] Load started", "id", id, "operation", req.Operation, "source", req.Source, "generation", gen)

	go func() {
		s.deliver(out, s.finish(loadCtx, req, schema, res))
	}()
	return out
}

func resolve(req Request) (Request, error) {
	if _, err := ParseOperation(string(req.Operation)); err != nil {
		return req, err
	}
	if req.Format == "" {
		format, err := ingest.FormatFromPath(req.Source)
		if err != nil {
			return req, err
		}
		req.Format = format
	}
	return req, nil
}

// begin claims a new generation and cancels the load in flight.
func (s *Session) begin(parent context.Context, op Operation) (uint64, context.Context, *graph.SchemaIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if op == OpInstances && s.store.Schema().Empty() {
		return 0, nil, nil, ingest.ErrMissingSchema
	}

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.generation++

	return s.generation, ctx, s.store.Schema().Clone(), nil
}

func (s *Session) finish(ctx context.Context, req Request, schema *graph.SchemaIndex, res Result) Result {
	batch, newSchema, err := prepare(ctx, req, schema)

	s.mu.Lock()
	defer s.mu.Unlock()

	if res.Generation != s.generation {
		res.Err = ErrSuperseded
		return res
	}
	s.cancel()
	s.cancel = nil
	if err != nil {
		res.Err = err
		return res
	}

	switch req.Operation {
	case OpOntology:
		s.store.Replace(newSchema)
	case OpDataset:
		s.store.Replace(nil)
	}
	res.Report = s.store.Merge(batch)

	s.engine.Refresh(req.Operation == OpInstances && req.PreserveView)
	s.notifyLocked()
	res.Stats = s.statsLocked()
	return res
}

func prepare(ctx context.Context, req Request, schema *graph.SchemaIndex) (*graph.Batch, *graph.SchemaIndex, error) {
	stmts, err := ingest.DecodeString(ctx, req.Text, req.Format)
	if err != nil {
		return nil, nil, err
	}

	switch req.Operation {
	case OpOntology:
		batch, index := ingest.BuildSchema(stmts)
		return batch, index, nil
	case OpDataset:
		return ingest.BuildTriples(stmts), nil, nil
	default:
		batch, err := ingest.BuildInstances(stmts, schema)
		return batch, nil, err
	}
}

func (s *Session) deliver(out chan<- Result, res Result) {
	if res.Err != nil {
		logger.Error("[Session] Load failed", "id", res.ID, "operation", res.Operation, "source", res.Source, "err", res.Err)
	} else {
		logger.Info(
			"[Session] Load applied",
			"id", res.ID,
			"operation", res.Operation,
			"source", res.Source,
			"nodes_added", res.Report.NodesAdded,
			"edges_added", res.Report.EdgesAdded,
			"nodes", res.Stats.Nodes,
		)
		for _, w := range res.Report.Warnings {
			logger.Warn("[Session] Unknown term", "id", w.ID, "reason", w.Reason)
		}
	}

	s.mu.Lock()
	listeners := slices.Clone(s.loadListeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(res)
	}

	out <- res
	close(out)
}

// Reset shows the whole graph.
func (s *Session) Reset() view.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Reset()
	return s.notifyLocked()
}

// Search filters the view to label matches and their neighbors.
func (s *Session) Search(query string) view.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Search(query)
	return s.notifyLocked()
}

// Click focuses a node. It reports false, and changes nothing, when the node
// does not exist.
func (s *Session) Click(id string) (view.View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.engine.Click(id) {
		return s.engine.Render(s.assigner), false
	}
	return s.notifyLocked(), true
}

// SetAccumulate toggles accumulation for subsequent clicks.
func (s *Session) SetAccumulate(on bool) view.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetAccumulate(on)
	return s.notifyLocked()
}

// View renders the current state without changing it.
func (s *Session) View() view.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Render(s.assigner)
}

// ClipboardText returns the copy text for a node.
func (s *Session) ClipboardText(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ClipboardText(id)
}

// Stats summarizes the current graph.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

// Snapshot returns a deep copy of the current graph.
func (s *Session) Snapshot() *graph.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Clone()
}

func (s *Session) statsLocked() Stats {
	schema := s.store.Schema()
	return Stats{
		Nodes:      s.store.Len(),
		Edges:      s.store.EdgeCount(),
		Classes:    len(schema.Classes()),
		Attributes: len(schema.Attributes()),
		Visible:    len(s.engine.Visible()),
		Colors:     len(s.assigner.Assigned()),
		Generation: s.generation,
	}
}

func (s *Session) notifyLocked() view.View {
	v := s.engine.Render(s.assigner)
	for _, fn := range s.changeListeners {
		fn(v)
	}
	return v
}
