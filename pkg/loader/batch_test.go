package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomasH60/semantic-blockchain/pkg/explorer"
)

type mapLoader map[string]string

func (m mapLoader) GetFileText(ctx context.Context, file SourceFile) ([]byte, error) {
	text, ok := m[file.Path]
	if !ok {
		return nil, errors.New("not found: " + file.Path)
	}
	return []byte(text), nil
}

const batchOntology = `<http://ex.org/Person> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .
`

const batchInstances = `<http://ex.org/alice> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://ex.org/Person> .
`

func steps(t *testing.T, l SourceLoader, paths map[string]explorer.Operation, order ...string) []Step {
	t.Helper()
	var out []Step
	for _, p := range order {
		f, err := NewSourceFile(NewSourceFileParams{Path: p, Loader: l})
		require.NoError(t, err)
		out = append(out, Step{File: f, Operation: paths[p]})
	}
	return out
}

func TestApplyAllAppliesInOrder(t *testing.T) {
	l := mapLoader{"onto.nt": batchOntology, "inst.nt": batchInstances}
	ops := map[string]explorer.Operation{"onto.nt": explorer.OpOntology, "inst.nt": explorer.OpInstances}
	session := explorer.New()

	results, err := ApplyAll(context.Background(), session, steps(t, l, ops, "onto.nt", "inst.nt"), 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, explorer.OpOntology, results[0].Operation)
	assert.Equal(t, explorer.OpInstances, results[1].Operation)
	assert.Equal(t, 1, session.Stats().Classes)
}

func TestApplyAllFetchFailureLeavesSessionUntouched(t *testing.T) {
	l := mapLoader{"onto.nt": batchOntology}
	ops := map[string]explorer.Operation{"onto.nt": explorer.OpOntology, "missing.nt": explorer.OpInstances}
	session := explorer.New()

	results, err := ApplyAll(context.Background(), session, steps(t, l, ops, "onto.nt", "missing.nt"), 0)
	require.Error(t, err)
	assert.Empty(t, results)
	assert.Zero(t, session.Stats().Nodes)
}
