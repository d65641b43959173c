package graph

// MergeReport summarizes what a merge changed.
type MergeReport struct {
	NodesAdded   int                  `json:"nodes_added"`
	NodesRefined int                  `json:"nodes_refined"`
	EdgesAdded   int                  `json:"edges_added"`
	Warnings     []UnknownTermWarning `json:"warnings,omitempty"`
}

// Changed reports whether the merge touched the graph at all.
func (r MergeReport) Changed() bool {
	return r.NodesAdded > 0 || r.NodesRefined > 0 || r.EdgesAdded > 0
}

// Merge folds a batch into the store.
//
// Nodes are inserted only when their ID is absent. An existing node keeps its
// label and title; its kind may be refined from KindUnknown but is never
// changed otherwise. Edges are inserted only when their (from, to, label) key
// is absent, and a missing endpoint is inserted as an unknown node first.
// Merging the same batch twice leaves the second merge a no-op.
func (s *Store) Merge(b *Batch) MergeReport {
	var report MergeReport
	if b == nil {
		return report
	}

	for _, n := range b.Nodes {
		idx, ok := s.nodeIndex[n.ID]
		if !ok {
			s.insertNode(n)
			report.NodesAdded++
			continue
		}
		if k := refine(s.nodes[idx].Kind, n.Kind); k != s.nodes[idx].Kind {
			s.nodes[idx].Kind = k
			report.NodesRefined++
		}
	}

	for _, e := range b.Edges {
		key := e.Key()
		if _, ok := s.edgeKeys[key]; ok {
			continue
		}
		for _, id := range []string{e.From, e.To} {
			if !s.Has(id) {
				s.insertNode(placeholder(id))
				report.NodesAdded++
			}
		}
		s.edgeKeys[key] = struct{}{}
		s.edges = append(s.edges, e)
		s.link(e.From, e.To)
		report.EdgesAdded++
	}

	for instance, class := range b.Memberships {
		s.memberships[instance] = class
		s.typeTargets[class] = struct{}{}
	}
	for subject, t := range b.TypeHints {
		if _, ok := s.typeHints[subject]; !ok {
			s.typeHints[subject] = t
		}
		s.typeTargets[t] = struct{}{}
	}

	report.Warnings = append(report.Warnings, b.Warnings...)
	return report
}
