package graph

// Batch is the set of candidate nodes and edges produced by one ingestion,
// ready to be merged into a Store. Nodes and edges are deduplicated inside the
// batch while preserving first-seen order.
type Batch struct {
	Nodes       []Node
	Edges       []Edge
	Memberships map[string]string
	TypeHints   map[string]string
	Warnings    []UnknownTermWarning

	nodeIndex map[string]int
	edgeKeys  map[EdgeKey]struct{}
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{
		Memberships: make(map[string]string),
		TypeHints:   make(map[string]string),
		nodeIndex:   make(map[string]int),
		edgeKeys:    make(map[EdgeKey]struct{}),
	}
}

// AddNode adds a candidate node. A node seen twice keeps its first label and
// title; its kind can only be refined away from KindUnknown.
func (b *Batch) AddNode(n Node) {
	if idx, ok := b.nodeIndex[n.ID]; ok {
		b.Nodes[idx].Kind = refine(b.Nodes[idx].Kind, n.Kind)
		return
	}
	b.nodeIndex[n.ID] = len(b.Nodes)
	b.Nodes = append(b.Nodes, n)
}

// AddEdge adds a candidate edge unless an identical one is already present.
func (b *Batch) AddEdge(e Edge) {
	key := e.Key()
	if _, ok := b.edgeKeys[key]; ok {
		return
	}
	b.edgeKeys[key] = struct{}{}
	b.Edges = append(b.Edges, e)
}

// SetMembership records that instance belongs to class.
func (b *Batch) SetMembership(instance, class string) {
	b.Memberships[instance] = class
}

// SetTypeHint records a declared type used only for styling.
func (b *Batch) SetTypeHint(subject, typeID string) {
	b.TypeHints[subject] = typeID
}

// Warn records a non-fatal classification problem.
func (b *Batch) Warn(id, reason string) {
	b.Warnings = append(b.Warnings, UnknownTermWarning{ID: id, Reason: reason})
}

// Node returns the candidate node with the given ID.
func (b *Batch) Node(id string) (Node, bool) {
	idx, ok := b.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return b.Nodes[idx], true
}
