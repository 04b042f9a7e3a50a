// Package knowledge holds the in-memory catalog graph: a typed directed
// multigraph over ingredient, branded, supplier and category entities, built
// from a store snapshot. A built graph is immutable; rebuilds produce a new
// instance that atomically replaces the old one (see Provider).
package knowledge

import (
	"time"

	"inciq/pkg/logger"
	"inciq/pkg/normalize"
	"inciq/pkg/store"
)

type Kind string

const (
	KindIngredient Kind = "ingredient"
	KindBranded    Kind = "branded"
	KindSupplier   Kind = "supplier"
	KindFunc       Kind = "func"
	KindChem       Kind = "chem"
)

type EdgeKind string

const (
	EdgeContains    EdgeKind = "contains"
	EdgeSuppliedBy  EdgeKind = "supplied_by"
	EdgeHasFunction EdgeKind = "has_function"
	EdgeHasClass    EdgeKind = "has_class"
	EdgeParentOf    EdgeKind = "parent_of"
)

// NodeRef identifies a node by entity kind and store id.
type NodeRef struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// Node carries the display attributes of a graph node. Level and ParentID
// are only set for category nodes.
type Node struct {
	Ref      NodeRef
	Name     string
	Level    int
	ParentID string
}

// Stats summarizes a built graph for the debug endpoint.
type Stats struct {
	Nodes   map[string]int `json:"nodes"`
	Edges   map[string]int `json:"edges"`
	BuiltAt time.Time      `json:"built_at"`
}

// Graph is the immutable multigraph. All lookups are read-only and safe for
// concurrent use without locking.
type Graph struct {
	nodes map[NodeRef]Node
	out   map[NodeRef]map[EdgeKind][]NodeRef
	in    map[NodeRef]map[EdgeKind][]NodeRef

	// ingredientsByKey maps normalized ingredient names to their nodes.
	ingredientsByKey map[string]NodeRef

	edgeCounts map[EdgeKind]int
	builtAt    time.Time
}

// Build constructs a graph from a point-in-time catalog snapshot.
// References to nonexistent ids are skipped, never inserted: partially
// cleaned source data must not produce dangling edges. Category parent
// links that form a cycle are dropped and logged as a data error.
func Build(snap store.Snapshot) *Graph {
	g := &Graph{
		nodes:            make(map[NodeRef]Node),
		out:              make(map[NodeRef]map[EdgeKind][]NodeRef),
		in:               make(map[NodeRef]map[EdgeKind][]NodeRef),
		ingredientsByKey: make(map[string]NodeRef, len(snap.Ingredients)),
		edgeCounts:       make(map[EdgeKind]int),
		builtAt:          time.Now(),
	}

	for _, ing := range snap.Ingredients {
		ref := NodeRef{Kind: KindIngredient, ID: ing.ID}
		g.nodes[ref] = Node{Ref: ref, Name: ing.Name}

		key := ing.NameNormalized
		if key == "" {
			key = normalize.Normalize(ing.Name)
		}
		if key != "" {
			g.ingredientsByKey[key] = ref
		}
	}

	for _, b := range snap.Branded {
		ref := NodeRef{Kind: KindBranded, ID: b.ID}
		g.nodes[ref] = Node{Ref: ref, Name: b.Name}
	}

	for _, sup := range snap.Suppliers {
		ref := NodeRef{Kind: KindSupplier, ID: sup.ID}
		g.nodes[ref] = Node{Ref: ref, Name: sup.Name}
	}

	for _, cat := range snap.FunctionalCategories {
		ref := NodeRef{Kind: KindFunc, ID: cat.ID}
		g.nodes[ref] = Node{Ref: ref, Name: cat.Name, Level: cat.Level, ParentID: cat.ParentID}
	}
	for _, cat := range snap.ChemicalClasses {
		ref := NodeRef{Kind: KindChem, ID: cat.ID}
		g.nodes[ref] = Node{Ref: ref, Name: cat.Name, Level: cat.Level, ParentID: cat.ParentID}
	}

	for _, b := range snap.Branded {
		bref := NodeRef{Kind: KindBranded, ID: b.ID}
		for _, iid := range b.INCIIDs {
			g.addEdge(NodeRef{Kind: KindIngredient, ID: iid}, bref, EdgeContains)
		}
		if b.SupplierID != "" {
			g.addEdge(bref, NodeRef{Kind: KindSupplier, ID: b.SupplierID}, EdgeSuppliedBy)
		}
		for _, fid := range b.FunctionalCategoryIDs {
			g.addEdge(bref, NodeRef{Kind: KindFunc, ID: fid}, EdgeHasFunction)
		}
		for _, cid := range b.ChemicalClassIDs {
			g.addEdge(bref, NodeRef{Kind: KindChem, ID: cid}, EdgeHasClass)
		}
	}

	g.addParentEdges(KindFunc, snap.FunctionalCategories)
	g.addParentEdges(KindChem, snap.ChemicalClasses)

	return g
}

// addEdge inserts an edge when both endpoints exist; anything else is a
// dangling reference and is dropped.
func (g *Graph) addEdge(from, to NodeRef, kind EdgeKind) {
	if _, ok := g.nodes[from]; !ok {
		return
	}
	if _, ok := g.nodes[to]; !ok {
		return
	}

	if g.out[from] == nil {
		g.out[from] = make(map[EdgeKind][]NodeRef)
	}
	g.out[from][kind] = append(g.out[from][kind], to)

	if g.in[to] == nil {
		g.in[to] = make(map[EdgeKind][]NodeRef)
	}
	g.in[to][kind] = append(g.in[to][kind], from)

	g.edgeCounts[kind]++
}

// addParentEdges emits parent_of edges within one category namespace. The
// source data does not guard against parent links forming a cycle, so every
// chain is walked with a visited set first; members of a cycle keep their
// nodes but lose the parent edge.
func (g *Graph) addParentEdges(kind Kind, cats []store.Category) {
	parents := make(map[string]string, len(cats))
	for _, cat := range cats {
		if cat.ParentID != "" {
			parents[cat.ID] = cat.ParentID
		}
	}

	// A category is cyclic when following parent links leads back to itself.
	// Chains that merely pass through someone else's cycle keep their own
	// parent link; the walk is bounded by the visited set either way.
	cyclic := make(map[string]bool)
	for id := range parents {
		visited := map[string]bool{id: true}
		cur := id
		for {
			next, ok := parents[cur]
			if !ok {
				break
			}
			if next == id {
				cyclic[id] = true
				logger.Error("Category parent chain forms a cycle, dropping parent link",
					"kind", string(kind), "id", id)
				break
			}
			if visited[next] {
				break
			}
			visited[next] = true
			cur = next
		}
	}

	for _, cat := range cats {
		if cat.ParentID == "" || cyclic[cat.ID] {
			continue
		}
		g.addEdge(NodeRef{Kind: kind, ID: cat.ParentID}, NodeRef{Kind: kind, ID: cat.ID}, EdgeParentOf)
	}
}

// Exists reports whether the node is part of the graph.
func (g *Graph) Exists(ref NodeRef) bool {
	_, ok := g.nodes[ref]
	return ok
}

// Node returns the node's attributes.
func (g *Graph) Node(ref NodeRef) (Node, bool) {
	n, ok := g.nodes[ref]
	return n, ok
}

// Outgoing returns the targets of the node's outgoing edges of one kind.
func (g *Graph) Outgoing(ref NodeRef, kind EdgeKind) []NodeRef {
	return g.out[ref][kind]
}

// Incoming returns the sources of the node's incoming edges of one kind.
func (g *Graph) Incoming(ref NodeRef, kind EdgeKind) []NodeRef {
	return g.in[ref][kind]
}

// ResolveIngredient looks up an ingredient node by normalized name.
func (g *Graph) ResolveIngredient(key string) (NodeRef, bool) {
	ref, ok := g.ingredientsByKey[key]
	return ref, ok
}

// Stats returns node and edge counts by kind.
func (g *Graph) Stats() Stats {
	s := Stats{
		Nodes:   make(map[string]int),
		Edges:   make(map[string]int),
		BuiltAt: g.builtAt,
	}
	for ref := range g.nodes {
		s.Nodes[string(ref.Kind)]++
	}
	for kind, count := range g.edgeCounts {
		s.Edges[string(kind)] = count
	}
	return s
}
