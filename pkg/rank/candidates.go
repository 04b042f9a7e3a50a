// Package rank retrieves branded candidates from the knowledge graph for a
// matched query, extracts per-candidate feature vectors and scores them with
// a pluggable scorer, falling back to the built-in heuristic when an
// external scorer fails.
package rank

import (
	"sort"

	"inciq/pkg/knowledge"
)

// Candidates returns the deduplicated one-hop neighborhood of the query:
// every branded node reachable from a query ingredient over a contains edge.
// The result is sorted by node id so equal-scored candidates rank
// deterministically.
func Candidates(g *knowledge.Graph, query []knowledge.NodeRef) []knowledge.NodeRef {
	seen := make(map[knowledge.NodeRef]struct{})
	var out []knowledge.NodeRef

	for _, ref := range query {
		for _, branded := range g.Outgoing(ref, knowledge.EdgeContains) {
			if _, ok := seen[branded]; ok {
				continue
			}
			seen[branded] = struct{}{}
			out = append(out, branded)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
