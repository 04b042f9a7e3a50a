package match

import "inciq/pkg/normalize"

// GraphMultiplier derives a density-based adjustment from the matched
// entries. Every matched entry's INCI set forms a clique over the query
// nodes; the union of those cliques is compared against the complete graph
// on the query. The multiplier stays inside [0.7, 1.0] so sparse evidence
// dampens but never erases the rule-based confidence.
func GraphMultiplier(query []normalize.Name, matched []ScoredMatch) float64 {
	if len(query) < 2 {
		return minMultiplier
	}

	type pair struct{ a, b string }
	edges := make(map[pair]struct{})
	for _, m := range matched {
		for i := 0; i < len(m.keys); i++ {
			for j := i + 1; j < len(m.keys); j++ {
				a, b := m.keys[i], m.keys[j]
				if b < a {
					a, b = b, a
				}
				edges[pair{a, b}] = struct{}{}
			}
		}
	}

	n := len(query)
	possible := float64(n*(n-1)) / 2
	density := float64(len(edges)) / possible

	mult := minMultiplier + densityWeight*density
	if mult < minMultiplier {
		mult = minMultiplier
	}
	if mult > 1.0 {
		mult = 1.0
	}
	return round3(mult)
}

const (
	minMultiplier = 0.7
	densityWeight = 0.3
)

// Aggregate folds the per-match confidences and the graph multiplier into a
// single overall score, clamped to [0, 1].
func Aggregate(matched []ScoredMatch, multiplier float64) float64 {
	sum := 0.0
	for _, m := range matched {
		sum += m.Confidence
	}
	n := len(matched)
	if n < 1 {
		n = 1
	}
	overall := (sum / float64(n)) * multiplier
	if overall > 1.0 {
		overall = 1.0
	}
	return round3(overall)
}
