package rank

import (
	"context"
	"sort"

	"inciq/pkg/knowledge"
	"inciq/pkg/logger"
)

// RankedCandidate is one scored branded candidate.
type RankedCandidate struct {
	Ref      knowledge.NodeRef
	Name     string
	Score    float64
	Features FeatureVector
}

// Rank scores the candidates against the query and returns the top k in
// descending score order. When the scorer errors or returns a batch of the
// wrong length, the heuristic baseline scores the batch instead so a flaky
// external model never fails the request.
func Rank(ctx context.Context, g *knowledge.Graph, query []knowledge.NodeRef, candidates []knowledge.NodeRef, topK int, scorer Scorer) []RankedCandidate {
	if len(candidates) == 0 {
		return nil
	}

	batch := make([]FeatureVector, len(candidates))
	for i, ref := range candidates {
		batch[i] = Features(g, query, ref)
	}

	if scorer == nil {
		scorer = HeuristicScorer{}
	}
	scores, err := scorer.Score(ctx, batch)
	if err != nil || len(scores) != len(batch) {
		if err != nil {
			logger.Warn("scorer failed, falling back to heuristic", "error", err)
		} else {
			logger.Warn("scorer returned wrong batch size, falling back to heuristic",
				"got", len(scores), "want", len(batch))
		}
		scores, _ = HeuristicScorer{}.Score(ctx, batch)
	}

	ranked := make([]RankedCandidate, len(candidates))
	for i, ref := range candidates {
		name := ""
		if node, ok := g.Node(ref); ok {
			name = node.Name
		}
		ranked[i] = RankedCandidate{Ref: ref, Name: name, Score: scores[i], Features: batch[i]}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}
