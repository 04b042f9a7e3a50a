package rank

import "context"

// Scorer scores a batch of candidate feature vectors. Implementations must
// return exactly one score per input vector.
type Scorer interface {
	Score(ctx context.Context, batch []FeatureVector) ([]float64, error)
}

// HeuristicScorer is the built-in graph-overlap baseline: the fraction of a
// candidate's constituents covered by the query. It needs no training and
// never fails, which also makes it the fallback when an external scorer is
// unreachable.
type HeuristicScorer struct{}

func (HeuristicScorer) Score(_ context.Context, batch []FeatureVector) ([]float64, error) {
	scores := make([]float64, len(batch))
	for i, f := range batch {
		total := f.BrandedINCITotal
		if total < 1 {
			total = 1
		}
		scores[i] = float64(f.OverlapCount) / float64(total)
	}
	return scores, nil
}
