// Package eval provides the ranking metrics used to evaluate candidate
// predictions against known-good formulations: AP@K, NDCG@K with binary
// relevance, and Recall@K, each with a batch mean variant.
package eval

import "math"

// Truth is the set of relevant ids for one query.
type Truth map[string]struct{}

// NewTruth builds a Truth set from a list of ids.
func NewTruth(ids ...string) Truth {
	t := make(Truth, len(ids))
	for _, id := range ids {
		t[id] = struct{}{}
	}
	return t
}

// AveragePrecisionAtK computes AP@K for a single query. An empty truth set
// scores zero.
func AveragePrecisionAtK(pred []string, truth Truth, k int) float64 {
	if len(truth) == 0 {
		return 0
	}
	if len(pred) > k {
		pred = pred[:k]
	}

	hits := 0
	score := 0.0
	for i, id := range pred {
		if _, ok := truth[id]; ok {
			hits++
			score += float64(hits) / float64(i+1)
		}
	}

	denom := len(truth)
	if k < denom {
		denom = k
	}
	return score / float64(denom)
}

// MeanAveragePrecisionAtK averages AP@K across aligned prediction and truth
// batches.
func MeanAveragePrecisionAtK(preds [][]string, truths []Truth, k int) float64 {
	return batchMean(preds, truths, k, AveragePrecisionAtK)
}

// NDCGAtK computes binary-relevance NDCG@K for a single query. The ideal
// ranking places every relevant id first, so the normalizer is the DCG of
// min(|truth|, k) consecutive hits.
func NDCGAtK(pred []string, truth Truth, k int) float64 {
	relevant := len(truth)
	if k < relevant {
		relevant = k
	}
	ideal := 0.0
	for i := 1; i <= relevant; i++ {
		ideal += 1 / math.Log2(float64(i)+1)
	}
	if ideal == 0 {
		return 0
	}

	if len(pred) > k {
		pred = pred[:k]
	}
	dcg := 0.0
	for i, id := range pred {
		if _, ok := truth[id]; ok {
			dcg += 1 / math.Log2(float64(i)+2)
		}
	}
	return dcg / ideal
}

// MeanNDCGAtK averages NDCG@K across aligned batches.
func MeanNDCGAtK(preds [][]string, truths []Truth, k int) float64 {
	return batchMean(preds, truths, k, NDCGAtK)
}

// RecallAtK computes the fraction of the truth set retrieved within the
// first K predictions. An empty truth set scores zero.
func RecallAtK(pred []string, truth Truth, k int) float64 {
	if len(truth) == 0 {
		return 0
	}
	if len(pred) > k {
		pred = pred[:k]
	}

	hits := 0
	for _, id := range pred {
		if _, ok := truth[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(truth))
}

// MeanRecallAtK averages Recall@K across aligned batches.
func MeanRecallAtK(preds [][]string, truths []Truth, k int) float64 {
	return batchMean(preds, truths, k, RecallAtK)
}

func batchMean(preds [][]string, truths []Truth, k int, metric func([]string, Truth, int) float64) float64 {
	n := len(preds)
	if len(truths) < n {
		n = len(truths)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += metric(preds[i], truths[i], k)
	}
	if n < 1 {
		n = 1
	}
	return sum / float64(n)
}
