package eval

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAveragePrecisionAtK(t *testing.T) {
	tests := []struct {
		name  string
		pred  []string
		truth Truth
		k     int
		want  float64
	}{
		{
			name:  "single hit at rank two",
			pred:  []string{"A", "B", "C"},
			truth: NewTruth("B"),
			k:     3,
			want:  0.5,
		},
		{
			name:  "perfect ranking",
			pred:  []string{"A", "B"},
			truth: NewTruth("A", "B"),
			k:     2,
			want:  1.0,
		},
		{
			name:  "empty truth scores zero",
			pred:  []string{"A"},
			truth: NewTruth(),
			k:     3,
			want:  0,
		},
		{
			name:  "denominator capped at k",
			pred:  []string{"A"},
			truth: NewTruth("A", "B", "C"),
			k:     1,
			want:  1.0,
		},
		{
			name:  "no hits",
			pred:  []string{"X", "Y"},
			truth: NewTruth("A"),
			k:     2,
			want:  0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AveragePrecisionAtK(tc.pred, tc.truth, tc.k)
			if !almostEqual(got, tc.want) {
				t.Errorf("AP@%d = %v, want %v", tc.k, got, tc.want)
			}
		})
	}
}

func TestNDCGAtK(t *testing.T) {
	tests := []struct {
		name  string
		pred  []string
		truth Truth
		k     int
		want  float64
	}{
		{
			name:  "relevant first is ideal",
			pred:  []string{"A", "X"},
			truth: NewTruth("A"),
			k:     2,
			want:  1.0,
		},
		{
			name:  "relevant second is discounted",
			pred:  []string{"X", "A"},
			truth: NewTruth("A"),
			k:     2,
			want:  1 / math.Log2(3),
		},
		{
			name:  "empty truth scores zero",
			pred:  []string{"A"},
			truth: NewTruth(),
			k:     2,
			want:  0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NDCGAtK(tc.pred, tc.truth, tc.k)
			if !almostEqual(got, tc.want) {
				t.Errorf("NDCG@%d = %v, want %v", tc.k, got, tc.want)
			}
		})
	}
}

func TestRecallAtK(t *testing.T) {
	truth := NewTruth("A", "B")

	if got := RecallAtK([]string{"A", "X", "B"}, truth, 3); !almostEqual(got, 1.0) {
		t.Errorf("full recall = %v, want 1", got)
	}
	if got := RecallAtK([]string{"A", "X", "B"}, truth, 2); !almostEqual(got, 0.5) {
		t.Errorf("truncated recall = %v, want 0.5", got)
	}
	if got := RecallAtK([]string{"A"}, NewTruth(), 3); got != 0 {
		t.Errorf("empty truth recall = %v, want 0", got)
	}
}

func TestBatchMeans(t *testing.T) {
	preds := [][]string{
		{"A", "B", "C"},
		{"X", "Y"},
	}
	truths := []Truth{
		NewTruth("B"),
		NewTruth("Z"),
	}

	if got := MeanAveragePrecisionAtK(preds, truths, 3); !almostEqual(got, 0.25) {
		t.Errorf("MAP@3 = %v, want 0.25", got)
	}
	if got := MeanRecallAtK(preds, truths, 3); !almostEqual(got, 0.5) {
		t.Errorf("mean recall = %v, want 0.5", got)
	}
	if got := MeanNDCGAtK(nil, nil, 3); got != 0 {
		t.Errorf("empty batch mean = %v, want 0", got)
	}
}
