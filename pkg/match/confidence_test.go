package match

import (
	"testing"

	"inciq/pkg/normalize"
)

func TestGraphMultiplierBounds(t *testing.T) {
	tests := []struct {
		name    string
		query   []string
		matched []ScoredMatch
		want    float64
	}{
		{
			name:  "no matches floors at minimum",
			query: []string{"Aqua", "Glycerin", "Squalane"},
			want:  0.7,
		},
		{
			name:  "single node has no density",
			query: []string{"Aqua"},
			want:  0.7,
		},
		{
			name:  "fully connected pair saturates",
			query: []string{"Aqua", "Glycerin"},
			matched: []ScoredMatch{
				{keys: []string{"aqua", "glycerin"}},
			},
			want: 1.0,
		},
		{
			name:  "partial clique over three nodes",
			query: []string{"Aqua", "Glycerin", "Squalane"},
			matched: []ScoredMatch{
				{keys: []string{"aqua", "glycerin"}},
			},
			// 1 edge of 3 possible: 0.7 + 0.3/3
			want: 0.8,
		},
		{
			name:  "overlapping cliques dedupe edges",
			query: []string{"Aqua", "Glycerin", "Squalane"},
			matched: []ScoredMatch{
				{keys: []string{"aqua", "glycerin"}},
				{keys: []string{"glycerin", "aqua"}},
			},
			want: 0.8,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := GraphMultiplier(normalize.List(tc.query), tc.matched)
			if got != tc.want {
				t.Errorf("GraphMultiplier() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name       string
		matched    []ScoredMatch
		multiplier float64
		want       float64
	}{
		{
			name:       "no matches yields zero",
			multiplier: 1.0,
			want:       0,
		},
		{
			name: "mean of confidences scaled by multiplier",
			matched: []ScoredMatch{
				{Confidence: 0.567},
				{Confidence: 0.9},
			},
			multiplier: 0.8,
			// (1.467/2)*0.8
			want: 0.587,
		},
		{
			name: "clamped to one",
			matched: []ScoredMatch{
				{Confidence: 1.0},
				{Confidence: 1.0},
			},
			multiplier: 1.0,
			want:       1.0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Aggregate(tc.matched, tc.multiplier)
			if got != tc.want {
				t.Errorf("Aggregate() = %v, want %v", got, tc.want)
			}
		})
	}
}
