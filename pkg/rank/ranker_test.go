package rank

import (
	"context"
	"errors"
	"testing"

	"inciq/pkg/knowledge"
	"inciq/pkg/normalize"
	"inciq/pkg/store"
)

func rankGraph(t *testing.T) *knowledge.Graph {
	t.Helper()
	snap := store.Snapshot{
		Ingredients: []store.Ingredient{
			{ID: "1", Name: "Aqua", NameNormalized: normalize.Normalize("Aqua")},
			{ID: "2", Name: "Glycerin", NameNormalized: normalize.Normalize("Glycerin")},
			{ID: "3", Name: "Squalane", NameNormalized: normalize.Normalize("Squalane")},
		},
		Branded: []store.BrandedIngredient{
			{ID: "10", Name: "Hydro Base", INCIIDs: []string{"1", "2"}, SupplierID: "20", FunctionalCategoryIDs: []string{"30"}},
			{ID: "11", Name: "Pure Squalane", INCIIDs: []string{"3"}},
			{ID: "12", Name: "Everything Blend", INCIIDs: []string{"1", "2", "3"}},
		},
		Suppliers: []store.Supplier{
			{ID: "20", Name: "Aquatics GmbH"},
		},
		FunctionalCategories: []store.Category{
			{ID: "30", Name: "Humectant"},
		},
	}
	return knowledge.Build(snap)
}

func queryRefs(t *testing.T, g *knowledge.Graph, names ...string) []knowledge.NodeRef {
	t.Helper()
	refs := make([]knowledge.NodeRef, 0, len(names))
	for _, n := range names {
		ref, ok := g.ResolveIngredient(normalize.Normalize(n))
		if !ok {
			t.Fatalf("ingredient %q not in graph", n)
		}
		refs = append(refs, ref)
	}
	return refs
}

func TestCandidatesOneHopDeduplicated(t *testing.T) {
	g := rankGraph(t)
	query := queryRefs(t, g, "Aqua", "Glycerin")

	got := Candidates(g, query)
	if len(got) != 2 {
		t.Fatalf("candidates = %v, want 2", got)
	}
	// Sorted by node id for deterministic ties.
	if got[0].ID != "10" || got[1].ID != "12" {
		t.Errorf("candidate order = %v", got)
	}
}

func TestFeatures(t *testing.T) {
	g := rankGraph(t)
	query := queryRefs(t, g, "Aqua", "Glycerin")

	f := Features(g, query, knowledge.NodeRef{Kind: knowledge.KindBranded, ID: "10"})
	want := FeatureVector{OverlapCount: 2, BrandedINCITotal: 2, SupplierDegree: 1, FuncDegree: 1}
	if f != want {
		t.Errorf("Features() = %+v, want %+v", f, want)
	}

	f = Features(g, query, knowledge.NodeRef{Kind: knowledge.KindBranded, ID: "12"})
	if f.OverlapCount != 2 || f.BrandedINCITotal != 3 {
		t.Errorf("Features() = %+v, want overlap 2 of 3", f)
	}
}

func TestRankHeuristicOrder(t *testing.T) {
	g := rankGraph(t)
	query := queryRefs(t, g, "Aqua", "Glycerin")
	candidates := Candidates(g, query)

	ranked := Rank(context.Background(), g, query, candidates, 10, HeuristicScorer{})
	if len(ranked) != 2 {
		t.Fatalf("ranked = %v", ranked)
	}
	// Hydro Base covers 2/2, Everything Blend 2/3.
	if ranked[0].Name != "Hydro Base" || ranked[0].Score != 1.0 {
		t.Errorf("top candidate = %+v", ranked[0])
	}
	if ranked[1].Name != "Everything Blend" {
		t.Errorf("second candidate = %+v", ranked[1])
	}
}

func TestRankTruncatesToTopK(t *testing.T) {
	g := rankGraph(t)
	query := queryRefs(t, g, "Aqua", "Glycerin", "Squalane")
	candidates := Candidates(g, query)
	if len(candidates) != 3 {
		t.Fatalf("candidates = %v", candidates)
	}

	ranked := Rank(context.Background(), g, query, candidates, 1, HeuristicScorer{})
	if len(ranked) != 1 {
		t.Fatalf("ranked = %v, want 1 entry", ranked)
	}
}

type failingScorer struct{ err error }

func (f failingScorer) Score(context.Context, []FeatureVector) ([]float64, error) {
	return nil, f.err
}

type shortScorer struct{}

func (shortScorer) Score(context.Context, []FeatureVector) ([]float64, error) {
	return []float64{0.5}, nil
}

func TestRankFallsBackOnScorerFailure(t *testing.T) {
	g := rankGraph(t)
	query := queryRefs(t, g, "Aqua", "Glycerin")
	candidates := Candidates(g, query)

	for name, scorer := range map[string]Scorer{
		"error":          failingScorer{err: errors.New("connection refused")},
		"length mismatch": shortScorer{},
	} {
		t.Run(name, func(t *testing.T) {
			ranked := Rank(context.Background(), g, query, candidates, 10, scorer)
			if len(ranked) != 2 {
				t.Fatalf("ranked = %v", ranked)
			}
			if ranked[0].Score != 1.0 {
				t.Errorf("fallback score = %v, want heuristic 1.0", ranked[0].Score)
			}
		})
	}
}

func TestRankStableTies(t *testing.T) {
	g := rankGraph(t)
	query := queryRefs(t, g, "Squalane")
	candidates := Candidates(g, query)

	// Pure Squalane scores 1.0, Everything Blend 1/3; distinct here, but a
	// constant scorer forces a tie and the id order must hold.
	ranked := Rank(context.Background(), g, query, candidates, 10, constScorer{})
	if len(ranked) != 2 {
		t.Fatalf("ranked = %v", ranked)
	}
	if ranked[0].Ref.ID != "11" || ranked[1].Ref.ID != "12" {
		t.Errorf("tie order = %v, %v", ranked[0].Ref, ranked[1].Ref)
	}
}

type constScorer struct{}

func (constScorer) Score(_ context.Context, batch []FeatureVector) ([]float64, error) {
	return make([]float64, len(batch)), nil
}
