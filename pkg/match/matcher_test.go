package match

import (
	"testing"

	"inciq/pkg/normalize"
	"inciq/pkg/store"
)

func ingredient(id, name string) store.Ingredient {
	return store.Ingredient{ID: id, Name: name, NameNormalized: normalize.Normalize(name)}
}

func TestBuildCatalogSkipsDanglingRefs(t *testing.T) {
	ingredients := []store.Ingredient{
		ingredient("1", "Aqua"),
		ingredient("2", "Glycerin"),
	}
	branded := []store.BrandedIngredient{
		{ID: "10", Name: "Hydro Base", INCIIDs: []string{"1", "2", "404"}},
	}

	catalog := BuildCatalog(branded, ingredients)
	if len(catalog) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(catalog))
	}
	if got := len(catalog[0].INCIKeys); got != 2 {
		t.Fatalf("expected dangling ref dropped, got keys %v", catalog[0].INCIKeys)
	}
}

func TestMatchSubsetWithGenericOverlap(t *testing.T) {
	query := normalize.List([]string{"Aqua", "Glycerin", "Phenoxyethanol"})
	ingredients := []store.Ingredient{
		ingredient("1", "Aqua"),
		ingredient("2", "Glycerin"),
	}
	branded := []store.BrandedIngredient{
		{ID: "10", Name: "Hydro Base", INCIIDs: []string{"1", "2"}},
	}

	res := Match(query, BuildCatalog(branded, ingredients))

	if len(res.Matched) != 1 {
		t.Fatalf("expected 1 match, got %d", len(res.Matched))
	}
	m := res.Matched[0]
	if m.Proximity != 0.667 {
		t.Errorf("proximity = %v, want 0.667", m.Proximity)
	}
	if m.Rarity != 0.85 {
		t.Errorf("rarity = %v, want 0.85", m.Rarity)
	}
	if m.Confidence != 0.567 {
		t.Errorf("confidence = %v, want 0.567", m.Confidence)
	}
	if len(res.Unmatched) != 1 || res.Unmatched[0] != "Phenoxyethanol" {
		t.Errorf("unmatched = %v, want [Phenoxyethanol]", res.Unmatched)
	}
}

func TestMatchRequiresFullSubset(t *testing.T) {
	query := normalize.List([]string{"Niacinamide"})
	ingredients := []store.Ingredient{
		ingredient("1", "Niacinamide"),
		ingredient("2", "Zinc PCA"),
	}
	branded := []store.BrandedIngredient{
		{ID: "10", Name: "Zincidone", INCIIDs: []string{"1", "2"}},
	}

	res := Match(query, BuildCatalog(branded, ingredients))
	if len(res.Matched) != 0 {
		t.Fatalf("partial overlap must not match, got %v", res.Matched)
	}
	if len(res.Unmatched) != 1 {
		t.Fatalf("unmatched = %v, want the full query", res.Unmatched)
	}
}

func TestMatchEmptySetNeverMatches(t *testing.T) {
	query := normalize.List([]string{"Aqua"})
	branded := []store.BrandedIngredient{
		{ID: "10", Name: "Phantom Complex"},
	}

	res := Match(query, BuildCatalog(branded, nil))
	if len(res.Matched) != 0 {
		t.Fatalf("empty INCI set matched: %v", res.Matched)
	}
}

func TestMatchSingleConstituentDefaultProximity(t *testing.T) {
	query := normalize.List([]string{"Niacinamide", "Squalane"})
	ingredients := []store.Ingredient{ingredient("1", "Squalane")}
	branded := []store.BrandedIngredient{
		{ID: "10", Name: "Neossance Squalane", INCIIDs: []string{"1"}},
	}

	res := Match(query, BuildCatalog(branded, ingredients))
	if len(res.Matched) != 1 {
		t.Fatalf("expected 1 match, got %d", len(res.Matched))
	}
	m := res.Matched[0]
	if m.Proximity != 0.6 {
		t.Errorf("proximity = %v, want default 0.6", m.Proximity)
	}
	if m.Rarity != 1.0 {
		t.Errorf("rarity = %v, want 1.0", m.Rarity)
	}
	if m.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", m.Confidence)
	}
}

func TestMatchConflictAcrossProducts(t *testing.T) {
	query := normalize.List([]string{"Niacinamide"})
	ingredients := []store.Ingredient{ingredient("1", "Niacinamide")}
	branded := []store.BrandedIngredient{
		{ID: "10", Name: "NiaPure", INCIIDs: []string{"1"}},
		{ID: "11", Name: "VitaB3 Complex", INCIIDs: []string{"1"}},
	}

	res := Match(query, BuildCatalog(branded, ingredients))
	if len(res.Matched) != 2 {
		t.Fatalf("expected both products to match, got %d", len(res.Matched))
	}
	if len(res.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %v", res.Conflicts)
	}
	c := res.Conflicts[0]
	if c.INCIName != "Niacinamide" {
		t.Errorf("conflict name = %q", c.INCIName)
	}
	if len(c.PossibleProducts) != 2 || c.PossibleProducts[0] != "NiaPure" || c.PossibleProducts[1] != "VitaB3 Complex" {
		t.Errorf("conflict products = %v", c.PossibleProducts)
	}
	if len(res.Unmatched) != 0 {
		t.Errorf("unmatched = %v, want none", res.Unmatched)
	}
}
