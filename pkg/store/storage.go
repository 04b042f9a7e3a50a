// Package store defines the catalog document-store contract consumed by the
// matching engine. The engine only reads through this interface; writes exist
// for the catalog import pipeline. Backends live in subpackages (pgx for
// Postgres, memory for tests).
package store

import "context"

// Ingredient is one INCI record. NameNormalized is the canonical lookup key
// maintained by the backend on write.
type Ingredient struct {
	ID             string
	Name           string
	NameNormalized string

	// Optional enrichment hints, empty when unknown.
	CommonUse string
	Category  string
}

// BrandedIngredient is a supplier's proprietary blend declared as a fixed
// set of INCI references. Reference slices may point at records that no
// longer exist; readers are expected to skip dangling ids.
type BrandedIngredient struct {
	ID               string
	Name             string
	OriginalINCIName string
	INCIIDs          []string

	// SupplierID is empty when the supplier is unknown.
	SupplierID string

	FunctionalCategoryIDs []string
	ChemicalClassIDs      []string
	Description           string
	DocumentIDs           []string
}

// Supplier names the company behind one or more branded ingredients.
type Supplier struct {
	ID   string
	Name string
}

// Category is a node in the functional-category or chemical-class tree.
// ParentID is empty for roots; a category has at most one parent.
type Category struct {
	ID       string
	Name     string
	Level    int
	ParentID string
}

// Document is an external reference attached to a branded ingredient.
type Document struct {
	ID    string
	Key   string
	Title string
	URL   string
}

// Snapshot is a point-in-time read of every catalog collection, used to
// build the knowledge graph.
type Snapshot struct {
	Ingredients          []Ingredient
	Branded              []BrandedIngredient
	Suppliers            []Supplier
	FunctionalCategories []Category
	ChemicalClasses      []Category
}

// CatalogStore is the document-store contract. List methods read a whole
// collection, Find methods read by filter, Upsert methods implement
// get-or-create semantics for the import pipeline.
type CatalogStore interface {
	ListIngredients(ctx context.Context) ([]Ingredient, error)
	ListBranded(ctx context.Context) ([]BrandedIngredient, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	ListFunctionalCategories(ctx context.Context) ([]Category, error)
	ListChemicalClasses(ctx context.Context) ([]Category, error)

	FindIngredientsByNormalizedNames(ctx context.Context, names []string) ([]Ingredient, error)
	FindDocuments(ctx context.Context, ids []string) ([]Document, error)

	UpsertIngredient(ctx context.Context, name string) (string, error)
	UpsertSupplier(ctx context.Context, name string) (string, error)
	UpsertFunctionalCategory(ctx context.Context, name string, level int, parentID string) (string, error)
	UpsertChemicalClass(ctx context.Context, name string, level int, parentID string) (string, error)
	InsertDocument(ctx context.Context, doc Document) (string, error)
	ReplaceBranded(ctx context.Context, branded BrandedIngredient) (string, error)
}

// LoadSnapshot reads all five collections through the store. Callers that
// can parallelize the reads (the graph builder does) should prefer their
// own fan-out; this is the simple sequential form.
func LoadSnapshot(ctx context.Context, s CatalogStore) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.Ingredients, err = s.ListIngredients(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Branded, err = s.ListBranded(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Suppliers, err = s.ListSuppliers(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.FunctionalCategories, err = s.ListFunctionalCategories(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.ChemicalClasses, err = s.ListChemicalClasses(ctx); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
