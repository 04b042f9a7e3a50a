// Package pgx implements store.CatalogStore on Postgres via pgxpool.
package pgx

import (
	"context"
	"strconv"

	"inciq/pkg/normalize"
	"inciq/pkg/store"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogDBStore is the Postgres-backed catalog store.
type CatalogDBStore struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *CatalogDBStore {
	return &CatalogDBStore{pool: pool}
}

func toID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func fromIDs(ids []string) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		v, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func toIDs(ids []int64) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = toID(id)
	}
	return out
}

func (s *CatalogDBStore) ListIngredients(ctx context.Context) ([]store.Ingredient, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, name_normalized, common_use, category FROM ingredients`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Ingredient
	for rows.Next() {
		var (
			id  int64
			ing store.Ingredient
		)
		if err := rows.Scan(&id, &ing.Name, &ing.NameNormalized, &ing.CommonUse, &ing.Category); err != nil {
			return nil, err
		}
		ing.ID = toID(id)
		out = append(out, ing)
	}
	return out, rows.Err()
}

func (s *CatalogDBStore) ListBranded(ctx context.Context) ([]store.BrandedIngredient, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, original_inci_name, supplier_id, description,
		        inci_ids, functional_category_ids, chemical_class_ids, document_ids
		 FROM branded_ingredients`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.BrandedIngredient
	for rows.Next() {
		var (
			id         int64
			supplierID *int64
			inciIDs    []int64
			funcIDs    []int64
			chemIDs    []int64
			docIDs     []int64
			b          store.BrandedIngredient
		)
		err := rows.Scan(&id, &b.Name, &b.OriginalINCIName, &supplierID, &b.Description,
			&inciIDs, &funcIDs, &chemIDs, &docIDs)
		if err != nil {
			return nil, err
		}
		b.ID = toID(id)
		if supplierID != nil {
			b.SupplierID = toID(*supplierID)
		}
		b.INCIIDs = toIDs(inciIDs)
		b.FunctionalCategoryIDs = toIDs(funcIDs)
		b.ChemicalClassIDs = toIDs(chemIDs)
		b.DocumentIDs = toIDs(docIDs)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *CatalogDBStore) ListSuppliers(ctx context.Context) ([]store.Supplier, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM suppliers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Supplier
	for rows.Next() {
		var (
			id  int64
			sup store.Supplier
		)
		if err := rows.Scan(&id, &sup.Name); err != nil {
			return nil, err
		}
		sup.ID = toID(id)
		out = append(out, sup)
	}
	return out, rows.Err()
}

func (s *CatalogDBStore) listCategories(ctx context.Context, table string) ([]store.Category, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, level, parent_id FROM `+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Category
	for rows.Next() {
		var (
			id       int64
			parentID *int64
			cat      store.Category
		)
		if err := rows.Scan(&id, &cat.Name, &cat.Level, &parentID); err != nil {
			return nil, err
		}
		cat.ID = toID(id)
		if parentID != nil {
			cat.ParentID = toID(*parentID)
		}
		out = append(out, cat)
	}
	return out, rows.Err()
}

func (s *CatalogDBStore) ListFunctionalCategories(ctx context.Context) ([]store.Category, error) {
	return s.listCategories(ctx, "functional_categories")
}

func (s *CatalogDBStore) ListChemicalClasses(ctx context.Context) ([]store.Category, error) {
	return s.listCategories(ctx, "chemical_classes")
}

func (s *CatalogDBStore) FindIngredientsByNormalizedNames(ctx context.Context, names []string) ([]store.Ingredient, error) {
	if len(names) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, name_normalized, common_use, category
		 FROM ingredients WHERE name_normalized = ANY($1)`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Ingredient
	for rows.Next() {
		var (
			id  int64
			ing store.Ingredient
		)
		if err := rows.Scan(&id, &ing.Name, &ing.NameNormalized, &ing.CommonUse, &ing.Category); err != nil {
			return nil, err
		}
		ing.ID = toID(id)
		out = append(out, ing)
	}
	return out, rows.Err()
}

func (s *CatalogDBStore) FindDocuments(ctx context.Context, ids []string) ([]store.Document, error) {
	numeric := fromIDs(ids)
	if len(numeric) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, key, title, url FROM documents WHERE id = ANY($1)`, numeric)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Document
	for rows.Next() {
		var (
			id  int64
			doc store.Document
		)
		if err := rows.Scan(&id, &doc.Key, &doc.Title, &doc.URL); err != nil {
			return nil, err
		}
		doc.ID = toID(id)
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *CatalogDBStore) UpsertIngredient(ctx context.Context, name string) (string, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO ingredients (name, name_normalized)
		 VALUES ($1, $2)
		 ON CONFLICT (name_normalized) DO UPDATE SET name = ingredients.name
		 RETURNING id`,
		name, normalize.Normalize(name)).Scan(&id)
	if err != nil {
		return "", err
	}
	return toID(id), nil
}

func (s *CatalogDBStore) UpsertSupplier(ctx context.Context, name string) (string, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO suppliers (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`, name).Scan(&id)
	if err != nil {
		return "", err
	}
	return toID(id), nil
}

func (s *CatalogDBStore) upsertCategory(ctx context.Context, table, name string, level int, parentID string) (string, error) {
	var parent *int64
	if parentID != "" {
		v, err := strconv.ParseInt(parentID, 10, 64)
		if err == nil {
			parent = &v
		}
	}

	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO `+table+` (name, level, parent_id) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET level = EXCLUDED.level
		 RETURNING id`, name, level, parent).Scan(&id)
	if err != nil {
		return "", err
	}
	return toID(id), nil
}

func (s *CatalogDBStore) UpsertFunctionalCategory(ctx context.Context, name string, level int, parentID string) (string, error) {
	return s.upsertCategory(ctx, "functional_categories", name, level, parentID)
}

func (s *CatalogDBStore) UpsertChemicalClass(ctx context.Context, name string, level int, parentID string) (string, error) {
	return s.upsertCategory(ctx, "chemical_classes", name, level, parentID)
}

func (s *CatalogDBStore) InsertDocument(ctx context.Context, doc store.Document) (string, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO documents (key, title, url) VALUES ($1, $2, $3) RETURNING id`,
		doc.Key, doc.Title, doc.URL).Scan(&id)
	if err != nil {
		return "", err
	}
	return toID(id), nil
}

func (s *CatalogDBStore) ReplaceBranded(ctx context.Context, branded store.BrandedIngredient) (string, error) {
	var supplierID *int64
	if branded.SupplierID != "" {
		v, err := strconv.ParseInt(branded.SupplierID, 10, 64)
		if err == nil {
			supplierID = &v
		}
	}

	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO branded_ingredients
		   (name, original_inci_name, supplier_id, description,
		    inci_ids, functional_category_ids, chemical_class_ids, document_ids)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (name) DO UPDATE SET
		   original_inci_name = EXCLUDED.original_inci_name,
		   supplier_id = EXCLUDED.supplier_id,
		   description = EXCLUDED.description,
		   inci_ids = EXCLUDED.inci_ids,
		   functional_category_ids = EXCLUDED.functional_category_ids,
		   chemical_class_ids = EXCLUDED.chemical_class_ids,
		   document_ids = EXCLUDED.document_ids
		 RETURNING id`,
		branded.Name, branded.OriginalINCIName, supplierID, branded.Description,
		fromIDs(branded.INCIIDs), fromIDs(branded.FunctionalCategoryIDs),
		fromIDs(branded.ChemicalClassIDs), fromIDs(branded.DocumentIDs)).Scan(&id)
	if err != nil {
		return "", err
	}
	return toID(id), nil
}

// Ping verifies database connectivity, used by startup wiring.
func (s *CatalogDBStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var _ store.CatalogStore = (*CatalogDBStore)(nil)
