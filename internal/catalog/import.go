// Package catalog parses cleaned catalog sheets and loads them into the
// document store with get-or-create semantics, so repeated imports of
// overlapping sheets stay idempotent.
package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"inciq/pkg/logger"
	"inciq/pkg/store"
)

// Entry is one row of a cleaned catalog sheet.
type Entry struct {
	ProductName          string
	Supplier             string
	INCINames            []string
	FunctionalCategories []string
	ChemicalClasses      []string
	Description          string
	DocumentURL          string
}

// ParseCSV reads a cleaned catalog sheet. The first row is the header; rows
// are mapped by column name so column order does not matter. Multi-value
// columns (inci_names, functional_categories, chemical_classes) are
// semicolon-separated; category values may be level paths separated by ">".
func ParseCSV(data []byte) ([]Entry, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["product_name"]; !ok {
		return nil, fmt.Errorf("csv is missing required column product_name")
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var entries []Entry
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}

		entry := Entry{
			ProductName:          field(record, "product_name"),
			Supplier:             field(record, "supplier"),
			INCINames:            splitMulti(field(record, "inci_names")),
			FunctionalCategories: splitMulti(field(record, "functional_categories")),
			ChemicalClasses:      splitMulti(field(record, "chemical_classes")),
			Description:          field(record, "description"),
			DocumentURL:          field(record, "document_url"),
		}
		if entry.ProductName == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func splitMulti(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Import upserts the parsed entries. Ingredients, suppliers, and categories
// are get-or-create; branded ingredients are replaced by product name so a
// re-import updates rather than duplicates. Category paths create one node
// per level, each linked to its parent, and the branded ingredient points at
// the deepest level.
func Import(ctx context.Context, s store.CatalogStore, entries []Entry) error {
	for _, entry := range entries {
		inciIDs := make([]string, 0, len(entry.INCINames))
		for _, name := range entry.INCINames {
			id, err := s.UpsertIngredient(ctx, name)
			if err != nil {
				return fmt.Errorf("failed to upsert ingredient %q: %w", name, err)
			}
			inciIDs = append(inciIDs, id)
		}

		supplierID := ""
		if entry.Supplier != "" {
			id, err := s.UpsertSupplier(ctx, entry.Supplier)
			if err != nil {
				return fmt.Errorf("failed to upsert supplier %q: %w", entry.Supplier, err)
			}
			supplierID = id
		}

		funcIDs, err := upsertCategoryPaths(ctx, entry.FunctionalCategories, s.UpsertFunctionalCategory)
		if err != nil {
			return err
		}
		chemIDs, err := upsertCategoryPaths(ctx, entry.ChemicalClasses, s.UpsertChemicalClass)
		if err != nil {
			return err
		}

		var docIDs []string
		if entry.DocumentURL != "" {
			docID, err := s.InsertDocument(ctx, store.Document{
				Title: entry.ProductName,
				URL:   entry.DocumentURL,
			})
			if err != nil {
				return fmt.Errorf("failed to insert document for %q: %w", entry.ProductName, err)
			}
			docIDs = append(docIDs, docID)
		}

		_, err = s.ReplaceBranded(ctx, store.BrandedIngredient{
			Name:                  entry.ProductName,
			INCIIDs:               inciIDs,
			SupplierID:            supplierID,
			FunctionalCategoryIDs: funcIDs,
			ChemicalClassIDs:      chemIDs,
			Description:           entry.Description,
			DocumentIDs:           docIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to store branded ingredient %q: %w", entry.ProductName, err)
		}
	}

	logger.Info("Catalog import finished", "entries", len(entries))
	return nil
}

type upsertCategoryFunc func(ctx context.Context, name string, level int, parentID string) (string, error)

func upsertCategoryPaths(ctx context.Context, paths []string, upsert upsertCategoryFunc) ([]string, error) {
	ids := make([]string, 0, len(paths))
	for _, path := range paths {
		parentID := ""
		levels := strings.Split(path, ">")
		for level, name := range levels {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			id, err := upsert(ctx, name, level+1, parentID)
			if err != nil {
				return nil, fmt.Errorf("failed to upsert category %q: %w", name, err)
			}
			parentID = id
		}
		if parentID != "" {
			ids = append(ids, parentID)
		}
	}
	return ids, nil
}
