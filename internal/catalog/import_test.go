package catalog

import (
	"context"
	"strings"
	"testing"

	"inciq/pkg/store/memory"
)

const sampleCSV = `product_name,supplier,inci_names,functional_categories,chemical_classes,description,document_url
Hydro Base,Aquatics GmbH,Aqua;Glycerin,Humectants > Polyols,,Water-glycerin base,https://example.com/hydro-base.pdf
Pure Squalane,Oleochem,Squalane,Emollients,Hydrocarbons,Plant-derived squalane,
`

func TestParseCSV(t *testing.T) {
	entries, err := ParseCSV([]byte(sampleCSV))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	e := entries[0]
	if e.ProductName != "Hydro Base" || e.Supplier != "Aquatics GmbH" {
		t.Errorf("entry = %+v", e)
	}
	if len(e.INCINames) != 2 || e.INCINames[0] != "Aqua" || e.INCINames[1] != "Glycerin" {
		t.Errorf("inci names = %v", e.INCINames)
	}
	if len(e.FunctionalCategories) != 1 || e.FunctionalCategories[0] != "Humectants > Polyols" {
		t.Errorf("functional categories = %v", e.FunctionalCategories)
	}
	if e.DocumentURL != "https://example.com/hydro-base.pdf" {
		t.Errorf("document url = %q", e.DocumentURL)
	}
}

func TestParseCSVColumnOrderIndependent(t *testing.T) {
	csv := "supplier,product_name,inci_names\nOleochem,Pure Squalane,Squalane\n"
	entries, err := ParseCSV([]byte(csv))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(entries) != 1 || entries[0].ProductName != "Pure Squalane" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestParseCSVMissingProductNameColumn(t *testing.T) {
	if _, err := ParseCSV([]byte("supplier,inci_names\nOleochem,Squalane\n")); err == nil {
		t.Fatal("expected error for missing product_name column")
	}
	if _, err := ParseCSV([]byte("product_name\n")); err != nil {
		t.Fatalf("empty sheet should parse, got %v", err)
	}
}

func TestImportGetOrCreate(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	entries, err := ParseCSV([]byte(sampleCSV))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if err := Import(ctx, s, entries); err != nil {
		t.Fatalf("Import: %v", err)
	}

	ingredients, _ := s.ListIngredients(ctx)
	if len(ingredients) != 3 {
		t.Errorf("ingredients = %d, want 3", len(ingredients))
	}

	cats, _ := s.ListFunctionalCategories(ctx)
	// "Humectants > Polyols" creates two levels, "Emollients" one.
	if len(cats) != 3 {
		t.Errorf("functional categories = %d, want 3", len(cats))
	}
	var polyols, humectants string
	for _, c := range cats {
		switch c.Name {
		case "Polyols":
			polyols = c.ParentID
			if c.Level != 2 {
				t.Errorf("Polyols level = %d, want 2", c.Level)
			}
		case "Humectants":
			humectants = c.ID
		}
	}
	if polyols == "" || polyols != humectants {
		t.Errorf("Polyols parent = %q, want Humectants id %q", polyols, humectants)
	}

	// Re-import must not duplicate anything.
	if err := Import(ctx, s, entries); err != nil {
		t.Fatalf("re-Import: %v", err)
	}
	ingredients, _ = s.ListIngredients(ctx)
	if len(ingredients) != 3 {
		t.Errorf("ingredients after re-import = %d, want 3", len(ingredients))
	}
	branded, _ := s.ListBranded(ctx)
	if len(branded) != 2 {
		t.Errorf("branded after re-import = %d, want 2", len(branded))
	}
	for _, b := range branded {
		if b.Name == "Hydro Base" && len(b.INCIIDs) != 2 {
			t.Errorf("Hydro Base inci ids = %v", b.INCIIDs)
		}
	}
}

func TestImportRowsWithoutProductNameSkipped(t *testing.T) {
	entries, err := ParseCSV([]byte("product_name,supplier\n,Ghost Corp\nReal Product,Oleochem\n"))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(entries) != 1 || !strings.EqualFold(entries[0].ProductName, "Real Product") {
		t.Fatalf("entries = %+v", entries)
	}
}
