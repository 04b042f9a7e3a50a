// Package memory implements store.CatalogStore with in-process maps. It backs
// unit tests and local development without a database.
package memory

import (
	"context"
	"strconv"
	"sync"

	"inciq/pkg/normalize"
	"inciq/pkg/store"
)

// Store is an in-memory CatalogStore. The zero value is not usable; create
// instances with New. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	ingredients []store.Ingredient
	branded     []store.BrandedIngredient
	suppliers   []store.Supplier
	funcCats    []store.Category
	chemClasses []store.Category
	documents   []store.Document

	nextID int
}

func New() *Store {
	return &Store{nextID: 1}
}

func (s *Store) newID() string {
	id := strconv.Itoa(s.nextID)
	s.nextID++
	return id
}

func (s *Store) ListIngredients(ctx context.Context) ([]store.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Ingredient, len(s.ingredients))
	copy(out, s.ingredients)
	return out, nil
}

func (s *Store) ListBranded(ctx context.Context) ([]store.BrandedIngredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.BrandedIngredient, len(s.branded))
	copy(out, s.branded)
	return out, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]store.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Supplier, len(s.suppliers))
	copy(out, s.suppliers)
	return out, nil
}

func (s *Store) ListFunctionalCategories(ctx context.Context) ([]store.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Category, len(s.funcCats))
	copy(out, s.funcCats)
	return out, nil
}

func (s *Store) ListChemicalClasses(ctx context.Context) ([]store.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Category, len(s.chemClasses))
	copy(out, s.chemClasses)
	return out, nil
}

func (s *Store) FindIngredientsByNormalizedNames(ctx context.Context, names []string) ([]store.Ingredient, error) {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []store.Ingredient
	for _, ing := range s.ingredients {
		if _, ok := want[ing.NameNormalized]; ok {
			out = append(out, ing)
		}
	}
	return out, nil
}

func (s *Store) FindDocuments(ctx context.Context, ids []string) ([]store.Document, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []store.Document
	for _, doc := range s.documents {
		if _, ok := want[doc.ID]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *Store) UpsertIngredient(ctx context.Context, name string) (string, error) {
	key := normalize.Normalize(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ing := range s.ingredients {
		if ing.NameNormalized == key {
			return ing.ID, nil
		}
	}
	id := s.newID()
	s.ingredients = append(s.ingredients, store.Ingredient{
		ID:             id,
		Name:           name,
		NameNormalized: key,
	})
	return id, nil
}

func (s *Store) UpsertSupplier(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sup := range s.suppliers {
		if sup.Name == name {
			return sup.ID, nil
		}
	}
	id := s.newID()
	s.suppliers = append(s.suppliers, store.Supplier{ID: id, Name: name})
	return id, nil
}

func (s *Store) UpsertFunctionalCategory(ctx context.Context, name string, level int, parentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cat := range s.funcCats {
		if cat.Name == name {
			return cat.ID, nil
		}
	}
	id := s.newID()
	s.funcCats = append(s.funcCats, store.Category{ID: id, Name: name, Level: level, ParentID: parentID})
	return id, nil
}

func (s *Store) UpsertChemicalClass(ctx context.Context, name string, level int, parentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cat := range s.chemClasses {
		if cat.Name == name {
			return cat.ID, nil
		}
	}
	id := s.newID()
	s.chemClasses = append(s.chemClasses, store.Category{ID: id, Name: name, Level: level, ParentID: parentID})
	return id, nil
}

func (s *Store) InsertDocument(ctx context.Context, doc store.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.ID = s.newID()
	s.documents = append(s.documents, doc)
	return doc.ID, nil
}

func (s *Store) ReplaceBranded(ctx context.Context, branded store.BrandedIngredient) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.branded {
		if b.Name == branded.Name {
			branded.ID = b.ID
			s.branded[i] = branded
			return b.ID, nil
		}
	}
	branded.ID = s.newID()
	s.branded = append(s.branded, branded)
	return branded.ID, nil
}

// Seed helpers used by tests to assemble catalogs directly.

// AddCategory inserts a category with an explicit parent into the functional
// or chemical namespace.
func (s *Store) AddCategory(chemical bool, name string, level int, parentID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	cat := store.Category{ID: id, Name: name, Level: level, ParentID: parentID}
	if chemical {
		s.chemClasses = append(s.chemClasses, cat)
	} else {
		s.funcCats = append(s.funcCats, cat)
	}
	return id
}

// SetCategoryParent rewires a category's parent reference in place.
func (s *Store) SetCategoryParent(chemical bool, id, parentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cats := s.funcCats
	if chemical {
		cats = s.chemClasses
	}
	for i := range cats {
		if cats[i].ID == id {
			cats[i].ParentID = parentID
		}
	}
}

var _ store.CatalogStore = (*Store)(nil)
