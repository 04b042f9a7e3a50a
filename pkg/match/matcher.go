// Package match implements rule-based matching of normalized INCI queries
// against the branded-ingredient catalog: exact subset matching with
// proximity and rarity scoring, conflict detection, and aggregation of the
// per-match confidences into one bounded score.
package match

import (
	"math"

	"inciq/pkg/normalize"
	"inciq/pkg/store"
)

// CatalogEntry pairs a branded ingredient with the normalized names of its
// constituents, resolved once per request from the ingredient collection.
type CatalogEntry struct {
	Branded  store.BrandedIngredient
	INCIKeys []string
}

// ScoredMatch is one branded ingredient whose full INCI set was found in the
// query, with its confidence breakdown.
type ScoredMatch struct {
	Branded     store.BrandedIngredient
	MatchedINCI []string
	Proximity   float64
	Rarity      float64
	Confidence  float64

	keys []string
}

// Conflict flags a query ingredient claimed by more than one branded product
// in the catalog.
type Conflict struct {
	INCIName         string   `json:"inci_name"`
	PossibleProducts []string `json:"possible_products"`
	Context          string   `json:"context"`
}

// Result is the full rule-matching outcome for one query.
type Result struct {
	Matched   []ScoredMatch
	Conflicts []Conflict
	Unmatched []string
}

const conflictContext = "Ingredient used in multiple branded complexes"

// proximityDefault applies when a match exposes fewer than two query
// positions and carries no ordering information.
const proximityDefault = 0.6

// rarityPenalty discounts matches that intersect the ubiquitous fillers
// below; such matches are weak evidence on their own.
const rarityPenalty = 0.85

var genericIngredients = map[string]struct{}{
	"aqua":           {},
	"water":          {},
	"glycerin":       {},
	"fragrance":      {},
	"alcohol":        {},
	"phenoxyethanol": {},
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// BuildCatalog resolves each branded ingredient's INCI references to
// normalized names. Dangling references are skipped.
func BuildCatalog(branded []store.BrandedIngredient, ingredients []store.Ingredient) []CatalogEntry {
	byID := make(map[string]string, len(ingredients))
	for _, ing := range ingredients {
		key := ing.NameNormalized
		if key == "" {
			key = normalize.Normalize(ing.Name)
		}
		byID[ing.ID] = key
	}

	entries := make([]CatalogEntry, 0, len(branded))
	for _, b := range branded {
		var keys []string
		seen := make(map[string]struct{}, len(b.INCIIDs))
		for _, id := range b.INCIIDs {
			key, ok := byID[id]
			if !ok || key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
		entries = append(entries, CatalogEntry{Branded: b, INCIKeys: keys})
	}
	return entries
}

// Match runs subset-based rule matching of a normalized, deduplicated,
// ordered query against the catalog. A branded ingredient matches only when
// its entire non-empty INCI set is contained in the query; partial overlaps
// are never reported from this path.
func Match(query []normalize.Name, catalog []CatalogEntry) Result {
	position := make(map[string]int, len(query))
	display := make(map[string]string, len(query))
	for i, name := range query {
		position[name.Key] = i
		display[name.Key] = name.Display
	}

	// Conflict index over the full catalog, independent of which entries
	// end up matching.
	productsByKey := make(map[string][]string)
	for _, entry := range catalog {
		for _, key := range entry.INCIKeys {
			products := productsByKey[key]
			dup := false
			for _, p := range products {
				if p == entry.Branded.Name {
					dup = true
					break
				}
			}
			if !dup {
				productsByKey[key] = append(products, entry.Branded.Name)
			}
		}
	}

	var matched []ScoredMatch
	covered := make(map[string]struct{})

	for _, entry := range catalog {
		if len(entry.INCIKeys) == 0 {
			continue
		}

		subset := true
		for _, key := range entry.INCIKeys {
			if _, ok := position[key]; !ok {
				subset = false
				break
			}
		}
		if !subset {
			continue
		}

		positions := make([]int, 0, len(entry.INCIKeys))
		for _, key := range entry.INCIKeys {
			positions = append(positions, position[key])
		}

		proximity := proximityDefault
		if len(positions) >= 2 {
			minPos, maxPos := positions[0], positions[0]
			for _, p := range positions[1:] {
				if p < minPos {
					minPos = p
				}
				if p > maxPos {
					maxPos = p
				}
			}
			proximity = round3(1.0 - float64(maxPos-minPos)/float64(len(query)))
		}

		rarity := 1.0
		for _, key := range entry.INCIKeys {
			if _, ok := genericIngredients[key]; ok {
				rarity = rarityPenalty
				break
			}
		}

		matchedINCI := make([]string, len(entry.INCIKeys))
		for i, key := range entry.INCIKeys {
			matchedINCI[i] = display[key]
		}

		matched = append(matched, ScoredMatch{
			Branded:     entry.Branded,
			MatchedINCI: matchedINCI,
			Proximity:   proximity,
			Rarity:      rarity,
			Confidence:  round3(proximity * rarity),
			keys:        entry.INCIKeys,
		})

		for _, key := range entry.INCIKeys {
			covered[key] = struct{}{}
		}
	}

	var conflicts []Conflict
	for _, name := range query {
		products := productsByKey[name.Key]
		if len(products) > 1 {
			conflicts = append(conflicts, Conflict{
				INCIName:         name.Display,
				PossibleProducts: products,
				Context:          conflictContext,
			})
		}
	}

	var unmatched []string
	for _, name := range query {
		if _, ok := covered[name.Key]; !ok {
			unmatched = append(unmatched, name.Display)
		}
	}

	return Result{Matched: matched, Conflicts: conflicts, Unmatched: unmatched}
}
