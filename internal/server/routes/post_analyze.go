package routes

import (
	"math"
	"net/http"
	"time"

	"inciq/internal/server/middleware"
	"inciq/pkg/logger"
	"inciq/pkg/match"
	"inciq/pkg/normalize"
	"inciq/pkg/store"

	"github.com/labstack/echo/v4"
)

// AnalyzeINCIHandler runs rule-based matching of an INCI list against the
// branded catalog and reports matches with confidences, conflicts, and
// unmatched names enriched with catalog hints where known.
func AnalyzeINCIHandler(c echo.Context) error {
	// An empty inci_list is a valid query (it yields an empty result), so
	// the list itself carries no validation constraints.
	type analyzeBody struct {
		INCIList []string `json:"inci_list"`
	}

	type matchedBranded struct {
		ProductName     string   `json:"product_name"`
		Supplier        string   `json:"supplier"`
		MatchedINCI     []string `json:"matched_inci"`
		ConfidenceScore float64  `json:"confidence_score"`
		Proximity       float64  `json:"proximity"`
		Rarity          float64  `json:"rarity"`
		Description     string   `json:"description,omitempty"`
		DocumentURL     string   `json:"documentation_url,omitempty"`
	}

	type unmatchedINCI struct {
		Name      string `json:"name"`
		CommonUse string `json:"common_use,omitempty"`
		Category  string `json:"category,omitempty"`
	}

	type analyzeResponse struct {
		Message           string           `json:"message,omitempty"`
		Matched           []matchedBranded `json:"branded_ingredients"`
		Unmatched         []unmatchedINCI  `json:"unmatched_inci"`
		Conflicts         []match.Conflict `json:"conflicts"`
		OverallConfidence float64          `json:"overall_confidence"`
		ProcessingTime    float64          `json:"processing_time"`
	}

	start := time.Now()

	data := new(analyzeBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, analyzeResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, analyzeResponse{Message: "Invalid request body"})
	}

	// A query with no usable names is not an error, just an empty result.
	query := normalize.List(data.INCIList)
	if len(query) == 0 {
		return c.JSON(http.StatusOK, analyzeResponse{
			Matched:        []matchedBranded{},
			Unmatched:      []unmatchedINCI{},
			ProcessingTime: math.Round(time.Since(start).Seconds()*1000) / 1000,
		})
	}

	ctx := c.Request().Context()
	catalogStore := c.(*middleware.AppContext).App.Store

	ingredients, err := catalogStore.ListIngredients(ctx)
	if err != nil {
		logger.Error("Failed to load ingredient collection", "err", err)
		return c.JSON(http.StatusInternalServerError, analyzeResponse{Message: "Internal server error"})
	}
	branded, err := catalogStore.ListBranded(ctx)
	if err != nil {
		logger.Error("Failed to load branded catalog", "err", err)
		return c.JSON(http.StatusInternalServerError, analyzeResponse{Message: "Internal server error"})
	}
	suppliers, err := catalogStore.ListSuppliers(ctx)
	if err != nil {
		logger.Error("Failed to load suppliers", "err", err)
		return c.JSON(http.StatusInternalServerError, analyzeResponse{Message: "Internal server error"})
	}
	supplierName := make(map[string]string, len(suppliers))
	for _, s := range suppliers {
		supplierName[s.ID] = s.Name
	}

	res := match.Match(query, match.BuildCatalog(branded, ingredients))
	multiplier := match.GraphMultiplier(query, res.Matched)
	overall := match.Aggregate(res.Matched, multiplier)

	matched := make([]matchedBranded, 0, len(res.Matched))
	for _, m := range res.Matched {
		matched = append(matched, matchedBranded{
			ProductName:     m.Branded.Name,
			Supplier:        supplierName[m.Branded.SupplierID],
			MatchedINCI:     m.MatchedINCI,
			ConfidenceScore: m.Confidence,
			Proximity:       m.Proximity,
			Rarity:          m.Rarity,
			Description:     m.Branded.Description,
			DocumentURL:     firstDocumentURL(c, m.Branded),
		})
	}

	unmatched := make([]unmatchedINCI, 0, len(res.Unmatched))
	if len(res.Unmatched) > 0 {
		keys := make([]string, len(res.Unmatched))
		for i, name := range res.Unmatched {
			keys[i] = normalize.Normalize(name)
		}
		known, err := catalogStore.FindIngredientsByNormalizedNames(ctx, keys)
		if err != nil {
			logger.Warn("Failed to enrich unmatched ingredients", "err", err)
			known = nil
		}
		byKey := make(map[string]store.Ingredient, len(known))
		for _, ing := range known {
			byKey[ing.NameNormalized] = ing
		}
		for i, name := range res.Unmatched {
			entry := unmatchedINCI{Name: name}
			if ing, ok := byKey[keys[i]]; ok {
				entry.CommonUse = ing.CommonUse
				entry.Category = ing.Category
			}
			unmatched = append(unmatched, entry)
		}
	}

	return c.JSON(http.StatusOK, analyzeResponse{
		Matched:           matched,
		Unmatched:         unmatched,
		Conflicts:         res.Conflicts,
		OverallConfidence: overall,
		ProcessingTime:    math.Round(time.Since(start).Seconds()*1000) / 1000,
	})
}

func firstDocumentURL(c echo.Context, branded store.BrandedIngredient) string {
	if len(branded.DocumentIDs) == 0 {
		return ""
	}
	catalogStore := c.(*middleware.AppContext).App.Store
	docs, err := catalogStore.FindDocuments(c.Request().Context(), branded.DocumentIDs[:1])
	if err != nil || len(docs) == 0 {
		return ""
	}
	return docs[0].URL
}
