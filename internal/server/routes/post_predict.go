package routes

import (
	"context"
	"net/http"

	"inciq/internal/server/middleware"
	"inciq/pkg/knowledge"
	"inciq/pkg/logger"
	"inciq/pkg/normalize"
	"inciq/pkg/rank"

	"github.com/labstack/echo/v4"
)

const (
	defaultTopK = 10
	maxTopK     = 50
)

// PredictCombinationHandler retrieves branded candidates from the knowledge
// graph for the given INCI list and ranks them with the configured scorer.
func PredictCombinationHandler(c echo.Context) error {
	// As with analyze, an empty inci_list is valid and yields an empty
	// prediction set.
	type predictBody struct {
		INCIList []string `json:"inci_list"`
		TopK     int      `json:"top_k" validate:"omitempty,min=1"`
	}

	type prediction struct {
		BrandedID string            `json:"branded_id"`
		Name      string            `json:"name"`
		Score     float64           `json:"score"`
		Features  rank.FeatureVector `json:"features"`
	}

	type predictResponse struct {
		Message     string       `json:"message,omitempty"`
		Predictions []prediction `json:"predictions"`
		MatchedINCI []string     `json:"matched_inci"`
		Unmatched   []string     `json:"unmatched"`
	}

	data := new(predictBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, predictResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, predictResponse{Message: "Invalid request body"})
	}

	topK := data.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	g, err := app.Graphs.Get(ctx)
	if err != nil {
		logger.Error("Failed to build knowledge graph", "err", err)
		return c.JSON(http.StatusServiceUnavailable, predictResponse{Message: "Knowledge graph unavailable"})
	}

	var (
		refs        []knowledge.NodeRef
		matchedINCI []string
		unmatched   []string
	)
	for _, name := range normalize.List(data.INCIList) {
		if ref, ok := g.ResolveIngredient(name.Key); ok {
			refs = append(refs, ref)
			matchedINCI = append(matchedINCI, name.Display)
		} else {
			unmatched = append(unmatched, name.Display)
		}
	}

	candidates := rank.Candidates(g, refs)

	scoreCtx := ctx
	if app.ScorerTimeout > 0 {
		var cancel context.CancelFunc
		scoreCtx, cancel = context.WithTimeout(ctx, app.ScorerTimeout)
		defer cancel()
	}
	ranked := rank.Rank(scoreCtx, g, refs, candidates, topK, app.Scorer)

	predictions := make([]prediction, 0, len(ranked))
	for _, r := range ranked {
		predictions = append(predictions, prediction{
			BrandedID: r.Ref.ID,
			Name:      r.Name,
			Score:     r.Score,
			Features:  r.Features,
		})
	}

	return c.JSON(http.StatusOK, predictResponse{
		Predictions: predictions,
		MatchedINCI: matchedINCI,
		Unmatched:   unmatched,
	})
}
