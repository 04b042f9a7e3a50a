package routes

import (
	"net/http"

	"inciq/internal/server/middleware"
	"inciq/pkg/knowledge"
	"inciq/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RebuildGraphHandler rebuilds the knowledge graph from the catalog store.
// With force=false an already-cached graph is returned untouched.
func RebuildGraphHandler(c echo.Context) error {
	type rebuildBody struct {
		Force bool `json:"force"`
	}

	type rebuildResponse struct {
		Message string           `json:"message"`
		Stats   *knowledge.Stats `json:"stats,omitempty"`
	}

	data := new(rebuildBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, rebuildResponse{Message: "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App
	g, err := app.Graphs.Rebuild(c.Request().Context(), data.Force)
	if err != nil {
		logger.Error("Graph rebuild failed", "err", err)
		return c.JSON(http.StatusServiceUnavailable, rebuildResponse{Message: "Graph rebuild failed"})
	}

	stats := g.Stats()
	return c.JSON(http.StatusOK, rebuildResponse{Message: "Graph ready", Stats: &stats})
}
