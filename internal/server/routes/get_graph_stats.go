package routes

import (
	"net/http"

	"inciq/internal/server/middleware"
	"inciq/pkg/knowledge"

	"github.com/labstack/echo/v4"
)

// GetGraphStatsHandler reports node/edge counts per kind and the build
// timestamp of the cached graph, without triggering a build.
func GetGraphStatsHandler(c echo.Context) error {
	type statsResponse struct {
		Message string           `json:"message,omitempty"`
		Built   bool             `json:"built"`
		Stats   *knowledge.Stats `json:"stats,omitempty"`
	}

	app := c.(*middleware.AppContext).App
	g := app.Graphs.Current()
	if g == nil {
		return c.JSON(http.StatusOK, statsResponse{Message: "Graph not built yet", Built: false})
	}

	stats := g.Stats()
	return c.JSON(http.StatusOK, statsResponse{Built: true, Stats: &stats})
}
