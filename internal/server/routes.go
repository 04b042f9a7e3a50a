package server

import (
	"inciq/internal/server/middleware"
	"inciq/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	api := e.Group("/api")

	// Analysis routes (open, as the rest of the matching API)
	api.POST("/analyze-inci", routes.AnalyzeINCIHandler)
	api.POST("/predict-combination", routes.PredictCombinationHandler)
	api.GET("/graph/stats", routes.GetGraphStatsHandler)

	// Admin routes
	admin := api.Group("", middleware.AuthMiddleware)
	admin.POST("/graph/rebuild", routes.RebuildGraphHandler, middleware.RequirePermission("graph.rebuild"))
	admin.POST("/catalog/import", routes.ImportCatalogHandler, middleware.RequirePermission("catalog.import"))
}
