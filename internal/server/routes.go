package server

import (
	"github.com/labstack/echo/v4"

	"github.com/TomasH60/semantic-blockchain/internal/server/middleware"
	"github.com/TomasH60/semantic-blockchain/internal/server/routes"
	"github.com/TomasH60/semantic-blockchain/pkg/explorer"
)

func RegisterRoutes(e *echo.Echo, app *middleware.App) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	if app.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(app.Metrics.Handler()))
	}

	apiRoutes := e.Group("/api")

	// Load routes
	apiRoutes.POST("/ontology", routes.LoadHandler(explorer.OpOntology))
	apiRoutes.POST("/dataset", routes.LoadHandler(explorer.OpDataset))
	apiRoutes.POST("/instances", routes.LoadHandler(explorer.OpInstances))

	// View routes
	apiRoutes.GET("/view", routes.GetViewHandler)
	apiRoutes.POST("/search", routes.SearchHandler)
	apiRoutes.POST("/click", routes.ClickHandler)
	apiRoutes.POST("/reset", routes.ResetHandler)
	apiRoutes.PUT("/accumulate", routes.AccumulateHandler)
	apiRoutes.GET("/nodes/:id/clipboard", routes.ClipboardHandler)
	apiRoutes.GET("/stream", routes.StreamHandler)

	// Info routes
	apiRoutes.GET("/stats", routes.GetStatsHandler)
	apiRoutes.GET("/sources", routes.GetSourcesHandler)
}
