package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TomasH60/semantic-blockchain/internal/server/middleware"
	"github.com/TomasH60/semantic-blockchain/pkg/logger"
)

func GetStatsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, c.(*middleware.AppContext).App.Session.Stats())
}

// GetSourcesHandler lists the files available in the archive bucket.
func GetSourcesHandler(c echo.Context) error {
	type sourcesResponse struct {
		Message string   `json:"message,omitempty"`
		Files   []string `json:"files"`
	}

	app := c.(*middleware.AppContext).App
	if app.Archive == nil {
		return c.JSON(http.StatusOK, sourcesResponse{Files: []string{}})
	}

	files, err := app.Archive.ListFilesWithPrefix(c.Request().Context(), c.QueryParam("prefix"))
	if err != nil {
		logger.Error("[Sources] Failed to list bucket", "bucket", app.Archive.Name, "err", err)
		return c.JSON(http.StatusInternalServerError, sourcesResponse{
			Message: "Internal server error",
			Files:   []string{},
		})
	}
	if files == nil {
		files = []string{}
	}
	return c.JSON(http.StatusOK, sourcesResponse{Files: files})
}

// StreamHandler upgrades the connection to a websocket fed by the hub.
func StreamHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	if err := app.Hub.Serve(c.Response(), c.Request(), app.Session); err != nil {
		logger.Warn("[Stream] Upgrade failed", "err", err)
	}
	return nil
}
