package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/TomasH60/semantic-blockchain/internal/metrics"
	"github.com/TomasH60/semantic-blockchain/internal/server/stream"
	"github.com/TomasH60/semantic-blockchain/internal/storage"
	"github.com/TomasH60/semantic-blockchain/pkg/explorer"
	"github.com/TomasH60/semantic-blockchain/pkg/loader"
)

// App holds the long lived dependencies shared by all handlers.
type App struct {
	Session *explorer.Session
	Loaders map[string]loader.SourceLoader
	// Archive is where uploaded files are copied; nil disables archiving.
	Archive        *storage.Bucket
	ArchivePrefix  string
	Hub            *stream.Hub
	Metrics        *metrics.Metrics
	MaxUploadBytes int64
}

type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware wraps every request context into an AppContext.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{Context: c, App: app})
		}
	}
}
