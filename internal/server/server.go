package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/TomasH60/semantic-blockchain/internal/config"
	"github.com/TomasH60/semantic-blockchain/internal/metrics"
	"github.com/TomasH60/semantic-blockchain/internal/queue"
	mid "github.com/TomasH60/semantic-blockchain/internal/server/middleware"
	"github.com/TomasH60/semantic-blockchain/internal/server/stream"
	"github.com/TomasH60/semantic-blockchain/internal/storage"
	"github.com/TomasH60/semantic-blockchain/pkg/explorer"
	"github.com/TomasH60/semantic-blockchain/pkg/loader"
	ioloader "github.com/TomasH60/semantic-blockchain/pkg/loader/io"
	s3loader "github.com/TomasH60/semantic-blockchain/pkg/loader/s3"
	"github.com/TomasH60/semantic-blockchain/pkg/logger"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewApp builds the session and the loaders, archive and hub around it.
func NewApp(ctx context.Context, cfg config.Config) (*mid.App, error) {
	session := explorer.New()

	m := metrics.New()
	m.Attach(session)

	hub := stream.NewHub(cfg.Server.AllowOrigins)
	session.OnChange(hub.Broadcast)

	app := &mid.App{
		Session: session,
		Loaders: map[string]loader.SourceLoader{
			"fs": ioloader.NewIOSourceLoader(cfg.Loader.Root),
		},
		ArchivePrefix:  cfg.AWS.UploadPrefix,
		Hub:            hub,
		Metrics:        m,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}

	if cfg.AWS.Enabled() {
		client, err := storage.NewS3Client(ctx, cfg.AWS)
		if err != nil {
			return nil, err
		}
		app.Loaders["s3"] = s3loader.NewS3SourceLoaderWithClient(cfg.AWS.Bucket, client, cfg.Loader.Retries)
		app.Archive = &storage.Bucket{Name: cfg.AWS.Bucket, Client: client}
	}

	return app, nil
}

// NewEcho returns an echo instance with middleware and routes registered.
func NewEcho(app *mid.App, cfg config.ServerConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.AllowOrigins}))
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	// multipart overhead on top of the largest accepted file
	e.Use(middleware.BodyLimit(strconv.FormatInt(cfg.MaxUploadBytes>>10+1024, 10) + "K"))

	RegisterRoutes(e, app)
	return e
}

// Preload applies the configured startup files to the session.
func Preload(ctx context.Context, app *mid.App, cfg config.PreloadConfig) error {
	l, ok := app.Loaders[cfg.Source]
	if !ok {
		return fmt.Errorf("preload source %q is not configured", cfg.Source)
	}

	var steps []loader.Step
	add := func(path string, op explorer.Operation) error {
		file, err := loader.NewSourceFile(loader.NewSourceFileParams{Path: path, Loader: l})
		if err != nil {
			return err
		}
		steps = append(steps, loader.Step{File: file, Operation: op, PreserveView: true})
		return nil
	}

	switch {
	case cfg.Ontology != "":
		if err := add(cfg.Ontology, explorer.OpOntology); err != nil {
			return err
		}
	case cfg.Dataset != "":
		if err := add(cfg.Dataset, explorer.OpDataset); err != nil {
			return err
		}
	}
	for _, path := range cfg.Instances {
		if err := add(path, explorer.OpInstances); err != nil {
			return err
		}
	}
	if len(steps) == 0 {
		return nil
	}

	results, err := loader.ApplyAll(ctx, app.Session, steps, loader.DefaultParallelFiles)
	if err != nil {
		return err
	}
	stats := app.Session.Stats()
	logger.Info("[Server] Preloaded graph", "files", len(results), "nodes", stats.Nodes, "edges", stats.Edges)
	return nil
}

// startConsumer connects to RabbitMQ and consumes load requests until ctx is
// done. The returned func closes the connection.
func startConsumer(ctx context.Context, app *mid.App, cfg config.RabbitMQConfig) (func(), error) {
	conn, err := queue.Init(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := queue.SetupQueues(ch, cfg.EventExchange, cfg.RetryDelay.Duration, []string{cfg.IngestQueue}); err != nil {
		conn.Close()
		return nil, err
	}

	consumer := queue.NewConsumer(app.Session, app.Loaders, queue.ChannelPublisher{Channel: ch, Exchange: cfg.EventExchange})
	go func() {
		if err := consumer.Run(ctx, ch, cfg.IngestQueue, cfg.MaxRetries); err != nil {
			logger.Error("[Queue] Consumer stopped", "err", err)
		}
	}()

	return func() {
		ch.Close()
		conn.Close()
	}, nil
}

// Run serves the explorer until ctx is cancelled and then shuts down within
// the configured timeout.
func Run(ctx context.Context, cfg config.Config) error {
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Hub.Close()

	if err := Preload(ctx, app, cfg.Preload); err != nil {
		return fmt.Errorf("preload failed: %w", err)
	}

	if cfg.RabbitMQ.Enabled() {
		closeQueue, err := startConsumer(ctx, app, cfg.RabbitMQ)
		if err != nil {
			return err
		}
		defer closeQueue()
	}

	e := NewEcho(app, cfg.Server)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Server.Port)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
	return nil
}
