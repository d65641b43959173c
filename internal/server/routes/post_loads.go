package routes

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/TomasH60/semantic-blockchain/internal/server/middleware"
	"github.com/TomasH60/semantic-blockchain/internal/storage"
	"github.com/TomasH60/semantic-blockchain/pkg/explorer"
	"github.com/TomasH60/semantic-blockchain/pkg/ingest"
	"github.com/TomasH60/semantic-blockchain/pkg/loader"
	ioloader "github.com/TomasH60/semantic-blockchain/pkg/loader/io"
	"github.com/TomasH60/semantic-blockchain/pkg/logger"
)

type loadResponse struct {
	Message string           `json:"message"`
	Result  *explorer.Result `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// LoadHandler returns the handler for one load operation. The body is either
// a multipart upload with a "file" field or a JSON reference to a file on a
// configured source.
func LoadHandler(op explorer.Operation) echo.HandlerFunc {
	type loadBody struct {
		Source       string `json:"source" validate:"required,oneof=fs s3"`
		Path         string `json:"path" validate:"required"`
		Format       string `json:"format"`
		PreserveView bool   `json:"preserve_view"`
	}

	return func(c echo.Context) error {
		app := c.(*middleware.AppContext).App
		ctx := c.Request().Context()

		var (
			req explorer.Request
			err error
		)
		if isMultipart(c) {
			req, err = uploadRequest(c, app, op)
		} else {
			data := new(loadBody)
			if err := c.Bind(data); err != nil {
				return c.JSON(http.StatusBadRequest, loadResponse{Message: "Invalid request body"})
			}
			if err := c.Validate(data); err != nil {
				return c.JSON(http.StatusBadRequest, loadResponse{Message: "Invalid request body", Error: err.Error()})
			}
			req, err = sourceRequest(c, app, op, data.Source, data.Path, data.Format, data.PreserveView)
		}
		if err != nil {
			return c.JSON(loadStatus(err), loadResponse{Message: "Could not read file", Error: err.Error()})
		}

		res, err := app.Session.Load(ctx, req)
		if err != nil {
			return c.JSON(loadStatus(err), loadResponse{Message: "Load failed", Result: &res, Error: err.Error()})
		}

		return c.JSON(http.StatusOK, loadResponse{Message: "Loaded", Result: &res})
	}
}

func isMultipart(c echo.Context) bool {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	return len(ct) >= len(echo.MIMEMultipartForm) && ct[:len(echo.MIMEMultipartForm)] == echo.MIMEMultipartForm
}

func uploadRequest(c echo.Context, app *middleware.App, op explorer.Operation) (explorer.Request, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return explorer.Request{}, fmt.Errorf("%w: missing file field", errBadRequest)
	}
	if app.MaxUploadBytes > 0 && fh.Size > app.MaxUploadBytes {
		return explorer.Request{}, fmt.Errorf("%w: file exceeds %d bytes", errTooLarge, app.MaxUploadBytes)
	}

	file, err := loader.NewSourceFile(loader.NewSourceFileParams{
		Path:   fh.Filename,
		Format: c.FormValue("format"),
	})
	if err != nil {
		return explorer.Request{}, err
	}

	f, err := fh.Open()
	if err != nil {
		return explorer.Request{}, err
	}
	defer f.Close()

	text, err := io.ReadAll(f)
	if err != nil {
		return explorer.Request{}, err
	}

	if app.Archive != nil {
		archive(c, app, fh.Filename, text)
	}

	preserve, _ := strconv.ParseBool(c.FormValue("preserve_view"))
	return explorer.Request{
		Operation:    op,
		Text:         string(text),
		Format:       file.Format,
		PreserveView: preserve,
		Source:       fh.Filename,
	}, nil
}

func archive(c echo.Context, app *middleware.App, name string, text []byte) {
	id, err := gonanoid.New()
	if err != nil {
		logger.Error("[Upload] Failed to generate archive id", "err", err)
		return
	}
	key := storage.UploadKey(app.ArchivePrefix, id, name)
	if err := app.Archive.PutFile(c.Request().Context(), key, bytes.NewReader(text)); err != nil {
		logger.Error("[Upload] Failed to archive upload", "file", name, "err", err)
		return
	}
	logger.Info("[Upload] Archived upload", "file", name, "key", key)
}

func sourceRequest(c echo.Context, app *middleware.App, op explorer.Operation, source, path, format string, preserve bool) (explorer.Request, error) {
	l, ok := app.Loaders[source]
	if !ok {
		return explorer.Request{}, fmt.Errorf("%w: source %q is not configured", errBadRequest, source)
	}

	file, err := loader.NewSourceFile(loader.NewSourceFileParams{
		Path:   path,
		Format: format,
		Loader: l,
	})
	if err != nil {
		return explorer.Request{}, err
	}

	return file.Request(c.Request().Context(), op, preserve)
}

var (
	errBadRequest = errors.New("bad request")
	errTooLarge   = errors.New("file too large")
)

func loadStatus(err error) int {
	switch {
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest),
		errors.Is(err, ingest.ErrParse),
		errors.Is(err, ingest.ErrUnsupportedFormat),
		errors.Is(err, ioloader.ErrOutsideRoot):
		return http.StatusBadRequest
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, ingest.ErrMissingSchema),
		errors.Is(err, explorer.ErrSuperseded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
