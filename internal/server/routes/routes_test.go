package routes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomasH60/semantic-blockchain/internal/server/middleware"
	"github.com/TomasH60/semantic-blockchain/pkg/explorer"
	"github.com/TomasH60/semantic-blockchain/pkg/loader"
	ioloader "github.com/TomasH60/semantic-blockchain/pkg/loader/io"
	"github.com/TomasH60/semantic-blockchain/pkg/view"
)

const ontologyNT = `<http://ex.org/Person> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .
<http://ex.org/Person> <http://www.w3.org/2000/01/rdf-schema#label> "Person" .
`

const instancesNT = `<http://ex.org/alice> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://ex.org/Person> .
<http://ex.org/alice> <http://www.w3.org/2000/01/rdf-schema#label> "Alice" .
`

type testValidator struct {
	validator *validator.Validate
}

func (v testValidator) Validate(i any) error {
	return v.validator.Struct(i)
}

func newTestEcho(t *testing.T) (*echo.Echo, *middleware.App) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "onto.nt"), []byte(ontologyNT), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "inst.nt"), []byte(instancesNT), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.ttl"), []byte("<a> <b> ."), 0o644))

	app := &middleware.App{
		Session:        explorer.New(),
		Loaders:        map[string]loader.SourceLoader{"fs": ioloader.NewIOSourceLoader(root)},
		MaxUploadBytes: 1 << 20,
	}

	e := echo.New()
	e.Validator = testValidator{validator: validator.New()}
	e.Use(middleware.AppContextMiddleware(app))
	e.POST("/ontology", LoadHandler(explorer.OpOntology))
	e.POST("/instances", LoadHandler(explorer.OpInstances))
	e.GET("/view", GetViewHandler)
	e.POST("/search", SearchHandler)
	e.POST("/click", ClickHandler)
	e.POST("/reset", ResetHandler)
	e.PUT("/accumulate", AccumulateHandler)
	e.GET("/nodes/:id/clipboard", ClipboardHandler)
	e.GET("/stats", GetStatsHandler)
	e.GET("/sources", GetSourcesHandler)
	return e, app
}

func doJSON(e *echo.Echo, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) view.View {
	t.Helper()
	var resp struct {
		View *view.View `json:"view"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.View)
	return *resp.View
}

func TestLoadFromSource(t *testing.T) {
	e, app := newTestEcho(t)

	rec := doJSON(e, http.MethodPost, "/instances", map[string]any{"source": "fs", "path": "inst.nt"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(e, http.MethodPost, "/ontology", map[string]any{"source": "fs", "path": "onto.nt"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(e, http.MethodPost, "/instances", map[string]any{"source": "fs", "path": "inst.nt"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Result explorer.Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, explorer.OpInstances, resp.Result.Operation)
	assert.Equal(t, app.Session.Stats(), resp.Result.Stats)
}

func TestLoadErrors(t *testing.T) {
	e, _ := newTestEcho(t)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{name: "missing path", body: map[string]any{"source": "fs"}, want: http.StatusBadRequest},
		{name: "unknown source", body: map[string]any{"source": "ftp", "path": "onto.nt"}, want: http.StatusBadRequest},
		{name: "unconfigured source", body: map[string]any{"source": "s3", "path": "onto.nt"}, want: http.StatusBadRequest},
		{name: "missing file", body: map[string]any{"source": "fs", "path": "nope.nt"}, want: http.StatusNotFound},
		{name: "escaping path", body: map[string]any{"source": "fs", "path": "../onto.nt"}, want: http.StatusBadRequest},
		{name: "malformed", body: map[string]any{"source": "fs", "path": "broken.ttl"}, want: http.StatusBadRequest},
		{name: "unsupported format", body: map[string]any{"source": "fs", "path": "onto.nt", "format": "csv"}, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/ontology", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestLoadUpload(t *testing.T) {
	e, app := newTestEcho(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "ontology.nt")
	require.NoError(t, err)
	_, err = part.Write([]byte(ontologyNT))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/ontology", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, app.Session.Stats().Classes)
}

func TestUploadTooLarge(t *testing.T) {
	e, app := newTestEcho(t)
	app.MaxUploadBytes = 8

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "ontology.nt")
	require.NoError(t, err)
	_, err = part.Write([]byte(ontologyNT))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/ontology", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, app.Session.Stats().Nodes)
}

func TestViewInteractions(t *testing.T) {
	e, _ := newTestEcho(t)
	require.Equal(t, http.StatusOK, doJSON(e, http.MethodPost, "/ontology", map[string]any{"source": "fs", "path": "onto.nt"}).Code)
	require.Equal(t, http.StatusOK, doJSON(e, http.MethodPost, "/instances", map[string]any{"source": "fs", "path": "inst.nt"}).Code)

	rec := doJSON(e, http.MethodPost, "/search", map[string]any{"query": "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)
	assert.Equal(t, view.ModeSearch, v.Mode)
	assert.Equal(t, "alice", v.Query)

	rec = doJSON(e, http.MethodPost, "/click", map[string]any{"id": "http://ex.org/missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodPost, "/click", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPut, "/accumulate", map[string]any{"enabled": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeView(t, rec).Accumulate)

	rec = doJSON(e, http.MethodPut, "/accumulate", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/click", map[string]any{"id": "http://ex.org/alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	v = decodeView(t, rec)
	assert.Equal(t, view.ModeClickExpand, v.Mode)
	assert.Equal(t, "http://ex.org/alice", v.LastClicked)

	rec = doJSON(e, http.MethodPost, "/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, view.ModeReset, decodeView(t, rec).Mode)

	rec = doJSON(e, http.MethodGet, "/view", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeView(t, rec).Nodes)
}

func TestClipboard(t *testing.T) {
	e, _ := newTestEcho(t)
	require.Equal(t, http.StatusOK, doJSON(e, http.MethodPost, "/ontology", map[string]any{"source": "fs", "path": "onto.nt"}).Code)

	req := httptest.NewRequest(http.MethodGet, "/nodes/"+escape("http://ex.org/Person")+"/clipboard", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Person", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/nodes/missing/clipboard", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsAndSources(t *testing.T) {
	e, _ := newTestEcho(t)

	rec := doJSON(e, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats explorer.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Zero(t, stats.Nodes)

	rec = doJSON(e, http.MethodGet, "/sources", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"files":[]}`, rec.Body.String())
}

func escape(id string) string {
	r := strings.NewReplacer(":", "%3A", "/", "%2F")
	return r.Replace(id)
}
