package routes

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/TomasH60/semantic-blockchain/internal/server/middleware"
	"github.com/TomasH60/semantic-blockchain/pkg/view"
)

type viewResponse struct {
	Message string     `json:"message,omitempty"`
	View    *view.View `json:"view,omitempty"`
}

func GetViewHandler(c echo.Context) error {
	v := c.(*middleware.AppContext).App.Session.View()
	return c.JSON(http.StatusOK, viewResponse{View: &v})
}

// SearchHandler filters the view to nodes whose label contains the query.
// An empty query shows the whole graph.
func SearchHandler(c echo.Context) error {
	type searchData struct {
		Query string `json:"query"`
	}

	data := new(searchData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, viewResponse{
			Message: "Invalid request body",
		})
	}

	v := c.(*middleware.AppContext).App.Session.Search(data.Query)
	return c.JSON(http.StatusOK, viewResponse{View: &v})
}

// ClickHandler focuses a node and its neighbors.
func ClickHandler(c echo.Context) error {
	type clickData struct {
		ID string `json:"id" validate:"required"`
	}

	data := new(clickData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, viewResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, viewResponse{
			Message: "Invalid request body",
		})
	}

	v, ok := c.(*middleware.AppContext).App.Session.Click(data.ID)
	if !ok {
		return c.JSON(http.StatusNotFound, viewResponse{
			Message: "Node not found",
			View:    &v,
		})
	}
	return c.JSON(http.StatusOK, viewResponse{View: &v})
}

func ResetHandler(c echo.Context) error {
	v := c.(*middleware.AppContext).App.Session.Reset()
	return c.JSON(http.StatusOK, viewResponse{View: &v})
}

// AccumulateHandler toggles whether clicks add to the visible set.
func AccumulateHandler(c echo.Context) error {
	type accumulateData struct {
		Enabled *bool `json:"enabled" validate:"required"`
	}

	data := new(accumulateData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, viewResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, viewResponse{
			Message: "Invalid request body",
		})
	}

	v := c.(*middleware.AppContext).App.Session.SetAccumulate(*data.Enabled)
	return c.JSON(http.StatusOK, viewResponse{View: &v})
}

// ClipboardHandler returns the text a client copies for a node.
func ClipboardHandler(c echo.Context) error {
	id, err := url.PathUnescape(c.Param("id"))
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid node id")
	}

	text, ok := c.(*middleware.AppContext).App.Session.ClipboardText(id)
	if !ok {
		return c.String(http.StatusNotFound, "Node not found")
	}
	return c.String(http.StatusOK, text)
}
