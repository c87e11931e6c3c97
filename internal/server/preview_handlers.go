package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bookmarkd/internal/screenshot"
	"github.com/mdouchement/bookmarkd/internal/server/service"
	"github.com/mdouchement/bookmarkd/internal/sferror"
)

// Preview renders the SVG card used when no screenshot service is configured.
func Preview(c echo.Context) error {
	target := c.QueryParam("url")
	if target == "" || !service.ValidURL(target) {
		return sferror.BadRequest("A valid url query parameter is required.")
	}

	c.Response().Header().Set(echo.HeaderContentType, "image/svg+xml")
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=86400")
	c.Response().WriteHeader(http.StatusOK)
	return screenshot.RenderPreview(c.Response(), target)
}
