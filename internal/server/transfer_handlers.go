package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bookmarkd/internal/server/service"
	"github.com/mdouchement/bookmarkd/internal/sferror"
	"github.com/pkg/errors"
)

// transfer contains the export and import handlers.
type transfer struct {
	transfers *service.TransferService
}

///// Export
////
//

// Export returns the whole collection of the current_user as a downloadable JSON file.
func (h *transfer) Export(c echo.Context) error {
	export, err := h.transfers.Export(currentUser(c))
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("bookmarks-export-%s.json", export.ExportDate.Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.JSON(http.StatusOK, export)
}

///// Import
////
//

// Import appends an exported collection to the current_user's one.
func (h *transfer) Import(c echo.Context) error {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errors.Wrap(err, "could not read import payload")
	}
	if len(data) == 0 {
		return sferror.BadRequest("Request body can't be empty.")
	}

	result, err := h.transfers.Import(currentUser(c), data)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
