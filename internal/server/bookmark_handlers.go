package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bookmarkd/internal/server/serializer"
	"github.com/mdouchement/bookmarkd/internal/server/service"
)

// bookmark contains all bookmark handlers.
type bookmark struct {
	bookmarks *service.BookmarkService
}

///// List
////
//

// List returns the bookmarks of the current_user, optionally filtered by tab and query.
func (h *bookmark) List(c echo.Context) error {
	var params service.ListBookmarksParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	bookmarks, err := h.bookmarks.List(currentUser(c), params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bookmarks)
}

///// Create
////
//

// Create appends a bookmark to a tab.
func (h *bookmark) Create(c echo.Context) error {
	var params service.CreateBookmarkParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	bookmark, err := h.bookmarks.Create(currentUser(c), params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, bookmark)
}

///// Show
////
//

// Show returns a bookmark.
func (h *bookmark) Show(c echo.Context) error {
	bookmark, err := h.bookmarks.Get(currentUser(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bookmark)
}

///// Update
////
//

// Update edits a bookmark.
func (h *bookmark) Update(c echo.Context) error {
	var params service.UpdateBookmarkParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	bookmark, err := h.bookmarks.Update(currentUser(c), params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bookmark)
}

///// Delete
////
//

// Delete removes a bookmark.
func (h *bookmark) Delete(c echo.Context) error {
	if err := h.bookmarks.Delete(currentUser(c), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Message("Bookmark deleted."))
}

///// Move
////
//

// Move moves a bookmark to another tab.
func (h *bookmark) Move(c echo.Context) error {
	var params service.MoveParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	bookmark, err := h.bookmarks.Move(currentUser(c), params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bookmark)
}

///// Reorder
////
//

// Reorder reorders bookmarks within a tab or across tabs.
func (h *bookmark) Reorder(c echo.Context) error {
	var params service.ReorderParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	if err := h.bookmarks.Reorder(currentUser(c), params); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Message("Bookmarks reordered."))
}

///// Update order
////
//

// UpdateOrder overwrites the order of a bookmark.
func (h *bookmark) UpdateOrder(c echo.Context) error {
	var params service.UpdateOrderParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	bookmark, err := h.bookmarks.UpdateOrder(currentUser(c), params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bookmark)
}

///// Screenshot
////
//

// Screenshot captures the screenshot of a bookmark.
func (h *bookmark) Screenshot(c echo.Context) error {
	var params service.ScreenshotParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	screenshot, err := h.bookmarks.Screenshot(c.Request().Context(), currentUser(c), params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, screenshot)
}
