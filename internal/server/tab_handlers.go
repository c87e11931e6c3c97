package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bookmarkd/internal/cache"
	"github.com/mdouchement/bookmarkd/internal/server/serializer"
	"github.com/mdouchement/bookmarkd/internal/server/service"
)

// tab contains all tab handlers.
type tab struct {
	tabs  *service.TabService
	cache *cache.Cache
}

///// List
////
//

// List returns the tabs of the current_user with their sub-categories.
func (h *tab) List(c echo.Context) error {
	tabs, err := h.cache.ListTabs(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tabs)
}

///// Create
////
//

// Create appends a new tab or sub-category.
func (h *tab) Create(c echo.Context) error {
	var params service.CreateTabParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	tab, err := h.tabs.Create(currentUser(c), params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, tab)
}

///// Show
////
//

// Show returns the tab with its bookmarks.
func (h *tab) Show(c echo.Context) error {
	tab, err := h.tabs.Get(currentUser(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tab)
}

///// Update
////
//

// Update edits the tab.
func (h *tab) Update(c echo.Context) error {
	var params service.UpdateTabParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	tab, err := h.tabs.Update(currentUser(c), params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tab)
}

///// Delete
////
//

// Delete removes the tab along with its content.
func (h *tab) Delete(c echo.Context) error {
	if err := h.tabs.Delete(currentUser(c), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Message("Tab deleted."))
}

///// Reorder
////
//

// Reorder moves a tab among its siblings.
func (h *tab) Reorder(c echo.Context) error {
	var params service.ReorderTabParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	if err := h.tabs.Reorder(currentUser(c), params); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Message("Tabs reordered."))
}
