package serializer

import "github.com/mdouchement/bookmarkd/internal/model"

// Bookmark serializes the render of a bookmark along with a reference to its tab.
func Bookmark(m *model.Bookmark, tab *model.Tab) map[string]any {
	r := map[string]any{
		"id":          m.ID,
		"createdAt":   m.CreatedAt,
		"updatedAt":   m.UpdatedAt,
		"userId":      m.UserID,
		"tabId":       m.TabID,
		"url":         m.URL,
		"title":       m.Title,
		"description": m.Description,
		"screenshot":  m.Screenshot,
		"order":       m.Order,
	}

	if tab != nil {
		r["tab"] = map[string]any{
			"id":   tab.ID,
			"name": tab.Name,
		}
	}

	return r
}

// Bookmarks serializes the render of bookmarks.
// The tabs are indexed by their ID.
func Bookmarks(m []*model.Bookmark, tabs map[string]*model.Tab) []map[string]any {
	bookmarks := make([]map[string]any, len(m))
	for i, b := range m {
		bookmarks[i] = Bookmark(b, tabs[b.TabID])
	}
	return bookmarks
}

// Tab serializes the render of a tab with its ordered bookmarks.
func Tab(m *model.Tab, bookmarks []*model.Bookmark) map[string]any {
	r := map[string]any{
		"id":        m.ID,
		"createdAt": m.CreatedAt,
		"updatedAt": m.UpdatedAt,
		"userId":    m.UserID,
		"parentId":  m.ParentID,
		"name":      m.Name,
		"icon":      m.Icon,
		"order":     m.Order,
	}

	if bookmarks != nil {
		r["bookmarks"] = Bookmarks(bookmarks, nil)
	}

	return r
}
