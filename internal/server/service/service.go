package service

import (
	"net/url"

	"github.com/mdouchement/bookmarkd/internal/database"
	"github.com/mdouchement/bookmarkd/internal/model"
	"github.com/mdouchement/bookmarkd/internal/sferror"
	"github.com/pkg/errors"
)

type (
	// M is an arbitrary map.
	M map[string]any

	// A Render is an arbitrary payload serializable in JSON by the API.
	Render any

	// Params are the basic fields used in requests.
	Params struct {
		UserAgent string `json:"-"`
	}
)

// ValidURL returns true if the given string is an absolute URL.
func ValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func findTab(db database.Tx, id, userID string) (*model.Tab, error) {
	tab, err := db.FindTabByUserID(id, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, sferror.NotFound("Tab not found.")
		}
		return nil, errors.Wrap(err, "could not get tab")
	}
	return tab, nil
}

func findBookmark(db database.Tx, id, userID string) (*model.Bookmark, error) {
	bookmark, err := db.FindBookmarkByUserID(id, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, sferror.NotFound("Bookmark not found.")
		}
		return nil, errors.Wrap(err, "could not get bookmark")
	}
	return bookmark, nil
}

func tabsByID(db database.Tx, userID string) (map[string]*model.Tab, error) {
	tabs, err := db.FindTabsByUserID(userID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]*model.Tab, len(tabs))
	for _, tab := range tabs {
		index[tab.ID] = tab
	}
	return index, nil
}
