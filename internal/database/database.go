package database

import (
	"github.com/mdouchement/bookmarkd/internal/model"
)

type (
	// A Client can interacts with the database.
	Client interface {
		Tx

		// Transaction runs fn inside a single read-write transaction.
		// All the writes performed through the given Tx are discarded when fn returns an error.
		Transaction(fn func(tx Tx) error) error
		// SetBookmarkScreenshot updates only the screenshot of the given bookmark.
		SetBookmarkScreenshot(id, screenshot string) error
		// Close the database.
		Close() error
	}

	// A Tx gathers all the operations available inside and outside a transaction.
	Tx interface {
		// Save inserts or updates the entry in database with the given model.
		Save(m model.Model) error
		// Delete deletes the entry in database with the given model.
		Delete(m model.Model) error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool
		// IsAlreadyExists returns true if err is an already exists error.
		IsAlreadyExists(err error) bool

		UserInteraction
		SessionInteraction
		TabInteraction
		BookmarkInteraction
	}

	// An UserInteraction defines all the methods used to interact with a user record.
	UserInteraction interface {
		// FindUser returns the user for the given id (UUID).
		FindUser(id string) (*model.User, error)
		// FindUserByUsername returns the user for the given username.
		FindUserByUsername(username string) (*model.User, error)
		// FindUserByMail returns the user for the given email.
		FindUserByMail(email string) (*model.User, error)
	}

	// An SessionInteraction defines all the methods used to interact with a session record.
	SessionInteraction interface {
		// FindSessionByUserID returns the session for the given id and user id.
		FindSessionByUserID(id, userID string) (*model.Session, error)
		// DeleteSessionsByUserID deletes all the sessions of the given user.
		DeleteSessionsByUserID(userID string) error
	}

	// A TabInteraction defines all the methods used to interact with tab records.
	TabInteraction interface {
		// FindTabByUserID returns the tab for the given id and user id.
		FindTabByUserID(id, userID string) (*model.Tab, error)
		// FindTabsByUserID returns all the tabs of the given user sorted by order.
		FindTabsByUserID(userID string) ([]*model.Tab, error)
		// FindTabsByParentID returns the sibling tabs sharing the given parent, sorted by order.
		// An empty parentID targets top-level tabs.
		FindTabsByParentID(userID, parentID string) ([]*model.Tab, error)
		// FindTabsByIDs returns the tabs matching the given ids and owned by the given user.
		FindTabsByIDs(ids []string, userID string) ([]*model.Tab, error)
		// CountTabsByParentID returns the number of sibling tabs sharing the given parent.
		CountTabsByParentID(userID, parentID string) (int, error)
		// DeleteTabsByUserID deletes all the tabs of the given user.
		DeleteTabsByUserID(userID string) error
	}

	// A BookmarkInteraction defines all the methods used to interact with bookmark records.
	BookmarkInteraction interface {
		// FindBookmarkByUserID returns the bookmark for the given id and user id.
		FindBookmarkByUserID(id, userID string) (*model.Bookmark, error)
		// FindBookmarksByUserID returns all the bookmarks of the user sorted by order.
		// When tabID is not empty, only the bookmarks of this tab are returned.
		FindBookmarksByUserID(userID, tabID string) ([]*model.Bookmark, error)
		// FindBookmarksByTabID returns the bookmarks of the given tab sorted by order.
		FindBookmarksByTabID(tabID string) ([]*model.Bookmark, error)
		// FindBookmarksByIDs returns the bookmarks matching the given ids and owned by the given user.
		FindBookmarksByIDs(ids []string, userID string) ([]*model.Bookmark, error)
		// CountBookmarksByTabID returns the number of bookmarks of the given tab.
		CountBookmarksByTabID(tabID string) (int, error)
		// DeleteBookmarksByTabID deletes all the bookmarks of the given tab.
		DeleteBookmarksByTabID(tabID string) error
		// DeleteBookmarksByUserID deletes all the bookmarks of the given user.
		DeleteBookmarksByUserID(userID string) error
	}
)
