package service

import (
	"context"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mdouchement/bookmarkd/internal/database"
	"github.com/mdouchement/bookmarkd/internal/model"
	"github.com/mdouchement/bookmarkd/internal/ordering"
	"github.com/mdouchement/bookmarkd/internal/server/serializer"
	"github.com/mdouchement/bookmarkd/internal/sferror"
	"github.com/pkg/errors"
)

type (
	// A Screenshotter captures bookmarks screenshots.
	Screenshotter interface {
		// Dispatch schedules a capture without waiting for it.
		Dispatch(bookmarkID, url string) bool
		// Capture takes the screenshot, persists and returns its location.
		Capture(ctx context.Context, bookmarkID, url string) (string, error)
	}

	// ListBookmarksParams are used to list bookmarks.
	ListBookmarksParams struct {
		TabID string `query:"tabId"`
		// Query fuzzy matches titles, descriptions and URLs.
		Query string `query:"q"`
	}

	// CreateBookmarkParams are used to create a bookmark.
	CreateBookmarkParams struct {
		URL         string `json:"url"`
		Title       string `json:"title"`
		Description string `json:"description"`
		TabID       string `json:"tabId"`
	}

	// UpdateBookmarkParams are used to update a bookmark.
	// Nil fields are left untouched.
	UpdateBookmarkParams struct {
		ID          string  `param:"id" json:"-"`
		URL         *string `json:"url"`
		Title       *string `json:"title"`
		Description *string `json:"description"`
		TabID       *string `json:"tabId"`
		Order       *int    `json:"order"`
	}

	// MoveParams are used to move a bookmark to another tab.
	// Without position, the bookmark is appended to the tab.
	MoveParams struct {
		BookmarkID string `json:"bookmarkId"`
		NewTabID   string `json:"newTabId"`
		Position   *int   `json:"position"`
	}

	// ReorderParams are used to reorder bookmarks.
	// Either Updates (batch form) or the indexes (index form) are provided.
	ReorderParams struct {
		BookmarkID       string             `json:"bookmarkId"`
		SourceIndex      *int               `json:"sourceIndex"`
		DestinationIndex *int               `json:"destinationIndex"`
		SourceTabID      string             `json:"sourceTabId"`
		DestinationTabID string             `json:"destinationTabId"`
		Updates          *[]ordering.Update `json:"updates"`
	}

	// UpdateOrderParams are used to overwrite the order of a bookmark.
	UpdateOrderParams struct {
		BookmarkID string `json:"bookmarkId"`
		NewOrder   *int   `json:"newOrder"`
		TabID      string `json:"tabId"`
	}

	// ScreenshotParams are used to capture the screenshot of a bookmark.
	ScreenshotParams struct {
		BookmarkID string `json:"bookmarkId"`
		URL        string `json:"url"`
	}

	// A BookmarkService handles bookmarks.
	BookmarkService struct {
		db          database.Client
		mutator     *ordering.Mutator
		screenshots Screenshotter
	}
)

// NewBookmark returns a new BookmarkService.
func NewBookmark(db database.Client, mutator *ordering.Mutator, screenshots Screenshotter) *BookmarkService {
	return &BookmarkService{
		db:          db,
		mutator:     mutator,
		screenshots: screenshots,
	}
}

// List returns the ordered bookmarks of the user.
func (s *BookmarkService) List(user *model.User, params ListBookmarksParams) (Render, error) {
	bookmarks, err := s.db.FindBookmarksByUserID(user.ID, params.TabID)
	if err != nil {
		return nil, err
	}

	if q := strings.TrimSpace(params.Query); q != "" {
		matches := make([]*model.Bookmark, 0, len(bookmarks))
		for _, b := range bookmarks {
			if fuzzy.MatchNormalizedFold(q, b.Title) ||
				fuzzy.MatchNormalizedFold(q, b.Description) ||
				fuzzy.MatchNormalizedFold(q, b.URL) {
				matches = append(matches, b)
			}
		}
		bookmarks = matches
	}

	tabs, err := tabsByID(s.db, user.ID)
	if err != nil {
		return nil, err
	}

	return serializer.Bookmarks(bookmarks, tabs), nil
}

// Create appends a new bookmark to its tab and schedules its screenshot.
func (s *BookmarkService) Create(user *model.User, params CreateBookmarkParams) (Render, error) {
	if params.URL == "" || strings.TrimSpace(params.Title) == "" || params.TabID == "" {
		return nil, sferror.BadRequest("url, title and tabId are required.")
	}
	if !ValidURL(params.URL) {
		return nil, sferror.BadRequest("Invalid URL.")
	}

	bookmark := &model.Bookmark{
		TabID:       params.TabID,
		URL:         params.URL,
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
	}
	if err := s.mutator.Append(user.ID, bookmark); err != nil {
		return nil, err
	}

	s.screenshots.Dispatch(bookmark.ID, bookmark.URL)

	return s.render(user, bookmark)
}

// Get returns the bookmark.
func (s *BookmarkService) Get(user *model.User, id string) (Render, error) {
	bookmark, err := findBookmark(s.db, id, user.ID)
	if err != nil {
		return nil, err
	}

	return s.render(user, bookmark)
}

// Update edits the bookmark fields.
// A tab or order change is applied as a move so the tabs ordering stays dense.
func (s *BookmarkService) Update(user *model.User, params UpdateBookmarkParams) (Render, error) {
	if params.URL != nil && !ValidURL(*params.URL) {
		return nil, sferror.BadRequest("Invalid URL.")
	}
	if params.Title != nil && strings.TrimSpace(*params.Title) == "" {
		return nil, sferror.BadRequest("Title can not be empty.")
	}

	var bookmark *model.Bookmark
	var relocated bool
	err := s.db.Transaction(func(tx database.Tx) (err error) {
		bookmark, err = findBookmark(tx, params.ID, user.ID)
		if err != nil {
			return err
		}

		// The move validates the destination ownership and the index before any field is edited.
		tabID := bookmark.TabID
		if params.TabID != nil {
			tabID = *params.TabID
		}
		if tabID != bookmark.TabID || params.Order != nil {
			if _, err = s.mutator.MoveToPositionTx(tx, user.ID, bookmark.ID, tabID, params.Order); err != nil {
				return err
			}

			if bookmark, err = findBookmark(tx, params.ID, user.ID); err != nil {
				return err
			}
		}

		if params.URL == nil && params.Title == nil && params.Description == nil {
			return nil
		}

		if params.URL != nil {
			relocated = *params.URL != bookmark.URL
			bookmark.URL = *params.URL
		}
		if params.Title != nil {
			bookmark.Title = strings.TrimSpace(*params.Title)
		}
		if params.Description != nil {
			bookmark.Description = strings.TrimSpace(*params.Description)
		}
		return errors.Wrap(tx.Save(bookmark), "could not persist bookmark")
	})
	if err != nil {
		return nil, err
	}

	if relocated {
		s.screenshots.Dispatch(bookmark.ID, bookmark.URL)
	}

	return s.render(user, bookmark)
}

// Delete removes the bookmark and closes the gap it leaves in its tab.
func (s *BookmarkService) Delete(user *model.User, id string) error {
	return s.mutator.Remove(user.ID, id)
}

// Move moves the bookmark to another tab.
func (s *BookmarkService) Move(user *model.User, params MoveParams) (Render, error) {
	if params.BookmarkID == "" || params.NewTabID == "" {
		return nil, sferror.BadRequest("bookmarkId and newTabId are required.")
	}

	bookmark, err := s.mutator.MoveToPosition(user.ID, params.BookmarkID, params.NewTabID, params.Position)
	if err != nil {
		return nil, err
	}

	return s.render(user, bookmark)
}

// Reorder reorders bookmarks using either the batch form or the index form.
func (s *BookmarkService) Reorder(user *model.User, params ReorderParams) error {
	if params.Updates != nil {
		return s.mutator.BulkReorder(user.ID, *params.Updates)
	}

	if params.BookmarkID == "" || params.SourceIndex == nil || params.DestinationIndex == nil || params.SourceTabID == "" {
		return sferror.BadRequest("Updates list or bookmarkId, sourceIndex, destinationIndex and sourceTabId are required.")
	}

	if params.DestinationTabID == "" || params.DestinationTabID == params.SourceTabID {
		bookmark, err := findBookmark(s.db, params.BookmarkID, user.ID)
		if err != nil {
			return err
		}
		if bookmark.TabID != params.SourceTabID {
			return sferror.BadRequest("Bookmark does not belong to the source tab.")
		}

		return s.mutator.ReorderWithinPartition(user.ID, params.BookmarkID, *params.SourceIndex, *params.DestinationIndex)
	}

	return s.mutator.CrossPartitionReorder(
		user.ID,
		params.BookmarkID,
		*params.SourceIndex,
		*params.DestinationIndex,
		params.SourceTabID,
		params.DestinationTabID,
	)
}

// UpdateOrder overwrites the order and the tab of the bookmark.
func (s *BookmarkService) UpdateOrder(user *model.User, params UpdateOrderParams) (Render, error) {
	if params.BookmarkID == "" || params.NewOrder == nil || params.TabID == "" {
		return nil, sferror.BadRequest("bookmarkId, newOrder and tabId are required.")
	}

	bookmark, err := s.mutator.UpdateOrder(user.ID, params.BookmarkID, *params.NewOrder, params.TabID)
	if err != nil {
		return nil, err
	}

	return s.render(user, bookmark)
}

// Screenshot captures the screenshot of the bookmark synchronously.
func (s *BookmarkService) Screenshot(ctx context.Context, user *model.User, params ScreenshotParams) (Render, error) {
	if params.BookmarkID == "" || params.URL == "" {
		return nil, sferror.BadRequest("bookmarkId and url are required.")
	}
	if !ValidURL(params.URL) {
		return nil, sferror.BadRequest("Invalid URL.")
	}

	if _, err := findBookmark(s.db, params.BookmarkID, user.ID); err != nil {
		return nil, err
	}

	location, err := s.screenshots.Capture(ctx, params.BookmarkID, params.URL)
	if err != nil {
		return nil, err
	}

	return M{"screenshot": location}, nil
}

func (s *BookmarkService) render(user *model.User, bookmark *model.Bookmark) (Render, error) {
	tab, err := findTab(s.db, bookmark.TabID, user.ID)
	if err != nil {
		return nil, err
	}

	return serializer.Bookmark(bookmark, tab), nil
}
