package service

import (
	"context"
	"strings"

	"github.com/mdouchement/bookmarkd/internal/database"
	"github.com/mdouchement/bookmarkd/internal/model"
	"github.com/mdouchement/bookmarkd/internal/ordering"
	"github.com/mdouchement/bookmarkd/internal/server/serializer"
	"github.com/mdouchement/bookmarkd/internal/sferror"
	"github.com/pkg/errors"
)

type (
	// CreateTabParams are used to create a tab.
	CreateTabParams struct {
		Name     string `json:"name"`
		Icon     string `json:"icon"`
		ParentID string `json:"parentId"`
	}

	// UpdateTabParams are used to update a tab.
	// Nil fields are left untouched.
	UpdateTabParams struct {
		ID    string  `param:"id" json:"-"`
		Name  *string `json:"name"`
		Icon  *string `json:"icon"`
		Order *int    `json:"order"`
	}

	// ReorderTabParams are used to reorder a tab among its siblings.
	ReorderTabParams struct {
		TabID            string `json:"tabId"`
		SourceIndex      *int   `json:"sourceIndex"`
		DestinationIndex *int   `json:"destinationIndex"`
	}

	// A TabService handles tabs and sub-categories.
	TabService struct {
		db      database.Client
		mutator *ordering.Mutator
	}
)

// NewTab returns a new TabService.
func NewTab(db database.Client, mutator *ordering.Mutator) *TabService {
	return &TabService{
		db:      db,
		mutator: mutator,
	}
}

// ListTabs returns the ordered top-level tabs of the user with their ordered sub-categories.
func (s *TabService) ListTabs(_ context.Context, userID string) ([]*model.TabTree, error) {
	tabs, err := s.db.FindTabsByUserID(userID)
	if err != nil {
		return nil, err
	}

	bookmarks, err := s.db.FindBookmarksByUserID(userID, "")
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, b := range bookmarks {
		counts[b.TabID]++
	}

	// tabs are sorted by order so children are appended in order.
	nodes := make(map[string]*model.TabTree, len(tabs))
	for _, tab := range tabs {
		nodes[tab.ID] = &model.TabTree{
			Tab:           *tab,
			BookmarkCount: counts[tab.ID],
			Children:      []*model.TabTree{},
		}
	}

	roots := []*model.TabTree{}
	for _, tab := range tabs {
		node := nodes[tab.ID]
		if tab.IsTopLevel() {
			roots = append(roots, node)
			continue
		}

		if parent, ok := nodes[tab.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}

	return roots, nil
}

// Create appends a new tab to its siblings.
func (s *TabService) Create(user *model.User, params CreateTabParams) (*model.TabTree, error) {
	tab := &model.Tab{
		Name:     strings.TrimSpace(params.Name),
		Icon:     strings.TrimSpace(params.Icon),
		ParentID: params.ParentID,
	}
	if tab.Name == "" {
		return nil, sferror.BadRequest("Tab name is required.")
	}

	if err := s.mutator.AppendTab(user.ID, tab); err != nil {
		return nil, err
	}

	return &model.TabTree{
		Tab:      *tab,
		Children: []*model.TabTree{},
	}, nil
}

// Get returns the tab with its ordered bookmarks.
func (s *TabService) Get(user *model.User, id string) (Render, error) {
	tab, err := findTab(s.db, id, user.ID)
	if err != nil {
		return nil, err
	}

	bookmarks, err := s.db.FindBookmarksByTabID(tab.ID)
	if err != nil {
		return nil, err
	}

	return serializer.Tab(tab, bookmarks), nil
}

// Update moves the tab among its siblings, renames it and changes its icon.
func (s *TabService) Update(user *model.User, params UpdateTabParams) (*model.Tab, error) {
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return nil, sferror.BadRequest("Tab name can not be empty.")
	}

	// The move validates the ownership and the index before any field is edited.
	if params.Order != nil {
		if _, err := s.mutator.MoveTab(user.ID, params.ID, *params.Order); err != nil {
			return nil, err
		}
	}

	var tab *model.Tab
	err := s.db.Transaction(func(tx database.Tx) (err error) {
		tab, err = findTab(tx, params.ID, user.ID)
		if err != nil {
			return err
		}
		if params.Name == nil && params.Icon == nil {
			return nil
		}

		if params.Name != nil {
			tab.Name = strings.TrimSpace(*params.Name)
		}
		if params.Icon != nil {
			tab.Icon = strings.TrimSpace(*params.Icon)
		}
		return errors.Wrap(tx.Save(tab), "could not persist tab")
	})

	return tab, err
}

// Delete removes the tab with its bookmarks and sub-categories.
func (s *TabService) Delete(user *model.User, id string) error {
	return s.mutator.RemoveTab(user.ID, id)
}

// Reorder moves the tab among its siblings.
func (s *TabService) Reorder(user *model.User, params ReorderTabParams) error {
	if params.TabID == "" || params.SourceIndex == nil || params.DestinationIndex == nil {
		return sferror.BadRequest("tabId, sourceIndex and destinationIndex are required.")
	}

	return s.mutator.ReorderTab(user.ID, params.TabID, *params.SourceIndex, *params.DestinationIndex)
}
