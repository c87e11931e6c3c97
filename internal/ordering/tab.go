package ordering

import (
	"slices"

	"github.com/mdouchement/bookmarkd/internal/database"
	"github.com/mdouchement/bookmarkd/internal/model"
	"github.com/mdouchement/bookmarkd/internal/sferror"
	"github.com/pkg/errors"
)

// Tabs are ordered among their siblings: top-level tabs of a user on one side,
// sub-categories of a given parent on the other.

// AppendTab places the given tab at the end of its siblings and persists it.
func (m *Mutator) AppendTab(userID string, tab *model.Tab) error {
	return m.db.Transaction(func(tx database.Tx) error {
		if !tab.IsTopLevel() {
			parent, err := findTab(tx, tab.ParentID, userID, "Parent tab not found.")
			if err != nil {
				return err
			}
			if !parent.IsTopLevel() {
				return sferror.BadRequest("Sub-categories can not be nested.")
			}
		}

		n, err := tx.CountTabsByParentID(userID, tab.ParentID)
		if err != nil {
			return err
		}

		tab.UserID = userID
		tab.Order = n
		return errors.Wrap(tx.Save(tab), "could not save tab")
	})
}

// ReorderTab moves the tab from sourceIndex to destIndex among its siblings.
func (m *Mutator) ReorderTab(userID, tabID string, sourceIndex, destIndex int) error {
	return m.db.Transaction(func(tx database.Tx) error {
		tab, err := findTab(tx, tabID, userID, "Tab not found.")
		if err != nil {
			return err
		}

		siblings, err := tx.FindTabsByParentID(userID, tab.ParentID)
		if err != nil {
			return err
		}
		if sourceIndex < 0 || sourceIndex >= len(siblings) {
			return sferror.BadRequest("Source index is out of range.")
		}
		if siblings[sourceIndex].ID != tab.ID {
			return sferror.BadRequest("Source index does not match the tab.")
		}

		list, err := Splice(siblings, sourceIndex, destIndex)
		if err != nil {
			return sferror.BadRequest("Destination index is out of range.")
		}
		return renumberTabs(tx, list)
	})
}

// MoveTab moves the tab at the given index among its siblings.
func (m *Mutator) MoveTab(userID, tabID string, index int) (*model.Tab, error) {
	var tab *model.Tab

	err := m.db.Transaction(func(tx database.Tx) error {
		t, err := findTab(tx, tabID, userID, "Tab not found.")
		if err != nil {
			return err
		}

		siblings, err := tx.FindTabsByParentID(userID, t.ParentID)
		if err != nil {
			return err
		}

		from := slices.IndexFunc(siblings, func(s *model.Tab) bool {
			return s.ID == t.ID
		})
		list, err := Splice(siblings, from, index)
		if err != nil {
			return sferror.BadRequest("Target index is out of range.")
		}

		tab = list[index]
		return renumberTabs(tx, list)
	})

	return tab, err
}

// RemoveTab deletes the tab along with its bookmarks and its sub-categories,
// then renumbers the remaining siblings.
// The last top-level tab of a user can not be removed.
func (m *Mutator) RemoveTab(userID, tabID string) error {
	return m.db.Transaction(func(tx database.Tx) error {
		tab, err := findTab(tx, tabID, userID, "Tab not found.")
		if err != nil {
			return err
		}

		if tab.IsTopLevel() {
			n, err := tx.CountTabsByParentID(userID, "")
			if err != nil {
				return err
			}
			if n <= 1 {
				return sferror.BadRequest("You must keep at least one tab.")
			}

			children, err := tx.FindTabsByParentID(userID, tab.ID)
			if err != nil {
				return err
			}
			for _, child := range children {
				if err = deleteTab(tx, child); err != nil {
					return err
				}
			}
		}

		if err = deleteTab(tx, tab); err != nil {
			return err
		}

		siblings, err := tx.FindTabsByParentID(userID, tab.ParentID)
		if err != nil {
			return err
		}
		return renumberTabs(tx, siblings)
	})
}

func deleteTab(tx database.Tx, tab *model.Tab) error {
	if err := tx.DeleteBookmarksByTabID(tab.ID); err != nil {
		return err
	}
	return errors.Wrap(tx.Delete(tab), "could not delete tab")
}

func renumberTabs(tx database.Tx, tabs []*model.Tab) error {
	for i, t := range tabs {
		if t.Order == i {
			continue
		}

		t.Order = i
		if err := tx.Save(t); err != nil {
			return errors.Wrap(err, "could not renumber tabs")
		}
	}
	return nil
}
