package ordering

import (
	"slices"

	"github.com/gofrs/uuid"
	"github.com/mdouchement/bookmarkd/internal/database"
	"github.com/mdouchement/bookmarkd/internal/model"
	"github.com/mdouchement/bookmarkd/internal/sferror"
	"github.com/pkg/errors"
)

type (
	// A Mutator maintains the dense order of the bookmarks inside their tab
	// and of the tabs among their siblings.
	//
	// Every operation runs in a single database transaction and checks that all the
	// involved records belong to the given user. Ownership failures are reported as
	// not found errors so the existence of other users' data is not leaked.
	Mutator struct {
		db       database.Client
		strategy Strategy
	}

	// An Update is a client supplied assignment applied by BulkReorder.
	Update struct {
		ID    string `json:"id"`
		Order *int   `json:"order"`
		TabID string `json:"tabId"`
	}

	missing struct {
		Bookmarks []string `json:"bookmarks,omitempty"`
		Tabs      []string `json:"tabs,omitempty"`
	}
)

// New returns a new Mutator.
// A nil strategy falls back to Trusting.
func New(db database.Client, strategy Strategy) *Mutator {
	if strategy == nil {
		strategy = Trusting{}
	}

	return &Mutator{
		db:       db,
		strategy: strategy,
	}
}

// Append places the given bookmark at the end of its tab and persists it.
func (m *Mutator) Append(userID string, bookmark *model.Bookmark) error {
	return m.db.Transaction(func(tx database.Tx) error {
		if _, err := findTab(tx, bookmark.TabID, userID, "Tab not found."); err != nil {
			return err
		}

		n, err := tx.CountBookmarksByTabID(bookmark.TabID)
		if err != nil {
			return err
		}

		bookmark.UserID = userID
		bookmark.Order = n
		return errors.Wrap(tx.Save(bookmark), "could not save bookmark")
	})
}

// MoveToPartition appends the bookmark to the destination tab and closes the gap left in its former tab.
// It is a no-op when the bookmark already belongs to the destination tab.
func (m *Mutator) MoveToPartition(userID, bookmarkID, destTabID string) (*model.Bookmark, error) {
	return m.MoveToPosition(userID, bookmarkID, destTabID, nil)
}

// MoveToPosition moves the bookmark at the given index of the destination tab.
// A nil index appends the bookmark like MoveToPartition does.
func (m *Mutator) MoveToPosition(userID, bookmarkID, destTabID string, index *int) (*model.Bookmark, error) {
	var bookmark *model.Bookmark

	err := m.db.Transaction(func(tx database.Tx) (err error) {
		bookmark, err = m.MoveToPositionTx(tx, userID, bookmarkID, destTabID, index)
		return err
	})

	return bookmark, err
}

// MoveToPositionTx is MoveToPosition running inside the given transaction,
// so callers can combine the move with other writes.
func (m *Mutator) MoveToPositionTx(tx database.Tx, userID, bookmarkID, destTabID string, index *int) (*model.Bookmark, error) {
	b, err := findBookmark(tx, bookmarkID, userID)
	if err != nil {
		return nil, err
	}
	if _, err = findTab(tx, destTabID, userID, "Destination tab not found."); err != nil {
		return nil, err
	}

	if index == nil {
		return b, appendTo(tx, b, destTabID)
	}

	if b.TabID == destTabID {
		siblings, err := tx.FindBookmarksByTabID(destTabID)
		if err != nil {
			return nil, err
		}

		list, err := Splice(siblings, indexOf(siblings, b.ID), *index)
		if err != nil {
			return nil, sferror.BadRequest("Target index is out of range.")
		}
		return list[*index], renumber(tx, list, destTabID)
	}

	n, err := tx.CountBookmarksByTabID(destTabID)
	if err != nil {
		return nil, err
	}
	if *index < 0 || *index > n {
		return nil, sferror.BadRequest("Target index is out of range.")
	}

	if err = openGap(tx, destTabID, *index); err != nil {
		return nil, err
	}

	tabID, order := b.TabID, b.Order
	b.TabID = destTabID
	b.Order = *index
	if err = tx.Save(b); err != nil {
		return nil, errors.Wrap(err, "could not move bookmark")
	}

	return b, closeGap(tx, tabID, order)
}

// ReorderWithinPartition moves the bookmark from sourceIndex to destIndex inside its tab
// and renumbers the whole tab.
func (m *Mutator) ReorderWithinPartition(userID, bookmarkID string, sourceIndex, destIndex int) error {
	return m.db.Transaction(func(tx database.Tx) error {
		b, err := findBookmark(tx, bookmarkID, userID)
		if err != nil {
			return err
		}

		siblings, err := tx.FindBookmarksByTabID(b.TabID)
		if err != nil {
			return err
		}
		if err = checkSource(siblings, sourceIndex, b.ID); err != nil {
			return err
		}

		list, err := Splice(siblings, sourceIndex, destIndex)
		if err != nil {
			return sferror.BadRequest("Destination index is out of range.")
		}

		return renumber(tx, list, b.TabID)
	})
}

// CrossPartitionReorder removes the bookmark at sourceIndex of the source tab and inserts it
// at destIndex of the destination tab. Both tabs are renumbered.
func (m *Mutator) CrossPartitionReorder(userID, bookmarkID string, sourceIndex, destIndex int, sourceTabID, destTabID string) error {
	if sourceTabID == destTabID {
		return m.ReorderWithinPartition(userID, bookmarkID, sourceIndex, destIndex)
	}

	return m.db.Transaction(func(tx database.Tx) error {
		b, err := findBookmark(tx, bookmarkID, userID)
		if err != nil {
			return err
		}
		if _, err = findTab(tx, sourceTabID, userID, "Source tab not found."); err != nil {
			return err
		}
		if _, err = findTab(tx, destTabID, userID, "Destination tab not found."); err != nil {
			return err
		}
		if b.TabID != sourceTabID {
			return sferror.BadRequest("Bookmark does not belong to the source tab.")
		}

		//
		// Source
		source, err := tx.FindBookmarksByTabID(sourceTabID)
		if err != nil {
			return err
		}
		if err = checkSource(source, sourceIndex, b.ID); err != nil {
			return err
		}
		moved := source[sourceIndex]

		source, err = Remove(source, sourceIndex)
		if err != nil {
			return sferror.BadRequest("Source index is out of range.")
		}
		if err = renumber(tx, source, sourceTabID); err != nil {
			return err
		}

		//
		// Destination
		dest, err := tx.FindBookmarksByTabID(destTabID)
		if err != nil {
			return err
		}

		dest, err = Insert(dest, destIndex, moved)
		if err != nil {
			return sferror.BadRequest("Destination index is out of range.")
		}

		// The moved bookmark gets its new tab through the renumbering.
		return renumber(tx, dest, destTabID)
	})
}

// BulkReorder applies the given assignments once every referenced bookmark and tab is proven
// to belong to the user. The whole batch is rejected otherwise.
// Consistency of the resulting orders depends on the Mutator's Strategy.
func (m *Mutator) BulkReorder(userID string, updates []Update) error {
	if len(updates) == 0 {
		return sferror.BadRequest("Updates list is required.")
	}

	var malformed []int
	for i, u := range updates {
		if !isID(u.ID) || !isID(u.TabID) || u.Order == nil || *u.Order < 0 {
			malformed = append(malformed, i)
		}
	}
	if len(malformed) > 0 {
		return sferror.BadRequest("Malformed updates.").WithDetails(map[string][]int{
			"updates": malformed,
		})
	}

	var ids, tabIDs []string
	for _, u := range updates {
		if !slices.Contains(ids, u.ID) {
			ids = append(ids, u.ID)
		}
		if !slices.Contains(tabIDs, u.TabID) {
			tabIDs = append(tabIDs, u.TabID)
		}
	}

	return m.db.Transaction(func(tx database.Tx) error {
		bookmarks, err := tx.FindBookmarksByIDs(ids, userID)
		if err != nil {
			return err
		}
		tabs, err := tx.FindTabsByIDs(tabIDs, userID)
		if err != nil {
			return err
		}

		found := make(map[string]*model.Bookmark, len(bookmarks))
		for _, b := range bookmarks {
			found[b.ID] = b
		}
		owned := make(map[string]bool, len(tabs))
		for _, t := range tabs {
			owned[t.ID] = true
		}

		var miss missing
		for _, id := range ids {
			if found[id] == nil {
				miss.Bookmarks = append(miss.Bookmarks, id)
			}
		}
		for _, id := range tabIDs {
			if !owned[id] {
				miss.Tabs = append(miss.Tabs, id)
			}
		}
		if len(miss.Bookmarks) > 0 || len(miss.Tabs) > 0 {
			return sferror.NotFound("Some bookmarks or tabs were not found.").WithDetails(miss)
		}

		return m.strategy.Apply(tx, found, updates)
	})
}

// UpdateOrder overwrites the order and the tab of the bookmark without renumbering its siblings.
func (m *Mutator) UpdateOrder(userID, bookmarkID string, order int, tabID string) (*model.Bookmark, error) {
	if order < 0 {
		return nil, sferror.BadRequest("Order must be positive.")
	}

	var bookmark *model.Bookmark
	err := m.db.Transaction(func(tx database.Tx) error {
		b, err := findBookmark(tx, bookmarkID, userID)
		if err != nil {
			return err
		}
		if _, err = findTab(tx, tabID, userID, "Tab not found."); err != nil {
			return err
		}

		b.Order = order
		b.TabID = tabID
		bookmark = b
		return errors.Wrap(tx.Save(b), "could not update bookmark order")
	})

	return bookmark, err
}

// Remove deletes the bookmark and closes the gap it leaves in its tab.
func (m *Mutator) Remove(userID, bookmarkID string) error {
	return m.db.Transaction(func(tx database.Tx) error {
		b, err := findBookmark(tx, bookmarkID, userID)
		if err != nil {
			return err
		}

		if err = tx.Delete(b); err != nil {
			return errors.Wrap(err, "could not delete bookmark")
		}

		return closeGap(tx, b.TabID, b.Order)
	})
}

//
// Helpers
//

func findBookmark(tx database.Tx, id, userID string) (*model.Bookmark, error) {
	b, err := tx.FindBookmarkByUserID(id, userID)
	if err != nil {
		if tx.IsNotFound(err) {
			return nil, sferror.NotFound("Bookmark not found.")
		}
		return nil, errors.Wrap(err, "could not get bookmark")
	}
	return b, nil
}

func findTab(tx database.Tx, id, userID, message string) (*model.Tab, error) {
	t, err := tx.FindTabByUserID(id, userID)
	if err != nil {
		if tx.IsNotFound(err) {
			return nil, sferror.NotFound(message)
		}
		return nil, errors.Wrap(err, "could not get tab")
	}
	return t, nil
}

func appendTo(tx database.Tx, b *model.Bookmark, tabID string) error {
	if b.TabID == tabID {
		return nil
	}

	n, err := tx.CountBookmarksByTabID(tabID)
	if err != nil {
		return err
	}

	former, order := b.TabID, b.Order
	b.TabID = tabID
	b.Order = n
	if err = tx.Save(b); err != nil {
		return errors.Wrap(err, "could not move bookmark")
	}

	return closeGap(tx, former, order)
}

// renumber persists the list positions as orders and assigns tabID to every bookmark.
func renumber(tx database.Tx, bookmarks []*model.Bookmark, tabID string) error {
	for i, b := range bookmarks {
		if b.Order == i && b.TabID == tabID {
			continue
		}

		b.Order = i
		b.TabID = tabID
		if err := tx.Save(b); err != nil {
			return errors.Wrap(err, "could not renumber bookmarks")
		}
	}
	return nil
}

// openGap shifts up the bookmarks placed at or after the given order.
func openGap(tx database.Tx, tabID string, order int) error {
	siblings, err := tx.FindBookmarksByTabID(tabID)
	if err != nil {
		return err
	}

	for _, b := range siblings {
		if b.Order < order {
			continue
		}

		b.Order++
		if err = tx.Save(b); err != nil {
			return errors.Wrap(err, "could not shift bookmark")
		}
	}
	return nil
}

// closeGap shifts down the bookmarks placed after the given order.
func closeGap(tx database.Tx, tabID string, order int) error {
	siblings, err := tx.FindBookmarksByTabID(tabID)
	if err != nil {
		return err
	}

	for _, b := range siblings {
		if b.Order <= order {
			continue
		}

		b.Order--
		if err = tx.Save(b); err != nil {
			return errors.Wrap(err, "could not shift bookmark")
		}
	}
	return nil
}

func checkSource(siblings []*model.Bookmark, index int, id string) error {
	if index < 0 || index >= len(siblings) {
		return sferror.BadRequest("Source index is out of range.")
	}
	if siblings[index].ID != id {
		return sferror.BadRequest("Source index does not match the bookmark.")
	}
	return nil
}

func indexOf(bookmarks []*model.Bookmark, id string) int {
	return slices.IndexFunc(bookmarks, func(b *model.Bookmark) bool {
		return b.ID == id
	})
}

func isID(s string) bool {
	_, err := uuid.FromString(s)
	return err == nil
}
