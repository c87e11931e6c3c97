package ordering

import (
	"github.com/mdouchement/bookmarkd/internal/database"
	"github.com/mdouchement/bookmarkd/internal/model"
	"github.com/mdouchement/bookmarkd/internal/sferror"
	"github.com/pkg/errors"
)

type (
	// A Strategy applies the validated updates of a BulkReorder.
	// The given bookmarks are indexed by their ID and all belong to the requesting user.
	Strategy interface {
		Apply(tx database.Tx, bookmarks map[string]*model.Bookmark, updates []Update) error
	}

	// Trusting applies the given orders as is.
	// The caller is trusted to send a consistent ordering, non-dense orders may be persisted.
	Trusting struct{}

	// Strict applies the given orders and rejects the whole batch
	// when one of the affected tabs ends up with non-dense orders.
	Strict struct{}
)

// Apply implements Strategy.
func (Trusting) Apply(tx database.Tx, bookmarks map[string]*model.Bookmark, updates []Update) error {
	for _, u := range updates {
		b := bookmarks[u.ID]
		b.Order = *u.Order
		b.TabID = u.TabID

		if err := tx.Save(b); err != nil {
			return errors.Wrap(err, "could not apply bookmark update")
		}
	}
	return nil
}

// Apply implements Strategy.
func (Strict) Apply(tx database.Tx, bookmarks map[string]*model.Bookmark, updates []Update) error {
	affected := map[string]bool{}
	for _, b := range bookmarks {
		affected[b.TabID] = true
	}
	for _, u := range updates {
		affected[u.TabID] = true
	}

	if err := (Trusting{}).Apply(tx, bookmarks, updates); err != nil {
		return err
	}

	for tabID := range affected {
		siblings, err := tx.FindBookmarksByTabID(tabID)
		if err != nil {
			return err
		}

		orders := make([]int, len(siblings))
		for i, b := range siblings {
			orders[i] = b.Order
		}

		if !Dense(orders) {
			return sferror.BadRequest("Updates leave gaps or duplicates in the tab ordering.").WithDetails(map[string]string{
				"tab": tabID,
			})
		}
	}
	return nil
}
