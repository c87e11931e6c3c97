package ordering_test

import (
	"math/rand"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/mdouchement/bookmarkd/internal/database"
	"github.com/mdouchement/bookmarkd/internal/model"
	"github.com/mdouchement/bookmarkd/internal/ordering"
	"github.com/mdouchement/bookmarkd/internal/sferror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	db, m := setup(t)
	user := createUser(t, db, "george")
	tab := createTab(t, m, user.ID, "A")

	createBookmarks(t, m, user.ID, tab.ID, "a", "b", "c", "d", "e")

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, titles(t, db, tab.ID))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, orders(t, db, tab.ID))
}

func TestAppend_NotOwnedTab(t *testing.T) {
	db, m := setup(t)
	george := createUser(t, db, "george")
	robert := createUser(t, db, "robert")
	tab := createTab(t, m, robert.ID, "A")

	err := m.Append(george.ID, &model.Bookmark{TabID: tab.ID, Title: "a"})
	assert.Equal(t, http.StatusNotFound, sferror.StatusCode(err))
	assert.Empty(t, titles(t, db, tab.ID))
}

func TestMoveToPartition(t *testing.T) {
	db, m := setup(t)
	user := createUser(t, db, "george")
	a := createTab(t, m, user.ID, "A")
	b := createTab(t, m, user.ID, "B")
	bookmarks := createBookmarks(t, m, user.ID, a.ID, "x", "y", "z")
	createBookmarks(t, m, user.ID, b.ID, "p")

	moved, err := m.MoveToPartition(user.ID, bookmarks[1].ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, moved.TabID)
	assert.Equal(t, 1, moved.Order)

	assert.Equal(t, []string{"p", "y"}, titles(t, db, b.ID))
	assert.Equal(t, []int{0, 1}, orders(t, db, b.ID))
	assert.Equal(t, []string{"x", "z"}, titles(t, db, a.ID))
	assert.Equal(t, []int{0, 1}, orders(t, db, a.ID))
}

func TestMoveToPartition_SameTab(t *testing.T) {
	db, m := setup(t)
	user := createUser(t, db, "george")
	a := createTab(t, m, user.ID, "A")
	bookmarks := createBookmarks(t, m, user.ID, a.ID, "x", "y", "z")

	moved, err := m.MoveToPartition(user.ID, bookmarks[0].ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Order)
	assert.Equal(t, []string{"x", "y", "z"}, titles(t, db, a.ID))
}

func TestMoveToPartition_NotOwned(t *testing.T) {
	db, m := setup(t)
	george := createUser(t, db, "george")
	robert := createUser(t, db, "robert")
	a := createTab(t, m, george.ID, "A")
	foreign := createTab(t, m, robert.ID, "B")
	bookmarks := createBookmarks(t, m, george.ID, a.ID, "x", "y")
	foreigns := createBookmarks(t, m, robert.ID, foreign.ID, "p")

	_, err := m.MoveToPartition(george.ID, bookmarks[0].ID, foreign.ID)
	assert.Equal(t, http.StatusNotFound, sferror.StatusCode(err))

	_, err = m.MoveToPartition(george.ID, foreigns[0].ID, a.ID)
	assert.Equal(t, http.StatusNotFound, sferror.StatusCode(err))

	assert.Equal(t, []string{"x", "y"}, titles(t, db, a.ID))
	assert.Equal(t, []int{0, 1}, orders(t, db, a.ID))
	assert.Equal(t, []string{"p"}, titles(t, db, foreign.ID))
	assert.Equal(t, []int{0}, orders(t, db, foreign.ID))
}

func TestMoveToPosition(t *testing.T) {
	db, m := setup(t)
	user := createUser(t, db, "george")
	a := createTab(t, m, user.ID, "A")
	b := createTab(t, m, user.ID, "B")
	bookmarks := createBookmarks(t, m, user.ID, a.ID, "x", "y", "z")
	createBookmarks(t, m, user.ID, b.ID, "p", "q")

	moved, err := m.MoveToPosition(user.ID, bookmarks[2].ID, b.ID, intp(1))
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Order)
	assert.Equal(t, []string{"p", "z", "q"}, titles(t, db, b.ID))
	assert.Equal(t, []int{0, 1, 2}, orders(t, db, b.ID))
	assert.Equal(t, []string{"x", "y"}, titles(t, db, a.ID))

	// Same tab
	moved, err = m.MoveToPosition(user.ID, bookmarks[0].ID, a.ID, intp(1))
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Order)
	assert.Equal(t, []string{"y", "x"}, titles(t, db, a.ID))
	assert.Equal(t, []int{0, 1}, orders(t, db, a.ID))

	// Out of range
	_, err = m.MoveToPosition(user.ID, bookmarks[0].ID, b.ID, intp(4))
	assert.Equal(t, http.StatusBadRequest, sferror.StatusCode(err))
	assert.Equal(t, []string{"p", "z", "q"}, titles(t, db, b.ID))

	// No index appends
	moved, err = m.MoveToPosition(user.ID, bookmarks[0].ID, b.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, moved.Order)
	assert.Equal(t, []string{"p", "z", "q", "x"}, titles(t, db, b.ID))
	assert.Equal(t, []string{"y"}, titles(t, db, a.ID))
	assert.Equal(t, []int{0}, orders(t, db, a.ID))
}

func TestReorderWithinPartition(t *testing.T) {
	db, m := setup(t)
	user := createUser(t, db, "george")
	a := createTab(t, m, user.ID, "A")
	bookmarks := createBookmarks(t, m, user.ID, a.ID, "a", "b", "c", "d")

	err := m.ReorderWithinPartition(user.ID, bookmarks[0].ID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a", "d"}, titles(t, db, a.ID))
	assert.Equal(t, []int{0, 1, 2, 3}, orders(t, db, a.ID))

	// Inverse move restores the original sequence.
	err = m.ReorderWithinPartition(user.ID, bookmarks[0].ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, titles(t, db, a.ID))
	assert.Equal(t, []int{0, 1, 2, 3}, orders(t, db, a.ID))
}

func TestReorderWithinPartition_Invalid(t *testing.T) {
	db, m := setup(t)
	user := createUser(t, db, "george")
	a := createTab(t, m, user.ID, "A")
	bookmarks := createBookmarks(t, m, user.ID, a.ID, "a", "b", "c")

	err := m.ReorderWithinPartition(user.ID, bookmarks[0].ID, 1, 2)
	assert.Equal(t, http.StatusBadRequest, sferror.StatusCode(err))

	err = m.ReorderWithinPartition(user.ID, bookmarks[0].ID, 0, 3)
	assert.Equal(t, http.StatusBadRequest, sferror.StatusCode(err))

	err = m.ReorderWithinPartition(user.ID, bookmarks[0].ID, -1, 0)
	assert.Equal(t, http.StatusBadRequest, sferror.StatusCode(err))

	err = m.ReorderWithinPartition("nobody", bookmarks[0].ID, 0, 1)
	assert.Equal(t, http.StatusNotFound, sferror.StatusCode(err))

	assert.Equal(t, []string{"a", "b", "c"}, titles(t, db, a.ID))
}

func TestCrossPartitionReorder(t *testing.T) {
	db, m := setup(t)
	user := createUser(t, db, "george")
	a := createTab(t, m, user.ID, "A")
	b := createTab(t, m, user.ID, "B")
	bookmarks := createBookmarks(t, m, user.ID, a.ID, "a", "b", "c")
	createBookmarks(t, m, user.ID, b.ID, "p", "q")

	err := m.CrossPartitionReorder(user.ID, bookmarks[1].ID, 1, 0, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "p", "q"}, titles(t, db, b.ID))
	assert.Equal(t, []int{0, 1, 2}, orders(t, db, b.ID))
	assert.Equal(t, []string{"a", "c"}, titles(t, db, a.ID))
	assert.Equal(t, []int{0, 1}, orders(t, db, a.ID))

	// Insert at the end of the destination.
	err = m.CrossPartitionReorder(user.ID, bookmarks[2].ID, 1, 3, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "p", "q", "c"}, titles(t, db, b.ID))
	assert.Equal(t, []string{"a"}, titles(t, db, a.ID))

	// Destination index out of range leaves both tabs untouched.
	err = m.CrossPartitionReorder(user.ID, bookmarks[0].ID, 0, 9, a.ID, b.ID)
	assert.Equal(t, http.StatusBadRequest, sferror.StatusCode(err))
	assert.Equal(t, []string{"a"}, titles(t, db, a.ID))
	assert.Equal(t, []string{"b", "p", "q", "c"}, titles(t, db, b.ID))

	// Wrong source tab
	err = m.CrossPartitionReorder(user.ID, bookmarks[0].ID, 0, 0, b.ID, a.ID)
	assert.Equal(t, http.StatusBadRequest, sferror.StatusCode(err))
}

func TestBulkReorder(t *testing.T) {
	db, m := setup(t)
	user := createUser(t, db, "george")
	a := createTab(t, m, user.ID, "A")
	b := createTab(t, m, user.ID, "B")
	bookmarks := createBookmarks(t, m, user.ID, a.ID, "a", "b")

	err := m.BulkReorder(user.ID, []ordering.Update{
		{ID: bookmarks[0].ID, Order: intp(1), TabID: a.ID},
		{ID: bookmarks[1].ID, Order: intp(0), TabID: b.ID},
	})
	require.NoError(t, err)

	// Orders are applied as given.
	assert.Equal(t, []string{"a"}, titles(t, db, a.ID))
	assert.Equal(t, []int{1}, orders(t, db, a.ID))
	assert.Equal(t, []string{"b"}, titles(t, db, b.ID))
}

func TestBulkReorder_Rejected(t *testing.T) {
	db, m := setup(t)
	george := createUser(t, db, "george")
	robert := createUser(t, db, "robert")
	a := createTab(t, m, george.ID, "A")
	foreign := createTab(t, m, robert.ID, "B")
	bookmarks := createBookmarks(t, m, george.ID, a.ID, "a", "b")
	foreigns := createBookmarks(t, m, robert.ID, foreign.ID, "p")

	err := m.BulkReorder(george.ID, []ordering.Update{
		{ID: bookmarks[0].ID, Order: intp(1), TabID: a.ID},
		{ID: foreigns[0].ID, Order: intp(0), TabID: a.ID},
	})
	assert.Equal(t, http.StatusNotFound, sferror.StatusCode(err))

	err = m.BulkReorder(george.ID, []ordering.Update{
		{ID: bookmarks[0].ID, Order: intp(1), TabID: a.ID},
		{ID: bookmarks[1].ID, Order: intp(0), TabID: foreign.ID},
	})
	assert.Equal(t, http.StatusNotFound, sferror.StatusCode(err))

	err = m.BulkReorder(george.ID, []ordering.Update{
		{ID: bookmarks[0].ID, Order: intp(1), TabID: a.ID},
		{ID: "not-an-id", Order: intp(0), TabID: a.ID},
	})
	assert.Equal(t, http.StatusBadRequest, sferror.StatusCode(err))

	err = m.BulkReorder(george.ID, nil)
	assert.Equal(t, http.StatusBadRequest, sferror.StatusCode(err))

	assert.Equal(t, []string{"a", "b"}, titles(t, db, a.ID))
	assert.Equal(t, []int{0, 1}, orders(t, db, a.ID))
	assert.Equal(t, []string{"p"}, titles(t, db, foreign.ID))
	assert.Equal(t, []int{0}, orders(t, db, foreign.ID))
}

func TestBulkReorder_Strict(t *testing.T) {
	db, _ := setup(t)
	m := ordering.New(db, ordering.Strict{})
	user := createUser(t, db, "george")
	a := createTab(t, m, user.ID, "A")
	bookmarks := createBookmarks(t, m, user.ID, a.ID, "a", "b", "c")

	err := m.BulkReorder(user.ID, []ordering.Update{
		{ID: bookmarks[0].ID, Order: intp(2), TabID: a.ID},
	})
	assert.Equal(t, http.StatusBadRequest, sferror.StatusCode(err))
	assert.Equal(t, []string{"a", "b", "c"}, titles(t, db, a.ID))
	assert.Equal(t, []int{0, 1, 2}, orders(t, db, a.ID))

	err = m.BulkReorder(user.ID, []ordering.Update{
		{ID: bookmarks[0].ID, Order: intp(2), TabID: a.ID},
		{ID: bookmarks[2].ID, Order: intp(0), TabID: a.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, titles(t, db, a.ID))
}

func TestUpdateOrder(t *testing.T) {
	db, m := setup(t)
	user := createUser(t, db, "george")
	a := createTab(t, m, user.ID, "A")
	bookmarks := createBookmarks(t, m, user.ID, a.ID, "a", "b")

	b, err := m.UpdateOrder(user.ID, bookmarks[0].ID, 5, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, b.Order)
	assert.Equal(t, []int{1, 5}, orders(t, db, a.ID))

	_, err = m.UpdateOrder(user.ID, bookmarks[0].ID, 0, "unknown")
	assert.Equal(t, http.StatusNotFound, sferror.StatusCode(err))
}

func TestRemove(t *testing.T) {
	db, m := setup(t)
	user := createUser(t, db, "george")
	a := createTab(t, m, user.ID, "A")
	bookmarks := createBookmarks(t, m, user.ID, a.ID, "a", "b", "c", "d")

	err := m.Remove(user.ID, bookmarks[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d"}, titles(t, db, a.ID))
	assert.Equal(t, []int{0, 1, 2}, orders(t, db, a.ID))

	err = m.Remove(user.ID, bookmarks[1].ID)
	assert.Equal(t, http.StatusNotFound, sferror.StatusCode(err))
}

func TestRemove_DeleteFailure(t *testing.T) {
	db, m := setup(t)
	user := createUser(t, db, "george")
	a := createTab(t, m, user.ID, "A")
	bookmarks := createBookmarks(t, m, user.ID, a.ID, "a", "b")

	m = ordering.New(failingDelete{Client: db}, nil)
	err := m.Remove(user.ID, bookmarks[0].ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not delete bookmark")
	assert.Equal(t, errDiskFull, errors.Cause(err))
	assert.Equal(t, []string{"a", "b"}, titles(t, db, a.ID))
}

func TestDensityHoldsUnderRandomOperations(t *testing.T) {
	db, m := setup(t)
	user := createUser(t, db, "george")
	tabs := []*model.Tab{
		createTab(t, m, user.ID, "A"),
		createTab(t, m, user.ID, "B"),
		createTab(t, m, user.ID, "C"),
	}
	for _, tab := range tabs {
		createBookmarks(t, m, user.ID, tab.ID, "1", "2", "3")
	}

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		src := tabs[rnd.Intn(len(tabs))]
		dst := tabs[rnd.Intn(len(tabs))]

		list, err := db.FindBookmarksByTabID(src.ID)
		require.NoError(t, err)
		if len(list) == 0 {
			createBookmarks(t, m, user.ID, src.ID, "new")
			continue
		}
		from := rnd.Intn(len(list))
		b := list[from]

		switch rnd.Intn(5) {
		case 0:
			_, err = m.MoveToPartition(user.ID, b.ID, dst.ID)
		case 1:
			n, cerr := db.CountBookmarksByTabID(dst.ID)
			require.NoError(t, cerr)
			index := rnd.Intn(n + 1)
			if dst.ID == src.ID {
				index = rnd.Intn(n)
			}
			_, err = m.MoveToPosition(user.ID, b.ID, dst.ID, &index)
		case 2:
			err = m.ReorderWithinPartition(user.ID, b.ID, from, rnd.Intn(len(list)))
		case 3:
			n, cerr := db.CountBookmarksByTabID(dst.ID)
			require.NoError(t, cerr)
			to := rnd.Intn(n + 1)
			if dst.ID == src.ID {
				to = rnd.Intn(n)
			}
			err = m.CrossPartitionReorder(user.ID, b.ID, from, to, src.ID, dst.ID)
		case 4:
			err = m.Remove(user.ID, b.ID)
		}
		require.NoError(t, err)

		for _, tab := range tabs {
			assert.True(t, ordering.Dense(orders(t, db, tab.ID)), "tab %s is not dense after step %d", tab.Name, i)
		}
	}
}

//
// Tabs
//

func TestAppendTab(t *testing.T) {
	db, m := setup(t)
	user := createUser(t, db, "george")
	a := createTab(t, m, user.ID, "A")
	b := createTab(t, m, user.ID, "B")
	assert.Equal(t, 0, a.Order)
	assert.Equal(t, 1, b.Order)

	sub := &model.Tab{Name: "A.1", ParentID: a.ID}
	require.NoError(t, m.AppendTab(user.ID, sub))
	assert.Equal(t, 0, sub.Order)

	err := m.AppendTab(user.ID, &model.Tab{Name: "A.1.1", ParentID: sub.ID})
	assert.Equal(t, http.StatusBadRequest, sferror.StatusCode(err))

	err = m.AppendTab(user.ID, &model.Tab{Name: "X", ParentID: "unknown"})
	assert.Equal(t, http.StatusNotFound, sferror.StatusCode(err))
}

func TestReorderTab(t *testing.T) {
	db, m := setup(t)
	user := createUser(t, db, "george")
	a := createTab(t, m, user.ID, "A")
	createTab(t, m, user.ID, "B")
	createTab(t, m, user.ID, "C")

	require.NoError(t, m.ReorderTab(user.ID, a.ID, 0, 2))
	assert.Equal(t, []string{"B", "C", "A"}, tabNames(t, db, user.ID, ""))

	err := m.ReorderTab(user.ID, a.ID, 0, 1)
	assert.Equal(t, http.StatusBadRequest, sferror.StatusCode(err))

	tab, err := m.MoveTab(user.ID, a.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, tab.Order)
	assert.Equal(t, []string{"A", "B", "C"}, tabNames(t, db, user.ID, ""))
}

func TestRemoveTab(t *testing.T) {
	db, m := setup(t)
	user := createUser(t, db, "george")
	a := createTab(t, m, user.ID, "A")
	b := createTab(t, m, user.ID, "B")
	c := createTab(t, m, user.ID, "C")
	sub := &model.Tab{Name: "B.1", ParentID: b.ID}
	require.NoError(t, m.AppendTab(user.ID, sub))
	createBookmarks(t, m, user.ID, b.ID, "x", "y")
	createBookmarks(t, m, user.ID, sub.ID, "z")

	require.NoError(t, m.RemoveTab(user.ID, b.ID))
	assert.Equal(t, []string{"A", "C"}, tabNames(t, db, user.ID, ""))
	assert.Empty(t, titles(t, db, b.ID))
	assert.Empty(t, titles(t, db, sub.ID))
	assert.Empty(t, tabNames(t, db, user.ID, b.ID))

	require.NoError(t, m.RemoveTab(user.ID, c.ID))

	err := m.RemoveTab(user.ID, a.ID)
	assert.Equal(t, http.StatusBadRequest, sferror.StatusCode(err))
	assert.Equal(t, []string{"A"}, tabNames(t, db, user.ID, ""))
}

//
// Helpers
//

func setup(t *testing.T) (database.Client, *ordering.Mutator) {
	t.Helper()

	db, err := database.StormOpen(filepath.Join(t.TempDir(), "bookmarkd.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	return db, ordering.New(db, nil)
}

func createUser(t *testing.T, db database.Client, username string) *model.User {
	t.Helper()

	user := &model.User{
		Username: username,
		Email:    username + "@nowhere.lan",
	}
	require.NoError(t, db.Save(user))
	return user
}

func createTab(t *testing.T, m *ordering.Mutator, userID, name string) *model.Tab {
	t.Helper()

	tab := &model.Tab{Name: name}
	require.NoError(t, m.AppendTab(userID, tab))
	return tab
}

func createBookmarks(t *testing.T, m *ordering.Mutator, userID, tabID string, titles ...string) []*model.Bookmark {
	t.Helper()

	var bookmarks []*model.Bookmark
	for _, title := range titles {
		b := &model.Bookmark{
			TabID: tabID,
			URL:   "https://example.com/" + title,
			Title: title,
		}
		require.NoError(t, m.Append(userID, b))
		bookmarks = append(bookmarks, b)
	}
	return bookmarks
}

func titles(t *testing.T, db database.Client, tabID string) []string {
	t.Helper()

	bookmarks, err := db.FindBookmarksByTabID(tabID)
	require.NoError(t, err)

	titles := []string{}
	for _, b := range bookmarks {
		titles = append(titles, b.Title)
	}
	return titles
}

func orders(t *testing.T, db database.Client, tabID string) []int {
	t.Helper()

	bookmarks, err := db.FindBookmarksByTabID(tabID)
	require.NoError(t, err)

	orders := []int{}
	for _, b := range bookmarks {
		orders = append(orders, b.Order)
	}
	return orders
}

func tabNames(t *testing.T, db database.Client, userID, parentID string) []string {
	t.Helper()

	tabs, err := db.FindTabsByParentID(userID, parentID)
	require.NoError(t, err)

	names := []string{}
	for _, tab := range tabs {
		names = append(names, tab.Name)
	}
	return names
}

var errDiskFull = errors.New("disk full")

// failingDelete is a database whose transactions refuse deletions.
type failingDelete struct {
	database.Client
}

func (c failingDelete) Transaction(fn func(tx database.Tx) error) error {
	return c.Client.Transaction(func(tx database.Tx) error {
		return fn(failingDeleteTx{Tx: tx})
	})
}

type failingDeleteTx struct {
	database.Tx
}

func (failingDeleteTx) Delete(model.Model) error {
	return errDiskFull
}

func intp(v int) *int {
	return &v
}
