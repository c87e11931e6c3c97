package database

import (
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/msgpack"
	"github.com/asdine/storm/v3/q"
	"github.com/gofrs/uuid"
	"github.com/mdouchement/bookmarkd/internal/model"
	"github.com/pkg/errors"
)

type strm struct {
	db *storm.DB
	// node is either the database root or the current transaction.
	node storm.Node
}

// StormCodec is the format used to store data in the database.
var StormCodec = storm.Codec(msgpack.Codec)

// Models lists all the records stored in the database.
func Models() []any {
	return []any{
		&model.User{},
		&model.Session{},
		&model.Tab{},
		&model.Bookmark{},
	}
}

// StormInit initializes Storm database.
func StormInit(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	for _, m := range Models() {
		if err := db.Init(m); err != nil {
			return errors.Wrapf(err, "could not init %T index", m)
		}
	}
	return nil
}

// StormReIndex reindex Storm database.
func StormReIndex(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	for _, m := range Models() {
		if err := db.ReIndex(m); err != nil {
			return errors.Wrapf(err, "could not ReIndex %T", m)
		}
	}
	return nil
}

// StormOpen returns a new Storm database connection.
func StormOpen(database string) (Client, error) {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}

	return &strm{
		db:   db,
		node: db,
	}, nil
}

// Transaction runs fn inside a single read-write transaction.
func (c *strm) Transaction(fn func(tx Tx) error) error {
	node, err := c.db.Begin(true)
	if err != nil {
		return errors.Wrap(err, "could not begin transaction")
	}
	defer node.Rollback() // no-op once committed

	if err = fn(&strm{db: c.db, node: node}); err != nil {
		return err
	}

	return errors.Wrap(node.Commit(), "could not commit transaction")
}

// Save inserts or updates the entry in database with the given model.
func (c *strm) Save(m model.Model) error {
	id := m.GetID()
	if id == "" {
		id = uuid.Must(uuid.NewV4()).String()
	}
	m.Touch(id, time.Now().UTC())

	return errors.Wrap(c.node.Save(m), "could not save the model")
}

// Delete deletes the entry in database with the given model.
func (c *strm) Delete(m model.Model) error {
	return errors.Wrap(c.node.DeleteStruct(m), "could not delete the model")
}

// Close the database.
func (c *strm) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is a not found error.
func (c *strm) IsNotFound(err error) bool {
	return errors.Cause(err) == storm.ErrNotFound
}

// IsAlreadyExists returns true if err is an already exists error.
func (c *strm) IsAlreadyExists(err error) bool {
	return errors.Cause(err) == storm.ErrAlreadyExists
}

// FindUser returns the user for the given id (UUID).
func (c *strm) FindUser(id string) (*model.User, error) {
	var user model.User
	if err := c.node.One("ID", id, &user); err != nil {
		return nil, errors.Wrap(err, "find user by id")
	}
	return &user, nil
}

// FindUserByUsername returns the user for the given username.
func (c *strm) FindUserByUsername(username string) (*model.User, error) {
	var user model.User
	if err := c.node.One("Username", username, &user); err != nil {
		return nil, errors.Wrap(err, "find user by username")
	}
	return &user, nil
}

// FindUserByMail returns the user for the given email.
func (c *strm) FindUserByMail(email string) (*model.User, error) {
	var user model.User
	if err := c.node.One("Email", email, &user); err != nil {
		return nil, errors.Wrap(err, "find user by mail")
	}
	return &user, nil
}

// FindSessionByUserID returns the session for the given id and user id.
func (c *strm) FindSessionByUserID(id, userID string) (*model.Session, error) {
	var session model.Session
	err := c.node.Select(q.Eq("ID", id), q.Eq("UserID", userID)).First(&session)
	if err != nil {
		return nil, errors.Wrap(err, "find session by id and user id")
	}
	return &session, nil
}

// DeleteSessionsByUserID deletes all the sessions of the given user.
func (c *strm) DeleteSessionsByUserID(userID string) error {
	err := c.node.Select(q.Eq("UserID", userID)).Delete(&model.Session{})
	if err != nil && !c.IsNotFound(err) {
		return errors.Wrap(err, "could not delete sessions")
	}
	return nil
}

// FindTabByUserID returns the tab for the given id and user id.
func (c *strm) FindTabByUserID(id, userID string) (*model.Tab, error) {
	var tab model.Tab
	err := c.node.Select(q.Eq("ID", id), q.Eq("UserID", userID)).First(&tab)
	if err != nil {
		return nil, errors.Wrap(err, "could not find tab by user id")
	}
	return &tab, nil
}

// FindTabsByUserID returns all the tabs of the given user sorted by order.
func (c *strm) FindTabsByUserID(userID string) ([]*model.Tab, error) {
	tabs := make([]*model.Tab, 0)
	err := c.node.Select(q.Eq("UserID", userID)).OrderBy("Order").Find(&tabs)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find tabs by user id")
	}
	return tabs, nil
}

// FindTabsByParentID returns the sibling tabs sharing the given parent, sorted by order.
func (c *strm) FindTabsByParentID(userID, parentID string) ([]*model.Tab, error) {
	tabs := make([]*model.Tab, 0)
	err := c.node.Select(q.Eq("UserID", userID), q.Eq("ParentID", parentID)).OrderBy("Order").Find(&tabs)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find tabs by parent id")
	}
	return tabs, nil
}

// FindTabsByIDs returns the tabs matching the given ids and owned by the given user.
func (c *strm) FindTabsByIDs(ids []string, userID string) ([]*model.Tab, error) {
	tabs := make([]*model.Tab, 0)
	err := c.node.Select(q.In("ID", ids), q.Eq("UserID", userID)).Find(&tabs)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find tabs by ids")
	}
	return tabs, nil
}

// CountTabsByParentID returns the number of sibling tabs sharing the given parent.
func (c *strm) CountTabsByParentID(userID, parentID string) (int, error) {
	n, err := c.node.Select(q.Eq("UserID", userID), q.Eq("ParentID", parentID)).Count(&model.Tab{})
	if err != nil && !c.IsNotFound(err) {
		return 0, errors.Wrap(err, "could not count tabs")
	}
	return n, nil
}

// DeleteTabsByUserID deletes all the tabs of the given user.
func (c *strm) DeleteTabsByUserID(userID string) error {
	err := c.node.Select(q.Eq("UserID", userID)).Delete(&model.Tab{})
	if err != nil && !c.IsNotFound(err) {
		return errors.Wrap(err, "could not delete tabs")
	}
	return nil
}

// FindBookmarkByUserID returns the bookmark for the given id and user id.
func (c *strm) FindBookmarkByUserID(id, userID string) (*model.Bookmark, error) {
	var bookmark model.Bookmark
	err := c.node.Select(q.Eq("ID", id), q.Eq("UserID", userID)).First(&bookmark)
	if err != nil {
		return nil, errors.Wrap(err, "could not find bookmark by user id")
	}
	return &bookmark, nil
}

// FindBookmarksByUserID returns all the bookmarks of the user sorted by order.
func (c *strm) FindBookmarksByUserID(userID, tabID string) ([]*model.Bookmark, error) {
	query := []q.Matcher{q.Eq("UserID", userID)}
	if tabID != "" {
		query = append(query, q.Eq("TabID", tabID))
	}

	bookmarks := make([]*model.Bookmark, 0)
	err := c.node.Select(query...).OrderBy("Order").Find(&bookmarks)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find bookmarks by user id")
	}
	return bookmarks, nil
}

// FindBookmarksByTabID returns the bookmarks of the given tab sorted by order.
func (c *strm) FindBookmarksByTabID(tabID string) ([]*model.Bookmark, error) {
	bookmarks := make([]*model.Bookmark, 0)
	err := c.node.Select(q.Eq("TabID", tabID)).OrderBy("Order").Find(&bookmarks)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find bookmarks by tab id")
	}
	return bookmarks, nil
}

// FindBookmarksByIDs returns the bookmarks matching the given ids and owned by the given user.
func (c *strm) FindBookmarksByIDs(ids []string, userID string) ([]*model.Bookmark, error) {
	bookmarks := make([]*model.Bookmark, 0)
	err := c.node.Select(q.In("ID", ids), q.Eq("UserID", userID)).Find(&bookmarks)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find bookmarks by ids")
	}
	return bookmarks, nil
}

// CountBookmarksByTabID returns the number of bookmarks of the given tab.
func (c *strm) CountBookmarksByTabID(tabID string) (int, error) {
	n, err := c.node.Select(q.Eq("TabID", tabID)).Count(&model.Bookmark{})
	if err != nil && !c.IsNotFound(err) {
		return 0, errors.Wrap(err, "could not count bookmarks")
	}
	return n, nil
}

// DeleteBookmarksByTabID deletes all the bookmarks of the given tab.
func (c *strm) DeleteBookmarksByTabID(tabID string) error {
	err := c.node.Select(q.Eq("TabID", tabID)).Delete(&model.Bookmark{})
	if err != nil && !c.IsNotFound(err) {
		return errors.Wrap(err, "could not delete bookmarks")
	}
	return nil
}

// DeleteBookmarksByUserID deletes all the bookmarks of the given user.
func (c *strm) DeleteBookmarksByUserID(userID string) error {
	err := c.node.Select(q.Eq("UserID", userID)).Delete(&model.Bookmark{})
	if err != nil && !c.IsNotFound(err) {
		return errors.Wrap(err, "could not delete bookmarks")
	}
	return nil
}

// SetBookmarkScreenshot updates only the screenshot of the given bookmark.
func (c *strm) SetBookmarkScreenshot(id, screenshot string) error {
	bookmark := &model.Bookmark{Base: model.Base{ID: id}}
	return errors.Wrap(c.node.UpdateField(bookmark, "Screenshot", screenshot), "could not update bookmark screenshot")
}
