package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/mdouchement/bookmarkd/internal/database"
	"github.com/mdouchement/bookmarkd/internal/model"
	"github.com/mdouchement/bookmarkd/internal/sferror"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const (
	// ExportVersion is the version of the export format.
	ExportVersion = "1.0"
	// DefaultBookmarkTitle is the title of imported bookmarks without title.
	DefaultBookmarkTitle = "Sans titre"
	// DefaultImportedTabName is the name pattern of imported tabs without name.
	DefaultImportedTabName = "Onglet importé %d"
)

type (
	// An Export is the portable representation of a user collection.
	Export struct {
		Version    string         `json:"version"`
		ExportDate time.Time      `json:"exportDate"`
		Tabs       []*ExportedTab `json:"tabs"`
	}

	// An ExportedTab is the portable representation of a tab.
	ExportedTab struct {
		Name      string              `json:"name"`
		Icon      string              `json:"icon,omitempty"`
		Order     int                 `json:"order"`
		Children  []*ExportedTab      `json:"children,omitempty"`
		Bookmarks []*ExportedBookmark `json:"bookmarks"`
	}

	// An ExportedBookmark is the portable representation of a bookmark.
	ExportedBookmark struct {
		URL         string `json:"url"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Order       *int   `json:"order"`
	}

	// A TransferService exports and imports collections.
	TransferService struct {
		db database.Client
	}
)

// NewTransfer returns a new TransferService.
func NewTransfer(db database.Client) *TransferService {
	return &TransferService{
		db: db,
	}
}

// Export returns the whole collection of the user.
func (s *TransferService) Export(user *model.User) (*Export, error) {
	tabs, err := s.db.FindTabsByUserID(user.ID)
	if err != nil {
		return nil, err
	}

	bookmarks, err := s.db.FindBookmarksByUserID(user.ID, "")
	if err != nil {
		return nil, err
	}
	byTab := map[string][]*ExportedBookmark{}
	for _, b := range bookmarks {
		order := b.Order
		byTab[b.TabID] = append(byTab[b.TabID], &ExportedBookmark{
			URL:         b.URL,
			Title:       b.Title,
			Description: b.Description,
			Order:       &order,
		})
	}

	export := &Export{
		Version:    ExportVersion,
		ExportDate: time.Now().UTC(),
		Tabs:       []*ExportedTab{},
	}

	nodes := make(map[string]*ExportedTab, len(tabs))
	for _, tab := range tabs {
		node := &ExportedTab{
			Name:      tab.Name,
			Icon:      tab.Icon,
			Order:     tab.Order,
			Bookmarks: byTab[tab.ID],
		}
		if node.Bookmarks == nil {
			node.Bookmarks = []*ExportedBookmark{}
		}
		nodes[tab.ID] = node
	}

	for _, tab := range tabs {
		if tab.IsTopLevel() {
			export.Tabs = append(export.Tabs, nodes[tab.ID])
			continue
		}

		if parent, ok := nodes[tab.ParentID]; ok {
			parent.Children = append(parent.Children, nodes[tab.ID])
		}
	}

	return export, nil
}

// Import appends the given collection after the existing tabs of the user.
// Bookmarks with an invalid URL are skipped. Everything is imported in one transaction.
func (s *TransferService) Import(user *model.User, data []byte) (Render, error) {
	if !gjson.ValidBytes(data) {
		return nil, sferror.BadRequest("Invalid data format.")
	}
	if v := gjson.GetBytes(data, "version"); v.String() == "" {
		return nil, sferror.BadRequest("Invalid data format.")
	}
	if !gjson.GetBytes(data, "tabs").IsArray() {
		return nil, sferror.BadRequest("Invalid data format.")
	}

	var payload Export
	if err := sonic.ConfigStd.Unmarshal(data, &payload); err != nil {
		return nil, sferror.BadRequest("Invalid data format.")
	}

	var tabsImported, bookmarksImported int
	err := s.db.Transaction(func(tx database.Tx) error {
		n, err := tx.CountTabsByParentID(user.ID, "")
		if err != nil {
			return err
		}

		for i, t := range payload.Tabs {
			if t == nil {
				continue
			}

			tab, count, err := s.importTab(tx, user, t, "", n, i)
			if err != nil {
				return err
			}
			n++
			tabsImported++
			bookmarksImported += count

			var order int
			for j, c := range t.Children {
				if c == nil {
					continue
				}

				_, count, err := s.importTab(tx, user, c, tab.ID, order, j)
				if err != nil {
					return err
				}
				order++
				tabsImported++
				bookmarksImported += count
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return M{
		"message":           "Import successful.",
		"tabsImported":      tabsImported,
		"bookmarksImported": bookmarksImported,
	}, nil
}

func (s *TransferService) importTab(tx database.Tx, user *model.User, t *ExportedTab, parentID string, order, index int) (*model.Tab, int, error) {
	tab := &model.Tab{
		UserID:   user.ID,
		ParentID: parentID,
		Name:     strings.TrimSpace(t.Name),
		Icon:     t.Icon,
		Order:    order,
	}
	if tab.Name == "" {
		tab.Name = fmt.Sprintf(DefaultImportedTabName, index+1)
	}
	if err := tx.Save(tab); err != nil {
		return nil, 0, errors.Wrap(err, "could not import tab")
	}

	type entry struct {
		key      int
		bookmark *ExportedBookmark
	}
	var entries []entry
	for j, b := range t.Bookmarks {
		if b == nil || !ValidURL(b.URL) {
			continue
		}

		key := j
		if b.Order != nil {
			key = *b.Order
		}
		entries = append(entries, entry{key: key, bookmark: b})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].key < entries[j].key
	})

	for k, e := range entries {
		bookmark := &model.Bookmark{
			UserID:      user.ID,
			TabID:       tab.ID,
			URL:         e.bookmark.URL,
			Title:       strings.TrimSpace(e.bookmark.Title),
			Description: strings.TrimSpace(e.bookmark.Description),
			Order:       k,
		}
		if bookmark.Title == "" {
			bookmark.Title = DefaultBookmarkTitle
		}

		if err := tx.Save(bookmark); err != nil {
			return nil, 0, errors.Wrap(err, "could not import bookmark")
		}
	}

	return tab, len(entries), nil
}
