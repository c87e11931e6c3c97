package model

// DefaultTabName is the name of the tab created along with a new user.
const DefaultTabName = "Général"

type (
	// A Tab represents a database record and the rendered API response.
	// A tab with a ParentID is a sub-category, nesting is limited to one level.
	Tab struct {
		Base `msgpack:",inline" storm:"inline"`

		UserID   string `json:"userId"   msgpack:"user_id"   storm:"index"`
		ParentID string `json:"parentId" msgpack:"parent_id" storm:"index"`
		Name     string `json:"name"     msgpack:"name"`
		Icon     string `json:"icon"     msgpack:"icon"`
		Order    int    `json:"order"    msgpack:"order"`
	}

	// A TabTree is a tab rendered with its bookmark count and its sub-categories.
	TabTree struct {
		Tab
		BookmarkCount int        `json:"bookmarkCount"`
		Children      []*TabTree `json:"children"`
	}
)

// IsTopLevel returns true if the tab is not a sub-category.
func (t *Tab) IsTopLevel() bool {
	return t.ParentID == ""
}
