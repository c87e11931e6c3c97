package model

// A Bookmark represents a database record and the rendered API response.
//
// Order is the zero-based rank of the bookmark inside its tab.
type Bookmark struct {
	Base `msgpack:",inline" storm:"inline"`

	UserID      string `json:"userId"      msgpack:"user_id"     storm:"index"`
	TabID       string `json:"tabId"       msgpack:"tab_id"      storm:"index"`
	URL         string `json:"url"         msgpack:"url"`
	Title       string `json:"title"       msgpack:"title"`
	Description string `json:"description" msgpack:"description"`
	Screenshot  string `json:"screenshot"  msgpack:"screenshot"`
	Order       int    `json:"order"       msgpack:"order"`
}
