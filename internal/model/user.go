package model

// A User represents a database record.
// It owns all the tabs and bookmarks referencing its ID.
type User struct {
	Base `msgpack:",inline" storm:"inline"`

	Username string `msgpack:"username" storm:"unique"`
	Email    string `msgpack:"email"    storm:"unique"`
	Password string `msgpack:"password,omitempty"`

	// Tokens issued before this unix timestamp are revoked.
	PasswordUpdatedAt int64 `msgpack:"password_updated_at"`
}
