package model

import (
	"time"
)

// A Session represents a database record.
// Its ID is carried by the issued token so deleting the record revokes the token.
type Session struct {
	Base `msgpack:",inline" storm:"inline"`

	ExpireAt  time.Time `msgpack:"expire_at"`
	UserID    string    `msgpack:"user_id"    storm:"index"`
	UserAgent string    `msgpack:"user_agent"`
}
