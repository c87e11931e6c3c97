package libbm

import (
	"encoding/json"
	"io"
	"net/http"
)

// An Error reprensents an HTTP error returned by bookmarkd server.
type Error struct {
	StatusCode int
	Err        struct {
		Tag     string `json:"tag"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseError(r io.Reader, code int) error {
	bmerr := Error{StatusCode: code}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&bmerr); err != nil || bmerr.Err.Message == "" {
		bmerr.Err.Message = http.StatusText(code)
	}
	return &bmerr
}

func (e *Error) Error() string {
	return e.Err.Message
}

// IsUnauthorized returns true if err is an authentication failure.
func IsUnauthorized(err error) bool {
	bmerr, ok := err.(*Error)
	return ok && bmerr.StatusCode == http.StatusUnauthorized
}
