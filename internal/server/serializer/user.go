package serializer

import "github.com/mdouchement/bookmarkd/internal/model"

// User serializes the render of a user.
// The password hash is never rendered.
func User(m *model.User) map[string]any {
	r := map[string]any{
		"id":       m.ID,
		"username": m.Username,
		"email":    m.Email,
	}
	if m.CreatedAt != nil {
		r["createdAt"] = m.CreatedAt.UTC()
	}
	return r
}
