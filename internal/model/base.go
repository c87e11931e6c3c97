package model

import (
	"time"
)

type (
	// A Model defines an object that can be stored in database.
	Model interface {
		// GetID returns the model's ID, empty until the first save.
		GetID() string
		// Touch stamps a write at t. The id and the creation date are only set on the first write.
		Touch(id string, t time.Time)
	}

	// A Base contains the default model fields.
	Base struct {
		ID        string     `json:"id"        msgpack:"id"         storm:"id"`
		CreatedAt *time.Time `json:"createdAt" msgpack:"created_at" storm:"index"`
		UpdatedAt *time.Time `json:"updatedAt" msgpack:"updated_at"`
	}
)

// GetID returns the model's ID.
func (m *Base) GetID() string {
	return m.ID
}

// Touch implements Model.
func (m *Base) Touch(id string, t time.Time) {
	if m.ID == "" {
		m.ID = id
		m.CreatedAt = &t
	}
	m.UpdatedAt = &t
}
