package models

// Project groups related tasks. Tasks reference it by ID.
type Project struct {
	ID   string `json:"id" db:"id"`     // Unique identifier (UUID)
	Name string `json:"name" db:"name"` // Display name
}
