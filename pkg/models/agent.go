package models

// Agent is someone (or something) a task can be assigned to. Tasks hold a
// weak reference by ID, never the agent itself.
type Agent struct {
	ID   string `json:"id" db:"id"`     // Unique identifier (UUID)
	Name string `json:"name" db:"name"` // Display name
}
