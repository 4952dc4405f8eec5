package storage

import (
	"github.com/pkg/errors"

	"github.com/brunodantas/onion-tasks/pkg/models"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// TaskFilter narrows ListTasks. Zero values mean "no constraint".
type TaskFilter struct {
	Status     string
	AssigneeID string
	ProjectID  string
}

// Store defines the persistence operations the use cases depend on.
// Begin returns a transactional handle with the same interface; Commit and
// Rollback only make sense on that handle.
type Store interface {
	Begin() (Store, error)
	Commit() error
	Rollback() error
	Close() error

	// Task operations
	SaveTask(t models.Task) error
	UpdateTask(t models.Task) error
	GetTask(id string) (models.Task, error)
	ListTasks(filter TaskFilter) ([]models.Task, error)
	DeleteTask(id string) error

	// Dependency operations
	SaveDependency(taskID, dependsOn string) error
	DeleteDependency(taskID, dependsOn string) error
	GetDependencies(taskID string) ([]string, error)
	GetDependents(taskID string) ([]string, error)

	// Agent operations
	SaveAgent(a models.Agent) error
	GetAgent(id string) (models.Agent, error)
	ListAgents() ([]models.Agent, error)

	// Project operations
	SaveProject(p models.Project) error
	GetProject(id string) (models.Project, error)
	ListProjects() ([]models.Project, error)
}
