package storage

import (
	"time"

	"github.com/pkg/errors"

	"github.com/brunodantas/onion-tasks/pkg/models"
)

type dependency struct {
	taskID    string
	dependsOn string
}

// mockStore implements Store with in-memory storage
type mockStore struct {
	tasks        []models.Task
	agents       []models.Agent
	projects     []models.Project
	dependencies []dependency
	committed    bool // Transaction state
}

func NewMockStore() Store {
	return &mockStore{}
}

func (m *mockStore) Begin() (Store, error) {
	m.committed = false
	return m, nil
}

func (m *mockStore) Commit() error {
	if m.committed {
		return errors.New("already committed")
	}
	m.committed = true
	return nil
}

func (m *mockStore) Rollback() error {
	if m.committed {
		return errors.New("cannot rollback committed transaction")
	}
	// No-op: the mock does not buffer writes
	return nil
}

func (m *mockStore) Close() error {
	return nil
}

func (m *mockStore) SaveTask(t models.Task) error {
	for _, existing := range m.tasks {
		if existing.ID == t.ID {
			return errors.New("task already exists")
		}
	}
	m.tasks = append(m.tasks, t)
	return nil
}

func (m *mockStore) UpdateTask(t models.Task) error {
	for i, existing := range m.tasks {
		if existing.ID == t.ID {
			t.UpdatedAt = time.Now()
			m.tasks[i] = t
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockStore) GetTask(id string) (models.Task, error) {
	for _, t := range m.tasks {
		if t.ID == id {
			deps, _ := m.GetDependencies(id)
			t.Dependencies = deps
			return t, nil
		}
	}
	return models.Task{}, ErrNotFound
}

func (m *mockStore) ListTasks(filter TaskFilter) ([]models.Task, error) {
	tasks := []models.Task{}
	for _, t := range m.tasks {
		if filter.Status != "" && string(t.Status) != filter.Status {
			continue
		}
		if filter.AssigneeID != "" && (t.AssigneeID == nil || *t.AssigneeID != filter.AssigneeID) {
			continue
		}
		if filter.ProjectID != "" && (t.ProjectID == nil || *t.ProjectID != filter.ProjectID) {
			continue
		}
		deps, _ := m.GetDependencies(t.ID)
		t.Dependencies = deps
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (m *mockStore) DeleteTask(id string) error {
	for i, t := range m.tasks {
		if t.ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			// Drop edges in both directions, mirroring ON DELETE CASCADE
			kept := m.dependencies[:0]
			for _, d := range m.dependencies {
				if d.taskID != id && d.dependsOn != id {
					kept = append(kept, d)
				}
			}
			m.dependencies = kept
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockStore) SaveDependency(taskID, dependsOn string) error {
	for _, existing := range m.dependencies {
		if existing.taskID == taskID && existing.dependsOn == dependsOn {
			return errors.New("dependency already exists")
		}
	}
	m.dependencies = append(m.dependencies, dependency{taskID: taskID, dependsOn: dependsOn})
	return nil
}

func (m *mockStore) DeleteDependency(taskID, dependsOn string) error {
	for i, d := range m.dependencies {
		if d.taskID == taskID && d.dependsOn == dependsOn {
			m.dependencies = append(m.dependencies[:i], m.dependencies[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockStore) GetDependencies(taskID string) ([]string, error) {
	var deps []string
	for _, d := range m.dependencies {
		if d.taskID == taskID {
			deps = append(deps, d.dependsOn)
		}
	}
	return deps, nil
}

func (m *mockStore) GetDependents(taskID string) ([]string, error) {
	var deps []string
	for _, d := range m.dependencies {
		if d.dependsOn == taskID {
			deps = append(deps, d.taskID)
		}
	}
	return deps, nil
}

func (m *mockStore) SaveAgent(a models.Agent) error {
	for _, existing := range m.agents {
		if existing.ID == a.ID {
			return errors.New("agent already exists")
		}
	}
	m.agents = append(m.agents, a)
	return nil
}

func (m *mockStore) GetAgent(id string) (models.Agent, error) {
	for _, a := range m.agents {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Agent{}, ErrNotFound
}

func (m *mockStore) ListAgents() ([]models.Agent, error) {
	return m.agents, nil
}

func (m *mockStore) SaveProject(p models.Project) error {
	for _, existing := range m.projects {
		if existing.ID == p.ID {
			return errors.New("project already exists")
		}
	}
	m.projects = append(m.projects, p)
	return nil
}

func (m *mockStore) GetProject(id string) (models.Project, error) {
	for _, p := range m.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Project{}, ErrNotFound
}

func (m *mockStore) ListProjects() ([]models.Project, error) {
	return m.projects, nil
}
