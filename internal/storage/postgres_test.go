package storage_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	internal_storage "github.com/brunodantas/onion-tasks/internal/storage"
	"github.com/brunodantas/onion-tasks/internal/testutil"
	"github.com/brunodantas/onion-tasks/pkg/models"
	"github.com/brunodantas/onion-tasks/pkg/storage"
)

func newTask(title string) models.Task {
	now := time.Now()
	return models.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    models.PendingTaskStatus,
		Priority:  models.LowPriority,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostgresStore(t *testing.T) {
	testDB := testutil.SetupTestDB(t)
	defer testDB.Teardown(t)

	// Helper to create a transactional store; rollback keeps subtests isolated
	newTxStore := func(t *testing.T) *internal_storage.PostgresStore {
		store, err := internal_storage.NewPostgresStore(testDB.ConnStr)
		assert.NoError(t, err)
		txStore, err := store.Begin()
		assert.NoError(t, err)
		t.Cleanup(func() { _ = txStore.Rollback() })
		return txStore.(*internal_storage.PostgresStore)
	}

	t.Run("SaveAndGetTask", func(t *testing.T) {
		store := newTxStore(t)
		task := newTask("TestTask")
		task.Description = "details"
		task.Cost = &models.Cost{Amount: 5, Unit: "points"}

		assert.NoError(t, store.SaveTask(task))

		saved, err := store.GetTask(task.ID)
		assert.NoError(t, err)
		assert.Equal(t, task.Title, saved.Title)
		assert.Equal(t, task.Description, saved.Description)
		assert.Equal(t, models.PendingTaskStatus, saved.Status)
		assert.Equal(t, task.Cost, saved.Cost)
		assert.Empty(t, saved.Dependencies)
	})

	t.Run("GetNonExistingTask", func(t *testing.T) {
		store := newTxStore(t)
		_, err := store.GetTask(uuid.NewString())
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("UpdateTask", func(t *testing.T) {
		store := newTxStore(t)
		task := newTask("Original")
		assert.NoError(t, store.SaveTask(task))

		task.Title = "Updated"
		task.Status = models.InProgressTaskStatus
		assert.NoError(t, store.UpdateTask(task))

		saved, err := store.GetTask(task.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Updated", saved.Title)
		assert.Equal(t, models.InProgressTaskStatus, saved.Status)

		missing := newTask("Missing")
		assert.ErrorIs(t, store.UpdateTask(missing), storage.ErrNotFound)
	})

	t.Run("ListTasksWithFilter", func(t *testing.T) {
		store := newTxStore(t)
		pending := newTask("Pending")
		assert.NoError(t, store.SaveTask(pending))
		inProgress := newTask("InProgress")
		inProgress.Status = models.InProgressTaskStatus
		assert.NoError(t, store.SaveTask(inProgress))

		all, err := store.ListTasks(storage.TaskFilter{})
		assert.NoError(t, err)
		assert.Len(t, all, 2)

		filtered, err := store.ListTasks(storage.TaskFilter{Status: "IN_PROGRESS"})
		assert.NoError(t, err)
		assert.Len(t, filtered, 1)
		assert.Equal(t, inProgress.ID, filtered[0].ID)
	})

	t.Run("Dependencies", func(t *testing.T) {
		store := newTxStore(t)
		a := newTask("a")
		b := newTask("b")
		assert.NoError(t, store.SaveTask(a))
		assert.NoError(t, store.SaveTask(b))

		assert.NoError(t, store.SaveDependency(a.ID, b.ID))
		// duplicate insert is a no-op
		assert.NoError(t, store.SaveDependency(a.ID, b.ID))

		deps, err := store.GetDependencies(a.ID)
		assert.NoError(t, err)
		assert.Equal(t, []string{b.ID}, deps)

		dependents, err := store.GetDependents(b.ID)
		assert.NoError(t, err)
		assert.Equal(t, []string{a.ID}, dependents)

		saved, err := store.GetTask(a.ID)
		assert.NoError(t, err)
		assert.Equal(t, []string{b.ID}, saved.Dependencies)

		assert.NoError(t, store.DeleteDependency(a.ID, b.ID))
		assert.ErrorIs(t, store.DeleteDependency(a.ID, b.ID), storage.ErrNotFound)
	})

	t.Run("DeleteTaskCascades", func(t *testing.T) {
		store := newTxStore(t)
		a := newTask("a")
		b := newTask("b")
		assert.NoError(t, store.SaveTask(a))
		assert.NoError(t, store.SaveTask(b))
		assert.NoError(t, store.SaveDependency(a.ID, b.ID))

		assert.NoError(t, store.DeleteTask(b.ID))

		deps, err := store.GetDependencies(a.ID)
		assert.NoError(t, err)
		assert.Empty(t, deps)

		assert.ErrorIs(t, store.DeleteTask(b.ID), storage.ErrNotFound)
	})

	t.Run("Agents", func(t *testing.T) {
		store := newTxStore(t)
		agent := models.Agent{ID: uuid.NewString(), Name: "agent-42"}
		assert.NoError(t, store.SaveAgent(agent))

		saved, err := store.GetAgent(agent.ID)
		assert.NoError(t, err)
		assert.Equal(t, agent.Name, saved.Name)

		_, err = store.GetAgent(uuid.NewString())
		assert.ErrorIs(t, err, storage.ErrNotFound)

		agents, err := store.ListAgents()
		assert.NoError(t, err)
		assert.Len(t, agents, 1)
	})

	t.Run("Projects", func(t *testing.T) {
		store := newTxStore(t)
		project := models.Project{ID: uuid.NewString(), Name: "Q3 release"}
		assert.NoError(t, store.SaveProject(project))

		saved, err := store.GetProject(project.ID)
		assert.NoError(t, err)
		assert.Equal(t, project.Name, saved.Name)

		projects, err := store.ListProjects()
		assert.NoError(t, err)
		assert.Len(t, projects, 1)
	})

	t.Run("AssigneeRoundTrip", func(t *testing.T) {
		store := newTxStore(t)
		agent := models.Agent{ID: uuid.NewString(), Name: "worker"}
		assert.NoError(t, store.SaveAgent(agent))

		task := newTask("assigned")
		assert.NoError(t, store.SaveTask(task))
		task.AssigneeID = &agent.ID
		assert.NoError(t, store.UpdateTask(task))

		saved, err := store.GetTask(task.ID)
		assert.NoError(t, err)
		assert.NotNil(t, saved.AssigneeID)
		assert.Equal(t, agent.ID, *saved.AssigneeID)

		assigned, err := store.ListTasks(storage.TaskFilter{AssigneeID: agent.ID})
		assert.NoError(t, err)
		assert.Len(t, assigned, 1)
	})
}
