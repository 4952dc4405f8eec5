package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brunodantas/onion-tasks/pkg/models"
	"github.com/brunodantas/onion-tasks/pkg/service"
	"github.com/brunodantas/onion-tasks/pkg/storage"
)

type logger struct{}

func (l logger) Infof(format string, args ...interface{}) {
	// no-op
}

func (l logger) Errorf(format string, args ...interface{}) {
	// no-op
}

func int64p(v int64) *int64 {
	return &v
}

func mustCreate(t *testing.T, svc *service.TaskService, in service.CreateTaskInput) models.Task {
	t.Helper()
	task, err := svc.CreateTask(in)
	assert.NoError(t, err)
	return task
}

func TestTaskServiceInMemory(t *testing.T) {

	newServices := func() (*service.TaskService, *service.AgentService, *service.ProjectService) {
		store := storage.NewMockStore()
		return service.NewTaskService(store, logger{}),
			service.NewAgentService(store, logger{}),
			service.NewProjectService(store, logger{})
	}

	t.Run("CreateTask", func(t *testing.T) {
		svc, _, _ := newServices()

		task, err := svc.CreateTask(service.CreateTaskInput{Title: "Write spec"})
		assert.NoError(t, err)
		assert.NotEmpty(t, task.ID)
		assert.Equal(t, "Write spec", task.Title)
		assert.Equal(t, models.PendingTaskStatus, task.Status)
		assert.Equal(t, models.LowPriority, task.Priority)
		assert.Nil(t, task.Cost)
		assert.Nil(t, task.AssigneeID)

		got, err := svc.GetTask(task.ID)
		assert.NoError(t, err)
		assert.Equal(t, task.ID, got.ID)
	})

	t.Run("CreateTaskWithCostAndPriority", func(t *testing.T) {
		svc, _, _ := newServices()

		task, err := svc.CreateTask(service.CreateTaskInput{
			Title:      "Estimate",
			Priority:   "HIGH",
			CostAmount: int64p(8),
			CostUnit:   "points",
		})
		assert.NoError(t, err)
		assert.Equal(t, models.HighPriority, task.Priority)
		assert.Equal(t, &models.Cost{Amount: 8, Unit: "points"}, task.Cost)
	})

	t.Run("CreateTaskEmptyTitle", func(t *testing.T) {
		svc, _, _ := newServices()

		_, err := svc.CreateTask(service.CreateTaskInput{Title: ""})
		var validationErr *models.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "title", validationErr.Field)
	})

	t.Run("CreateTaskNegativeCost", func(t *testing.T) {
		svc, _, _ := newServices()

		_, err := svc.CreateTask(service.CreateTaskInput{
			Title:      "bad",
			CostAmount: int64p(-3),
			CostUnit:   "points",
		})
		var negErr *models.NegativeCostError
		assert.ErrorAs(t, err, &negErr)
	})

	t.Run("CreateTaskUnknownPriority", func(t *testing.T) {
		svc, _, _ := newServices()

		_, err := svc.CreateTask(service.CreateTaskInput{Title: "bad", Priority: "URGENT"})
		var validationErr *models.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("CreateTaskUnknownProject", func(t *testing.T) {
		svc, _, _ := newServices()

		_, err := svc.CreateTask(service.CreateTaskInput{Title: "orphan", ProjectID: "missing"})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("CreateTaskInProject", func(t *testing.T) {
		svc, _, projectSvc := newServices()

		project, err := projectSvc.CreateProject("Q3 release")
		assert.NoError(t, err)

		task := mustCreate(t, svc, service.CreateTaskInput{Title: "Cut branch", ProjectID: project.ID})
		assert.NotNil(t, task.ProjectID)
		assert.Equal(t, project.ID, *task.ProjectID)

		inProject, err := svc.ListTasks(storage.TaskFilter{ProjectID: project.ID})
		assert.NoError(t, err)
		assert.Len(t, inProject, 1)
	})

	t.Run("AssignTask", func(t *testing.T) {
		svc, agentSvc, _ := newServices()

		agent, err := agentSvc.CreateAgent("agent-42")
		assert.NoError(t, err)
		task := mustCreate(t, svc, service.CreateTaskInput{Title: "Write spec"})

		updated, err := svc.AssignTask(task.ID, agent.ID)
		assert.NoError(t, err)
		assert.NotNil(t, updated.AssigneeID)
		assert.Equal(t, agent.ID, *updated.AssigneeID)

		got, err := svc.GetTask(task.ID)
		assert.NoError(t, err)
		assert.Equal(t, agent.ID, *got.AssigneeID)
	})

	t.Run("AssignTaskNotFound", func(t *testing.T) {
		svc, agentSvc, _ := newServices()

		agent, err := agentSvc.CreateAgent("agent-42")
		assert.NoError(t, err)

		_, err = svc.AssignTask("missing", agent.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		task := mustCreate(t, svc, service.CreateTaskInput{Title: "Write spec"})
		_, err = svc.AssignTask(task.ID, "missing-agent")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ChangeStatusHappyPath", func(t *testing.T) {
		svc, _, _ := newServices()

		task := mustCreate(t, svc, service.CreateTaskInput{Title: "step"})

		updated, err := svc.ChangeStatus(task.ID, "IN_PROGRESS")
		assert.NoError(t, err)
		assert.Equal(t, models.InProgressTaskStatus, updated.Status)

		updated, err = svc.ChangeStatus(task.ID, "COMPLETED")
		assert.NoError(t, err)
		assert.Equal(t, models.CompletedTaskStatus, updated.Status)
	})

	t.Run("ChangeStatusInvalidTransition", func(t *testing.T) {
		svc, _, _ := newServices()

		task := mustCreate(t, svc, service.CreateTaskInput{Title: "step"})

		// PENDING -> COMPLETED skips IN_PROGRESS
		_, err := svc.ChangeStatus(task.ID, "COMPLETED")
		var transitionErr *models.InvalidTransitionError
		assert.ErrorAs(t, err, &transitionErr)

		// terminal states reject everything
		_, err = svc.ChangeStatus(task.ID, "CANCELLED")
		assert.NoError(t, err)
		_, err = svc.ChangeStatus(task.ID, "IN_PROGRESS")
		assert.ErrorAs(t, err, &transitionErr)

		got, err := svc.GetTask(task.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.CancelledTaskStatus, got.Status)
	})

	t.Run("ChangeStatusUnknownStatus", func(t *testing.T) {
		svc, _, _ := newServices()

		task := mustCreate(t, svc, service.CreateTaskInput{Title: "step"})
		_, err := svc.ChangeStatus(task.ID, "DONE")
		var validationErr *models.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("ChangeStatusNotFound", func(t *testing.T) {
		svc, _, _ := newServices()

		_, err := svc.ChangeStatus("missing", "IN_PROGRESS")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("CompletionBlockedByDependency", func(t *testing.T) {
		svc, _, _ := newServices()

		task := mustCreate(t, svc, service.CreateTaskInput{Title: "main"})
		dep := mustCreate(t, svc, service.CreateTaskInput{Title: "prerequisite"})
		assert.NoError(t, svc.AddDependency(task.ID, dep.ID))

		_, err := svc.ChangeStatus(task.ID, "IN_PROGRESS")
		assert.NoError(t, err)

		// dependency still PENDING
		_, err = svc.ChangeStatus(task.ID, "COMPLETED")
		var transitionErr *models.InvalidTransitionError
		assert.ErrorAs(t, err, &transitionErr)
		assert.Contains(t, err.Error(), "is not completed")

		// complete the dependency, then the task
		_, err = svc.ChangeStatus(dep.ID, "IN_PROGRESS")
		assert.NoError(t, err)
		_, err = svc.ChangeStatus(dep.ID, "COMPLETED")
		assert.NoError(t, err)

		updated, err := svc.ChangeStatus(task.ID, "COMPLETED")
		assert.NoError(t, err)
		assert.Equal(t, models.CompletedTaskStatus, updated.Status)
	})

	t.Run("SelfDependency", func(t *testing.T) {
		svc, _, _ := newServices()

		task := mustCreate(t, svc, service.CreateTaskInput{Title: "loop"})

		err := svc.AddDependency(task.ID, task.ID)
		var selfErr *models.SelfDependencyError
		assert.ErrorAs(t, err, &selfErr)

		// graph unchanged
		got, err := svc.GetTask(task.ID)
		assert.NoError(t, err)
		assert.Empty(t, got.Dependencies)
	})

	t.Run("DirectCycle", func(t *testing.T) {
		svc, _, _ := newServices()

		a := mustCreate(t, svc, service.CreateTaskInput{Title: "a"})
		b := mustCreate(t, svc, service.CreateTaskInput{Title: "b"})

		assert.NoError(t, svc.AddDependency(a.ID, b.ID))

		err := svc.AddDependency(b.ID, a.ID)
		var cyclicErr *models.CyclicDependencyError
		assert.ErrorAs(t, err, &cyclicErr)
	})

	t.Run("TransitiveCycle", func(t *testing.T) {
		svc, _, _ := newServices()

		a := mustCreate(t, svc, service.CreateTaskInput{Title: "a"})
		b := mustCreate(t, svc, service.CreateTaskInput{Title: "b"})
		c := mustCreate(t, svc, service.CreateTaskInput{Title: "c"})

		assert.NoError(t, svc.AddDependency(a.ID, b.ID))
		assert.NoError(t, svc.AddDependency(b.ID, c.ID))

		err := svc.AddDependency(c.ID, a.ID)
		var cyclicErr *models.CyclicDependencyError
		assert.ErrorAs(t, err, &cyclicErr)

		got, err := svc.GetTask(c.ID)
		assert.NoError(t, err)
		assert.Empty(t, got.Dependencies)
	})

	t.Run("DuplicateDependencyIsNoop", func(t *testing.T) {
		svc, _, _ := newServices()

		a := mustCreate(t, svc, service.CreateTaskInput{Title: "a"})
		b := mustCreate(t, svc, service.CreateTaskInput{Title: "b"})

		assert.NoError(t, svc.AddDependency(a.ID, b.ID))
		assert.NoError(t, svc.AddDependency(a.ID, b.ID))

		got, err := svc.GetTask(a.ID)
		assert.NoError(t, err)
		assert.Equal(t, []string{b.ID}, got.Dependencies)
	})

	t.Run("AddDependencyNotFound", func(t *testing.T) {
		svc, _, _ := newServices()

		a := mustCreate(t, svc, service.CreateTaskInput{Title: "a"})

		assert.ErrorIs(t, svc.AddDependency("missing", a.ID), storage.ErrNotFound)
		assert.ErrorIs(t, svc.AddDependency(a.ID, "missing"), storage.ErrNotFound)
	})

	t.Run("RemoveDependency", func(t *testing.T) {
		svc, _, _ := newServices()

		a := mustCreate(t, svc, service.CreateTaskInput{Title: "a"})
		b := mustCreate(t, svc, service.CreateTaskInput{Title: "b"})

		assert.NoError(t, svc.AddDependency(a.ID, b.ID))
		assert.NoError(t, svc.RemoveDependency(a.ID, b.ID))

		got, err := svc.GetTask(a.ID)
		assert.NoError(t, err)
		assert.Empty(t, got.Dependencies)

		assert.ErrorIs(t, svc.RemoveDependency(a.ID, b.ID), storage.ErrNotFound)
	})

	t.Run("TotalCostDiamond", func(t *testing.T) {
		svc, _, _ := newServices()

		// A depends on B and C; both depend on D. D must count once.
		a := mustCreate(t, svc, service.CreateTaskInput{Title: "a", CostAmount: int64p(1), CostUnit: "points"})
		b := mustCreate(t, svc, service.CreateTaskInput{Title: "b", CostAmount: int64p(2), CostUnit: "points"})
		c := mustCreate(t, svc, service.CreateTaskInput{Title: "c", CostAmount: int64p(3), CostUnit: "points"})
		d := mustCreate(t, svc, service.CreateTaskInput{Title: "d", CostAmount: int64p(4), CostUnit: "points"})

		assert.NoError(t, svc.AddDependency(a.ID, b.ID))
		assert.NoError(t, svc.AddDependency(a.ID, c.ID))
		assert.NoError(t, svc.AddDependency(b.ID, d.ID))
		assert.NoError(t, svc.AddDependency(c.ID, d.ID))

		total, err := svc.TotalCost(a.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.Cost{Amount: 10, Unit: "points"}, total)
	})

	t.Run("TotalCostSkipsCostlessTasks", func(t *testing.T) {
		svc, _, _ := newServices()

		a := mustCreate(t, svc, service.CreateTaskInput{Title: "a"})
		b := mustCreate(t, svc, service.CreateTaskInput{Title: "b", CostAmount: int64p(5), CostUnit: "hours"})
		assert.NoError(t, svc.AddDependency(a.ID, b.ID))

		total, err := svc.TotalCost(a.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.Cost{Amount: 5, Unit: "hours"}, total)
	})

	t.Run("TotalCostUnitMismatch", func(t *testing.T) {
		svc, _, _ := newServices()

		a := mustCreate(t, svc, service.CreateTaskInput{Title: "a", CostAmount: int64p(1), CostUnit: "points"})
		b := mustCreate(t, svc, service.CreateTaskInput{Title: "b", CostAmount: int64p(2), CostUnit: "hours"})
		assert.NoError(t, svc.AddDependency(a.ID, b.ID))

		_, err := svc.TotalCost(a.ID)
		var unitErr *models.UnitMismatchError
		assert.ErrorAs(t, err, &unitErr)
	})

	t.Run("TotalCostNotFound", func(t *testing.T) {
		svc, _, _ := newServices()

		_, err := svc.TotalCost("missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("DeleteTaskDropsEdges", func(t *testing.T) {
		svc, _, _ := newServices()

		a := mustCreate(t, svc, service.CreateTaskInput{Title: "a"})
		b := mustCreate(t, svc, service.CreateTaskInput{Title: "b"})
		assert.NoError(t, svc.AddDependency(a.ID, b.ID))

		assert.NoError(t, svc.DeleteTask(b.ID))

		got, err := svc.GetTask(a.ID)
		assert.NoError(t, err)
		assert.Empty(t, got.Dependencies)

		_, err = svc.GetTask(b.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		assert.ErrorIs(t, svc.DeleteTask(b.ID), storage.ErrNotFound)
	})

	t.Run("ListTasksFilters", func(t *testing.T) {
		svc, agentSvc, _ := newServices()

		agent, err := agentSvc.CreateAgent("worker")
		assert.NoError(t, err)

		a := mustCreate(t, svc, service.CreateTaskInput{Title: "a"})
		mustCreate(t, svc, service.CreateTaskInput{Title: "b"})
		_, err = svc.AssignTask(a.ID, agent.ID)
		assert.NoError(t, err)
		_, err = svc.ChangeStatus(a.ID, "IN_PROGRESS")
		assert.NoError(t, err)

		inProgress, err := svc.ListTasks(storage.TaskFilter{Status: "IN_PROGRESS"})
		assert.NoError(t, err)
		assert.Len(t, inProgress, 1)
		assert.Equal(t, a.ID, inProgress[0].ID)

		assigned, err := svc.ListTasks(storage.TaskFilter{AssigneeID: agent.ID})
		assert.NoError(t, err)
		assert.Len(t, assigned, 1)

		_, err = svc.ListTasks(storage.TaskFilter{Status: "BOGUS"})
		var validationErr *models.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("StatusReportAndMakespan", func(t *testing.T) {
		svc, _, _ := newServices()

		a := mustCreate(t, svc, service.CreateTaskInput{Title: "a", CostAmount: int64p(3), CostUnit: "points"})
		mustCreate(t, svc, service.CreateTaskInput{Title: "b", CostAmount: int64p(5), CostUnit: "points"})
		_, err := svc.ChangeStatus(a.ID, "IN_PROGRESS")
		assert.NoError(t, err)

		report, err := svc.StatusReport(storage.TaskFilter{})
		assert.NoError(t, err)
		assert.Equal(t, 1, report[models.PendingTaskStatus])
		assert.Equal(t, 1, report[models.InProgressTaskStatus])

		min, max, err := svc.MakespanBoundaries(storage.TaskFilter{})
		assert.NoError(t, err)
		assert.Equal(t, int64(5), min)
		assert.Equal(t, int64(8), max)
	})

	t.Run("ScenarioWriteSpec", func(t *testing.T) {
		svc, agentSvc, _ := newServices()

		task, err := svc.CreateTask(service.CreateTaskInput{Title: "Write spec"})
		assert.NoError(t, err)
		assert.Equal(t, models.PendingTaskStatus, task.Status)
		assert.Nil(t, task.Cost)

		agent, err := agentSvc.CreateAgent("agent-42")
		assert.NoError(t, err)
		task, err = svc.AssignTask(task.ID, agent.ID)
		assert.NoError(t, err)
		assert.Equal(t, agent.ID, *task.AssigneeID)

		other := mustCreate(t, svc, service.CreateTaskInput{Title: "other"})
		assert.NoError(t, svc.AddDependency(task.ID, other.ID))

		_, err = svc.ChangeStatus(task.ID, "IN_PROGRESS")
		assert.NoError(t, err)
		_, err = svc.ChangeStatus(task.ID, "COMPLETED")
		var transitionErr *models.InvalidTransitionError
		assert.ErrorAs(t, err, &transitionErr, "dependency not completed")

		_, err = svc.ChangeStatus(other.ID, "IN_PROGRESS")
		assert.NoError(t, err)
		_, err = svc.ChangeStatus(other.ID, "COMPLETED")
		assert.NoError(t, err)

		task, err = svc.ChangeStatus(task.ID, "COMPLETED")
		assert.NoError(t, err)
		assert.Equal(t, models.CompletedTaskStatus, task.Status)
	})
}

func TestAgentServiceInMemory(t *testing.T) {
	store := storage.NewMockStore()
	svc := service.NewAgentService(store, logger{})

	_, err := svc.CreateAgent("")
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	agent, err := svc.CreateAgent("agent-42")
	assert.NoError(t, err)
	assert.NotEmpty(t, agent.ID)

	got, err := svc.GetAgent(agent.ID)
	assert.NoError(t, err)
	assert.Equal(t, "agent-42", got.Name)

	_, err = svc.GetAgent("missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	agents, err := svc.ListAgents()
	assert.NoError(t, err)
	assert.Len(t, agents, 1)
}

func TestProjectServiceInMemory(t *testing.T) {
	store := storage.NewMockStore()
	svc := service.NewProjectService(store, logger{})

	_, err := svc.CreateProject("")
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	project, err := svc.CreateProject("Q3 release")
	assert.NoError(t, err)

	got, err := svc.GetProject(project.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Q3 release", got.Name)

	projects, err := svc.ListProjects()
	assert.NoError(t, err)
	assert.Len(t, projects, 1)
}
