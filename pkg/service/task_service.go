package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brunodantas/onion-tasks/pkg/models"
	"github.com/brunodantas/onion-tasks/pkg/storage"
)

// TaskService implements the task use cases against the storage contract.
// Every mutating operation runs inside a single store transaction.
type TaskService struct {
	store  storage.Store
	logger Logger
}

func NewTaskService(store storage.Store, logger Logger) *TaskService {
	return &TaskService{
		store:  store,
		logger: logger,
	}
}

// CreateTask validates the input and persists a new task with status
// PENDING. It returns the stored task including its generated ID.
func (ts *TaskService) CreateTask(in CreateTaskInput) (task models.Task, err error) {
	if in.Title == "" {
		return models.Task{}, &models.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if len(in.Title) > 255 {
		return models.Task{}, &models.ValidationError{Field: "title", Reason: "too long (max 255 characters)"}
	}
	priority := models.LowPriority
	if in.Priority != "" {
		if !models.ValidPriority(in.Priority) {
			return models.Task{}, &models.ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority '%s'", in.Priority)}
		}
		priority = models.Priority(in.Priority)
	}
	var cost *models.Cost
	if in.CostAmount != nil {
		c, costErr := models.NewCost(*in.CostAmount, in.CostUnit)
		if costErr != nil {
			return models.Task{}, costErr
		}
		cost = &c
	}

	txStore, err := ts.store.Begin()
	if err != nil {
		return models.Task{}, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				ts.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			ts.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	var projectID *string
	if in.ProjectID != "" {
		if _, err = txStore.GetProject(in.ProjectID); err != nil {
			return models.Task{}, err
		}
		projectID = &in.ProjectID
	}

	now := time.Now()
	task = models.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Status:      models.PendingTaskStatus,
		Priority:    priority,
		ProjectID:   projectID,
		Cost:        cost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err = txStore.SaveTask(task); err != nil {
		return models.Task{}, err
	}
	ts.logger.Infof("Created task '%s' with ID %s", task.Title, task.ID)
	return task, nil
}

// GetTask fetches a task with its dependencies.
func (ts *TaskService) GetTask(id string) (models.Task, error) {
	return ts.store.GetTask(id)
}

// ListTasks returns tasks matching the filter.
func (ts *TaskService) ListTasks(filter storage.TaskFilter) ([]models.Task, error) {
	if filter.Status != "" && !models.ValidTaskStatus(filter.Status) {
		return nil, &models.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status '%s'", filter.Status)}
	}
	return ts.store.ListTasks(filter)
}

// DeleteTask removes a task and its dependency edges in both directions.
func (ts *TaskService) DeleteTask(id string) (err error) {
	txStore, err := ts.store.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				ts.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			ts.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	if err = txStore.DeleteTask(id); err != nil {
		return err
	}
	ts.logger.Infof("Deleted task %s", id)
	return nil
}

// AssignTask sets the task's assignee. Both the task and the agent must
// exist.
func (ts *TaskService) AssignTask(taskID, agentID string) (task models.Task, err error) {
	txStore, err := ts.store.Begin()
	if err != nil {
		return models.Task{}, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				ts.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			ts.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	task, err = txStore.GetTask(taskID)
	if err != nil {
		return models.Task{}, err
	}
	agent, err := txStore.GetAgent(agentID)
	if err != nil {
		return models.Task{}, err
	}
	task.AssigneeID = &agent.ID
	if err = txStore.UpdateTask(task); err != nil {
		return models.Task{}, err
	}
	ts.logger.Infof("Assigned task %s to agent %s", taskID, agentID)
	return task, nil
}

// ChangeStatus moves a task along the allowed-transition table. Moving to
// COMPLETED additionally requires every direct dependency to be COMPLETED.
// Domain errors from the entity surface unchanged.
func (ts *TaskService) ChangeStatus(taskID string, newStatus string) (task models.Task, err error) {
	if !models.ValidTaskStatus(newStatus) {
		return models.Task{}, &models.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status '%s'", newStatus)}
	}
	target := models.TaskStatus(newStatus)

	txStore, err := ts.store.Begin()
	if err != nil {
		return models.Task{}, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				ts.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			ts.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	task, err = txStore.GetTask(taskID)
	if err != nil {
		return models.Task{}, err
	}
	if err = task.Transition(target); err != nil {
		return models.Task{}, err
	}
	if target == models.CompletedTaskStatus {
		for _, depID := range task.Dependencies {
			dep, depErr := txStore.GetTask(depID)
			if depErr != nil {
				err = depErr
				return models.Task{}, err
			}
			if dep.Status != models.CompletedTaskStatus {
				err = &models.InvalidTransitionError{
					From:   task.Status,
					To:     target,
					Reason: fmt.Sprintf("dependency %s is not completed", depID),
				}
				return models.Task{}, err
			}
		}
	}
	task.Status = target
	if err = txStore.UpdateTask(task); err != nil {
		return models.Task{}, err
	}
	ts.logger.Infof("Updated task %s to status '%s'", taskID, newStatus)
	return task, nil
}

// AddDependency records that taskID depends on dependsOn, rejecting
// self-dependencies and anything that would close a cycle. Adding an
// existing edge is a no-op.
func (ts *TaskService) AddDependency(taskID, dependsOn string) (err error) {
	txStore, err := ts.store.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				ts.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			ts.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	task, err := txStore.GetTask(taskID)
	if err != nil {
		return err
	}
	if task.DependsOnSelf(dependsOn) {
		err = &models.SelfDependencyError{TaskID: taskID}
		return err
	}
	if _, err = txStore.GetTask(dependsOn); err != nil {
		return err
	}
	for _, existing := range task.Dependencies {
		if existing == dependsOn {
			return nil
		}
	}
	reachable, err := ts.dependsOnTransitively(txStore, dependsOn, taskID)
	if err != nil {
		return err
	}
	if reachable {
		err = &models.CyclicDependencyError{TaskID: taskID, DependsOn: dependsOn}
		return err
	}
	if err = txStore.SaveDependency(taskID, dependsOn); err != nil {
		return err
	}
	ts.logger.Infof("Added dependency %s -> %s", taskID, dependsOn)
	return nil
}

// RemoveDependency deletes the edge taskID -> dependsOn.
func (ts *TaskService) RemoveDependency(taskID, dependsOn string) (err error) {
	txStore, err := ts.store.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				ts.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			ts.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	if _, err = txStore.GetTask(taskID); err != nil {
		return err
	}
	if err = txStore.DeleteDependency(taskID, dependsOn); err != nil {
		return err
	}
	ts.logger.Infof("Removed dependency %s -> %s", taskID, dependsOn)
	return nil
}

// dependsOnTransitively reports whether target is reachable from start by
// following dependency edges. Iterative depth-first search; each node is
// visited once, so shared dependencies and long chains are fine.
func (ts *TaskService) dependsOnTransitively(store storage.Store, start, target string) (bool, error) {
	seen := map[string]struct{}{}
	stack := []string{start}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == target {
			return true, nil
		}
		if _, ok := seen[current]; ok {
			continue
		}
		seen[current] = struct{}{}
		deps, err := store.GetDependencies(current)
		if err != nil {
			return false, err
		}
		stack = append(stack, deps...)
	}
	return false, nil
}

// TotalCost sums the cost of the task and its transitive dependency
// closure. The graph may be a DAG; every task is counted exactly once.
// Tasks without a cost contribute nothing.
func (ts *TaskService) TotalCost(taskID string) (models.Cost, error) {
	if _, err := ts.store.GetTask(taskID); err != nil {
		return models.Cost{}, err
	}
	total := models.Cost{}
	hasUnit := false
	seen := map[string]struct{}{}
	stack := []string{taskID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[current]; ok {
			continue
		}
		seen[current] = struct{}{}
		task, err := ts.store.GetTask(current)
		if err != nil {
			return models.Cost{}, err
		}
		if task.Cost != nil {
			if !hasUnit {
				total.Unit = task.Cost.Unit
				hasUnit = true
			}
			total, err = total.Add(*task.Cost)
			if err != nil {
				return models.Cost{}, err
			}
		}
		stack = append(stack, task.Dependencies...)
	}
	return total, nil
}

// StatusReport returns the number of tasks in each status, narrowed by the
// filter.
func (ts *TaskService) StatusReport(filter storage.TaskFilter) (map[models.TaskStatus]int, error) {
	tasks, err := ts.ListTasks(filter)
	if err != nil {
		return nil, err
	}
	return models.TrackStatuses(tasks), nil
}

// MakespanBoundaries returns the best- and worst-case total completion time
// for the tasks matching the filter.
func (ts *TaskService) MakespanBoundaries(filter storage.TaskFilter) (min int64, max int64, err error) {
	tasks, err := ts.ListTasks(filter)
	if err != nil {
		return 0, 0, err
	}
	min, max = models.MakespanBoundaries(tasks)
	return min, max, nil
}
