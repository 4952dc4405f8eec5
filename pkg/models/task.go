package models

import "time"

type TaskStatus string

const (
	PendingTaskStatus    TaskStatus = "PENDING"
	InProgressTaskStatus TaskStatus = "IN_PROGRESS"
	CompletedTaskStatus  TaskStatus = "COMPLETED"
	CancelledTaskStatus  TaskStatus = "CANCELLED"
)

// allowedTransitions is the full status state machine. Terminal statuses
// have no outgoing edges.
var allowedTransitions = map[TaskStatus][]TaskStatus{
	PendingTaskStatus:    {InProgressTaskStatus, CancelledTaskStatus},
	InProgressTaskStatus: {CompletedTaskStatus, CancelledTaskStatus},
	CompletedTaskStatus:  {},
	CancelledTaskStatus:  {},
}

// ValidTaskStatus reports whether s names a known status.
func ValidTaskStatus(s string) bool {
	_, ok := allowedTransitions[TaskStatus(s)]
	return ok
}

// IsTerminal reports whether no further transitions are possible.
func (s TaskStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// CanTransition reports whether the state machine permits s -> to.
func (s TaskStatus) CanTransition(to TaskStatus) bool {
	for _, next := range allowedTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type Priority string

const (
	LowPriority    Priority = "LOW"
	MediumPriority Priority = "MEDIUM"
	HighPriority   Priority = "HIGH"
)

// ValidPriority reports whether p names a known priority.
func ValidPriority(p string) bool {
	switch Priority(p) {
	case LowPriority, MediumPriority, HighPriority:
		return true
	}
	return false
}

// Task represents a unit of work
type Task struct {
	ID           string     `json:"id" db:"id"`                             // Unique identifier (UUID)
	Title        string     `json:"title" db:"title"`                       // Short descriptive title, never empty
	Description  string     `json:"description,omitempty" db:"description"` // Free-form details (optional)
	Status       TaskStatus `json:"status" db:"status"`                     // Current state machine position
	Priority     Priority   `json:"priority" db:"priority"`                 // LOW, MEDIUM or HIGH
	AssigneeID   *string    `json:"assignee_id,omitempty" db:"assignee_id"` // Agent the task is assigned to (optional)
	ProjectID    *string    `json:"project_id,omitempty" db:"project_id"`   // Project the task belongs to (optional)
	Cost         *Cost      `json:"cost,omitempty"`                         // Estimated cost (optional)
	Dependencies []string   `json:"dependencies,omitempty"`                 // Task IDs this task depends on (populated at runtime)
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`             // Creation timestamp
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`             // Last update timestamp
}

// Transition applies the state machine check and returns the domain error
// when the move is not permitted. It does not mutate the task; callers
// persist the new status on success.
func (t Task) Transition(to TaskStatus) error {
	if !t.Status.CanTransition(to) {
		return &InvalidTransitionError{From: t.Status, To: to}
	}
	return nil
}

// DependsOnSelf reports whether adding id as a dependency would make the
// task depend on itself.
func (t Task) DependsOnSelf(id string) bool {
	return t.ID == id
}
