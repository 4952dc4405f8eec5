package models

import "fmt"

// Domain errors raised by entities and use cases. Adapters match these with
// errors.As to pick an external signal (HTTP status, CLI exit code).

// ValidationError reports a field that violates a construction rule, such
// as an empty title.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError reports a status change outside the allowed
// transition table, or a completion blocked by unfinished dependencies.
type InvalidTransitionError struct {
	From   TaskStatus
	To     TaskStatus
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot transition from %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

// SelfDependencyError reports an attempt to make a task depend on itself.
type SelfDependencyError struct {
	TaskID string
}

func (e *SelfDependencyError) Error() string {
	return fmt.Sprintf("task %s cannot depend on itself", e.TaskID)
}

// CyclicDependencyError reports a dependency that would close a cycle.
type CyclicDependencyError struct {
	TaskID    string
	DependsOn string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("dependency %s -> %s would create a cycle", e.TaskID, e.DependsOn)
}

// NegativeCostError reports a cost constructed with a negative amount.
type NegativeCostError struct {
	Amount int64
}

func (e *NegativeCostError) Error() string {
	return fmt.Sprintf("cost must be non-negative, got %d", e.Amount)
}

// UnitMismatchError reports an attempt to combine costs of different units.
type UnitMismatchError struct {
	Left  string
	Right string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("cannot combine costs of unit '%s' and '%s'", e.Left, e.Right)
}
