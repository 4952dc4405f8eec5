package service

// Logger defines the logging interface for the services
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// CreateTaskInput carries the fields of a task creation request across the
// use-case boundary. Adapters populate it from JSON bodies or CLI flags.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string // defaults to LOW when empty
	CostAmount  *int64
	CostUnit    string
	ProjectID   string
}
