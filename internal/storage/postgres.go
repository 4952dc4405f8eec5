package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/brunodantas/onion-tasks/pkg/models"
	"github.com/brunodantas/onion-tasks/pkg/storage"
)

type DBInterface interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	QueryRowx(query string, args ...interface{}) *sqlx.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

type PostgresStore struct {
	db DBInterface
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Begin() (storage.Store, error) {
	if db, ok := s.db.(*sqlx.DB); ok {
		tx, err := db.Beginx()
		if err != nil {
			return nil, err
		}
		return &PostgresStore{db: tx}, nil
	}
	return nil, fmt.Errorf("cannot begin transaction on unknown type")
}

func (s *PostgresStore) Commit() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Commit()
	}
	return fmt.Errorf("cannot commit: not a transaction")
}

func (s *PostgresStore) Rollback() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Rollback()
	}
	return fmt.Errorf("cannot rollback: not a transaction")
}

func (s *PostgresStore) Close() error {
	if db, ok := s.db.(*sqlx.DB); ok {
		return db.Close()
	}
	return nil // No-op for *sqlx.Tx
}

// taskRow mirrors the tasks table; the optional cost is split into two
// nullable columns.
type taskRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	Priority    string    `db:"priority"`
	AssigneeID  *string   `db:"assignee_id"`
	ProjectID   *string   `db:"project_id"`
	CostAmount  *int64    `db:"cost_amount"`
	CostUnit    *string   `db:"cost_unit"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r taskRow) toModel() models.Task {
	t := models.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      models.TaskStatus(r.Status),
		Priority:    models.Priority(r.Priority),
		AssigneeID:  r.AssigneeID,
		ProjectID:   r.ProjectID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.CostAmount != nil {
		unit := ""
		if r.CostUnit != nil {
			unit = *r.CostUnit
		}
		t.Cost = &models.Cost{Amount: *r.CostAmount, Unit: unit}
	}
	return t
}

func costColumns(t models.Task) (*int64, *string) {
	if t.Cost == nil {
		return nil, nil
	}
	return &t.Cost.Amount, &t.Cost.Unit
}

// SaveTask inserts a new task
func (s *PostgresStore) SaveTask(t models.Task) error {
	amount, unit := costColumns(t)
	_, err := s.db.Exec(`
		INSERT INTO tasks (id, title, description, status, priority, assignee_id, project_id, cost_amount, cost_unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.AssigneeID, t.ProjectID, amount, unit, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// UpdateTask rewrites the mutable columns of an existing task
func (s *PostgresStore) UpdateTask(t models.Task) error {
	amount, unit := costColumns(t)
	res, err := s.db.Exec(`
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4,
		assignee_id = $5, project_id = $6, cost_amount = $7, cost_unit = $8,
		updated_at = CURRENT_TIMESTAMP
		WHERE id = $9`,
		t.Title, t.Description, t.Status, t.Priority, t.AssigneeID, t.ProjectID, amount, unit, t.ID)
	if err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetTask retrieves a task by ID, including its dependencies
func (s *PostgresStore) GetTask(id string) (models.Task, error) {
	var row taskRow
	err := s.db.Get(&row, "SELECT * FROM tasks WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return models.Task{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	task := row.toModel()
	deps, err := s.GetDependencies(id)
	if err != nil {
		return models.Task{}, err
	}
	task.Dependencies = deps
	return task, nil
}

// ListTasks retrieves tasks matching the filter, newest first
func (s *PostgresStore) ListTasks(filter storage.TaskFilter) ([]models.Task, error) {
	query := "SELECT * FROM tasks WHERE 1=1"
	args := []interface{}{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.AssigneeID != "" {
		args = append(args, filter.AssigneeID)
		query += fmt.Sprintf(" AND assignee_id = $%d", len(args))
	}
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		query += fmt.Sprintf(" AND project_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows := []taskRow{}
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		task := row.toModel()
		deps, err := s.GetDependencies(task.ID)
		if err != nil {
			return nil, err
		}
		task.Dependencies = deps
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// DeleteTask removes a task; dependency edges go with it via ON DELETE CASCADE
func (s *PostgresStore) DeleteTask(id string) error {
	res, err := s.db.Exec("DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SaveDependency records that task_id depends on depends_on
func (s *PostgresStore) SaveDependency(taskID, dependsOn string) error {
	_, err := s.db.Exec(`
		INSERT INTO dependencies (task_id, depends_on) VALUES ($1, $2)
		ON CONFLICT (task_id, depends_on) DO NOTHING`,
		taskID, dependsOn)
	if err != nil {
		return fmt.Errorf("save dependency %s -> %s: %w", taskID, dependsOn, err)
	}
	return nil
}

// DeleteDependency removes the edge task_id -> depends_on
func (s *PostgresStore) DeleteDependency(taskID, dependsOn string) error {
	res, err := s.db.Exec("DELETE FROM dependencies WHERE task_id = $1 AND depends_on = $2", taskID, dependsOn)
	if err != nil {
		return fmt.Errorf("delete dependency %s -> %s: %w", taskID, dependsOn, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetDependencies retrieves the IDs the task depends on
func (s *PostgresStore) GetDependencies(taskID string) ([]string, error) {
	var deps []string
	err := s.db.Select(&deps, "SELECT depends_on FROM dependencies WHERE task_id = $1 ORDER BY depends_on", taskID)
	if err != nil {
		return nil, fmt.Errorf("get dependencies of %s: %w", taskID, err)
	}
	return deps, nil
}

// GetDependents retrieves the IDs of tasks depending on the task
func (s *PostgresStore) GetDependents(taskID string) ([]string, error) {
	var deps []string
	err := s.db.Select(&deps, "SELECT task_id FROM dependencies WHERE depends_on = $1 ORDER BY task_id", taskID)
	if err != nil {
		return nil, fmt.Errorf("get dependents of %s: %w", taskID, err)
	}
	return deps, nil
}

// SaveAgent inserts a new agent
func (s *PostgresStore) SaveAgent(a models.Agent) error {
	_, err := s.db.Exec("INSERT INTO agents (id, name) VALUES ($1, $2)", a.ID, a.Name)
	if err != nil {
		return fmt.Errorf("save agent: %w", err)
	}
	return nil
}

// GetAgent retrieves an agent by ID
func (s *PostgresStore) GetAgent(id string) (models.Agent, error) {
	var agent models.Agent
	err := s.db.Get(&agent, "SELECT * FROM agents WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return models.Agent{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Agent{}, fmt.Errorf("get agent %s: %w", id, err)
	}
	return agent, nil
}

func (s *PostgresStore) ListAgents() ([]models.Agent, error) {
	agents := []models.Agent{}
	if err := s.db.Select(&agents, "SELECT * FROM agents ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return agents, nil
}

// SaveProject inserts a new project
func (s *PostgresStore) SaveProject(p models.Project) error {
	_, err := s.db.Exec("INSERT INTO projects (id, name) VALUES ($1, $2)", p.ID, p.Name)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

// GetProject retrieves a project by ID
func (s *PostgresStore) GetProject(id string) (models.Project, error) {
	var project models.Project
	err := s.db.Get(&project, "SELECT * FROM projects WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return models.Project{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("get project %s: %w", id, err)
	}
	return project, nil
}

func (s *PostgresStore) ListProjects() ([]models.Project, error) {
	projects := []models.Project{}
	if err := s.db.Select(&projects, "SELECT * FROM projects ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}
