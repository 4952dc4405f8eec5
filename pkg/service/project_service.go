package service

import (
	"github.com/google/uuid"

	"github.com/brunodantas/onion-tasks/pkg/models"
	"github.com/brunodantas/onion-tasks/pkg/storage"
)

// ProjectService implements the project use cases.
type ProjectService struct {
	store  storage.Store
	logger Logger
}

func NewProjectService(store storage.Store, logger Logger) *ProjectService {
	return &ProjectService{
		store:  store,
		logger: logger,
	}
}

// CreateProject persists a new project and returns it with its generated ID.
func (ps *ProjectService) CreateProject(name string) (project models.Project, err error) {
	if name == "" {
		return models.Project{}, &models.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if len(name) > 255 {
		return models.Project{}, &models.ValidationError{Field: "name", Reason: "too long (max 255 characters)"}
	}

	txStore, err := ps.store.Begin()
	if err != nil {
		return models.Project{}, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				ps.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			ps.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	project = models.Project{
		ID:   uuid.NewString(),
		Name: name,
	}
	if err = txStore.SaveProject(project); err != nil {
		return models.Project{}, err
	}
	ps.logger.Infof("Created project '%s' with ID %s", name, project.ID)
	return project, nil
}

func (ps *ProjectService) GetProject(id string) (models.Project, error) {
	return ps.store.GetProject(id)
}

func (ps *ProjectService) ListProjects() ([]models.Project, error) {
	return ps.store.ListProjects()
}
