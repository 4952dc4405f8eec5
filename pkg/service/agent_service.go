package service

import (
	"github.com/google/uuid"

	"github.com/brunodantas/onion-tasks/pkg/models"
	"github.com/brunodantas/onion-tasks/pkg/storage"
)

// AgentService implements the agent use cases.
type AgentService struct {
	store  storage.Store
	logger Logger
}

func NewAgentService(store storage.Store, logger Logger) *AgentService {
	return &AgentService{
		store:  store,
		logger: logger,
	}
}

// CreateAgent persists a new agent and returns it with its generated ID.
func (as *AgentService) CreateAgent(name string) (agent models.Agent, err error) {
	if name == "" {
		return models.Agent{}, &models.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if len(name) > 255 {
		return models.Agent{}, &models.ValidationError{Field: "name", Reason: "too long (max 255 characters)"}
	}

	txStore, err := as.store.Begin()
	if err != nil {
		return models.Agent{}, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				as.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			as.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	agent = models.Agent{
		ID:   uuid.NewString(),
		Name: name,
	}
	if err = txStore.SaveAgent(agent); err != nil {
		return models.Agent{}, err
	}
	as.logger.Infof("Created agent '%s' with ID %s", name, agent.ID)
	return agent, nil
}

func (as *AgentService) GetAgent(id string) (models.Agent, error) {
	return as.store.GetAgent(id)
}

func (as *AgentService) ListAgents() ([]models.Agent, error) {
	return as.store.ListAgents()
}
