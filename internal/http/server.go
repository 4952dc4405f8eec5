package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/cors"

	"github.com/brunodantas/onion-tasks/internal/log"
	"github.com/brunodantas/onion-tasks/pkg/models"
	"github.com/brunodantas/onion-tasks/pkg/service"
	"github.com/brunodantas/onion-tasks/pkg/storage"
)

// StartServer wires the services and serves the REST API.
func StartServer(port string, store storage.Store) error {
	logger := log.GetLogger()
	taskSvc := service.NewTaskService(store, logger)
	agentSvc := service.NewAgentService(store, logger)
	projectSvc := service.NewProjectService(store, logger)

	handler := cors.AllowAll().Handler(NewRouter(taskSvc, agentSvc, projectSvc))
	logger.Infof("Starting onion-tasks server on :%s", port)
	return http.ListenAndServe(":"+port, handler)
}

// NewRouter builds the chi router over the use-case services.
func NewRouter(taskSvc *service.TaskService, agentSvc *service.AgentService, projectSvc *service.ProjectService) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", HealthHandler)

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", createTaskHandler(taskSvc))
		r.Get("/", listTasksHandler(taskSvc))
		r.Get("/report", reportHandler(taskSvc))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", getTaskHandler(taskSvc))
			r.Delete("/", deleteTaskHandler(taskSvc))
			r.Put("/status", changeStatusHandler(taskSvc))
			r.Put("/assignee", assignTaskHandler(taskSvc))
			r.Post("/dependencies", addDependencyHandler(taskSvc))
			r.Delete("/dependencies/{depID}", removeDependencyHandler(taskSvc))
			r.Get("/cost", totalCostHandler(taskSvc))
		})
	})

	r.Route("/agents", func(r chi.Router) {
		r.Post("/", createAgentHandler(agentSvc))
		r.Get("/", listAgentsHandler(agentSvc))
		r.Get("/{id}", getAgentHandler(agentSvc))
	})

	r.Route("/projects", func(r chi.Router) {
		r.Post("/", createProjectHandler(projectSvc))
		r.Get("/", listProjectsHandler(projectSvc))
		r.Get("/{id}", getProjectHandler(projectSvc))
	})

	return r
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusForError maps domain errors to HTTP status codes: absent entities
// to 404, rule violations to 400, disallowed transitions to 409.
func statusForError(err error) int {
	var (
		validationErr *models.ValidationError
		transitionErr *models.InvalidTransitionError
		selfDepErr    *models.SelfDependencyError
		cyclicErr     *models.CyclicDependencyError
		negCostErr    *models.NegativeCostError
		unitErr       *models.UnitMismatchError
	)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &transitionErr):
		return http.StatusConflict
	case errors.As(err, &validationErr),
		errors.As(err, &selfDepErr),
		errors.As(err, &cyclicErr),
		errors.As(err, &negCostErr),
		errors.As(err, &unitErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.GetLogger().Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.GetLogger().Errorf("Internal error: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	CostAmount  *int64 `json:"cost_amount"`
	CostUnit    string `json:"cost_unit"`
	ProjectID   string `json:"project_id"`
}

func createTaskHandler(svc *service.TaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		task, err := svc.CreateTask(service.CreateTaskInput{
			Title:       req.Title,
			Description: req.Description,
			Priority:    req.Priority,
			CostAmount:  req.CostAmount,
			CostUnit:    req.CostUnit,
			ProjectID:   req.ProjectID,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, task)
	}
}

func listTasksHandler(svc *service.TaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := storage.TaskFilter{
			Status:     r.URL.Query().Get("status"),
			AssigneeID: r.URL.Query().Get("assignee"),
			ProjectID:  r.URL.Query().Get("project"),
		}
		tasks, err := svc.ListTasks(filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tasks)
	}
}

func getTaskHandler(svc *service.TaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		task, err := svc.GetTask(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

func deleteTaskHandler(svc *service.TaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteTask(chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func changeStatusHandler(svc *service.TaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		task, err := svc.ChangeStatus(chi.URLParam(r, "id"), req.Status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

func assignTaskHandler(svc *service.TaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AgentID string `json:"agent_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		task, err := svc.AssignTask(chi.URLParam(r, "id"), req.AgentID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

func addDependencyHandler(svc *service.TaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			DependsOn string `json:"depends_on"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		if err := svc.AddDependency(chi.URLParam(r, "id"), req.DependsOn); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func removeDependencyHandler(svc *service.TaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.RemoveDependency(chi.URLParam(r, "id"), chi.URLParam(r, "depID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func totalCostHandler(svc *service.TaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cost, err := svc.TotalCost(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cost)
	}
}

func reportHandler(svc *service.TaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := storage.TaskFilter{
			Status:     r.URL.Query().Get("status"),
			AssigneeID: r.URL.Query().Get("assignee"),
			ProjectID:  r.URL.Query().Get("project"),
		}
		statuses, err := svc.StatusReport(filter)
		if err != nil {
			writeError(w, err)
			return
		}
		min, max, err := svc.MakespanBoundaries(filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"statuses": statuses,
			"makespan": map[string]int64{"min": min, "max": max},
		})
	}
}

func createAgentHandler(svc *service.AgentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		agent, err := svc.CreateAgent(req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, agent)
	}
}

func listAgentsHandler(svc *service.AgentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agents, err := svc.ListAgents()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, agents)
	}
}

func getAgentHandler(svc *service.AgentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, err := svc.GetAgent(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, agent)
	}
}

func createProjectHandler(svc *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		project, err := svc.CreateProject(req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, project)
	}
}

func listProjectsHandler(svc *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := svc.ListProjects()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, projects)
	}
}

func getProjectHandler(svc *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := svc.GetProject(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, project)
	}
}
