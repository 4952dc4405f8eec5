package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/brunodantas/onion-tasks/internal/log"
	internal_storage "github.com/brunodantas/onion-tasks/internal/storage"
	"github.com/brunodantas/onion-tasks/pkg/models"
	"github.com/brunodantas/onion-tasks/pkg/service"
	"github.com/brunodantas/onion-tasks/pkg/storage"
)

// SetupCLI registers the task, agent and project commands on the root.
// Every command opens its own store from the --db flag and exits non-zero
// on failure.
func SetupCLI(rootCmd *cobra.Command) {
	rootCmd.AddCommand(taskCmd(), agentCmd(), projectCmd())
}

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	createCmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a new task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewTaskService(store, log.GetLogger())

			description, _ := cmd.Flags().GetString("description")
			priority, _ := cmd.Flags().GetString("priority")
			projectID, _ := cmd.Flags().GetString("project")
			costUnit, _ := cmd.Flags().GetString("cost-unit")
			in := service.CreateTaskInput{
				Title:       args[0],
				Description: description,
				Priority:    priority,
				ProjectID:   projectID,
				CostUnit:    costUnit,
			}
			if cmd.Flags().Changed("cost") {
				amount, _ := cmd.Flags().GetInt64("cost")
				in.CostAmount = &amount
			}
			task, err := svc.CreateTask(in)
			if err != nil {
				fail("create task", err)
			}
			fmt.Fprintf(os.Stdout, "Created task '%s' with ID %s\n", task.Title, task.ID)
		},
	}
	createCmd.Flags().String("description", "", "Task description")
	createCmd.Flags().String("priority", "", "Task priority (LOW, MEDIUM, HIGH)")
	createCmd.Flags().String("project", "", "Project ID the task belongs to")
	createCmd.Flags().Int64("cost", 0, "Estimated cost amount")
	createCmd.Flags().String("cost-unit", "points", "Unit of the cost amount")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Run: func(cmd *cobra.Command, args []string) {
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewTaskService(store, log.GetLogger())

			status, _ := cmd.Flags().GetString("status")
			assignee, _ := cmd.Flags().GetString("assignee")
			project, _ := cmd.Flags().GetString("project")
			tasks, err := svc.ListTasks(storage.TaskFilter{Status: status, AssigneeID: assignee, ProjectID: project})
			if err != nil {
				fail("list tasks", err)
			}
			printTasks(tasks)
		},
	}
	listCmd.Flags().String("status", "", "Filter by status")
	listCmd.Flags().String("assignee", "", "Filter by assignee ID")
	listCmd.Flags().String("project", "", "Filter by project ID")

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewTaskService(store, log.GetLogger())

			task, err := svc.GetTask(args[0])
			if err != nil {
				fail("show task", err)
			}
			printTask(task)
		},
	}

	assignCmd := &cobra.Command{
		Use:   "assign [task-id] [agent-id]",
		Short: "Assign a task to an agent",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewTaskService(store, log.GetLogger())

			task, err := svc.AssignTask(args[0], args[1])
			if err != nil {
				fail("assign task", err)
			}
			fmt.Fprintf(os.Stdout, "Assigned task %s to agent %s\n", task.ID, *task.AssigneeID)
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status [task-id] [status]",
		Short: "Change a task's status",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewTaskService(store, log.GetLogger())

			task, err := svc.ChangeStatus(args[0], args[1])
			if err != nil {
				fail("change status", err)
			}
			fmt.Fprintf(os.Stdout, "Updated task %s to status '%s'\n", task.ID, task.Status)
		},
	}

	dependCmd := &cobra.Command{
		Use:   "depend [task-id] [depends-on-id]",
		Short: "Add a dependency between tasks",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewTaskService(store, log.GetLogger())

			if err := svc.AddDependency(args[0], args[1]); err != nil {
				fail("add dependency", err)
			}
			fmt.Fprintf(os.Stdout, "Task %s now depends on %s\n", args[0], args[1])
		},
	}

	undependCmd := &cobra.Command{
		Use:   "undepend [task-id] [depends-on-id]",
		Short: "Remove a dependency between tasks",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewTaskService(store, log.GetLogger())

			if err := svc.RemoveDependency(args[0], args[1]); err != nil {
				fail("remove dependency", err)
			}
			fmt.Fprintf(os.Stdout, "Task %s no longer depends on %s\n", args[0], args[1])
		},
	}

	costCmd := &cobra.Command{
		Use:   "cost [task-id]",
		Short: "Total cost of a task and its dependency closure",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewTaskService(store, log.GetLogger())

			cost, err := svc.TotalCost(args[0])
			if err != nil {
				fail("compute cost", err)
			}
			fmt.Fprintf(os.Stdout, "Total cost of %s: %d %s\n", args[0], cost.Amount, cost.Unit)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewTaskService(store, log.GetLogger())

			if err := svc.DeleteTask(args[0]); err != nil {
				fail("delete task", err)
			}
			fmt.Fprintf(os.Stdout, "Deleted task %s\n", args[0])
		},
	}

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Status counts and makespan boundaries",
		Run: func(cmd *cobra.Command, args []string) {
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewTaskService(store, log.GetLogger())

			statuses, err := svc.StatusReport(storage.TaskFilter{})
			if err != nil {
				fail("report", err)
			}
			min, max, err := svc.MakespanBoundaries(storage.TaskFilter{})
			if err != nil {
				fail("report", err)
			}
			bold := color.New(color.Bold)
			bold.Fprintln(os.Stdout, "Tasks by status:")
			for _, s := range []models.TaskStatus{models.PendingTaskStatus, models.InProgressTaskStatus, models.CompletedTaskStatus, models.CancelledTaskStatus} {
				fmt.Fprintf(os.Stdout, "  %-12s %d\n", s, statuses[s])
			}
			bold.Fprintln(os.Stdout, "Makespan boundaries:")
			fmt.Fprintf(os.Stdout, "  best case (parallel):    %d\n", min)
			fmt.Fprintf(os.Stdout, "  worst case (sequential): %d\n", max)
		},
	}

	cmd.AddCommand(createCmd, listCmd, showCmd, assignCmd, statusCmd, dependCmd, undependCmd, costCmd, deleteCmd, reportCmd)
	return cmd
}

func agentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agents",
	}

	createCmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new agent",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewAgentService(store, log.GetLogger())

			agent, err := svc.CreateAgent(args[0])
			if err != nil {
				fail("create agent", err)
			}
			fmt.Fprintf(os.Stdout, "Created agent '%s' with ID %s\n", agent.Name, agent.ID)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List agents",
		Run: func(cmd *cobra.Command, args []string) {
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewAgentService(store, log.GetLogger())

			agents, err := svc.ListAgents()
			if err != nil {
				fail("list agents", err)
			}
			if len(agents) == 0 {
				fmt.Fprintln(os.Stdout, "No agents found.")
				return
			}
			for _, a := range agents {
				fmt.Fprintf(os.Stdout, "- ID: %s, Name: %s\n", a.ID, a.Name)
			}
		},
	}

	cmd.AddCommand(createCmd, listCmd)
	return cmd
}

func projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	createCmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new project",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewProjectService(store, log.GetLogger())

			project, err := svc.CreateProject(args[0])
			if err != nil {
				fail("create project", err)
			}
			fmt.Fprintf(os.Stdout, "Created project '%s' with ID %s\n", project.Name, project.ID)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Run: func(cmd *cobra.Command, args []string) {
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewProjectService(store, log.GetLogger())

			projects, err := svc.ListProjects()
			if err != nil {
				fail("list projects", err)
			}
			if len(projects) == 0 {
				fmt.Fprintln(os.Stdout, "No projects found.")
				return
			}
			for _, p := range projects {
				fmt.Fprintf(os.Stdout, "- ID: %s, Name: %s\n", p.ID, p.Name)
			}
		},
	}

	cmd.AddCommand(createCmd, listCmd)
	return cmd
}

func printTasks(tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stdout, "No tasks found.")
		return
	}
	for _, t := range tasks {
		fmt.Fprintf(os.Stdout, "- %s  %s  [%s]  %s\n", t.ID, statusColor(t.Status).Sprintf("%-11s", t.Status), t.Priority, t.Title)
	}
}

func printTask(t models.Task) {
	bold := color.New(color.Bold)
	bold.Fprintf(os.Stdout, "%s\n", t.Title)
	fmt.Fprintf(os.Stdout, "  ID:         %s\n", t.ID)
	fmt.Fprintf(os.Stdout, "  Status:     %s\n", statusColor(t.Status).Sprint(t.Status))
	fmt.Fprintf(os.Stdout, "  Priority:   %s\n", t.Priority)
	if t.Description != "" {
		fmt.Fprintf(os.Stdout, "  Description: %s\n", t.Description)
	}
	if t.AssigneeID != nil {
		fmt.Fprintf(os.Stdout, "  Assignee:   %s\n", *t.AssigneeID)
	}
	if t.ProjectID != nil {
		fmt.Fprintf(os.Stdout, "  Project:    %s\n", *t.ProjectID)
	}
	if t.Cost != nil {
		fmt.Fprintf(os.Stdout, "  Cost:       %d %s\n", t.Cost.Amount, t.Cost.Unit)
	}
	if len(t.Dependencies) > 0 {
		fmt.Fprintf(os.Stdout, "  Depends on: %s\n", strconv.Itoa(len(t.Dependencies))+" task(s)")
		for _, dep := range t.Dependencies {
			fmt.Fprintf(os.Stdout, "    - %s\n", dep)
		}
	}
}

func statusColor(s models.TaskStatus) *color.Color {
	switch s {
	case models.CompletedTaskStatus:
		return color.New(color.FgGreen)
	case models.InProgressTaskStatus:
		return color.New(color.FgYellow)
	case models.CancelledTaskStatus:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgWhite)
	}
}

func fail(action string, err error) {
	log.GetLogger().Errorf("Failed to %s: %v", action, err)
	fmt.Fprintf(os.Stderr, "Error: failed to %s: %v\n", action, err)
	os.Exit(1)
}

func initStore(cmd *cobra.Command) *internal_storage.PostgresStore {
	dbConnStr, err := cmd.Flags().GetString("db")
	if err != nil {
		log.GetLogger().Errorf("Error retrieving db flag: %v", err)
		os.Exit(1)
	}
	store, err := internal_storage.InitStore(dbConnStr)
	if err != nil {
		log.GetLogger().Errorf("Failed to initialize store: %v", err)
		os.Exit(1)
	}
	return store
}
