package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/DevN0mad/Workasana/internal/models"
	"github.com/DevN0mad/Workasana/internal/services"
	"github.com/DevN0mad/Workasana/internal/views"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksCompleteCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var query, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.requireSession(cmd)
			if err != nil {
				return err
			}
			if err := ws.cols.Tasks.Load(cmd.Context()); err != nil {
				return err
			}
			tasks := views.FilterTasks(ws.cols.Tasks.Items(), query, status)
			return writeOut(cmd, app, map[string]any{"data": tasks})
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Case-insensitive name filter")
	cmd.Flags().StringVar(&status, "status", models.StatusAll, "Status filter (All|To Do|In Progress|Completed|Blocked)")
	return cmd
}

// taskDetail задача с вычисленными полями для вывода.
type taskDetail struct {
	models.Task
	ProjectName   string `json:"projectName"`
	DaysRemaining *int   `json:"daysRemaining,omitempty"`
}

func newTaskDetail(task models.Task, projects []models.Project, now time.Time) taskDetail {
	d := taskDetail{Task: task, ProjectName: views.ProjectName(task, projects)}
	if days, ok := views.DaysRemaining(task.DueDate, now); ok {
		d.DaysRemaining = &days
	}
	return d
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.requireSession(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			task, err := app.client.API.GetTask(ctx, ws.session, args[0])
			if err != nil {
				return err
			}
			// Без списка проектов имя проекта будет N/A, задача всё равно показывается.
			_ = ws.cols.Projects.Load(ctx)
			return writeOut(cmd, app, map[string]any{"data": newTaskDetail(task, ws.cols.Projects.Items(), time.Now())})
		},
	}
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var (
		name, project, team, status string
		owners, tags                []string
		hours                       float64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := models.ParseTaskStatus(status)
			if err != nil {
				return err
			}

			input := services.NewTaskInput()
			input.Name = name
			input.Project = strings.TrimSpace(project)
			input.Team = strings.TrimSpace(team)
			input.TimeToComplete = hours
			input.Status = st
			for _, tag := range tags {
				if !slices.Contains(app.cfg.Catalog.Tags, tag) {
					return fmt.Errorf("unknown tag %q (allowed: %s)", tag, strings.Join(app.cfg.Catalog.Tags, ", "))
				}
				input.Tags = services.Toggle(input.Tags, tag)
			}
			for _, owner := range owners {
				if owner = strings.TrimSpace(owner); owner != "" {
					input.Owners = services.Toggle(input.Owners, owner)
				}
			}

			ws, err := app.requireSession(cmd)
			if err != nil {
				return err
			}
			return runMutation(cmd, app, ws, ws.actions.CreateTask(input))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Task name")
	cmd.Flags().StringVar(&project, "project", "", "Project id")
	cmd.Flags().StringVar(&team, "team", "", "Team name")
	cmd.Flags().StringSliceVar(&owners, "owner", nil, "Owner (repeatable)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().Float64Var(&hours, "hours", 0, "Estimated hours to complete")
	cmd.Flags().StringVar(&status, "status", string(models.TaskToDo), "Initial status")
	return cmd
}

func newTasksCompleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.requireSession(cmd)
			if err != nil {
				return err
			}
			var updated models.Task
			mu := ws.actions.CompleteTask(args[0], func(t models.Task) { updated = t })
			if err := ws.mutator.Run(cmd.Context(), mu); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": newTaskDetail(updated, nil, time.Now())})
		},
	}
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.requireSession(cmd)
			if err != nil {
				return err
			}
			ok, err := confirm(cmd, "Delete this task?", yes)
			if err != nil {
				return err
			}
			if !ok {
				return errCanceled
			}
			return runMutation(cmd, app, ws, ws.actions.DeleteTask(args[0]))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
