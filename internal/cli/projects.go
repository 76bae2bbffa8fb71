package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/DevN0mad/Workasana/internal/models"
	"github.com/DevN0mad/Workasana/internal/services"
	"github.com/DevN0mad/Workasana/internal/views"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Project commands",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	cmd.AddCommand(newProjectsReportCmd(app))
	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	var query, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.requireSession(cmd)
			if err != nil {
				return err
			}
			if err := ws.cols.Projects.Load(cmd.Context()); err != nil {
				return err
			}
			projects := views.FilterProjects(ws.cols.Projects.Items(), query, status)
			return writeOut(cmd, app, map[string]any{"data": projects})
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Case-insensitive name filter")
	cmd.Flags().StringVar(&status, "status", models.StatusAll, "Status filter (All|Planned|In Progress|Completed)")
	return cmd
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var name, description, status string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := models.ParseProjectStatus(status)
			if err != nil {
				return err
			}
			ws, err := app.requireSession(cmd)
			if err != nil {
				return err
			}

			input := services.NewProjectInput()
			input.Name = name
			input.Description = strings.TrimSpace(description)
			input.Status = st
			return runMutation(cmd, app, ws, ws.actions.CreateProject(input))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	cmd.Flags().StringVar(&status, "status", string(models.ProjectPlanned), "Initial status")
	return cmd
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.requireSession(cmd)
			if err != nil {
				return err
			}
			ok, err := confirm(cmd, "Delete this project? Its tasks will be deleted too.", yes)
			if err != nil {
				return err
			}
			if !ok {
				return errCanceled
			}
			return runMutation(cmd, app, ws, ws.actions.DeleteProject(args[0]))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newProjectsReportCmd(app *App) *cobra.Command {
	var tag, owner string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Group tasks by project, optionally filtered by tag and owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.requireSession(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := ws.cols.Projects.Load(ctx); err != nil {
				return err
			}
			if err := ws.cols.Tasks.Load(ctx); err != nil {
				return err
			}

			tasks := views.FilterTasksByTagOwner(ws.cols.Tasks.Items(), tag, owner)
			groups := views.GroupTasksByProject(ws.cols.Projects.Items(), tasks)
			return writeOut(cmd, app, map[string]any{"data": groups})
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "Only tasks with this tag")
	cmd.Flags().StringVar(&owner, "owner", "", "Only tasks with this owner")
	return cmd
}
