package cli

import (
	"github.com/spf13/cobra"

	"github.com/DevN0mad/Workasana/internal/models"
	"github.com/DevN0mad/Workasana/internal/services"
)

func newTeamsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Team commands",
	}
	cmd.AddCommand(newTeamsListCmd(app))
	cmd.AddCommand(newTeamsShowCmd(app))
	cmd.AddCommand(newTeamsCreateCmd(app))
	cmd.AddCommand(newTeamsAddMemberCmd(app))
	cmd.AddCommand(newTeamsDeleteCmd(app))
	return cmd
}

func newTeamsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.requireSession(cmd)
			if err != nil {
				return err
			}
			if err := ws.cols.Teams.Load(cmd.Context()); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": ws.cols.Teams.Items()})
		},
	}
}

type memberView struct {
	Name    string `json:"name"`
	Initial string `json:"initial"`
}

type teamDetail struct {
	models.Team
	Roster []memberView `json:"roster"`
}

func newTeamsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <team-id>",
		Short: "Show a team with its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.requireSession(cmd)
			if err != nil {
				return err
			}
			team, err := app.client.API.GetTeam(cmd.Context(), ws.session, args[0])
			if err != nil {
				return err
			}
			detail := teamDetail{Team: team, Roster: make([]memberView, 0, len(team.Members))}
			for _, m := range team.Members {
				detail.Roster = append(detail.Roster, memberView{Name: m, Initial: models.Initial(m)})
			}
			return writeOut(cmd, app, map[string]any{"data": detail})
		},
	}
}

func newTeamsCreateCmd(app *App) *cobra.Command {
	var (
		name    string
		members []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a team",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.requireSession(cmd)
			if err != nil {
				return err
			}
			return runMutation(cmd, app, ws, ws.actions.CreateTeam(services.TeamInput{Name: name, Members: members}))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Team name")
	cmd.Flags().StringArrayVar(&members, "member", nil, "Member name (repeatable)")
	return cmd
}

func newTeamsAddMemberCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add-member <team-id> <name>",
		Short: "Add a member to a team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.requireSession(cmd)
			if err != nil {
				return err
			}
			team, err := app.client.API.GetTeam(cmd.Context(), ws.session, args[0])
			if err != nil {
				return err
			}
			return runMutation(cmd, app, ws, ws.actions.AddMember(team, args[1]))
		},
	}
}

func newTeamsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <team-id>",
		Short: "Delete a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.requireSession(cmd)
			if err != nil {
				return err
			}
			ok, err := confirm(cmd, "Delete this team?", yes)
			if err != nil {
				return err
			}
			if !ok {
				return errCanceled
			}
			return runMutation(cmd, app, ws, ws.actions.DeleteTeam(args[0]))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
