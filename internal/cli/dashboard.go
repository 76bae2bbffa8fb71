package cli

import (
	"github.com/spf13/cobra"

	"github.com/DevN0mad/Workasana/internal/tui"
)

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive dashboard (default when no command is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, app)
		},
	}
}

func runDashboard(cmd *cobra.Command, app *App) error {
	return tui.Run(cmd.Context(), app.client)
}
