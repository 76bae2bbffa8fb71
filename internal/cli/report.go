package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DevN0mad/Workasana/internal/models"
	"github.com/DevN0mad/Workasana/internal/services"
)

func newReportCmd(app *App) *cobra.Command {
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Chart data: completions by weekday, pending hours, completions by team",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.requireSession(cmd)
			if err != nil {
				return err
			}
			reports := services.NewReportService(ws.cols.Tasks, app.client.Location, "", app.logger)

			var report models.Report
			if xlsxPath == "" {
				report, err = reports.Summary(cmd.Context())
			} else {
				report, err = writeReportFile(cmd, reports, xlsxPath)
			}
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": report})
		},
	}

	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the report workbook to this path")
	return cmd
}

func writeReportFile(cmd *cobra.Command, reports *services.ReportService, path string) (models.Report, error) {
	f, err := os.Create(path)
	if err != nil {
		return models.Report{}, fmt.Errorf("create report file: %w", err)
	}
	report, err := reports.WriteExcelReport(cmd.Context(), f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close report file: %w", cerr)
	}
	return report, err
}
