package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/DevN0mad/Workasana/internal/charts"
	"github.com/DevN0mad/Workasana/internal/models"
)

const (
	sheetWeekday = "Completed by weekday"
	sheetPending = "Pending work"
	sheetTeams   = "Closed by team"
)

// ReportService строит отчёт с графиками по текущему списку задач.
type ReportService struct {
	tasks   *Loader[models.Task]
	loc     *time.Location
	saveDir string
	logger  *slog.Logger
	now     func() time.Time
}

// NewReportService создаёт сервис отчётов поверх загрузчика задач.
func NewReportService(tasks *Loader[models.Task], loc *time.Location, saveDir string, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{tasks: tasks, loc: loc, saveDir: saveDir, logger: logger, now: time.Now}
}

// Summary перезагружает задачи и считает графики.
// Если загрузка не удалась, но ранее данные были, отчёт строится по ним.
func (s *ReportService) Summary(ctx context.Context) (models.Report, error) {
	if err := s.tasks.Load(ctx); err != nil && !s.tasks.Loaded() {
		return models.Report{}, fmt.Errorf("load tasks: %w", err)
	}
	return charts.Summarize(s.tasks.Items(), s.loc, s.now().In(s.loc)), nil
}

// GenerateExcelReport сохраняет отчёт в xlsx в каталоге saveDir и возвращает путь к файлу.
func (s *ReportService) GenerateExcelReport(ctx context.Context) (string, models.Report, error) {
	report, err := s.Summary(ctx)
	if err != nil {
		return "", models.Report{}, err
	}

	if err := os.MkdirAll(s.saveDir, 0o755); err != nil {
		return "", models.Report{}, fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(s.saveDir, fmt.Sprintf("workasana_report_%s.xlsx", report.GeneratedAt.Format("20060102_150405")))

	f, err := BuildWorkbook(report)
	if err != nil {
		return "", models.Report{}, err
	}
	defer f.Close()

	s.logger.Info("Saving Excel report", "path", path, "tasks", report.TotalTasks)
	if err := f.SaveAs(path); err != nil {
		return "", models.Report{}, fmt.Errorf("save report: %w", err)
	}
	return path, report, nil
}

// WriteExcelReport пишет отчёт в xlsx прямо в w.
func (s *ReportService) WriteExcelReport(ctx context.Context, w io.Writer) (models.Report, error) {
	report, err := s.Summary(ctx)
	if err != nil {
		return models.Report{}, err
	}
	f, err := BuildWorkbook(report)
	if err != nil {
		return models.Report{}, err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return models.Report{}, fmt.Errorf("write report: %w", err)
	}
	return report, nil
}

// BuildWorkbook создаёт книгу с тремя листами: по дням недели, оставшиеся часы, по командам.
func BuildWorkbook(report models.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if _, err := f.NewSheet(sheetWeekday); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	setRow(f, sheetWeekday, 1, "Day", "Completed Tasks")
	for i, name := range models.Weekdays {
		setRow(f, sheetWeekday, i+2, name, report.CompletedByWeekday[i])
	}
	f.SetColWidth(sheetWeekday, "A", "B", 20)
	if err := f.AddChart(sheetWeekday, "D2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheetWeekday),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$8", sheetWeekday),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$8", sheetWeekday),
		}},
		Title: []excelize.RichTextRun{{Text: "Work Done Last Week"}},
	}); err != nil {
		return nil, fmt.Errorf("add weekday chart: %w", err)
	}

	if _, err := f.NewSheet(sheetPending); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	setRow(f, sheetPending, 1, "Metric", "Value")
	setRow(f, sheetPending, 2, "Total Hours Pending", report.PendingHours)
	setRow(f, sheetPending, 3, "Total Tasks", report.TotalTasks)
	setRow(f, sheetPending, 4, "Generated At", report.GeneratedAt.Format("02.01.2006 15:04"))
	f.SetColWidth(sheetPending, "A", "B", 25)

	if _, err := f.NewSheet(sheetTeams); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	setRow(f, sheetTeams, 1, "Team", "Tasks Closed")
	for i, tc := range report.CompletedByTeam {
		setRow(f, sheetTeams, i+2, tc.Team, tc.Completed)
	}
	f.SetColWidth(sheetTeams, "A", "B", 25)
	if n := len(report.CompletedByTeam); n > 0 {
		if err := f.AddChart(sheetTeams, "D2", &excelize.Chart{
			Type: excelize.Pie,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("'%s'!$B$1", sheetTeams),
				Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheetTeams, n+1),
				Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheetTeams, n+1),
			}},
			Title: []excelize.RichTextRun{{Text: "Tasks Closed by Team"}},
		}); err != nil {
			return nil, fmt.Errorf("add team chart: %w", err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}
