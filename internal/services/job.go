package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DevN0mad/Workasana/internal/models"
)

// DailyJobOpts параметры необходимые для работы сервиса.
type DailyJobOpts struct {
	Hour    int    `mapstructure:"hour" validate:"min=0,max=23"`
	Minute  int    `mapstructure:"minute" validate:"min=0,max=59"`
	SaveDir string `mapstructure:"save_dir" validate:"required"`
}

// ReportGenerator строит файл отчёта.
type ReportGenerator interface {
	GenerateExcelReport(ctx context.Context) (string, models.Report, error)
}

// ReportSender доставляет файл отчёта.
type ReportSender interface {
	SendReport(ctx context.Context, path string, report models.Report) error
}

// DailyJobService строит и отправляет отчёт каждый день в заданное время.
type DailyJobService struct {
	generator ReportGenerator
	sender    ReportSender
	hour      int
	minute    int
	timezone  *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

// NewDailyJobService создаёт сервис для ежедневной отправки отчёта.
func NewDailyJobService(generator ReportGenerator, sender ReportSender, opts DailyJobOpts, loc *time.Location, logger *slog.Logger) (*DailyJobService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}

	if generator == nil {
		return nil, fmt.Errorf("report generator is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("report sender is required")
	}

	logger.Info("Daily job configured",
		"hour", opts.Hour,
		"minute", opts.Minute,
		"timezone", loc.String())

	return &DailyJobService{
		generator: generator,
		sender:    sender,
		hour:      opts.Hour,
		minute:    opts.Minute,
		timezone:  loc,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Start запускает цикл отправки до отмены контекста.
func (d *DailyJobService) Start(ctx context.Context) {
	nextRun := d.nextRunTime()
	timer := time.NewTimer(time.Until(nextRun))
	d.logger.Info("Next run scheduled", "at", nextRun.Format(time.RFC3339))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Shutdown requested")
			timer.Stop()
			return
		case <-timer.C:
			if err := d.RunOnce(ctx); err != nil {
				d.logger.Error("Daily report failed", "error", err)
			}

			nextRun = d.nextRunTime()
			timer.Reset(time.Until(nextRun))
			d.logger.Info("Next run scheduled", "at", nextRun.Format(time.RFC3339))
		}
	}
}

// RunOnce строит отчёт и отправляет его.
func (d *DailyJobService) RunOnce(ctx context.Context) error {
	path, report, err := d.generator.GenerateExcelReport(ctx)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	if err := d.sender.SendReport(ctx, path, report); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	d.logger.Info("Daily report sent successfully", "path", path)
	return nil
}

// nextRunTime вычисляет ближайшее время запуска.
func (d *DailyJobService) nextRunTime() time.Time {
	now := d.now().In(d.timezone)
	today := time.Date(now.Year(), now.Month(), now.Day(), d.hour, d.minute, 0, 0, d.timezone)

	if now.After(today) {
		return today.Add(24 * time.Hour)
	}
	return today
}
