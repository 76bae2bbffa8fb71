package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/DevN0mad/Workasana/internal/config"
	"github.com/DevN0mad/Workasana/internal/server"
	"github.com/DevN0mad/Workasana/internal/services"
)

// App представляет демон отчётов, управляющий сервисами.
type App struct {
	logger  *slog.Logger
	rootCtx context.Context

	mu             sync.Mutex
	client         *Client
	tg             *services.TelegramBotService
	reports        *services.ReportService
	dailyJob       *services.DailyJobService
	adminSrv       *server.AdminServer
	servicesCancel context.CancelFunc
}

// NewApp создает новый экземпляр приложения с заданным логгером и корневым контекстом.
func NewApp(ctx context.Context, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &App{
		logger:  logger,
		rootCtx: ctx,
	}
}

// ApplyConfig применяет конфигурацию к приложению, инициализируя/переинициализируя сервисы.
// Демону нужна сохранённая сессия: без неё сервисы не запускаются.
func (a *App) ApplyConfig(cfg config.Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopLocked()

	ctx, cancel := context.WithCancel(a.rootCtx)

	client, err := NewClient(cfg, a.logger)
	if err != nil {
		cancel()
		return fmt.Errorf("init client: %w", err)
	}

	sess, err := client.Guard.Require(ctx)
	if err != nil {
		cancel()
		client.Close()
		return fmt.Errorf("open session: %w", err)
	}

	cols := services.NewCollections(client.API, sess)
	reports := services.NewReportService(cols.Tasks, client.Location, cfg.DailyJob.SaveDir, a.logger)

	tg, err := services.NewTelegramBot(cfg.TelegramBot, a.logger)
	if err != nil {
		cancel()
		client.Close()
		return fmt.Errorf("init telegram bot: %w", err)
	}

	dailyJob, err := services.NewDailyJobService(reports, tg, cfg.DailyJob, client.Location, a.logger)
	if err != nil {
		cancel()
		client.Close()
		return fmt.Errorf("init daily job: %w", err)
	}

	adminSrv := server.NewAdminHandler(a.logger, reports, &cfg.HttpServer)

	go dailyJob.Start(ctx)
	go func() {
		if err := adminSrv.Start(ctx); err != nil {
			a.logger.Error("Admin server exited with error", "error", err)
		}
	}()

	a.client = client
	a.tg = tg
	a.reports = reports
	a.dailyJob = dailyJob
	a.adminSrv = adminSrv
	a.servicesCancel = cancel

	a.logger.Info("Services reinitialized successfully with configuration")
	return nil
}

// Shutdown останавливает все запущенные сервисы приложения.
func (a *App) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.logger.Info("Stopping services on shutdown")
	a.stopLocked()
}

func (a *App) stopLocked() {
	if a.servicesCancel != nil {
		a.logger.Info("Stopping previous services")
		a.servicesCancel()
		a.servicesCancel = nil
	}
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Error("Failed to close session storage", "error", err)
		}
		a.client = nil
	}
}
