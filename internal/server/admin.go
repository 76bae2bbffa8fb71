package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DevN0mad/Workasana/internal/models"
)

const APIv1Prefix = "/api/v1/"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminServerOpts параметры для настройки административного сервера.
type AdminServerOpts struct {
	Address             string `mapstructure:"address" validate:"required"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds" validate:"min=0"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds" validate:"min=0"`
	IdleTimeoutSeconds  int    `mapstructure:"idle_timeout_seconds" validate:"min=0"`
}

// ReportSource отдаёт сводку по задачам и xlsx-отчёт.
type ReportSource interface {
	Summary(ctx context.Context) (models.Report, error)
	WriteExcelReport(ctx context.Context, w io.Writer) (models.Report, error)
}

// AdminServer отдаёт графики и отчёты по HTTP.
type AdminServer struct {
	logger  *slog.Logger
	opts    *AdminServerOpts
	srv     *http.Server
	reports ReportSource
}

// NewAdminHandler создаёт новый обработчик для административных команд.
func NewAdminHandler(logger *slog.Logger, reports ReportSource, opts *AdminServerOpts) *AdminServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminServer{
		logger:  logger,
		opts:    opts,
		reports: reports,
	}
}

// Register регистрирует маршруты административного сервера.
func (h *AdminServer) Register(mux *http.ServeMux) {
	mux.HandleFunc(withPrefix("charts"), h.handleCharts)
	mux.HandleFunc(withPrefix("report"), h.handleReport)
}

// handleCharts отдаёт данные всех трёх графиков в JSON.
func (h *AdminServer) handleCharts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed", "method", r.Method, "path", r.URL.Path)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, err := h.reports.Summary(r.Context())
	if err != nil {
		h.logger.Error("Build charts", "error", err)
		http.Error(w, "Failed to build charts", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.logger.Error("Write charts response", "error", err)
	}
}

// handleReport обрабатывает запросы на получение отчёта.
func (h *AdminServer) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed", "method", r.Method, "path", r.URL.Path)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var buf bytes.Buffer
	report, err := h.reports.WriteExcelReport(r.Context(), &buf)
	if err != nil {
		h.logger.Error("Generate report", "error", err)
		http.Error(w, "Failed to generate report", http.StatusBadGateway)
		return
	}

	name := fmt.Sprintf("workasana_report_%s.xlsx", report.GeneratedAt.Format("20060102_150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("Write report response", "error", err)
	}
}

// Start запускает административный сервер.
func (h *AdminServer) Start(ctx context.Context) error {
	h.logger.Info("Starting admin server", "address", h.opts.Address)
	mux := http.NewServeMux()
	h.Register(mux)
	h.srv = &http.Server{
		Addr:         h.opts.Address,
		ReadTimeout:  time.Duration(h.opts.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(h.opts.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(h.opts.IdleTimeoutSeconds) * time.Second,
		Handler:      mux,
	}

	go func() {
		<-ctx.Done()

		h.logger.Info("Shutting down admin server (ctx canceled)")

		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.srv.Shutdown(shCtx); err != nil && err != http.ErrServerClosed {
			h.logger.Error("Admin server shutdown error", "error", err)
		}
	}()

	if err := h.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		h.logger.Error("Admin server error", "error", err)
		return err
	}

	h.logger.Info("Admin server stopped")
	return nil
}

// withPrefix добавляет префикс к пути API.
func withPrefix(postfix string) string {
	return APIv1Prefix + strings.TrimSpace(postfix)
}
