// Package cli команды workasana: вход, работа с проектами, задачами и командами, отчёты.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/DevN0mad/Workasana/internal/config"
	"github.com/DevN0mad/Workasana/internal/core"
	"github.com/DevN0mad/Workasana/internal/services"
	"github.com/DevN0mad/Workasana/internal/session"
)

// App общее состояние команд одного запуска.
type App struct {
	ConfigPath string
	PrettyJSON bool

	cfg      config.Config
	client   *core.Client
	logger   *slog.Logger
	closeLog func() error
}

// Execute запускает CLI и возвращает код выхода.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &App{}
	cmd := NewRootCmd(app)
	err := cmd.ExecuteContext(ctx)
	app.Close()
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

// NewRootCmd собирает дерево команд.
func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "workasana",
		Short:         "Workasana project management client",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Sign in once, the session is kept until logout
  workasana login --email you@example.com

  # Start the interactive dashboard
  workasana

  # Scriptable commands
  workasana tasks list --status "In Progress"
  workasana report --xlsx ./report.xlsx
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runDashboard(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.open(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("WORKASANA_CONFIG", defaultConfigPath()), "Path to config file")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newSignupCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newDashboardCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newTeamsCmd(app))
	cmd.AddCommand(newReportCmd(app))

	return cmd
}

// open читает конфигурацию, настраивает журнал и открывает хранилище сессии.
func (app *App) open(cmd *cobra.Command) error {
	if app.client != nil {
		return nil
	}

	mgr, err := config.NewManager(app.ConfigPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return err
	}
	app.cfg = mgr.Current()

	// Интерактивный экран не должен смешиваться с журналом.
	logOut := cmd.ErrOrStderr()
	if isInteractive(cmd) {
		logOut = io.Discard
	}
	logger, closeLog, err := app.cfg.Logging.NewLogger(logOut)
	if err != nil {
		return err
	}
	app.logger = logger
	app.closeLog = closeLog

	client, err := core.NewClient(app.cfg, logger)
	if err != nil {
		return err
	}
	app.client = client
	return nil
}

// Close освобождает хранилище сессии и файл журнала.
func (app *App) Close() {
	if app.client != nil {
		if err := app.client.Close(); err != nil {
			app.logger.Error("Failed to close session storage", "error", err)
		}
		app.client = nil
	}
	if app.closeLog != nil {
		_ = app.closeLog()
		app.closeLog = nil
	}
}

// workspace объекты авторизованной части: загрузчики, изменения, исполнитель.
type workspace struct {
	session *session.Session
	cols    *services.Collections
	actions *services.Actions
	mutator *services.Mutator
}

// requireSession пускает дальше только при сохранённой сессии.
func (app *App) requireSession(cmd *cobra.Command) (*workspace, error) {
	sess, err := app.client.Guard.Require(cmd.Context())
	if err != nil {
		return nil, err
	}
	cols := services.NewCollections(app.client.API, sess)
	return &workspace{
		session: sess,
		cols:    cols,
		actions: services.NewActions(app.client.API, sess, cols),
		mutator: services.NewMutator(&stderrNotifier{w: cmd.ErrOrStderr()}, app.logger),
	}, nil
}

// stderrNotifier выводит уведомления об изменениях в stderr.
type stderrNotifier struct {
	w io.Writer
}

func (n *stderrNotifier) Success(msg string) { fmt.Fprintln(n.w, msg) }
func (n *stderrNotifier) Failure(msg string) { fmt.Fprintln(n.w, msg) }

// runMutation выполняет изменение и печатает сообщение об успехе.
func runMutation(cmd *cobra.Command, app *App, ws *workspace, mu services.Mutation) error {
	if err := ws.mutator.Run(cmd.Context(), mu); err != nil {
		return err
	}
	return writeOut(cmd, app, map[string]any{"data": map[string]string{"message": mu.Success}})
}

func isInteractive(cmd *cobra.Command) bool {
	return cmd.Name() == "dashboard" || !cmd.HasParent()
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".workasana", "config.yaml")
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if app.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// readSecret читает пароль без эха с терминала или строкой из stdin.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	defer fmt.Fprintln(cmd.ErrOrStderr())

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return readLine(cmd)
}

// confirm спрашивает подтверждение. --yes пропускает вопрос.
func confirm(cmd *cobra.Command, question string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N]: ", question)
	answer, err := readLine(cmd)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func readLine(cmd *cobra.Command) (string, error) {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

var errCanceled = errors.New("canceled")
