package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DevN0mad/Workasana/internal/services"
)

const daemonYAML = `
api:
  base_url: http://localhost:3000
  timeout: 5s
session:
  db_path: /tmp/workasana-test/session.db
telegram_bot:
  token: "123:abc"
  chat_id: 42
daily_job:
  hour: 0
  minute: 15
  save_dir: /tmp/reports
http_server:
  address: 127.0.0.1:9090
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestClientDefaultsWithoutFile(t *testing.T) {
	m, err := NewManager("", nil, WithEnvFile(""))
	require.NoError(t, err)

	cfg := m.Current()
	require.Equal(t, services.DefaultBaseURL, cfg.API.BaseURL)
	require.Equal(t, 30*time.Second, cfg.API.Timeout)
	require.Equal(t, "warn", cfg.Logging.Level)
	require.Equal(t, []string{"Urgent", "Bug", "Client", "Feature"}, cfg.Catalog.Tags)
	require.Equal(t, []string{"John", "Sam", "Jane Smith", "Michael"}, cfg.Catalog.Members)
	require.True(t, strings.HasSuffix(cfg.Session.DBPath, filepath.Join(".workasana", "session.db")))
	require.False(t, strings.HasPrefix(cfg.Session.DBPath, "~"))
}

func TestClientMissingFileIsFine(t *testing.T) {
	_, err := NewManager(filepath.Join(t.TempDir(), "absent.yaml"), nil, WithEnvFile(""))
	require.NoError(t, err)
}

func TestDaemonRequiresFile(t *testing.T) {
	_, err := NewManager("", nil, WithDaemon(), WithEnvFile(""))
	require.Error(t, err)

	_, err = NewManager(filepath.Join(t.TempDir(), "absent.yaml"), nil, WithDaemon(), WithEnvFile(""))
	require.Error(t, err)
}

func TestDaemonConfig(t *testing.T) {
	m, err := NewManager(writeConfig(t, daemonYAML), nil, WithDaemon(), WithEnvFile(""))
	require.NoError(t, err)

	cfg := m.Current()
	require.Equal(t, "http://localhost:3000", cfg.API.BaseURL)
	require.Equal(t, 5*time.Second, cfg.API.Timeout)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, int64(42), cfg.TelegramBot.ChatID)
	require.Equal(t, 0, cfg.DailyJob.Hour)
	require.Equal(t, 15, cfg.DailyJob.Minute)
	require.Equal(t, "127.0.0.1:9090", cfg.HttpServer.Address)
	require.Equal(t, 10, cfg.HttpServer.ReadTimeoutSeconds)
}

func TestDaemonValidatesTelegram(t *testing.T) {
	body := strings.Replace(daemonYAML, `token: "123:abc"`, `token: ""`, 1)
	_, err := NewManager(writeConfig(t, body), nil, WithDaemon(), WithEnvFile(""))
	require.ErrorContains(t, err, "validate config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WORKASANA_API_BASE_URL", "http://env.example:8080")
	t.Setenv("WORKASANA_LOGGING_LEVEL", "debug")

	m, err := NewManager("", nil, WithEnvFile(""))
	require.NoError(t, err)
	require.Equal(t, "http://env.example:8080", m.Current().API.BaseURL)
	require.Equal(t, "debug", m.Current().Logging.Level)
}

func TestEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	t.Setenv("WORKASANA_LOGGING_LEVEL", "error")
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("WORKASANA_LOGGING_LEVEL=debug\nWORKASANA_CHARTS_TIMEZONE=UTC\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("WORKASANA_CHARTS_TIMEZONE") })

	m, err := NewManager("", nil, WithEnvFile(envFile))
	require.NoError(t, err)
	require.Equal(t, "error", m.Current().Logging.Level)
	require.Equal(t, "UTC", m.Current().Charts.Timezone)
}

func TestInvalidClientConfig(t *testing.T) {
	_, err := NewManager(writeConfig(t, "api:\n  base_url: not a url\n"), nil, WithEnvFile(""))
	require.Error(t, err)

	_, err = NewManager(writeConfig(t, "charts:\n  timezone: Mars/Olympus\n"), nil, WithEnvFile(""))
	require.Error(t, err)
}

func TestChartsLocation(t *testing.T) {
	loc, err := ChartsOpts{Timezone: "Local"}.Location()
	require.NoError(t, err)
	require.Equal(t, time.Local, loc)

	loc, err = ChartsOpts{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	require.Equal(t, time.UTC, loc)

	_, err = ChartsOpts{Timezone: "Nowhere/City"}.Location()
	require.Error(t, err)
}

func TestLoggerToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "workasana.log")
	logger, closeFn, err := LoggingOpts{Level: "info", File: path}.NewLogger(nil)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("Visible entry", "key", "value")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "Visible entry")
	require.NotContains(t, string(data), "hidden")
}

func TestLoggerFallback(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := LoggingOpts{Level: "warn"}.NewLogger(&buf)
	require.NoError(t, err)
	logger.Info("quiet")
	logger.Warn("loud")
	require.NotContains(t, buf.String(), "quiet")
	require.Contains(t, buf.String(), "loud")

	_, _, err = LoggingOpts{Level: "chatty"}.NewLogger(&buf)
	require.Error(t, err)
}
