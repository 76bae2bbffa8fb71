package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/DevN0mad/Workasana/internal/server"
	"github.com/DevN0mad/Workasana/internal/services"
)

// EnvPrefix префикс переменных окружения.
const EnvPrefix = "WORKASANA"

// Config представляет конфигурацию приложения.
type Config struct {
	API         services.WorkasanaOpts `mapstructure:"api"`
	Session     SessionOpts            `mapstructure:"session"`
	Logging     LoggingOpts            `mapstructure:"logging"`
	Catalog     CatalogOpts            `mapstructure:"catalog"`
	Charts      ChartsOpts             `mapstructure:"charts"`
	TelegramBot services.TelegramOpts  `mapstructure:"telegram_bot"`
	DailyJob    services.DailyJobOpts  `mapstructure:"daily_job"`
	HttpServer  server.AdminServerOpts `mapstructure:"http_server"`
}

// SessionOpts где хранится токен сессии.
type SessionOpts struct {
	DBPath string `mapstructure:"db_path" validate:"required"`
}

// LoggingOpts уровень и файл журнала.
type LoggingOpts struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	File  string `mapstructure:"file"`
}

// CatalogOpts фиксированные списки тегов и участников для форм.
type CatalogOpts struct {
	Tags    []string `mapstructure:"tags"`
	Members []string `mapstructure:"members"`
}

// ChartsOpts параметры графиков.
type ChartsOpts struct {
	Timezone string `mapstructure:"timezone"`
}

// Location возвращает часовой пояс для раскладки по дням недели.
func (o ChartsOpts) Location() (*time.Location, error) {
	if o.Timezone == "" || strings.EqualFold(o.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", o.Timezone, err)
	}
	return loc, nil
}

// daemonOnly секции, которые нужны только демону отчётов.
var daemonOnly = []string{"TelegramBot", "DailyJob", "HttpServer"}

// Option настраивает Manager.
type Option func(*options)

type options struct {
	daemon  bool
	envFile string
}

// WithDaemon требует файл конфигурации, проверяет все секции и следит за изменениями файла.
func WithDaemon() Option {
	return func(o *options) { o.daemon = true }
}

// WithEnvFile задаёт .env файл, из которого подгружается окружение.
func WithEnvFile(path string) Option {
	return func(o *options) { o.envFile = path }
}

// Manager управляет конфигурацией приложения, обеспечивая загрузку,
// проверку и перезагрузку при изменении файла.
type Manager struct {
	mu          sync.RWMutex
	cfg         *Config
	logger      *slog.Logger
	v           *viper.Viper
	opts        options
	subscribers []func(Config)
	validate    *validator.Validate
}

// NewManager создает новый менеджер конфигурации.
// Пустой path допустим только для клиента: тогда используются значения по умолчанию и окружение.
func NewManager(path string, logger *slog.Logger, opts ...Option) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := options{envFile: ".env"}
	for _, opt := range opts {
		opt(&o)
	}

	loadEnvFile(o.envFile, logger)

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, o.daemon)

	if err := readFile(v, path, o.daemon); err != nil {
		return nil, err
	}

	m := &Manager{
		logger:   logger,
		v:        v,
		opts:     o,
		validate: validator.New(),
	}

	cfg, err := m.load()
	if err != nil {
		logger.Error("Validate config", "error", err)
		return nil, err
	}
	m.cfg = cfg

	logger.Info("Config loaded", "path", v.ConfigFileUsed())

	if o.daemon {
		v.OnConfigChange(m.reload)
		v.WatchConfig()
	}

	return m, nil
}

// readFile читает YAML файл. Для клиента отсутствие файла не ошибка.
func readFile(v *viper.Viper, path string, required bool) error {
	if path == "" {
		if required {
			return fmt.Errorf("config path is required")
		}
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config %q: %w", path, err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %q: %w", path, err)
	}
	return nil
}

// load разбирает и проверяет текущее состояние viper.
func (m *Manager) load() (*Config, error) {
	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Session.DBPath = expandHome(cfg.Session.DBPath)
	cfg.DailyJob.SaveDir = expandHome(cfg.DailyJob.SaveDir)

	var err error
	if m.opts.daemon {
		err = m.validate.Struct(&cfg)
	} else {
		err = m.validate.StructExcept(&cfg, daemonOnly...)
	}
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if _, err := cfg.Charts.Location(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (m *Manager) reload(e fsnotify.Event) {
	m.logger.Info("Config file changed", "name", e.Name, "op", e.Op.String())

	newCfg, err := m.load()
	if err != nil {
		m.logger.Error("Failed to reload config", "error", err)
		return
	}

	m.mu.Lock()
	m.cfg = newCfg
	subs := append([]func(Config){}, m.subscribers...)
	m.mu.Unlock()

	m.logger.Info("Config reloaded successfully")

	for _, fn := range subs {
		fn(*newCfg)
	}
}

// Current возвращает текущую конфигурацию.
func (m *Manager) Current() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.cfg
}

// OnChange регистрирует функцию обратного вызова, которая будет вызвана при изменении конфигурации.
func (m *Manager) OnChange(fn func(Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// loadEnvFile переносит переменные из .env в окружение, не перезаписывая уже заданные.
func loadEnvFile(path string, logger *slog.Logger) {
	if path == "" {
		return
	}
	envMap, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to read env file", "path", path, "error", err)
		}
		return
	}
	for k, val := range envMap {
		if _, exists := os.LookupEnv(k); !exists {
			_ = os.Setenv(k, val)
		}
	}
}

func setDefaults(v *viper.Viper, daemon bool) {
	v.SetDefault("api.base_url", services.DefaultBaseURL)
	v.SetDefault("api.timeout", 30*time.Second)

	v.SetDefault("session.db_path", "~/.workasana/session.db")

	if daemon {
		v.SetDefault("logging.level", "info")
	} else {
		v.SetDefault("logging.level", "warn")
	}
	v.SetDefault("logging.file", "")

	v.SetDefault("catalog.tags", []string{"Urgent", "Bug", "Client", "Feature"})
	v.SetDefault("catalog.members", []string{"John", "Sam", "Jane Smith", "Michael"})

	v.SetDefault("charts.timezone", "Local")

	v.SetDefault("telegram_bot.token", "")
	v.SetDefault("telegram_bot.chat_id", 0)
	v.SetDefault("telegram_bot.message", "Workasana daily report")

	v.SetDefault("daily_job.hour", 9)
	v.SetDefault("daily_job.minute", 0)
	v.SetDefault("daily_job.save_dir", os.TempDir())

	v.SetDefault("http_server.address", "127.0.0.1:8088")
	v.SetDefault("http_server.read_timeout_seconds", 10)
	v.SetDefault("http_server.write_timeout_seconds", 30)
	v.SetDefault("http_server.idle_timeout_seconds", 60)
}

// expandHome раскрывает ~ в начале пути.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
