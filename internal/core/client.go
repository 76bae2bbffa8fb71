package core

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/DevN0mad/Workasana/internal/config"
	"github.com/DevN0mad/Workasana/internal/services"
	"github.com/DevN0mad/Workasana/internal/session"
	"github.com/DevN0mad/Workasana/internal/storage"
)

// Client набор зависимостей клиента API: хранилище сессии, API и guard.
type Client struct {
	Store    *storage.SessionStorage
	API      *services.WorkasanaService
	Guard    *session.Guard
	Catalog  config.CatalogOpts
	Location *time.Location
	Logger   *slog.Logger
}

// NewClient открывает хранилище сессии и создаёт клиент API по конфигурации.
func NewClient(cfg config.Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := cfg.Charts.Location()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSessionStorage(cfg.Session.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open session storage: %w", err)
	}

	api := services.Init(cfg.API, logger)
	return &Client{
		Store:    store,
		API:      api,
		Guard:    session.NewGuard(store, api, logger),
		Catalog:  cfg.Catalog,
		Location: loc,
		Logger:   logger,
	}, nil
}

// Close закрывает хранилище сессии.
func (c *Client) Close() error {
	return c.Store.Close()
}
