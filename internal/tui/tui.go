// Package tui интерактивная панель Workasana на bubbletea.
package tui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DevN0mad/Workasana/internal/config"
	"github.com/DevN0mad/Workasana/internal/core"
	"github.com/DevN0mad/Workasana/internal/services"
	"github.com/DevN0mad/Workasana/internal/session"
)

// Deps зависимости панели.
type Deps struct {
	Guard    *session.Guard
	API      *services.WorkasanaService
	Catalog  config.CatalogOpts
	Location *time.Location
	Logger   *slog.Logger
	Now      func() time.Time
}

// Run запускает панель до выхода пользователя.
func Run(ctx context.Context, client *core.Client) error {
	applyColorProfilePreference()

	m, err := newModel(ctx, Deps{
		Guard:    client.Guard,
		API:      client.API,
		Catalog:  client.Catalog,
		Location: client.Location,
		Logger:   client.Logger,
	})
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
