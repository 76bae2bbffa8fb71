package core

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DevN0mad/Workasana/internal/apitest"
	"github.com/DevN0mad/Workasana/internal/config"
	"github.com/DevN0mad/Workasana/internal/services"
	"github.com/DevN0mad/Workasana/internal/session"
)

func testConfig(t *testing.T, baseURL string) config.Config {
	t.Helper()
	return config.Config{
		API:     services.WorkasanaOpts{BaseURL: baseURL},
		Session: config.SessionOpts{DBPath: filepath.Join(t.TempDir(), "session.db")},
		Charts:  config.ChartsOpts{Timezone: "UTC"},
		DailyJob: services.DailyJobOpts{
			Hour: 9, SaveDir: t.TempDir(),
		},
	}
}

func TestNewClientLoginRoundTrip(t *testing.T) {
	api := apitest.New()
	t.Cleanup(api.Close)
	ctx := context.Background()

	c, err := NewClient(testConfig(t, api.URL), nil)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Guard.Login(ctx, services.Credentials{Email: "alice@example.com", Password: "secret"})
	require.NoError(t, err)

	token, err := c.Store.Get(ctx, session.TokenKey)
	require.NoError(t, err)
	require.Equal(t, apitest.Token, token)
}

func TestNewClientBadTimezone(t *testing.T) {
	cfg := testConfig(t, "http://localhost")
	cfg.Charts.Timezone = "Nowhere/City"
	_, err := NewClient(cfg, nil)
	require.Error(t, err)
}

func TestApplyConfigRequiresSession(t *testing.T) {
	api := apitest.New()
	t.Cleanup(api.Close)

	app := NewApp(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := app.ApplyConfig(testConfig(t, api.URL))
	require.ErrorIs(t, err, session.ErrNotLoggedIn)
	app.Shutdown()
}
