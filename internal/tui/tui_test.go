package tui

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/DevN0mad/Workasana/internal/apitest"
	"github.com/DevN0mad/Workasana/internal/config"
	"github.com/DevN0mad/Workasana/internal/models"
	"github.com/DevN0mad/Workasana/internal/services"
	"github.com/DevN0mad/Workasana/internal/session"
	"github.com/DevN0mad/Workasana/internal/storage"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	api   *apitest.Server
	guard *session.Guard
	store *storage.SessionStorage
	deps  Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	api := apitest.New()
	t.Cleanup(api.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := storage.NewSessionStorage(filepath.Join(t.TempDir(), "session.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := services.Init(services.WorkasanaOpts{BaseURL: api.URL}, logger)
	guard := session.NewGuard(store, svc, logger)
	return &fixture{
		api:   api,
		guard: guard,
		store: store,
		deps: Deps{
			Guard:    guard,
			API:      svc,
			Catalog:  config.CatalogOpts{Tags: []string{"Urgent", "Bug"}, Members: []string{"John", "Sam"}},
			Location: time.UTC,
			Logger:   logger,
			Now:      func() time.Time { return testNow },
		},
	}
}

func (f *fixture) start(t *testing.T, loggedIn bool) model {
	t.Helper()
	if loggedIn {
		_, err := f.guard.Login(context.Background(), services.Credentials{Email: "alice@example.com", Password: "secret"})
		require.NoError(t, err)
	}
	m, err := newModel(context.Background(), f.deps)
	require.NoError(t, err)
	m.toastTTL = 0
	return drain(m, m.Init())
}

// drain выполняет команды синхронно и скармливает сообщения в Update.
func drain(m model, cmd tea.Cmd) model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, nc := m.Update(msg)
			m = next.(model)
			queue = append(queue, nc)
		}
	}
	return m
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func press(m model, keys ...string) model {
	for _, k := range keys {
		next, cmd := m.Update(keyMsg(k))
		m = drain(next.(model), cmd)
	}
	return m
}

func TestStartsOnLoginWithoutSession(t *testing.T) {
	f := newFixture(t)
	m := f.start(t, false)
	require.Equal(t, screenLogin, m.screen)
	require.Contains(t, m.View(), "Sign in to Workasana")
	require.Empty(t, f.api.RequestLog())
}

func TestLoginOpensDashboard(t *testing.T) {
	f := newFixture(t)
	f.api.SeedProject("Apollo", "Planned")
	m := f.start(t, false)

	m = press(m, "alice@example.com", "tab", "secret", "enter")
	require.Equal(t, screenDashboard, m.screen)
	require.Len(t, m.projects, 1)

	token, err := f.store.Get(context.Background(), session.TokenKey)
	require.NoError(t, err)
	require.Equal(t, apitest.Token, token)
}

func TestLoginRejectedStaysOnLogin(t *testing.T) {
	f := newFixture(t)
	m := f.start(t, false)

	m = press(m, "alice@example.com", "tab", "nope", "enter")
	require.Equal(t, screenLogin, m.screen)
	require.Equal(t, "Invalid email or password", m.login.message)

	_, err := f.store.Get(context.Background(), session.TokenKey)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSignupStartsSession(t *testing.T) {
	f := newFixture(t)
	m := f.start(t, false)

	m = press(m, "ctrl+s", "Bob", "tab", "bob@example.com", "tab", "pw", "enter")
	require.Equal(t, screenDashboard, m.screen)
}

func TestDashboardLoadsIndependently(t *testing.T) {
	f := newFixture(t)
	pid := f.api.SeedProject("Apollo", "Planned")
	f.api.SeedTask("Write docs", pid, "Alpha", "To Do", 2, testNow)
	f.api.SetFail("/projects", true)

	m := f.start(t, true)
	require.Equal(t, screenDashboard, m.screen)
	require.Empty(t, m.projects)
	require.Len(t, m.tasks, 1)
	require.Contains(t, m.View(), "N/A")
}

func TestStaleResponsesAreDiscarded(t *testing.T) {
	f := newFixture(t)
	m := f.start(t, true)
	stale := m.gen

	m = press(m, "3")
	next, _ := m.Update(loadedMsg[models.Project]{gen: stale, items: []models.Project{{ID: "p1", Name: "Late"}}})
	m = next.(model)
	require.Empty(t, m.projects)
}

func TestFailedReloadKeepsPreviousState(t *testing.T) {
	f := newFixture(t)
	f.api.SeedProject("Apollo", "Planned")
	m := f.start(t, true)
	require.Len(t, m.projects, 1)

	f.api.SetFail("/projects", true)
	m = press(m, "r")
	require.Len(t, m.projects, 1)
}

func TestSearchAndStatusFilter(t *testing.T) {
	f := newFixture(t)
	f.api.SeedProject("Apollo", "Planned")
	f.api.SeedProject("Gemini", "Completed")
	m := f.start(t, true)

	m = press(m, "/", "apo", "enter")
	require.Len(t, m.visibleProjects(), 1)
	require.Equal(t, "Apollo", m.visibleProjects()[0].Name)

	m.search.SetValue("")
	m = press(m, "s", "s", "s")
	require.Equal(t, "Completed", projectFilters[m.projectStatus])
	require.Len(t, m.visibleProjects(), 1)
	require.Equal(t, "Gemini", m.visibleProjects()[0].Name)
}

func TestCreateProjectForm(t *testing.T) {
	f := newFixture(t)
	m := f.start(t, true)

	m = press(m, "n", "enter")
	require.NotNil(t, m.form)
	require.True(t, m.toast.failed)
	require.Equal(t, "name is required", m.toast.text)

	m = press(m, "Apollo", "tab", "Moon", "tab", "right", "enter")
	require.Nil(t, m.form)
	require.False(t, m.toast.failed)
	require.Equal(t, "Project created successfully!", m.toast.text)
	require.Len(t, m.projects, 1)
	require.Equal(t, models.ProjectInProgress, m.projects[0].Status)
}

func TestCreateTaskForm(t *testing.T) {
	f := newFixture(t)
	f.api.SeedProject("Apollo", "Planned")
	f.api.SeedTeam("Alpha", "Ann")
	m := f.start(t, true)

	m = press(m, "t")
	require.NotNil(t, m.form)
	require.Equal(t, []string{"Alpha"}, m.form.fields[2].options)

	m = press(m, "Write docs", "tab", "tab", "tab", " ", "tab", "right", " ", "tab", "2.5", "enter")
	require.Nil(t, m.form)
	require.Len(t, m.tasks, 1)
	task := m.tasks[0]
	require.Equal(t, "Alpha", task.Team)
	require.Equal(t, []string{"John"}, task.Owners)
	require.Equal(t, []string{"Bug"}, task.Tags)
	require.Equal(t, 2.5, task.TimeToComplete)
	require.Equal(t, models.TaskToDo, task.Status)
}

func TestDeleteProjectCascades(t *testing.T) {
	f := newFixture(t)
	pid := f.api.SeedProject("Apollo", "Planned")
	f.api.SeedTask("Write docs", pid, "Alpha", "To Do", 2, testNow)
	m := f.start(t, true)

	m = press(m, "d")
	require.NotNil(t, m.confirm)
	require.Contains(t, m.View(), "Its tasks will be deleted too.")

	m = press(m, "n")
	require.Nil(t, m.confirm)
	require.Len(t, m.projects, 1)

	m = press(m, "d", "y")
	require.Nil(t, m.confirm)
	require.Empty(t, m.projects)
	require.Empty(t, m.tasks)
}

func TestTaskDetailComplete(t *testing.T) {
	f := newFixture(t)
	pid := f.api.SeedProject("Apollo", "Planned")
	f.api.SeedTask("Write docs", pid, "Alpha", "In Progress", 2, testNow)
	m := f.start(t, true)

	m = press(m, "tab", "enter")
	require.Equal(t, screenTaskDetail, m.screen)
	require.NotNil(t, m.taskDetail)
	require.Contains(t, m.View(), "Apollo")

	m = press(m, "c")
	require.Equal(t, models.TaskCompleted, m.taskDetail.Status)
	require.Equal(t, "Task marked as completed", m.toast.text)

	m = press(m, "d", "y")
	require.Equal(t, screenDashboard, m.screen)
	require.Empty(t, m.tasks)
}

func TestTeamScreens(t *testing.T) {
	f := newFixture(t)
	m := f.start(t, true)

	m = press(m, "3", "n", "Alpha", "tab", "ann", "enter")
	require.Len(t, m.teams, 1)
	require.Equal(t, []string{"ann"}, m.teams[0].Members)

	m = press(m, "enter")
	require.Equal(t, screenTeamDetail, m.screen)
	require.NotNil(t, m.teamDetail)

	m = press(m, "a", "Bob", "enter")
	require.Nil(t, m.form)
	require.Equal(t, []string{"ann", "Bob"}, m.teams[0].Members)

	m = press(m, "esc")
	require.Equal(t, screenTeam, m.screen)
	require.Contains(t, m.View(), "2 members")
}

func TestProjectsScreenFilters(t *testing.T) {
	f := newFixture(t)
	pid := f.api.SeedProject("Apollo", "Planned")
	f.api.SeedTask("Write docs", pid, "Alpha", "To Do", 2, testNow)
	m := f.start(t, true)

	m = press(m, "2")
	require.Len(t, m.projectGroups()[0].Tasks, 1)

	m = press(m, "t")
	require.Equal(t, "Urgent", catalogChoice(m.deps.Catalog.Tags, m.tagFilter))
	require.Empty(t, m.projectGroups()[0].Tasks)

	m = press(m, "t")
	require.Len(t, m.projectGroups()[0].Tasks, 1)
}

func TestReportsScreen(t *testing.T) {
	f := newFixture(t)
	f.api.SeedTask("a", "p", "Alpha", "Completed", 1, testNow)
	f.api.SeedTask("b", "p", "Beta", "To Do", 4, testNow)
	m := f.start(t, true)

	m = press(m, "4")
	view := m.View()
	require.Contains(t, view, "Work Done Last Week")
	require.Contains(t, view, "4 hours")
	require.Contains(t, view, "Alpha")
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	m := f.start(t, true)
	sess := m.sess

	m = press(m, "5", "l")
	require.Equal(t, screenLogin, m.screen)
	require.False(t, sess.Active())
	require.Nil(t, m.cols)

	_, err := f.store.Get(context.Background(), session.TokenKey)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRenderBars(t *testing.T) {
	out := renderBars([]string{"Sun", "Mon"}, []float64{2, 0}, 30)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "█")
	require.NotContains(t, lines[1], "█")
	require.True(t, strings.HasSuffix(lines[1], " 0"))
}
