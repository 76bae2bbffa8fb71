package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DevN0mad/Workasana/internal/apitest"
	"github.com/DevN0mad/Workasana/internal/session"
)

type harness struct {
	t      *testing.T
	api    *apitest.Server
	config string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := apitest.New()
	t.Cleanup(api.Close)

	dir := t.TempDir()
	cfg := "api:\n  base_url: " + api.URL + "\n" +
		"session:\n  db_path: " + filepath.Join(dir, "session.db") + "\n" +
		"charts:\n  timezone: UTC\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return &harness{t: t, api: api, config: path}
}

func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	app := &App{}
	cmd := NewRootCmd(app)
	defer app.Close()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", h.config}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (h *harness) mustRun(args ...string) map[string]any {
	h.t.Helper()
	stdout, stderr, err := h.run("", args...)
	require.NoError(h.t, err, "stderr: %s", stderr)
	var env map[string]any
	require.NoError(h.t, json.Unmarshal([]byte(stdout), &env), stdout)
	require.Contains(h.t, env, "data")
	return env
}

func (h *harness) login() {
	h.t.Helper()
	h.mustRun("login", "--email", "alice@example.com", "--password", "secret")
}

func TestProtectedCommandsRequireSession(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{{"projects", "list"}, {"tasks", "list"}, {"teams", "list"}, {"report"}} {
		_, _, err := h.run("", args...)
		require.ErrorIs(t, err, session.ErrNotLoggedIn, args)
	}
	require.Empty(t, h.api.RequestLog())
}

func TestLoginPersistsAcrossRuns(t *testing.T) {
	h := newHarness(t)
	h.api.SeedProject("Apollo", "Planned")

	h.login()
	env := h.mustRun("projects", "list")
	require.Len(t, env["data"], 1)
	require.Equal(t, "Bearer "+apitest.Token, h.api.LastAuthHeader())

	who := h.mustRun("whoami")
	require.Equal(t, true, who["data"].(map[string]any)["loggedIn"])

	h.mustRun("logout")
	who = h.mustRun("whoami")
	require.Equal(t, false, who["data"].(map[string]any)["loggedIn"])
	_, _, err := h.run("", "projects", "list")
	require.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestLoginPasswordFromStdin(t *testing.T) {
	h := newHarness(t)
	_, stderr, err := h.run("secret\n", "login", "--email", "alice@example.com")
	require.NoError(t, err)
	require.Contains(t, stderr, "Password:")
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("", "login", "--email", "alice@example.com", "--password", "wrong")
	require.EqualError(t, err, "Invalid email or password")

	_, _, err = h.run("", "projects", "list")
	require.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestSignup(t *testing.T) {
	h := newHarness(t)
	env := h.mustRun("signup", "--name", "Bob", "--email", "bob@example.com", "--password", "pw")
	data := env["data"].(map[string]any)
	require.Equal(t, true, data["loggedIn"])
	require.Equal(t, "User registered", data["message"])
}

func TestProjectsFlow(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, _, err := h.run("", "projects", "create")
	require.EqualError(t, err, "name is required")

	_, stderr, err := h.run("", "projects", "create", "--name", "Apollo", "--status", "in progress")
	require.NoError(t, err)
	require.Contains(t, stderr, "Project created successfully!")
	h.mustRun("projects", "create", "--name", "Gemini")

	env := h.mustRun("projects", "list", "--query", "APO")
	list := env["data"].([]any)
	require.Len(t, list, 1)
	project := list[0].(map[string]any)
	require.Equal(t, "In Progress", project["status"])

	env = h.mustRun("projects", "list", "--status", "Planned")
	require.Len(t, env["data"], 1)

	pid := project["id"].(string)
	h.api.SeedTask("Bug hunt", pid, "Alpha", "To Do", 2, time.Now())
	h.api.SeedTask("Orphan", "", "Alpha", "To Do", 2, time.Now())

	env = h.mustRun("projects", "report", "--tag", "Bug", "--owner", "John")
	groups := env["data"].([]any)
	require.Len(t, groups, 2)
	require.Len(t, groups[0].(map[string]any)["tasks"], 1)
	require.Empty(t, groups[1].(map[string]any)["tasks"])

	_, _, err = h.run("n\n", "projects", "delete", pid)
	require.ErrorIs(t, err, errCanceled)

	_, _, err = h.run("y\n", "projects", "delete", pid)
	require.NoError(t, err)
	env = h.mustRun("projects", "list")
	require.Len(t, env["data"], 1)
}

func TestTasksFlow(t *testing.T) {
	h := newHarness(t)
	h.login()
	pid := h.api.SeedProject("Apollo", "Planned")

	_, _, err := h.run("", "tasks", "create", "--name", "x", "--project", pid, "--team", "Alpha", "--tag", "Nope")
	require.ErrorContains(t, err, `unknown tag "Nope"`)

	_, _, err = h.run("", "tasks", "create", "--name", "x", "--status", "Someday")
	require.ErrorContains(t, err, "unknown task status")

	h.mustRun("tasks", "create", "--name", "Write docs", "--project", pid, "--team", "Alpha",
		"--tag", "Bug", "--tag", "Urgent", "--owner", "Sam", "--hours", "3")

	env := h.mustRun("tasks", "list", "--query", "docs", "--status", "To Do")
	list := env["data"].([]any)
	require.Len(t, list, 1)
	task := list[0].(map[string]any)
	require.Equal(t, []any{"Bug", "Urgent"}, task["tags"])
	tid := task["id"].(string)

	env = h.mustRun("tasks", "show", tid)
	require.Equal(t, "Apollo", env["data"].(map[string]any)["projectName"])

	env = h.mustRun("tasks", "complete", tid)
	require.Equal(t, "Completed", env["data"].(map[string]any)["status"])

	env = h.mustRun("tasks", "list", "--status", "To Do")
	require.Empty(t, env["data"])

	h.mustRun("tasks", "delete", tid, "--yes")
	env = h.mustRun("tasks", "list")
	require.Empty(t, env["data"])
}

func TestTeamsFlow(t *testing.T) {
	h := newHarness(t)
	h.login()

	h.mustRun("teams", "create", "--name", "Alpha", "--member", "ann", "--member", " ")
	env := h.mustRun("teams", "list")
	teams := env["data"].([]any)
	require.Len(t, teams, 1)
	id := teams[0].(map[string]any)["id"].(string)

	h.mustRun("teams", "add-member", id, "Bob")
	env = h.mustRun("teams", "show", id)
	detail := env["data"].(map[string]any)
	require.Equal(t, []any{"ann", "Bob"}, detail["members"])
	roster := detail["roster"].([]any)
	require.Equal(t, "A", roster[0].(map[string]any)["initial"])

	_, _, err := h.run("", "teams", "add-member", id, " ")
	require.EqualError(t, err, "name is required")

	h.mustRun("teams", "delete", id, "-y")
	env = h.mustRun("teams", "list")
	require.Empty(t, env["data"])
}

func TestReportCommand(t *testing.T) {
	h := newHarness(t)
	h.login()
	sunday := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	h.api.SeedTask("a", "p", "Alpha", "Completed", 1, sunday)
	h.api.SeedTask("b", "p", "Beta", "In Progress", 5, sunday)

	out := filepath.Join(t.TempDir(), "report.xlsx")
	env := h.mustRun("report", "--xlsx", out)
	data := env["data"].(map[string]any)
	require.Equal(t, []any{1.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0}, data["completedByWeekday"])
	require.Equal(t, 5.0, data["pendingHours"])
	require.FileExists(t, out)
}

func TestReportFailsWithoutData(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.SetFail("/tasks", true)

	_, _, err := h.run("", "report")
	require.Error(t, err)
}
