package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DevN0mad/Workasana/internal/apitest"
	"github.com/DevN0mad/Workasana/internal/models"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func newTestService(t *testing.T) (*WorkasanaService, *apitest.Server) {
	t.Helper()
	api := apitest.New()
	t.Cleanup(api.Close)
	return Init(WorkasanaOpts{BaseURL: api.URL + "/", Timeout: 5 * time.Second}, nil), api
}

func TestInitDefaults(t *testing.T) {
	s := Init(WorkasanaOpts{}, nil)
	require.Equal(t, DefaultBaseURL, s.BaseURL())
	require.Equal(t, 30*time.Second, s.client.Timeout)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	token, err := s.Login(ctx, Credentials{Email: "alice@example.com", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, apitest.Token, token)

	_, err = s.Login(ctx, Credentials{Email: "alice@example.com", Password: "wrong"})
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "Invalid email or password", authErr.Error())
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	token, msg, err := s.Signup(ctx, SignupInput{Name: "Bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, apitest.Token, token)
	require.Equal(t, "User registered", msg)

	_, _, err = s.Signup(ctx, SignupInput{Name: "Bob", Email: "bob@example.com", Password: "pw"})
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "User already exists", authErr.Message)
}

func TestListCollectionsSendsBearerToken(t *testing.T) {
	ctx := context.Background()
	s, api := newTestService(t)
	pid := api.SeedProject("Alpha", "Planned")
	api.SeedTask("One", pid, "Core", "To Do", 2, time.Now())
	api.SeedTeam("Core", "Ann")

	projects, err := s.ListProjects(ctx, staticToken(apitest.Token))
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "Bearer "+apitest.Token, api.LastAuthHeader())

	tasks, err := s.ListTasks(ctx, staticToken(apitest.Token))
	require.NoError(t, err)
	require.Equal(t, pid, tasks[0].Project.ID)

	teams, err := s.ListTeams(ctx, staticToken(apitest.Token))
	require.NoError(t, err)
	require.Equal(t, []string{"Ann"}, teams[0].Members)
}

func TestListCollectionsWrapped(t *testing.T) {
	ctx := context.Background()
	s, api := newTestService(t)
	api.SeedProject("Alpha", "Planned")
	api.WrapCollections = true

	projects, err := s.ListProjects(ctx, staticToken(apitest.Token))
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "Alpha", projects[0].Name)
}

func TestUnauthorizedIsAPIError(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.ListProjects(context.Background(), staticToken("stale"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Unauthorized", apiErr.Message)
}

func TestProjectMutations(t *testing.T) {
	ctx := context.Background()
	tok := staticToken(apitest.Token)
	s, api := newTestService(t)

	require.NoError(t, s.CreateProject(ctx, tok, ProjectInput{Name: "Beta", Status: models.ProjectPlanned}))
	projects, err := s.ListProjects(ctx, tok)
	require.NoError(t, err)
	require.Len(t, projects, 1)

	api.SeedTask("Orphaned soon", projects[0].ID, "Core", "To Do", 1, time.Now())
	require.NoError(t, s.DeleteProject(ctx, tok, projects[0].ID))

	projects, err = s.ListProjects(ctx, tok)
	require.NoError(t, err)
	require.Empty(t, projects)

	tasks, err := s.ListTasks(ctx, tok)
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestTaskMutations(t *testing.T) {
	ctx := context.Background()
	tok := staticToken(apitest.Token)
	s, api := newTestService(t)
	pid := api.SeedProject("Alpha", "Planned")

	input := NewTaskInput()
	input.Name = "Ship"
	input.Project = pid
	input.Team = "Core"
	input.TimeToComplete = 4
	require.NoError(t, s.CreateTask(ctx, tok, input))

	tasks, err := s.ListTasks(ctx, tok)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	id := tasks[0].ID

	got, err := s.GetTask(ctx, tok, id)
	require.NoError(t, err)
	require.Equal(t, models.TaskToDo, got.Status)

	updated, err := s.CompleteTask(ctx, tok, id)
	require.NoError(t, err)
	require.Equal(t, models.TaskCompleted, updated.Status)
	require.Contains(t, api.RequestLog(), "PATCH /tasks/"+id)

	require.NoError(t, s.DeleteTask(ctx, tok, id))
	_, err = s.GetTask(ctx, tok, id)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestTeamMutations(t *testing.T) {
	ctx := context.Background()
	tok := staticToken(apitest.Token)
	s, _ := newTestService(t)

	require.NoError(t, s.CreateTeam(ctx, tok, TeamInput{Name: "Core", Members: []string{"Ann", "", " "}}.Normalize()))
	teams, err := s.ListTeams(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, []string{"Ann"}, teams[0].Members)

	id := teams[0].ID
	require.NoError(t, s.UpdateTeamMembers(ctx, tok, id, append(teams[0].Members, "Bob")))
	team, err := s.GetTeam(ctx, tok, id)
	require.NoError(t, err)
	require.Equal(t, []string{"Ann", "Bob"}, team.Members)

	require.NoError(t, s.DeleteTeam(ctx, tok, id))
	teams, err = s.ListTeams(ctx, tok)
	require.NoError(t, err)
	require.Empty(t, teams)
}

func TestExtractMessage(t *testing.T) {
	require.Equal(t, "nope", extractMessage([]byte(`{"message":"nope"}`)))
	require.Equal(t, "boom", extractMessage([]byte(`{"error":"boom"}`)))
	require.Equal(t, "plain text", extractMessage([]byte("plain text\n")))
	require.Empty(t, extractMessage(nil))
}
