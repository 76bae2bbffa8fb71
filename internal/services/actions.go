package services

import (
	"context"
	"strings"

	"github.com/DevN0mad/Workasana/internal/models"
)

// Actions собирает изменения ресурсов для одной сессии.
// После успешного изменения перезагружается соответствующая коллекция.
type Actions struct {
	api    *WorkasanaService
	tokens TokenSource
	cols   *Collections
}

// NewActions создаёт набор изменений поверх клиента и загрузчиков коллекций.
func NewActions(api *WorkasanaService, tokens TokenSource, cols *Collections) *Actions {
	return &Actions{api: api, tokens: tokens, cols: cols}
}

// CreateProject POST /projects.
func (a *Actions) CreateProject(input ProjectInput) Mutation {
	input.Name = strings.TrimSpace(input.Name)
	if input.Status == "" {
		input.Status = models.ProjectPlanned
	}
	return Mutation{
		Name: "create project",
		Form: input,
		Submit: func(ctx context.Context) error {
			return a.api.CreateProject(ctx, a.tokens, input)
		},
		Refetch: a.cols.Projects.Load,
		Success: "Project created successfully!",
	}
}

// DeleteProject DELETE /projects/:id. Задачи проекта удаляются вместе с ним.
func (a *Actions) DeleteProject(id string) Mutation {
	return Mutation{
		Name: "delete project",
		Submit: func(ctx context.Context) error {
			return a.api.DeleteProject(ctx, a.tokens, id)
		},
		Refetch: func(ctx context.Context) error {
			err := a.cols.Projects.Load(ctx)
			if terr := a.cols.Tasks.Load(ctx); err == nil {
				err = terr
			}
			return err
		},
		Success: "Project deleted",
	}
}

// CreateTask POST /tasks.
func (a *Actions) CreateTask(input TaskInput) Mutation {
	input.Name = strings.TrimSpace(input.Name)
	if input.Status == "" {
		input.Status = models.TaskToDo
	}
	if input.Owners == nil {
		input.Owners = []string{}
	}
	if input.Tags == nil {
		input.Tags = []string{}
	}
	return Mutation{
		Name: "create task",
		Form: input,
		Submit: func(ctx context.Context) error {
			return a.api.CreateTask(ctx, a.tokens, input)
		},
		Refetch: a.cols.Tasks.Load,
		Success: "Task created successfully!",
	}
}

// CompleteTask PATCH /tasks/:id {status: Completed}. Ответ API передаётся в onDone.
func (a *Actions) CompleteTask(id string, onDone func(models.Task)) Mutation {
	return Mutation{
		Name: "complete task",
		Submit: func(ctx context.Context) error {
			task, err := a.api.CompleteTask(ctx, a.tokens, id)
			if err != nil {
				return err
			}
			if onDone != nil {
				onDone(task)
			}
			return nil
		},
		Refetch: a.cols.Tasks.Load,
		Success: "Task marked as completed",
	}
}

// DeleteTask DELETE /tasks/:id.
func (a *Actions) DeleteTask(id string) Mutation {
	return Mutation{
		Name: "delete task",
		Submit: func(ctx context.Context) error {
			return a.api.DeleteTask(ctx, a.tokens, id)
		},
		Refetch: a.cols.Tasks.Load,
		Success: "Task deleted",
	}
}

// CreateTeam POST /teams. Пустые участники отбрасываются.
func (a *Actions) CreateTeam(input TeamInput) Mutation {
	input = input.Normalize()
	return Mutation{
		Name: "create team",
		Form: input,
		Submit: func(ctx context.Context) error {
			return a.api.CreateTeam(ctx, a.tokens, input)
		},
		Refetch: a.cols.Teams.Load,
		Success: "Team created successfully!",
	}
}

// AddMember PUT /teams/:id с текущими участниками и новым.
func (a *Actions) AddMember(team models.Team, name string) Mutation {
	input := MemberInput{Name: strings.TrimSpace(name)}
	members := append(append([]string{}, team.Members...), input.Name)
	return Mutation{
		Name: "add member",
		Form: input,
		Submit: func(ctx context.Context) error {
			return a.api.UpdateTeamMembers(ctx, a.tokens, team.ID, members)
		},
		Refetch: a.cols.Teams.Load,
		Success: "Member added successfully!",
	}
}

// DeleteTeam DELETE /teams/:id.
func (a *Actions) DeleteTeam(id string) Mutation {
	return Mutation{
		Name: "delete team",
		Submit: func(ctx context.Context) error {
			return a.api.DeleteTeam(ctx, a.tokens, id)
		},
		Refetch: a.cols.Teams.Load,
		Success: "Team deleted",
	}
}
