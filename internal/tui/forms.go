package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DevN0mad/Workasana/internal/config"
	"github.com/DevN0mad/Workasana/internal/models"
	"github.com/DevN0mad/Workasana/internal/services"
)

type formKind int

const (
	formProject formKind = iota
	formTask
	formTeam
	formMember
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldChoice
	fieldMulti
)

type formField struct {
	label    string
	kind     fieldKind
	input    textinput.Model
	options  []string
	values   []string
	index    int
	selected []string
}

// value текущее значение поля выбора: id, если задан, иначе подпись.
func (f formField) value() string {
	if len(f.options) == 0 {
		return ""
	}
	if len(f.values) == len(f.options) {
		return f.values[f.index]
	}
	return f.options[f.index]
}

// formModal буфер модальной формы создания. Закрытие формы сбрасывает буфер.
type formModal struct {
	kind   formKind
	title  string
	fields []formField
	focus  int
	team   models.Team
}

func textField(label, placeholder string) formField {
	return formField{label: label, kind: fieldText, input: newInput(placeholder, false)}
}

func choiceField(label string, options, values []string) formField {
	return formField{label: label, kind: fieldChoice, options: options, values: values}
}

func multiField(label string, options []string) formField {
	return formField{label: label, kind: fieldMulti, options: options, selected: []string{}}
}

func newProjectForm() *formModal {
	statuses := make([]string, 0, len(models.ProjectStatuses))
	for _, st := range models.ProjectStatuses {
		statuses = append(statuses, string(st))
	}
	return &formModal{
		kind:  formProject,
		title: "New Project",
		fields: []formField{
			textField("Name", "Project name"),
			textField("Description", "What is it about"),
			choiceField("Status", statuses, nil),
		},
	}
}

func newTaskForm(projects []models.Project, teams []models.Team, catalog config.CatalogOpts) *formModal {
	projectNames := make([]string, 0, len(projects))
	projectIDs := make([]string, 0, len(projects))
	for _, p := range projects {
		projectNames = append(projectNames, p.Name)
		projectIDs = append(projectIDs, p.ID)
	}
	teamNames := make([]string, 0, len(teams))
	for _, t := range teams {
		teamNames = append(teamNames, t.Name)
	}
	statuses := make([]string, 0, len(models.TaskStatuses))
	for _, st := range models.TaskStatuses {
		statuses = append(statuses, string(st))
	}
	return &formModal{
		kind:  formTask,
		title: "New Task",
		fields: []formField{
			textField("Name", "Task name"),
			choiceField("Project", projectNames, projectIDs),
			choiceField("Team", teamNames, nil),
			multiField("Owners", catalog.Members),
			multiField("Tags", catalog.Tags),
			textField("Hours", "Time to complete"),
			choiceField("Status", statuses, nil),
		},
	}
}

func newTeamForm() *formModal {
	return &formModal{
		kind:  formTeam,
		title: "New Team",
		fields: []formField{
			textField("Name", "Team name"),
			textField("Member 1", "Member name"),
			textField("Member 2", "Member name"),
			textField("Member 3", "Member name"),
		},
	}
}

func newMemberForm(team models.Team) *formModal {
	return &formModal{
		kind:   formMember,
		title:  "Add Member to " + team.Name,
		fields: []formField{textField("Name", "Member name")},
		team:   team,
	}
}

// setTeams обновляет варианты команды, если список пришёл после открытия формы.
func (f *formModal) setTeams(teams []models.Team) {
	field := &f.fields[2]
	if len(field.options) > 0 {
		return
	}
	for _, t := range teams {
		field.options = append(field.options, t.Name)
	}
}

func (f *formModal) focusCmd() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.fields {
		if f.fields[i].kind != fieldText {
			continue
		}
		if i == f.focus {
			cmd = f.fields[i].input.Focus()
		} else {
			f.fields[i].input.Blur()
		}
	}
	return cmd
}

func (f *formModal) text(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

// mutation собирает изменение из буфера формы.
func (f *formModal) mutation(actions *services.Actions) (services.Mutation, error) {
	switch f.kind {
	case formProject:
		input := services.NewProjectInput()
		input.Name = f.text(0)
		input.Description = f.text(1)
		input.Status = models.ProjectStatus(f.fields[2].value())
		return actions.CreateProject(input), nil
	case formTask:
		input := services.NewTaskInput()
		input.Name = f.text(0)
		input.Project = f.fields[1].value()
		input.Team = f.fields[2].value()
		input.Owners = f.fields[3].selected
		input.Tags = f.fields[4].selected
		if raw := f.text(5); raw != "" {
			hours, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return services.Mutation{}, fmt.Errorf("hours must be a number")
			}
			input.TimeToComplete = hours
		}
		input.Status = models.TaskStatus(f.fields[6].value())
		return actions.CreateTask(input), nil
	case formTeam:
		input := services.TeamInput{Name: f.text(0)}
		for i := 1; i < len(f.fields); i++ {
			input.Members = append(input.Members, f.fields[i].input.Value())
		}
		return actions.CreateTeam(input), nil
	case formMember:
		return actions.AddMember(f.team, f.text(0)), nil
	}
	return services.Mutation{}, fmt.Errorf("unknown form")
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	field := &f.fields[f.focus]

	switch msg.String() {
	case "esc":
		m.form = nil
		return m, nil
	case "tab", "down":
		f.focus = (f.focus + 1) % len(f.fields)
		return m, f.focusCmd()
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
		return m, f.focusCmd()
	case "enter":
		mu, err := f.mutation(m.actions)
		if err != nil {
			return m.showToast(err.Error(), true)
		}
		return m, m.mutateCmd(mu, false)
	case "left", "right":
		if field.kind != fieldText && len(field.options) > 0 {
			delta := 1
			if msg.String() == "left" {
				delta = -1
			}
			field.index = (field.index + delta + len(field.options)) % len(field.options)
			return m, nil
		}
	case " ":
		if field.kind == fieldMulti && len(field.options) > 0 {
			field.selected = services.Toggle(field.selected, field.options[field.index])
			return m, nil
		}
	}

	if field.kind != fieldText {
		return m, nil
	}
	var cmd tea.Cmd
	field.input, cmd = field.input.Update(msg)
	return m, cmd
}

func (f *formModal) view() string {
	rows := []string{styleTitle().Render(f.title), ""}
	for i, field := range f.fields {
		label := field.label
		if i == f.focus {
			label = styleSelected().Render(label)
		}
		rows = append(rows, label)
		switch field.kind {
		case fieldText:
			rows = append(rows, field.input.View())
		case fieldChoice:
			if len(field.options) == 0 {
				rows = append(rows, styleMuted().Render("(none available)"))
			} else {
				rows = append(rows, "< "+field.options[field.index]+" >")
			}
		case fieldMulti:
			opts := make([]string, 0, len(field.options))
			for j, opt := range field.options {
				box := "[ ] "
				if slices.Contains(field.selected, opt) {
					box = "[x] "
				}
				item := box + opt
				if i == f.focus && j == field.index {
					item = styleSelected().Render(item)
				}
				opts = append(opts, item)
			}
			rows = append(rows, strings.Join(opts, "  "))
		}
		rows = append(rows, "")
	}
	rows = append(rows, styleMuted().Render("tab: next   ←/→: choose   space: toggle   enter: save   esc: cancel"))
	return strings.Join(rows, "\n")
}

// confirmModal подтверждение удаления.
type confirmModal struct {
	title    string
	body     string
	mutation services.Mutation
	back     bool
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		c := m.confirm
		return m, m.mutateCmd(c.mutation, c.back)
	case "n", "esc":
		m.confirm = nil
	}
	return m, nil
}

func (c *confirmModal) view() string {
	return strings.Join([]string{
		styleTitle().Render(c.title),
		"",
		c.body,
		"",
		styleMuted().Render("y/enter: delete   n/esc: cancel"),
	}, "\n")
}
