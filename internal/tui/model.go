package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DevN0mad/Workasana/internal/models"
	"github.com/DevN0mad/Workasana/internal/services"
	"github.com/DevN0mad/Workasana/internal/session"
)

type screen int

const (
	screenLogin screen = iota
	screenDashboard
	screenProjects
	screenTeam
	screenReports
	screenSettings
	screenTaskDetail
	screenTeamDetail
)

// navScreens пункты бокового меню по порядку.
var navScreens = []struct {
	screen screen
	title  string
}{
	{screenDashboard, "Dashboard"},
	{screenProjects, "Projects"},
	{screenTeam, "Team"},
	{screenReports, "Reports"},
	{screenSettings, "Settings"},
}

type pane int

const (
	paneProjects pane = iota
	paneTasks
)

const toastTTL = 3 * time.Second

type loadedMsg[T any] struct {
	gen   int
	items []T
	err   error
}

type taskDetailMsg struct {
	gen  int
	task models.Task
	err  error
}

type teamDetailMsg struct {
	gen  int
	team models.Team
	err  error
}

type authMsg struct {
	sess *session.Session
	msg  string
	err  error
}

type logoutMsg struct{ err error }

type mutationMsg struct {
	text   string
	failed bool
	task   *models.Task
	back   bool
}

type toastExpiredMsg struct{ id int }

type toast struct {
	id     int
	text   string
	failed bool
}

type model struct {
	ctx    context.Context
	deps   Deps
	logger *slog.Logger

	width, height int
	toastTTL      time.Duration

	screen screen
	gen    int

	sess    *session.Session
	cols    *services.Collections
	actions *services.Actions

	projects []models.Project
	tasks    []models.Task
	teams    []models.Team

	search        textinput.Model
	searching     bool
	projectStatus int
	taskStatus    int
	focus         pane
	cursor        int

	tagFilter   int
	ownerFilter int

	taskDetail *models.Task
	teamDetail *models.Team

	login   loginForm
	form    *formModal
	confirm *confirmModal
	toast   toast
}

func newModel(ctx context.Context, deps Deps) (model, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}

	m := model{
		ctx:      ctx,
		deps:     deps,
		logger:   deps.Logger,
		toastTTL: toastTTL,
		search:   newInput("Search by name", false),
		login:    newLoginForm(),
		width:    100,
		height:   30,
	}

	sess, ok, err := deps.Guard.Current(ctx)
	if err != nil {
		return m, err
	}
	if ok {
		m.startSession(sess)
		m.screen = screenDashboard
	} else {
		m.screen = screenLogin
		m.login.focusCmd()
	}
	return m, nil
}

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 256
	_ = ti.Cursor.SetMode(cursor.CursorStatic)
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

func (m *model) startSession(sess *session.Session) {
	m.sess = sess
	m.cols = services.NewCollections(m.deps.API, sess)
	m.actions = services.NewActions(m.deps.API, sess, m.cols)
}

func (m model) Init() tea.Cmd {
	return m.mountCmd()
}

// navigate переключает экран и запускает загрузку его данных.
// Ответы, пришедшие для прежнего экрана, отбрасываются по номеру поколения.
func (m model) navigate(to screen) (model, tea.Cmd) {
	m.screen = to
	m.gen++
	m.cursor = 0
	m.searching = false
	m.search.Blur()
	if to != screenTaskDetail {
		m.taskDetail = nil
	}
	if to != screenTeamDetail {
		m.teamDetail = nil
	}
	return m, m.mountCmd()
}

// mountCmd независимые загрузки для текущего экрана, без общего ожидания.
func (m model) mountCmd() tea.Cmd {
	if m.cols == nil {
		return nil
	}
	gen := m.gen
	switch m.screen {
	case screenDashboard, screenProjects:
		return tea.Batch(load(m.ctx, gen, m.cols.Projects), load(m.ctx, gen, m.cols.Tasks))
	case screenTeam:
		return load(m.ctx, gen, m.cols.Teams)
	case screenReports:
		return load(m.ctx, gen, m.cols.Tasks)
	}
	return nil
}

func load[T any](ctx context.Context, gen int, l *services.Loader[T]) tea.Cmd {
	return func() tea.Msg {
		err := l.Load(ctx)
		return loadedMsg[T]{gen: gen, items: l.Items(), err: err}
	}
}

func (m model) fetchTaskCmd(id string) tea.Cmd {
	ctx, api, sess, gen := m.ctx, m.deps.API, m.sess, m.gen
	return func() tea.Msg {
		task, err := api.GetTask(ctx, sess, id)
		return taskDetailMsg{gen: gen, task: task, err: err}
	}
}

func (m model) fetchTeamCmd(id string) tea.Cmd {
	ctx, api, sess, gen := m.ctx, m.deps.API, m.sess, m.gen
	return func() tea.Msg {
		team, err := api.GetTeam(ctx, sess, id)
		return teamDetailMsg{gen: gen, team: team, err: err}
	}
}

// toastNotifier собирает уведомление изменения для показа в модели.
type toastNotifier struct {
	text   string
	failed bool
}

func (n *toastNotifier) Success(msg string) { n.text, n.failed = msg, false }
func (n *toastNotifier) Failure(msg string) { n.text, n.failed = msg, true }

// mutateCmd выполняет изменение вне цикла обновления.
func (m model) mutateCmd(mu services.Mutation, back bool) tea.Cmd {
	ctx, logger := m.ctx, m.logger
	return func() tea.Msg {
		n := &toastNotifier{}
		_ = services.NewMutator(n, logger).Run(ctx, mu)
		return mutationMsg{text: n.text, failed: n.failed, back: back && !n.failed}
	}
}

func (m model) completeTaskCmd(id string) tea.Cmd {
	ctx, logger, actions := m.ctx, m.logger, m.actions
	return func() tea.Msg {
		var updated *models.Task
		n := &toastNotifier{}
		mu := actions.CompleteTask(id, func(t models.Task) { updated = &t })
		_ = services.NewMutator(n, logger).Run(ctx, mu)
		return mutationMsg{text: n.text, failed: n.failed, task: updated}
	}
}

func (m model) showToast(text string, failed bool) (model, tea.Cmd) {
	m.toast = toast{id: m.toast.id + 1, text: text, failed: failed}
	if m.toastTTL <= 0 || text == "" {
		return m, nil
	}
	id := m.toast.id
	return m, tea.Tick(m.toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

// syncCollections переносит в модель состояние загрузчиков после изменения.
func (m *model) syncCollections() {
	if m.cols == nil {
		return
	}
	if m.cols.Projects.Loaded() {
		m.projects = m.cols.Projects.Items()
	}
	if m.cols.Tasks.Loaded() {
		m.tasks = m.cols.Tasks.Items()
	}
	if m.cols.Teams.Loaded() {
		m.teams = m.cols.Teams.Items()
		if m.teamDetail != nil {
			for i := range m.teams {
				if m.teams[i].ID == m.teamDetail.ID {
					team := m.teams[i]
					m.teamDetail = &team
				}
			}
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case loadedMsg[models.Project]:
		if msg.gen == m.gen && msg.err == nil {
			m.projects = msg.items
		}
		return m, nil
	case loadedMsg[models.Task]:
		if msg.gen == m.gen && msg.err == nil {
			m.tasks = msg.items
		}
		return m, nil
	case loadedMsg[models.Team]:
		if msg.gen == m.gen && msg.err == nil {
			m.teams = msg.items
			if m.form != nil && m.form.kind == formTask {
				m.form.setTeams(msg.items)
			}
		}
		return m, nil

	case taskDetailMsg:
		if msg.gen != m.gen || m.screen != screenTaskDetail {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error("Failed to fetch task", "error", msg.err)
			return m, nil
		}
		m.taskDetail = &msg.task
		return m, nil
	case teamDetailMsg:
		if msg.gen != m.gen || m.screen != screenTeamDetail {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error("Failed to fetch team", "error", msg.err)
			return m, nil
		}
		m.teamDetail = &msg.team
		return m, nil

	case authMsg:
		return m.handleAuth(msg)
	case logoutMsg:
		if msg.err != nil {
			return m.showToast(msg.err.Error(), true)
		}
		m.sess, m.cols, m.actions = nil, nil, nil
		m.projects, m.tasks, m.teams = nil, nil, nil
		m.login = newLoginForm()
		m.screen = screenLogin
		m.gen++
		return m, m.login.focusCmd()

	case mutationMsg:
		return m.handleMutation(msg)

	case toastExpiredMsg:
		if msg.id == m.toast.id {
			m.toast = toast{id: m.toast.id}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleMutation(msg mutationMsg) (tea.Model, tea.Cmd) {
	if !msg.failed {
		m.form = nil
		m.confirm = nil
		m.syncCollections()
		if msg.task != nil && m.taskDetail != nil && m.taskDetail.ID == msg.task.ID {
			m.taskDetail = msg.task
		}
		if msg.back {
			var cmd tea.Cmd
			switch m.screen {
			case screenTaskDetail:
				m, cmd = m.navigate(screenDashboard)
			case screenTeamDetail:
				m, cmd = m.navigate(screenTeam)
			}
			var toastCmd tea.Cmd
			m, toastCmd = m.showToast(msg.text, false)
			return m, tea.Batch(cmd, toastCmd)
		}
		m.clampCursor()
	}
	return m.showToast(msg.text, msg.failed)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.confirm != nil {
		return m.updateConfirm(msg)
	}
	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.screen == screenLogin {
		return m.updateLogin(msg)
	}
	if m.searching {
		return m.updateSearch(msg)
	}

	key := msg.String()
	switch key {
	case "q":
		return m, tea.Quit
	case "1", "2", "3", "4", "5":
		return m.navigate(navScreens[int(key[0]-'1')].screen)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < m.listLen()-1 {
			m.cursor++
		}
		return m, nil
	case "r":
		return m, m.refreshCmd()
	}

	switch m.screen {
	case screenDashboard:
		return m.updateDashboard(msg)
	case screenProjects:
		return m.updateProjects(msg)
	case screenTeam:
		return m.updateTeam(msg)
	case screenSettings:
		return m.updateSettings(msg)
	case screenTaskDetail:
		return m.updateTaskDetail(msg)
	case screenTeamDetail:
		return m.updateTeamDetail(msg)
	}
	return m, nil
}

func (m model) refreshCmd() tea.Cmd {
	switch m.screen {
	case screenTaskDetail:
		if m.taskDetail != nil {
			return m.fetchTaskCmd(m.taskDetail.ID)
		}
	case screenTeamDetail:
		if m.teamDetail != nil {
			return m.fetchTeamCmd(m.teamDetail.ID)
		}
	}
	return m.mountCmd()
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.cursor = 0
	return m, cmd
}

func (m *model) clampCursor() {
	if n := m.listLen(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// listLen длина списка, по которому ходит курсор на текущем экране.
func (m model) listLen() int {
	switch m.screen {
	case screenDashboard:
		if m.focus == paneProjects {
			return len(m.visibleProjects())
		}
		return len(m.visibleTasks())
	case screenProjects:
		return len(m.projectGroups())
	case screenTeam:
		return len(m.teams)
	}
	return 0
}
