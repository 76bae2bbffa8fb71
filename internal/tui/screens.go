package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DevN0mad/Workasana/internal/charts"
	"github.com/DevN0mad/Workasana/internal/models"
	"github.com/DevN0mad/Workasana/internal/views"
)

var (
	projectFilters = []string{models.StatusAll, string(models.ProjectPlanned), string(models.ProjectInProgress), string(models.ProjectCompleted)}
	taskFilters    = []string{models.StatusAll, string(models.TaskToDo), string(models.TaskInProgress), string(models.TaskCompleted), string(models.TaskBlocked)}
)

func (m model) visibleProjects() []models.Project {
	return views.FilterProjects(m.projects, m.search.Value(), projectFilters[m.projectStatus])
}

func (m model) visibleTasks() []models.Task {
	return views.FilterTasks(m.tasks, m.search.Value(), taskFilters[m.taskStatus])
}

// catalogChoice значение фильтра каталога: 0 означает "любой".
func catalogChoice(options []string, i int) string {
	if i <= 0 || i > len(options) {
		return ""
	}
	return options[i-1]
}

func (m model) projectGroups() []views.ProjectGroup {
	tag := catalogChoice(m.deps.Catalog.Tags, m.tagFilter)
	owner := catalogChoice(m.deps.Catalog.Members, m.ownerFilter)
	return views.GroupTasksByProject(m.projects, views.FilterTasksByTagOwner(m.tasks, tag, owner))
}

func (m model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "tab":
		if m.focus == paneProjects {
			m.focus = paneTasks
		} else {
			m.focus = paneProjects
		}
		m.cursor = 0
	case "s":
		if m.focus == paneProjects {
			m.projectStatus = (m.projectStatus + 1) % len(projectFilters)
		} else {
			m.taskStatus = (m.taskStatus + 1) % len(taskFilters)
		}
		m.cursor = 0
	case "n":
		m.form = newProjectForm()
		return m, m.form.focusCmd()
	case "t":
		return m.openTaskForm()
	case "enter":
		if tasks := m.visibleTasks(); m.focus == paneTasks && m.cursor < len(tasks) {
			return m.openTask(tasks[m.cursor])
		}
	case "d":
		if m.focus == paneProjects {
			if projects := m.visibleProjects(); m.cursor < len(projects) {
				m.confirm = &confirmModal{
					title:    "Delete Project",
					body:     "Delete this project? Its tasks will be deleted too.",
					mutation: m.actions.DeleteProject(projects[m.cursor].ID),
				}
			}
		} else if tasks := m.visibleTasks(); m.cursor < len(tasks) {
			m.confirm = &confirmModal{
				title:    "Delete Task",
				body:     fmt.Sprintf("Delete task %q?", tasks[m.cursor].Name),
				mutation: m.actions.DeleteTask(tasks[m.cursor].ID),
			}
		}
	}
	return m, nil
}

func (m model) openTaskForm() (tea.Model, tea.Cmd) {
	// Список команд нужен для выбора в форме.
	var cmd tea.Cmd
	if len(m.teams) == 0 {
		cmd = load(m.ctx, m.gen, m.cols.Teams)
	}
	m.form = newTaskForm(m.projects, m.teams, m.deps.Catalog)
	return m, tea.Batch(cmd, m.form.focusCmd())
}

func (m model) openTask(task models.Task) (tea.Model, tea.Cmd) {
	m, cmd := m.navigate(screenTaskDetail)
	m.taskDetail = &task
	return m, tea.Batch(cmd, m.fetchTaskCmd(task.ID))
}

func (m model) updateProjects(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "t":
		m.tagFilter = (m.tagFilter + 1) % (len(m.deps.Catalog.Tags) + 1)
		m.cursor = 0
	case "o":
		m.ownerFilter = (m.ownerFilter + 1) % (len(m.deps.Catalog.Members) + 1)
		m.cursor = 0
	case "n":
		m.form = newProjectForm()
		return m, m.form.focusCmd()
	}
	return m, nil
}

func (m model) updateTeam(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		m.form = newTeamForm()
		return m, m.form.focusCmd()
	case "enter":
		if m.cursor < len(m.teams) {
			team := m.teams[m.cursor]
			m, cmd := m.navigate(screenTeamDetail)
			m.teamDetail = &team
			return m, tea.Batch(cmd, m.fetchTeamCmd(team.ID))
		}
	case "d":
		if m.cursor < len(m.teams) {
			m.confirm = &confirmModal{
				title:    "Delete Team",
				body:     fmt.Sprintf("Delete team %q?", m.teams[m.cursor].Name),
				mutation: m.actions.DeleteTeam(m.teams[m.cursor].ID),
			}
		}
	}
	return m, nil
}

func (m model) updateTeamDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.teamDetail == nil {
		return m, nil
	}
	switch msg.String() {
	case "esc", "backspace":
		return m.navigate(screenTeam)
	case "a":
		m.form = newMemberForm(*m.teamDetail)
		return m, m.form.focusCmd()
	case "d":
		m.confirm = &confirmModal{
			title:    "Delete Team",
			body:     fmt.Sprintf("Delete team %q?", m.teamDetail.Name),
			mutation: m.actions.DeleteTeam(m.teamDetail.ID),
			back:     true,
		}
	}
	return m, nil
}

func (m model) updateTaskDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.taskDetail == nil {
		return m, nil
	}
	switch msg.String() {
	case "esc", "backspace":
		return m.navigate(screenDashboard)
	case "c":
		if !m.taskDetail.Status.IsCompleted() {
			return m, m.completeTaskCmd(m.taskDetail.ID)
		}
	case "d":
		m.confirm = &confirmModal{
			title:    "Delete Task",
			body:     fmt.Sprintf("Delete task %q?", m.taskDetail.Name),
			mutation: m.actions.DeleteTask(m.taskDetail.ID),
			back:     true,
		}
	}
	return m, nil
}

func (m model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "l" {
		ctx, guard := m.ctx, m.deps.Guard
		return m, func() tea.Msg {
			return logoutMsg{err: guard.Logout(ctx)}
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.screen == screenLogin {
		return m.viewLogin()
	}

	sidebar := m.viewSidebar()
	contentW := max(m.width-lipgloss.Width(sidebar)-2, 30)

	var content string
	switch {
	case m.confirm != nil:
		content = styleModal(min(contentW, 60)).Render(m.confirm.view())
	case m.form != nil:
		content = styleModal(min(contentW, 70)).Render(m.form.view())
	default:
		content = m.viewScreen(contentW)
	}

	footer := ""
	if m.toast.text != "" {
		footer = styleToast(m.toast.failed).Render(m.toast.text)
	}
	body := lipgloss.JoinVertical(lipgloss.Left, content, "", footer)
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", body)
}

func (m model) viewSidebar() string {
	rows := []string{styleTitle().Render("Workasana"), ""}
	for i, item := range navScreens {
		label := fmt.Sprintf("%d %s", i+1, item.title)
		if item.screen == m.screen ||
			(m.screen == screenTaskDetail && item.screen == screenDashboard) ||
			(m.screen == screenTeamDetail && item.screen == screenTeam) {
			label = styleSidebarActive().Render(label)
		}
		rows = append(rows, label)
	}
	rows = append(rows, "", styleMuted().Render("r: refresh"), styleMuted().Render("q: quit"))
	return styleSidebar().Height(max(m.height-2, 10)).Render(strings.Join(rows, "\n"))
}

func (m model) viewScreen(width int) string {
	switch m.screen {
	case screenDashboard:
		return m.viewDashboard(width)
	case screenProjects:
		return m.viewProjects(width)
	case screenTeam:
		return m.viewTeam(width)
	case screenReports:
		return m.viewReports(width)
	case screenSettings:
		return m.viewSettings()
	case screenTaskDetail:
		return m.viewTaskDetail()
	case screenTeamDetail:
		return m.viewTeamDetail()
	}
	return ""
}

func (m model) row(i int, active bool, text string) string {
	if active && i == m.cursor {
		return styleSelected().Render("> " + text)
	}
	return "  " + text
}

func (m model) viewDashboard(width int) string {
	search := "/ search"
	if m.searching || m.search.Value() != "" {
		search = "Search: " + m.search.View()
	}

	projects := m.visibleProjects()
	pRows := []string{styleTitle().Render("Projects") + styleMuted().Render("  status: "+projectFilters[m.projectStatus])}
	for i, p := range projects {
		pRows = append(pRows, m.row(i, m.focus == paneProjects, p.Name+" "+statusBadge(string(p.Status))))
	}
	if len(projects) == 0 {
		pRows = append(pRows, styleMuted().Render("  No projects"))
	}

	tasks := m.visibleTasks()
	tRows := []string{styleTitle().Render("Tasks") + styleMuted().Render("  status: "+taskFilters[m.taskStatus])}
	for i, t := range tasks {
		line := fmt.Sprintf("%s  %s", t.Name, styleMuted().Render(views.ProjectName(t, m.projects)))
		tRows = append(tRows, m.row(i, m.focus == paneTasks, line+" "+statusBadge(string(t.Status))))
	}
	if len(tasks) == 0 {
		tRows = append(tRows, styleMuted().Render("  No tasks"))
	}

	half := max(width/2-2, 20)
	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		stylePanel(half).Render(strings.Join(pRows, "\n")),
		stylePanel(half).Render(strings.Join(tRows, "\n")),
	)
	help := styleMuted().Render("tab: switch list   s: status filter   n: new project   t: new task   enter: open   d: delete")
	return lipgloss.JoinVertical(lipgloss.Left, search, panels, help)
}

func (m model) viewProjects(width int) string {
	tag := catalogChoice(m.deps.Catalog.Tags, m.tagFilter)
	owner := catalogChoice(m.deps.Catalog.Members, m.ownerFilter)
	header := styleMuted().Render(fmt.Sprintf("tag: %s   owner: %s", orAll(tag), orAll(owner)))

	now := m.deps.Now()
	blocks := []string{header}
	for i, g := range m.projectGroups() {
		rows := []string{m.row(i, true, styleTitle().Render(g.Project.Name)+" "+statusBadge(string(g.Project.Status)))}
		for _, t := range g.Tasks {
			due := ""
			if days, ok := views.DaysRemaining(t.DueDate, now); ok {
				due = fmt.Sprintf("  %d days left", days)
			}
			rows = append(rows, fmt.Sprintf("    %s  %s%s %s", t.Name, strings.Join(t.Owners, ", "), due, statusBadge(string(t.Status))))
		}
		if len(g.Tasks) == 0 {
			rows = append(rows, styleMuted().Render("    No matching tasks"))
		}
		blocks = append(blocks, stylePanel(width-4).Render(strings.Join(rows, "\n")))
	}
	blocks = append(blocks, styleMuted().Render("t: cycle tag   o: cycle owner   n: new project"))
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func orAll(v string) string {
	if v == "" {
		return models.StatusAll
	}
	return v
}

func avatars(members []string) string {
	out := make([]string, 0, len(members))
	for _, name := range members {
		out = append(out, styleSidebarActive().Render(" "+models.Initial(name)+" "))
	}
	return strings.Join(out, " ")
}

func (m model) viewTeam(width int) string {
	rows := []string{styleTitle().Render("Teams")}
	for i, t := range m.teams {
		line := fmt.Sprintf("%s  %s  %s", t.Name, avatars(t.Members), styleMuted().Render(fmt.Sprintf("%d members", len(t.Members))))
		rows = append(rows, m.row(i, true, line))
	}
	if len(m.teams) == 0 {
		rows = append(rows, styleMuted().Render("  No teams"))
	}
	rows = append(rows, "", styleMuted().Render("n: new team   enter: open   d: delete"))
	return stylePanel(width - 4).Render(strings.Join(rows, "\n"))
}

func (m model) viewTeamDetail() string {
	t := m.teamDetail
	if t == nil {
		return styleMuted().Render("Loading...")
	}
	rows := []string{styleTitle().Render(t.Name), ""}
	for _, member := range t.Members {
		rows = append(rows, avatars([]string{member})+"  "+member)
	}
	if len(t.Members) == 0 {
		rows = append(rows, styleMuted().Render("No members yet"))
	}
	rows = append(rows, "", styleMuted().Render("a: add member   d: delete team   esc: back"))
	return strings.Join(rows, "\n")
}

func (m model) viewTaskDetail() string {
	t := m.taskDetail
	if t == nil {
		return styleMuted().Render("Loading...")
	}
	due := "-"
	if t.DueDate != nil {
		due = t.DueDate.In(m.deps.Location).Format("2006-01-02")
		if days, ok := views.DaysRemaining(t.DueDate, m.deps.Now()); ok {
			due += fmt.Sprintf(" (%d days left)", days)
		}
	}
	rows := []string{
		styleTitle().Render(t.Name),
		"",
		"Project:  " + views.ProjectName(*t, m.projects),
		"Team:     " + t.Team,
		"Owners:   " + strings.Join(t.Owners, ", "),
		"Tags:     " + strings.Join(t.Tags, ", "),
		"Status:   " + statusBadge(string(t.Status)),
		"Hours:    " + formatNumber(t.TimeToComplete),
		"Due:      " + due,
		"",
	}
	help := "d: delete   esc: back"
	if !t.Status.IsCompleted() {
		help = "c: mark as completed   " + help
	}
	rows = append(rows, styleMuted().Render(help))
	return strings.Join(rows, "\n")
}

func (m model) viewReports(width int) string {
	weekdays := charts.WeekdayCompletions(m.tasks, m.deps.Location)
	labels := make([]string, 0, len(weekdays))
	values := make([]float64, 0, len(weekdays))
	for i, n := range weekdays {
		labels = append(labels, models.Weekdays[i])
		values = append(values, float64(n))
	}

	teams := charts.SortedTeamCounts(charts.CompletedByTeam(m.tasks))
	teamLabels := make([]string, 0, len(teams))
	teamValues := make([]float64, 0, len(teams))
	for _, tc := range teams {
		teamLabels = append(teamLabels, tc.Team)
		teamValues = append(teamValues, float64(tc.Completed))
	}
	teamChart := styleMuted().Render("No completed tasks")
	if len(teams) > 0 {
		teamChart = renderBars(teamLabels, teamValues, width-6)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		stylePanel(width-4).Render(styleTitle().Render("Work Done Last Week")+"\n"+renderBars(labels, values, width-6)),
		stylePanel(width-4).Render(styleTitle().Render("Total Days of Work Pending")+"\n"+formatNumber(charts.PendingHours(m.tasks))+" hours"),
		stylePanel(width-4).Render(styleTitle().Render("Tasks Closed by Team")+"\n"+teamChart),
	)
}

func (m model) viewSettings() string {
	state := "signed in"
	if !m.sess.Active() {
		state = "signed out"
	}
	return strings.Join([]string{
		styleTitle().Render("Settings"),
		"",
		"API:      " + m.deps.API.BaseURL(),
		"Session:  " + state,
		"",
		styleMuted().Render("l: log out"),
	}, "\n")
}
