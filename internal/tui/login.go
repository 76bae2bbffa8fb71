package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DevN0mad/Workasana/internal/services"
)

const (
	loginName = iota
	loginEmail
	loginPassword
)

// loginForm форма входа; в режиме регистрации добавляется имя.
type loginForm struct {
	inputs  [3]textinput.Model
	focus   int
	signup  bool
	pending bool
	message string
	failed  bool
}

func newLoginForm() loginForm {
	f := loginForm{focus: loginEmail}
	f.inputs[loginName] = newInput("Full name", false)
	f.inputs[loginEmail] = newInput("you@example.com", false)
	f.inputs[loginPassword] = newInput("Password", true)
	return f
}

func (f *loginForm) fields() []int {
	if f.signup {
		return []int{loginName, loginEmail, loginPassword}
	}
	return []int{loginEmail, loginPassword}
}

func (f *loginForm) focusCmd() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f.inputs[f.focus].Focus()
}

func (f *loginForm) move(delta int) tea.Cmd {
	fields := f.fields()
	pos := 0
	for i, idx := range fields {
		if idx == f.focus {
			pos = i
		}
	}
	pos = (pos + delta + len(fields)) % len(fields)
	f.focus = fields[pos]
	return f.focusCmd()
}

func (m model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.pending {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		return m, m.login.move(1)
	case "shift+tab", "up":
		return m, m.login.move(-1)
	case "ctrl+s":
		m.login.signup = !m.login.signup
		m.login.message = ""
		if m.login.signup {
			m.login.focus = loginName
		} else {
			m.login.focus = loginEmail
		}
		return m, m.login.focusCmd()
	case "enter":
		m.login.pending = true
		m.login.message = ""
		return m, m.authCmd()
	}

	var cmd tea.Cmd
	m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
	return m, cmd
}

func (m model) authCmd() tea.Cmd {
	ctx, guard := m.ctx, m.deps.Guard
	email := strings.TrimSpace(m.login.inputs[loginEmail].Value())
	password := m.login.inputs[loginPassword].Value()
	if !m.login.signup {
		creds := services.Credentials{Email: email, Password: password}
		return func() tea.Msg {
			sess, err := guard.Login(ctx, creds)
			return authMsg{sess: sess, err: err}
		}
	}
	input := services.SignupInput{
		Name:     strings.TrimSpace(m.login.inputs[loginName].Value()),
		Email:    email,
		Password: password,
	}
	return func() tea.Msg {
		sess, text, err := guard.Signup(ctx, input)
		return authMsg{sess: sess, msg: text, err: err}
	}
}

func (m model) handleAuth(msg authMsg) (tea.Model, tea.Cmd) {
	m.login.pending = false
	if msg.err != nil {
		m.login.message = msg.err.Error()
		m.login.failed = true
		return m, nil
	}
	if msg.sess == nil {
		// Регистрация без токена: пользователь входит вручную.
		m.login.message = msg.msg
		m.login.failed = false
		m.login.signup = false
		m.login.focus = loginEmail
		return m, m.login.focusCmd()
	}

	m.startSession(msg.sess)
	m.login = newLoginForm()
	return m.navigate(screenDashboard)
}

func (m model) viewLogin() string {
	f := m.login
	title := "Sign in to Workasana"
	if f.signup {
		title = "Create a Workasana account"
	}

	labels := map[int]string{loginName: "Name", loginEmail: "Email", loginPassword: "Password"}
	rows := []string{styleTitle().Render(title), ""}
	for _, idx := range f.fields() {
		label := labels[idx]
		if idx == f.focus {
			label = styleSelected().Render(label)
		}
		rows = append(rows, label, f.inputs[idx].View(), "")
	}

	if f.pending {
		rows = append(rows, styleMuted().Render("Signing in..."))
	} else if f.message != "" {
		rows = append(rows, styleToast(f.failed).Render(f.message))
	}
	rows = append(rows, "", styleMuted().Render("enter: submit   tab: next field   ctrl+s: toggle sign up   esc: quit"))

	box := styleModal(50).Render(strings.Join(rows, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
