package tui

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/DevN0mad/Workasana/internal/models"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorAccent     lipgloss.TerminalColor = ac("27", "62")
	colorAccentFg   lipgloss.TerminalColor = ac("255", "235")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorSurfaceBg  lipgloss.TerminalColor = ac("255", "235")
	colorBorder     lipgloss.TerminalColor = ac("250", "243")
	colorOK         lipgloss.TerminalColor = ac("28", "42")
	colorError      lipgloss.TerminalColor = ac("196", "160")
	colorWarn       lipgloss.TerminalColor = ac("166", "214")
)

func styleMuted() lipgloss.Style {
	st := lipgloss.NewStyle().Foreground(colorMuted)
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
}

func styleSelected() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
}

func styleSidebar() lipgloss.Style {
	return lipgloss.NewStyle().
		Width(18).
		Padding(1, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(colorBorder)
}

func styleSidebarActive() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent).Bold(true)
}

func stylePanel(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder)
}

func styleModal(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		Background(colorSurfaceBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent)
}

func styleToast(failed bool) lipgloss.Style {
	st := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if failed {
		return st.Foreground(colorAccentFg).Background(colorError)
	}
	return st.Foreground(colorAccentFg).Background(colorOK)
}

// statusBadge цвет статуса в списках.
func statusBadge(status string) string {
	st := lipgloss.NewStyle().Padding(0, 1)
	switch status {
	case string(models.TaskCompleted):
		st = st.Foreground(colorOK)
	case string(models.TaskBlocked):
		st = st.Foreground(colorError)
	case string(models.TaskInProgress):
		st = st.Foreground(colorWarn)
	default:
		st = st.Foreground(colorMuted)
	}
	return st.Render(status)
}

// renderBars рисует горизонтальную столбчатую диаграмму.
func renderBars(labels []string, values []float64, width int) string {
	if width < 10 {
		width = 10
	}
	labelW := 0
	maxV := 0.0
	for i, l := range labels {
		labelW = max(labelW, lipgloss.Width(l))
		maxV = math.Max(maxV, values[i])
	}
	barW := max(width-labelW-8, 1)
	bar := lipgloss.NewStyle().Foreground(colorAccent)

	var b strings.Builder
	for i, l := range labels {
		n := 0
		if maxV > 0 {
			n = int(math.Round(values[i] / maxV * float64(barW)))
		}
		fmt.Fprintf(&b, "%-*s %s %s\n", labelW, l, bar.Render(strings.Repeat("█", n)), formatNumber(values[i]))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// applyColorProfilePreference учитывает NO_COLOR и подсказки TERM/COLORTERM.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}
