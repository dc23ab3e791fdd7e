package menu

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cocoacalm/internal/entitlement"
	"cocoacalm/internal/models"
	"cocoacalm/internal/progress"
)

type MenuChoice int

const (
	None MenuChoice = iota
	StartSession
	QuickBreathing
	ViewProgress
	Premium
	Settings
	Help
	Exit
)

type entry struct {
	label  string
	choice MenuChoice
}

var entries = []entry{
	{"🧘 Start a Session", StartSession},
	{"🌬️  Quick Breathing", QuickBreathing},
	{"📈 Your Progress", ViewProgress},
	{"⭐ Premium", Premium},
	{"⚙️  Settings", Settings},
	{"❓ Help", Help},
	{"👋 Exit", Exit},
}

type Model struct {
	cursor     int
	selected   MenuChoice
	config     models.Config
	today      models.DayStats
	progress   models.UserProgress
	state      models.EntitlementState
	now        time.Time
	width      int
	height     int
	shouldQuit bool
}

func New(tracker *progress.Tracker, resolver *entitlement.Resolver, config models.Config) Model {
	return Model{
		config:   config,
		today:    tracker.Today(),
		progress: tracker.Progress(),
		state:    resolver.State(),
		now:      time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			} else {
				m.cursor = len(entries) - 1
			}

		case key.Matches(msg, keys.Down):
			if m.cursor < len(entries)-1 {
				m.cursor++
			} else {
				m.cursor = 0
			}

		case key.Matches(msg, keys.Enter):
			m.selected = entries[m.cursor].choice
			if m.selected == Exit {
				m.shouldQuit = true
			}
			return m, tea.Quit

		case key.Matches(msg, keys.Quit):
			m.selected = Exit
			m.shouldQuit = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	containerStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Padding(2)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#C8A27C")).
		MarginBottom(2).
		Align(lipgloss.Center)

	statsStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F5DEB3")).
		MarginBottom(1).
		Align(lipgloss.Center)

	dateStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888")).
		MarginBottom(1).
		Align(lipgloss.Center)

	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4CAF50")).
		MarginBottom(1).
		Align(lipgloss.Center)

	menuStyle := lipgloss.NewStyle().
		Padding(1, 2).
		MarginTop(1)

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#C8A27C")).
		Bold(true)

	normalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888"))

	title := titleStyle.Render("☕ Cocoa Calm ☕")
	dateInfo := dateStyle.Render(greeting(m.now) + " · " + m.now.Format("Monday, January 2, 2006"))

	stats := statsStyle.Render(fmt.Sprintf(
		"Today: %d/%d sessions | %.0f mins | 🔥 %d day streak",
		m.today.SessionsCount,
		m.config.DailySessionGoal,
		m.today.TotalMinutes,
		m.progress.CurrentStreak,
	))

	var menu strings.Builder
	for i, e := range entries {
		cursor := "  "
		style := normalStyle
		if m.cursor == i {
			cursor = "▶ "
			style = selectedStyle
		}
		menu.WriteString(style.Render(cursor+e.label) + "\n")
	}

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		dateInfo,
		stats,
		m.renderProgressBar(),
		m.renderReminder(),
		statusStyle.Render(m.state.StatusText()),
		menuStyle.Render(menu.String()),
		m.renderHelp(),
	)

	return containerStyle.Render(content)
}

func (m Model) renderProgressBar() string {
	progressStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginBottom(1)

	completed := m.today.SessionsCount
	goal := max(m.config.DailySessionGoal, 1)

	barWidth := 30
	filledWidth := min(completed*barWidth/goal, barWidth)

	bar := "[" + strings.Repeat("█", filledWidth) + strings.Repeat("░", barWidth-filledWidth) + "]"
	return progressStyle.Render(bar)
}

func (m Model) renderReminder() string {
	if m.config.ReminderDue(m.now, m.today.SessionsCount) {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF7CCB")).
			Bold(true).
			MarginBottom(1).
			Render("🔔 Time for today's practice")
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginBottom(1).
		Render(fmt.Sprintf("🔔 Daily reminder at %02d:00", m.config.ReminderHour))
}

func (m Model) renderHelp() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(2)

	return helpStyle.Render("↑/↓: navigate • enter: select • q: quit")
}

func greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

func (m Model) ShouldQuit() bool {
	return m.shouldQuit
}

func (m Model) GetSelected() MenuChoice {
	return m.selected
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "select"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
