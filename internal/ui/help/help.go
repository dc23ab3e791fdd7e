package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cocoacalm/internal/models"
)

type Model struct {
	dataDir string
	width   int
	height  int
	quit    bool
}

func New(dataDir string) Model {
	return Model{dataDir: dataDir}
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
		case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit):
			m.quit = true
			return m, tea.Quit
		}
	}

	return m, nil
}

type binding struct {
	keys string
	desc string
}

func (m Model) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 100
	}
	if height == 0 {
		height = 30
	}

	containerStyle := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(2)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#C8A27C")).
		Align(lipgloss.Center).
		MarginBottom(1)

	sectionTitleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#F5DEB3")).
		MarginBottom(1).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4CAF50")).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#CCCCCC"))

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(2).
		Align(lipgloss.Center)

	section := func(title string, bindings []binding) string {
		lines := make([]string, len(bindings))
		for i, b := range bindings {
			lines[i] = keyStyle.Render(b.keys) + " - " + descStyle.Render(b.desc)
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			sectionTitleStyle.Render(title),
			strings.Join(lines, "\n"))
	}

	timer := section("⏱️  Timer", []binding{
		{"s", "Begin the session"},
		{"p", "Pause"},
		{"r", "Resume"},
		{"c", "End early (the time spent still counts)"},
	})

	library := section("📚 Library", []binding{
		{"← / →", "Filter by category"},
		{"enter", "Start the highlighted session"},
		{"p", "Open Premium"},
	})

	premium := section("⭐ Premium", []binding{
		{"t", "Start the free trial"},
		{"enter", "Buy the highlighted plan"},
		{"r", "Restore purchases"},
	})

	nav := section("🧭 Navigation", []binding{
		{"↑ / k, ↓ / j", "Move in menus"},
		{"enter / space", "Select"},
		{"b / esc", "Go back"},
		{"q / ctrl+c", "Quit"},
	})

	about := lipgloss.JoinVertical(lipgloss.Left,
		sectionTitleStyle.Render("ℹ️  About Cocoa Calm"),
		descStyle.Render(fmt.Sprintf(
			"Guided meditation and breathing with a daily streak.\n"+
				"A session counts as completed at %.0f%% of its length.\n"+
				"Premium sessions unlock with a %d-day free trial or a plan.\n\n"+
				"Your progress is stored locally in %s",
			models.CompletionThreshold*100, models.TrialDays, m.dataDir)))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("🆘 Cocoa Calm Help"),
		timer,
		library,
		premium,
		nav,
		about,
		footerStyle.Render("Press 'b/esc' to go back • 'q' to quit"),
	)

	return containerStyle.Render(content)
}

func (m Model) ShouldQuit() bool {
	return m.quit
}

type keyMap struct {
	Back key.Binding
	Quit key.Binding
}

var keys = keyMap{
	Back: key.NewBinding(
		key.WithKeys("b", "esc", "h"),
		key.WithHelp("b/esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
