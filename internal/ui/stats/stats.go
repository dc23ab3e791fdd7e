package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cocoacalm/internal/catalog"
	"cocoacalm/internal/models"
	"cocoacalm/internal/progress"
	"cocoacalm/internal/storage"
)

const recentLimit = 5

type Model struct {
	progress        models.UserProgress
	today           models.DayStats
	week            []models.DayStats
	recommendations []models.ContentItem
	catalog         *catalog.Catalog
	storage         *storage.Storage
	now             time.Time
	width           int
	height          int
	exportMessage   string
	showMessage     bool
}

func New(tracker *progress.Tracker, cat *catalog.Catalog, store *storage.Storage) Model {
	p := tracker.Progress()
	now := time.Now()

	week := make([]models.DayStats, 7)
	for i := range week {
		week[i] = p.DayStats(now.AddDate(0, 0, i-6))
	}

	return Model{
		progress:        p,
		today:           tracker.Today(),
		week:            week,
		recommendations: tracker.Recommendations(),
		catalog:         cat,
		storage:         store,
		now:             now,
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
		case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Export):
			return m, m.exportStats()
		}

	case exportResultMsg:
		m.exportMessage = msg.message
		m.showMessage = true
		return m, tea.Tick(time.Second*3, func(t time.Time) tea.Msg {
			return clearMessageMsg{}
		})

	case clearMessageMsg:
		m.showMessage = false
		m.exportMessage = ""
		return m, nil
	}

	return m, nil
}

type clearMessageMsg struct{}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	containerStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Padding(2)

	return containerStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderOverview(),
		m.renderWeekChart(),
		m.renderRecent(),
		m.renderRecommendations(),
		m.renderHelp(),
	))
}

func (m Model) renderOverview() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#C8A27C")).
		MarginBottom(1)

	statsStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F5DEB3"))

	p := m.progress
	lines := []string{
		fmt.Sprintf("🧘 Total sessions: %d (%d completed)", p.TotalSessions, p.CompletedCount()),
		fmt.Sprintf("⏱️  Time meditated: %s", storage.FormatMinutes(p.TotalMinutesMeditated)),
		fmt.Sprintf("📊 Average session: %s", storage.FormatMinutes(p.AverageSessionMinutes())),
		fmt.Sprintf("🔥 Current streak: %d days · longest %d", p.CurrentStreak, p.LongestStreak),
		fmt.Sprintf("📅 Today: %d sessions · %s", m.today.SessionsCount, storage.FormatMinutes(m.today.TotalMinutes)),
	}
	if len(p.FavoriteCategories) > 0 {
		names := make([]string, len(p.FavoriteCategories))
		for i, c := range p.FavoriteCategories {
			names[i] = c.Icon() + " " + c.DisplayName()
		}
		lines = append(lines, "💛 Favourites: "+strings.Join(names, ", "))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("📈 Your Progress"),
		statsStyle.Render(strings.Join(lines, "\n")),
	)
}

func (m Model) renderWeekChart() string {
	chartStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#8B5A2B")).
		MarginTop(1).
		MarginBottom(1)

	maxMinutes := 0.0
	for _, day := range m.week {
		maxMinutes = max(maxMinutes, day.TotalMinutes)
	}
	if maxMinutes == 0 {
		return ""
	}

	var chart strings.Builder
	chart.WriteString("Last 7 days\n")
	barHeight := 5
	for row := barHeight; row > 0; row-- {
		for _, day := range m.week {
			level := int(day.TotalMinutes / maxMinutes * float64(barHeight))
			if level >= row {
				chart.WriteString("█  ")
			} else {
				chart.WriteString("   ")
			}
		}
		chart.WriteString("\n")
	}
	for i := range m.week {
		chart.WriteString(m.now.AddDate(0, 0, i-6).Format("Mon")[:2] + " ")
	}

	return chartStyle.Render(chart.String())
}

func (m Model) renderRecent() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#C8A27C")).
		MarginTop(1)

	sessionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888"))

	recent := m.progress.RecentSessions(recentLimit)
	if len(recent) == 0 {
		return sessionStyle.Render("No sessions yet. Start one from the menu!")
	}

	var b strings.Builder
	for _, s := range recent {
		title := "Unknown session"
		if item, ok := m.catalog.ByID(s.ContentID); ok {
			title = item.Title
		}
		mark := "◐"
		if s.WasCompleted {
			mark = "✓"
		}
		fmt.Fprintf(&b, "%s %s  %-28s %3.0f%%  %s\n",
			mark,
			s.StartTime.Format("Jan 2 15:04"),
			title,
			s.CompletionPercentage()*100,
			storage.FormatMinutes(s.CompletedDuration/60))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Recent sessions"),
		sessionStyle.Render(b.String()))
}

func (m Model) renderRecommendations() string {
	if len(m.recommendations) == 0 {
		return ""
	}
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#C8A27C"))

	itemStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAA"))

	var b strings.Builder
	for _, item := range m.recommendations {
		fmt.Fprintf(&b, "%s %s (%d min)\n", item.Category.Icon(), item.Title, item.Minutes())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Recommended for you"),
		itemStyle.Render(b.String()))
}

func (m Model) renderHelp() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(1)

	help := "Press 'e' to export • 'b' to go back • 'q' to quit"

	if m.showMessage && m.exportMessage != "" {
		messageStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
		help = messageStyle.Render(m.exportMessage) + "\n" + help
	}

	return helpStyle.Render(help)
}

func (m Model) exportStats() tea.Cmd {
	return func() tea.Msg {
		path, err := m.storage.WriteReport(ExportDir(m.storage.DataDir()), time.Now())
		if err != nil {
			return exportResultMsg{success: false, message: fmt.Sprintf("Export failed: %v", err)}
		}
		return exportResultMsg{success: true, message: fmt.Sprintf("✅ Exported to %s", path)}
	}
}

// ExportDir prefers ~/Downloads and falls back to the data directory.
func ExportDir(dataDir string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return dataDir
	}
	downloads := filepath.Join(homeDir, "Downloads")
	if info, err := os.Stat(downloads); err == nil && info.IsDir() {
		return downloads
	}
	return dataDir
}

type exportResultMsg struct {
	success bool
	message string
}

type keyMap struct {
	Back   key.Binding
	Quit   key.Binding
	Export key.Binding
}

var keys = keyMap{
	Back: key.NewBinding(
		key.WithKeys("b", "esc", "h"),
		key.WithHelp("b", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
}
