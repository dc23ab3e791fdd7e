package timer

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cocoacalm/internal/breathing"
	"cocoacalm/internal/models"
	cprogress "cocoacalm/internal/progress"
)

// tickMsg carries the generation of the tick chain that produced it. Pausing
// or resuming starts a new generation, so ticks still in flight are dropped.
type tickMsg struct {
	gen int
	at  time.Time
}

// QuickBreathing is the unlisted paced breathing session started from the
// menu.
func QuickBreathing(minutes int) models.ContentItem {
	return models.ContentItem{
		ID:          "quick_breathing",
		Title:       "Quick Breathing",
		Description: "Paced breathing with your preferred pattern",
		Category:    models.CategoryBreathing,
		Duration:    float64(max(minutes, 1) * 60),
		Difficulty:  models.Beginner,
	}
}

type Model struct {
	item      models.ContentItem
	duration  int
	elapsed   int
	gen       int
	running   bool
	paused    bool
	finished  bool
	cancelled bool
	progress  progress.Model
	sequencer *breathing.Sequencer
	tracker   *cprogress.Tracker
	session   models.Session
	recorded  *models.Session
	width     int
	height    int
}

// New prepares a timer for item. Items with scripted instructions breathe to
// their own phases; everything else uses pattern.
func New(item models.ContentItem, pattern breathing.Pattern, tracker *cprogress.Tracker) Model {
	prog := progress.New(progress.WithScaledGradient("#8B5A2B", "#F5DEB3"))
	prog.Width = 60

	if len(item.InstructionPhases) > 0 {
		pattern = breathing.FromInstructions(item.InstructionPhases)
	}

	return Model{
		item:      item,
		duration:  int(item.Duration),
		progress:  prog,
		sequencer: breathing.NewSequencer(pattern),
		tracker:   tracker,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func tickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(msg.Width-20, 80)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start) && !m.running && !m.finished:
			m.running = true
			m.paused = false
			m.session = m.tracker.StartSession(m.item)
			m.gen++
			return m, tickCmd(m.gen)

		case key.Matches(msg, keys.Pause) && m.running && !m.paused:
			m.paused = true
			m.gen++
			return m, nil

		case key.Matches(msg, keys.Resume) && m.running && m.paused:
			m.paused = false
			m.gen++
			return m, tickCmd(m.gen)

		case key.Matches(msg, keys.Cancel) && m.running:
			m.cancelled = true
			m.finish()
			return m, tea.Quit

		case key.Matches(msg, keys.Quit):
			if m.running && !m.finished {
				m.cancelled = true
				m.finish()
			}
			return m, tea.Quit

		case key.Matches(msg, keys.Back) && (m.finished || !m.running):
			return m, tea.Quit
		}

	case tickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if m.running && !m.paused && !m.finished {
			m.elapsed++
			if m.elapsed >= m.duration {
				m.finish()
				return m, nil
			}
			return m, tickCmd(m.gen)
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

// finish records the session with the seconds actually spent.
func (m *Model) finish() {
	m.running = false
	m.finished = true
	recorded := m.tracker.CompleteSession(m.session, float64(m.elapsed))
	m.recorded = &recorded
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	containerStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Padding(2)

	if m.finished && !m.cancelled {
		return containerStyle.Render(m.renderCompletion())
	}

	remaining := m.duration - m.elapsed
	minutes := remaining / 60
	seconds := remaining % 60

	percent := 0.0
	if m.duration > 0 {
		percent = float64(m.elapsed) / float64(m.duration)
	}

	var status string
	switch {
	case !m.running && !m.finished:
		status = "Press 's' to begin"
	case m.paused:
		status = "PAUSED - Press 'r' to resume"
	case m.finished:
		status = "Session ended"
	default:
		status = "Breathe with the guide..."
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.item.Category.Color())).
		MarginBottom(1)

	timerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#8B5A2B")).
		Padding(2, 4).
		MarginBottom(2)

	phaseStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#F5DEB3")).
		MarginBottom(1)

	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888")).
		MarginBottom(2)

	var phaseLine string
	if m.running {
		phase, left, cycle := m.sequencer.At(time.Duration(m.elapsed) * time.Second)
		phaseLine = phaseStyle.Render(fmt.Sprintf("%s · %ds   (cycle %d, %s %s)",
			phase.Label, int(left.Seconds()), cycle, m.sequencer.Pattern().Name, m.sequencer.Pattern()))
	}

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		titleStyle.Render(m.item.Category.Icon()+" "+m.item.Title),
		timerStyle.Render(fmt.Sprintf("%02d:%02d", minutes, seconds)),
		phaseLine,
		m.progress.ViewAs(percent),
		statusStyle.Render(status),
		helpView(m.running),
	)

	return containerStyle.Render(content)
}

func (m Model) renderCompletion() string {
	celebrationStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFD700")).
		Align(lipgloss.Center)

	celebration := []string{
		"",
		"       ✨  ☕  ✨",
		"",
		"    ╔═══════════════════╗",
		"    ║  SESSION COMPLETE ║",
		"    ╚═══════════════════╝",
		"",
		fmt.Sprintf("     %s", m.item.Title),
		fmt.Sprintf("     Duration: %d minutes", m.duration/60),
		"",
		"    Take this calm with you.",
		"",
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(2)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		celebrationStyle.Render(lipgloss.JoinVertical(lipgloss.Center, celebration...)),
		helpStyle.Render("Press 'b' to go back • 'q' to quit"),
	)
}

func helpView(running bool) string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(2)

	helpText := "s: start • b: back • q: quit"
	if running {
		helpText = "p: pause • r: resume • c: cancel • q: quit"
	}
	return helpStyle.Render(helpText)
}

// Recorded is the finalized session, or nil if the timer never started.
func (m Model) Recorded() *models.Session {
	return m.recorded
}

type keyMap struct {
	Start  key.Binding
	Pause  key.Binding
	Resume key.Binding
	Cancel key.Binding
	Quit   key.Binding
	Back   key.Binding
}

var keys = keyMap{
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause"),
	),
	Resume: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "resume"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Back: key.NewBinding(
		key.WithKeys("b", "esc"),
		key.WithHelp("b", "back"),
	),
}
