package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cocoacalm/internal/breathing"
	"cocoacalm/internal/models"
	"cocoacalm/internal/storage"
)

const (
	fieldDuration = iota
	fieldGoal
	fieldPattern
	fieldReminder
	fieldCount
)

type Model struct {
	store        *storage.Storage
	config       models.Config
	inputs       []textinput.Model
	focusIndex   int
	saved        bool
	reset        bool
	confirmReset bool
	errorMsg     string
	width        int
	height       int
}

func New(store *storage.Storage) (Model, error) {
	// a corrupt file comes back as defaults, which saving will overwrite
	config, err := store.GetConfig()
	if err != nil && !errors.Is(err, storage.ErrCorrupt) {
		return Model{}, err
	}

	numericValidation := func(text string) error {
		for _, char := range text {
			if !unicode.IsDigit(char) {
				return fmt.Errorf("only numbers allowed")
			}
		}
		return nil
	}

	inputs := make([]textinput.Model, fieldCount)

	inputs[fieldDuration] = textinput.New()
	inputs[fieldDuration].Placeholder = "10"
	inputs[fieldDuration].CharLimit = 3
	inputs[fieldDuration].Validate = numericValidation

	inputs[fieldGoal] = textinput.New()
	inputs[fieldGoal].Placeholder = "1"
	inputs[fieldGoal].CharLimit = 2
	inputs[fieldGoal].Validate = numericValidation

	inputs[fieldPattern] = textinput.New()
	inputs[fieldPattern].Placeholder = strings.Join(breathing.Names(), " | ")
	inputs[fieldPattern].CharLimit = 12

	inputs[fieldReminder] = textinput.New()
	inputs[fieldReminder].Placeholder = "8"
	inputs[fieldReminder].CharLimit = 2
	inputs[fieldReminder].Validate = numericValidation

	for i := range inputs {
		inputs[i].Width = 20
	}
	inputs[fieldDuration].Focus()

	m := Model{
		store:  store,
		config: config,
		inputs: inputs,
	}
	m.fill()
	return m, nil
}

func (m *Model) fill() {
	m.inputs[fieldDuration].SetValue(strconv.Itoa(m.config.SessionDuration))
	m.inputs[fieldGoal].SetValue(strconv.Itoa(m.config.DailySessionGoal))
	m.inputs[fieldPattern].SetValue(m.config.BreathingPattern)
	m.inputs[fieldReminder].SetValue(strconv.Itoa(m.config.ReminderHour))
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Tab), key.Matches(msg, keys.Down):
			m.focusIndex = (m.focusIndex + 1) % len(m.inputs)
			return m.updateFocus(), nil

		case key.Matches(msg, keys.ShiftTab), key.Matches(msg, keys.Up):
			m.focusIndex = (m.focusIndex + len(m.inputs) - 1) % len(m.inputs)
			return m.updateFocus(), nil

		case key.Matches(msg, keys.Save):
			if err := m.saveConfig(); err != nil {
				m.errorMsg = err.Error()
				m.saved = false
				return m, nil
			}
			m.saved = true
			m.errorMsg = ""
			return m, tea.Quit

		case key.Matches(msg, keys.Reset):
			if !m.confirmReset {
				m.confirmReset = true
				return m, nil
			}
			if err := m.resetAllData(); err != nil {
				m.errorMsg = err.Error()
				m.confirmReset = false
				return m, nil
			}
			m.reset = true
			return m, tea.Quit

		case key.Matches(msg, keys.Back):
			if m.confirmReset {
				m.confirmReset = false
				return m, nil
			}
			return m, tea.Quit
		}
	}

	cmd := m.updateInputs(msg)
	return m, cmd
}

func (m *Model) updateFocus() tea.Model {
	for i := range m.inputs {
		if i == m.focusIndex {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return *m
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		oldValue := m.inputs[i].Value()
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
		if m.inputs[i].Value() != oldValue {
			m.errorMsg = ""
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) saveConfig() error {
	config, err := Parse(
		m.inputs[fieldDuration].Value(),
		m.inputs[fieldGoal].Value(),
		m.inputs[fieldPattern].Value(),
		m.inputs[fieldReminder].Value(),
	)
	if err != nil {
		return err
	}
	m.config = config
	return m.store.SaveConfig(m.config)
}

// Parse validates the raw form values.
func Parse(duration, goal, pattern, reminder string) (models.Config, error) {
	d, err := strconv.Atoi(duration)
	if err != nil || d < 1 || d > 180 {
		return models.Config{}, fmt.Errorf("session duration must be between 1-180 minutes")
	}
	g, err := strconv.Atoi(goal)
	if err != nil || g < 1 || g > 24 {
		return models.Config{}, fmt.Errorf("daily goal must be between 1-24 sessions")
	}
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if _, ok := breathing.ByName(pattern); !ok {
		return models.Config{}, fmt.Errorf("breathing pattern must be one of %s", strings.Join(breathing.Names(), ", "))
	}
	h, err := strconv.Atoi(reminder)
	if err != nil || h < 0 || h > 23 {
		return models.Config{}, fmt.Errorf("reminder hour must be between 0-23")
	}
	return models.Config{
		SessionDuration:  d,
		DailySessionGoal: g,
		BreathingPattern: pattern,
		ReminderHour:     h,
	}, nil
}

func (m *Model) resetAllData() error {
	if err := m.store.ResetAllData(); err != nil {
		return err
	}
	m.config = models.DefaultConfig()
	m.fill()
	return nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	containerStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Padding(4)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#C8A27C")).
		MarginBottom(3).
		Align(lipgloss.Center)

	formStyle := lipgloss.NewStyle().
		Align(lipgloss.Left).
		MarginTop(2).
		MarginBottom(2)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F5DEB3")).
		MarginBottom(1)

	inputStyle := lipgloss.NewStyle().
		MarginBottom(2)

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4CAF50")).
		Bold(true).
		MarginTop(2)

	labels := []string{
		"Quick Session Length (minutes):",
		"Daily Session Goal:",
		"Breathing Pattern (" + strings.Join(breathing.Names(), ", ") + "):",
		"Daily Reminder Hour (24h format):",
	}

	var form strings.Builder
	for i, label := range labels {
		form.WriteString(labelStyle.Render(label) + "\n")
		form.WriteString(inputStyle.Render(m.inputs[i].View()) + "\n")
	}

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		titleStyle.Render("⚙️  Settings"),
		formStyle.Render(form.String()),
		m.renderHelp(),
	)

	if m.saved {
		content += "\n" + successStyle.Render("✅ Settings saved successfully!")
	}

	if m.reset {
		content += "\n" + successStyle.Render("🔄 All data reset successfully!")
	}

	if m.confirmReset {
		warningStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true).
			MarginTop(2)
		content += "\n" + warningStyle.Render("⚠️  WARNING: This will delete ALL sessions, purchases and settings!")
	}

	if m.errorMsg != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true).
			MarginTop(2)
		content += "\n" + errorStyle.Render("❌ "+m.errorMsg)
	}

	return containerStyle.Render(content)
}

func (m Model) renderHelp() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(2)

	if m.confirmReset {
		return helpStyle.Render("⚠️  Press ctrl+r again to confirm RESET (deletes all data) • esc: cancel")
	}

	return helpStyle.Render("tab/↓: next field • shift+tab/↑: previous • ctrl+s: save • ctrl+r: reset all data • esc: back")
}

// WasReset reports whether every stored key was wiped; callers must rebuild
// any service holding state loaded before the reset.
func (m Model) WasReset() bool {
	return m.reset
}

func (m Model) Config() models.Config {
	return m.config
}

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Up       key.Binding
	Down     key.Binding
	Save     key.Binding
	Reset    key.Binding
	Back     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous field"),
	),
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous field"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next field"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s", "enter"),
		key.WithHelp("ctrl+s", "save"),
	),
	Reset: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "reset all data"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "back"),
	),
}
