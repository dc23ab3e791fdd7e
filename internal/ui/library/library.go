package library

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cocoacalm/internal/catalog"
	"cocoacalm/internal/models"
)

type Model struct {
	catalog      *catalog.Catalog
	filters      []models.Category // nil entry means every category
	filter       int
	items        []models.ContentItem
	cursor       int
	canAccess    bool
	selected     *models.ContentItem
	wantsPremium bool
	notice       string
	width        int
	height       int
}

func New(cat *catalog.Catalog, canAccessPremium bool) Model {
	m := Model{
		catalog:   cat,
		filters:   append([]models.Category{""}, models.AllCategories()...),
		canAccess: canAccessPremium,
	}
	m.applyFilter()
	return m
}

func (m *Model) applyFilter() {
	if c := m.filters[m.filter]; c == "" {
		m.items = m.catalog.All()
	} else {
		m.items = m.catalog.ByCategory(c)
	}
	m.cursor = 0
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
		m.notice = ""
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			} else if len(m.items) > 0 {
				m.cursor = len(m.items) - 1
			}

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			} else {
				m.cursor = 0
			}

		case key.Matches(msg, keys.Next):
			m.filter = (m.filter + 1) % len(m.filters)
			m.applyFilter()

		case key.Matches(msg, keys.Prev):
			m.filter = (m.filter + len(m.filters) - 1) % len(m.filters)
			m.applyFilter()

		case key.Matches(msg, keys.Enter):
			if len(m.items) == 0 {
				return m, nil
			}
			item := m.items[m.cursor]
			if item.IsPremium && !m.canAccess {
				m.notice = "🔒 Premium session. Press 'p' to unlock."
				return m, nil
			}
			m.selected = &item
			return m, tea.Quit

		case key.Matches(msg, keys.Premium):
			m.wantsPremium = true
			return m, tea.Quit

		case key.Matches(msg, keys.Back):
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
		MarginBottom(1)

	filterStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F5DEB3")).
		MarginBottom(1)

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#C8A27C")).
		Bold(true)

	normalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAA"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888")).
		MarginTop(1).
		Width(min(max(m.width-8, 20), 70))

	noticeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFA500")).
		MarginTop(1)

	filterName := "All"
	if c := m.filters[m.filter]; c != "" {
		filterName = c.Icon() + " " + c.DisplayName()
	}

	var list strings.Builder
	for i, item := range m.items {
		cursor := "  "
		style := normalStyle
		if m.cursor == i {
			cursor = "▶ "
			style = selectedStyle
		}
		lock := ""
		if item.IsPremium && !m.canAccess {
			lock = " 🔒"
		}
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color(item.Category.Color())).Render(item.Category.Icon())
		list.WriteString(cursor + icon + " " + style.Render(fmt.Sprintf("%-28s %3d min%s", item.Title, item.Minutes(), lock)) + "\n")
	}
	if len(m.items) == 0 {
		list.WriteString(normalStyle.Render("  Nothing here yet.") + "\n")
	}

	var desc string
	if len(m.items) > 0 {
		item := m.items[m.cursor]
		desc = descStyle.Render(fmt.Sprintf("%s\n%s · %s", item.Description, item.Difficulty.DisplayName(), strings.Join(item.Tags, ", ")))
	}

	var notice string
	if m.notice != "" {
		notice = noticeStyle.Render(m.notice)
	}

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(1).
		Render("↑/↓: navigate • ←/→: category • enter: start • p: premium • b: back")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("📚 Library"),
		filterStyle.Render("Category: "+filterName),
		list.String(),
		desc,
		notice,
		help,
	)

	return containerStyle.Render(content)
}

// Selected is the item to play, or nil when the user backed out.
func (m Model) Selected() *models.ContentItem {
	return m.selected
}

func (m Model) WantsPremium() bool {
	return m.wantsPremium
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Enter   key.Binding
	Premium key.Binding
	Back    key.Binding
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
	Next: key.NewBinding(
		key.WithKeys("right", "l", "tab"),
		key.WithHelp("→", "next category"),
	),
	Prev: key.NewBinding(
		key.WithKeys("left", "h", "shift+tab"),
		key.WithHelp("←", "previous category"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "start"),
	),
	Premium: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "premium"),
	),
	Back: key.NewBinding(
		key.WithKeys("b", "esc", "q", "ctrl+c"),
		key.WithHelp("b", "back"),
	),
}
