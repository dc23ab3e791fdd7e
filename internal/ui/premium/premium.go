package premium

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cocoacalm/internal/entitlement"
	"cocoacalm/internal/models"
)

type row struct {
	plan    models.Plan
	name    string
	price   string
	savings string
}

type Model struct {
	ctx      context.Context
	resolver *entitlement.Resolver
	state    models.EntitlementState
	rows     []row
	cursor   int
	busy     bool
	message  string
	isError  bool
	width    int
	height   int
}

func New(ctx context.Context, resolver *entitlement.Resolver) Model {
	return Model{
		ctx:      ctx,
		resolver: resolver,
		state:    resolver.State(),
		rows:     planRows(resolver.Products()),
	}
}

// planRows prefers the store's product listing and falls back to the
// built-in price table when products have not loaded.
func planRows(products []entitlement.Product) []row {
	var rows []row
	for _, p := range products {
		plan, ok := models.PlanFromProductID(p.ID)
		if !ok {
			continue
		}
		rows = append(rows, row{plan: plan, name: p.DisplayName, price: p.Price, savings: plan.Savings()})
	}
	if len(rows) > 0 {
		return rows
	}
	for _, plan := range models.AllPlans() {
		rows = append(rows, row{plan: plan, name: plan.DisplayName(), price: plan.Price(), savings: plan.Savings()})
	}
	return rows
}

type purchaseResultMsg struct {
	plan   models.Plan
	status entitlement.PurchaseStatus
	err    error
}

type restoreResultMsg struct {
	err error
}

func (m Model) purchase(plan models.Plan) tea.Cmd {
	return func() tea.Msg {
		status, err := m.resolver.Purchase(m.ctx, plan)
		return purchaseResultMsg{plan: plan, status: status, err: err}
	}
}

func (m Model) restore() tea.Cmd {
	return func() tea.Msg {
		_, err := m.resolver.Restore(m.ctx)
		return restoreResultMsg{err: err}
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

	case purchaseResultMsg:
		m.busy = false
		m.state = m.resolver.State()
		m.isError = msg.err != nil
		switch {
		case errors.Is(msg.err, entitlement.ErrVerification):
			m.message = "We couldn't verify that purchase, so Premium was not unlocked."
		case msg.err != nil:
			m.message = fmt.Sprintf("Purchase failed: %v", msg.err)
		case msg.status == entitlement.PurchaseCancelled:
			m.message = "Purchase cancelled."
		case msg.status == entitlement.PurchasePending:
			m.message = "Purchase pending approval. Access unlocks once it's approved."
		default:
			m.message = fmt.Sprintf("🎉 Welcome to Premium! (%s)", msg.plan.DisplayName())
		}
		return m, nil

	case restoreResultMsg:
		m.busy = false
		m.state = m.resolver.State()
		m.isError = msg.err != nil
		if msg.err != nil {
			m.message = fmt.Sprintf("Restore failed: %v", msg.err)
		} else if m.state.CanAccessPremium() {
			m.message = "Purchases restored."
		} else {
			m.message = "No purchases to restore."
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			} else {
				m.cursor = len(m.rows) - 1
			}

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			} else {
				m.cursor = 0
			}

		case key.Matches(msg, keys.Buy):
			if len(m.rows) == 0 {
				return m, nil
			}
			m.busy = true
			m.message = "Contacting the store..."
			m.isError = false
			return m, m.purchase(m.rows[m.cursor].plan)

		case key.Matches(msg, keys.Trial):
			state, started := m.resolver.StartTrial()
			m.state = state
			m.isError = !started
			if started {
				m.message = fmt.Sprintf("Your %d-day free trial has started.", models.TrialDays)
			} else {
				m.message = "A trial can't be started right now."
			}

		case key.Matches(msg, keys.Restore):
			m.busy = true
			m.message = "Restoring purchases..."
			m.isError = false
			return m, m.restore()

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
		Foreground(lipgloss.Color("#FFD700")).
		MarginBottom(1)

	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4CAF50")).
		MarginBottom(1)

	featureStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#CCCCCC")).
		MarginBottom(1)

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#C8A27C")).
		Bold(true)

	normalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888"))

	savingsStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF7CCB"))

	features := featureStyle.Render(strings.Join([]string{
		"✓ Every guided meditation and sleep story",
		"✓ Advanced breathing techniques",
		"✓ Mindful rituals library",
	}, "\n"))

	var plans strings.Builder
	for i, r := range m.rows {
		cursor := "  "
		style := normalStyle
		if m.cursor == i {
			cursor = "▶ "
			style = selectedStyle
		}
		line := style.Render(fmt.Sprintf("%s%-10s %8s", cursor, r.name, r.price))
		if r.savings != "" {
			line += " " + savingsStyle.Render(r.savings)
		}
		plans.WriteString(line + "\n")
	}

	var message string
	if m.message != "" {
		color := "#4CAF50"
		if m.isError {
			color = "#FF6B6B"
		}
		message = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).MarginTop(1).Render(m.message)
	}

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(1).
		Render("↑/↓: choose plan • enter: buy • t: free trial • r: restore • b: back")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("⭐ Cocoa Calm Premium"),
		statusStyle.Render(fmt.Sprintf("Status: %s (%s)", m.state.StatusText(), m.state.Tier().DisplayName())),
		features,
		plans.String(),
		message,
		help,
	)

	return containerStyle.Render(content)
}

func (m Model) State() models.EntitlementState {
	return m.state
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Buy     key.Binding
	Trial   key.Binding
	Restore key.Binding
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
	Buy: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "buy"),
	),
	Trial: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "free trial"),
	),
	Restore: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "restore"),
	),
	Back: key.NewBinding(
		key.WithKeys("b", "esc", "q", "ctrl+c"),
		key.WithHelp("b", "back"),
	),
}
