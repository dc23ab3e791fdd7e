package premium

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cocoacalm/internal/bootstrap"
	"cocoacalm/internal/config"
	"cocoacalm/internal/models"
	"cocoacalm/internal/storage"
)

func newApp(t *testing.T, outcome string) *bootstrap.App {
	t.Helper()
	app, err := bootstrap.New(config.Env{
		DataDir:      t.TempDir(),
		Storage:      storage.BackendFile,
		StoreKey:     "premium-test",
		StoreOutcome: outcome,
	}, bootstrap.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

// drive feeds a key to the model and runs any command it returns once.
func drive(m Model, msg tea.Msg) Model {
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			next, _ = m.Update(out)
			m = next.(Model)
		}
	}
	return m
}

func TestPlanRowsFallBack(t *testing.T) {
	rows := planRows(nil)
	require.Len(t, rows, len(models.AllPlans()))
	assert.Equal(t, models.AllPlans()[0], rows[0].plan)
}

func TestBuyFirstPlan(t *testing.T) {
	app := newApp(t, "success")
	m := drive(New(context.Background(), app.Entitlements), tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.isError)
	assert.Contains(t, m.message, "Welcome to Premium")
	assert.True(t, m.State().CanAccessPremium())
}

func TestCancelledPurchase(t *testing.T) {
	app := newApp(t, "cancel")
	m := drive(New(context.Background(), app.Entitlements), tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "Purchase cancelled.", m.message)
	assert.False(t, m.State().CanAccessPremium())
}

func TestTrialThenRestore(t *testing.T) {
	app := newApp(t, "success")
	m := drive(New(context.Background(), app.Entitlements), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})

	assert.Equal(t, models.StatusTrialing, m.State().Status())
	assert.False(t, m.isError)

	m = drive(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.False(t, m.isError)
	assert.Equal(t, "Purchases restored.", m.message)
}
