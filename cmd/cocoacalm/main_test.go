package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// execute runs one command against dataDir and returns what it printed.
func execute(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	out, err := execute(t, dataDir, args...)
	require.NoError(t, err, out)
	return out
}

func TestStatusStartsFree(t *testing.T) {
	out := mustExecute(t, t.TempDir(), "status")

	assert.Contains(t, out, "status: free")
	assert.Contains(t, out, "premium: false")
}

func TestTrialOnlyOnce(t *testing.T) {
	dir := t.TempDir()

	out := mustExecute(t, dir, "trial")
	assert.Contains(t, out, "status: trialing")
	assert.NotContains(t, out, "trial not started")

	out = mustExecute(t, dir, "trial")
	assert.Contains(t, out, "trial not started")
	assert.Contains(t, out, "status: trialing")
}

func TestPurchaseLifetime(t *testing.T) {
	dir := t.TempDir()

	out := mustExecute(t, dir, "purchase", "lifetime")
	assert.Contains(t, out, "purchase Lifetime: success")
	assert.Contains(t, out, "status: lifetime")

	out = mustExecute(t, dir, "status")
	assert.Contains(t, out, "premium: true")

	out = mustExecute(t, dir, "store", "transactions")
	assert.Contains(t, out, "cocoa_calm_lifetime")
	assert.Contains(t, out, "active")
}

func TestPendingPurchaseApproval(t *testing.T) {
	dir := t.TempDir()

	out := mustExecute(t, dir, "purchase", "annual", "--outcome", "pending")
	assert.Contains(t, out, ": pending")
	assert.Contains(t, out, "status: free")

	out = mustExecute(t, dir, "store", "approve")
	assert.Contains(t, out, "approved 1 pending purchase(s)")
	assert.Contains(t, out, "status: subscribed")
}

func TestRevokeReturnsToFree(t *testing.T) {
	dir := t.TempDir()
	mustExecute(t, dir, "purchase", "monthly")

	out := mustExecute(t, dir, "store", "transactions")
	id := strings.Fields(out)[0]

	out = mustExecute(t, dir, "store", "revoke", id)
	assert.Contains(t, out, "revoked "+id)
	assert.Contains(t, out, "status: free")
}

func TestPurchaseErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, dir, "purchase", "forever")
	assert.ErrorContains(t, err, `unknown plan "forever"`)

	_, err = execute(t, dir, "purchase", "weekly", "--outcome", "maybe")
	assert.Error(t, err)

	out := mustExecute(t, dir, "purchase", "weekly", "--outcome", "cancel")
	assert.Contains(t, out, "cancelled")
	assert.Contains(t, out, "status: free")
}

func TestSessionsAndProgress(t *testing.T) {
	dir := t.TempDir()

	out := mustExecute(t, dir, "session", "box_breathing")
	assert.Contains(t, out, "completed: true")
	assert.Contains(t, out, "streak 1")

	out = mustExecute(t, dir, "session", "panic_attack_rescue", "--completed", "60")
	assert.Contains(t, out, "completed: false")

	_, err := execute(t, dir, "session", "morning_awakening")
	assert.ErrorContains(t, err, "requires premium")

	_, err = execute(t, dir, "session", "nope")
	assert.ErrorContains(t, err, "unknown content")

	out = mustExecute(t, dir, "progress")
	assert.Contains(t, out, "sessions: 2")
	assert.Contains(t, out, "completed: 1")
	assert.Contains(t, out, "current streak: 1")
	assert.Contains(t, out, "favourite: Breathing")
	assert.Contains(t, out, "reminder: daily at 08:00")
}

func TestCatalog(t *testing.T) {
	dir := t.TempDir()

	out := mustExecute(t, dir, "catalog", "--category", "breathing")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "box_breathing"))
	assert.NotContains(t, lines[0], "locked")
	assert.Contains(t, lines[1], "locked")

	_, err := execute(t, dir, "catalog", "--category", "gardening")
	assert.ErrorContains(t, err, "unknown category")

	mustExecute(t, dir, "purchase", "lifetime")
	out = mustExecute(t, dir, "catalog")
	assert.NotContains(t, out, "locked")
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	exportDir := t.TempDir()
	mustExecute(t, dir, "session", "box_breathing")

	out := mustExecute(t, dir, "export", "--dir", exportDir)
	path := strings.TrimSpace(out)
	assert.Equal(t, exportDir, filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
