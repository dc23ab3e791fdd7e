package breathing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencerAt(t *testing.T) {
	s := NewSequencer(Relaxing)

	tests := []struct {
		elapsed   time.Duration
		label     string
		remaining time.Duration
		cycle     int
	}{
		{0, "Inhale", 4 * time.Second, 1},
		{3500 * time.Millisecond, "Inhale", 500 * time.Millisecond, 1},
		{4 * time.Second, "Hold", 7 * time.Second, 1},
		{10 * time.Second, "Hold", time.Second, 1},
		{11 * time.Second, "Exhale", 8 * time.Second, 1},
		{18 * time.Second, "Exhale", time.Second, 1},
		{19 * time.Second, "Inhale", 4 * time.Second, 2},
		{40 * time.Second, "Inhale", 2 * time.Second, 3},
		{-time.Second, "Inhale", 4 * time.Second, 1},
	}
	for _, tt := range tests {
		phase, remaining, cycle := s.At(tt.elapsed)
		assert.Equal(t, tt.label, phase.Label, "elapsed %v", tt.elapsed)
		assert.Equal(t, tt.remaining, remaining, "elapsed %v", tt.elapsed)
		assert.Equal(t, tt.cycle, cycle, "elapsed %v", tt.elapsed)
	}
}

func TestPresets(t *testing.T) {
	assert.Equal(t, 16*time.Second, Box.Cycle())
	assert.Equal(t, 10*time.Second, Coherent.Cycle())
	assert.Equal(t, "4-7-8", Relaxing.String())

	for _, name := range Names() {
		_, ok := ByName(name)
		assert.True(t, ok, name)
	}
	p, ok := ByName("Coherent")
	assert.True(t, ok)
	assert.Equal(t, Coherent, p)

	p, ok = ByName("square")
	assert.False(t, ok)
	assert.Equal(t, Box, p)
}

func TestFromInstructions(t *testing.T) {
	p := FromInstructions([]string{"Inhale for 5", "Exhale for 5"})
	require.Len(t, p.Phases, 2)
	assert.Equal(t, Phase{"Inhale", 5}, p.Phases[0])
	assert.Equal(t, Phase{"Exhale", 5}, p.Phases[1])

	p = FromInstructions([]string{"breathe in slowly for 4 counts", "Hold FOR 7"})
	require.Len(t, p.Phases, 2)
	assert.Equal(t, "breathe in slowly", p.Phases[0].Label)
	assert.Equal(t, 7, p.Phases[1].Seconds)

	assert.Equal(t, Box, FromInstructions(nil))
	assert.Equal(t, Box, FromInstructions([]string{"Inhale for 4", "Relax"}))
	assert.Equal(t, Box, FromInstructions([]string{"Inhale for 0"}))
}

func TestEmptyPatternFallsBack(t *testing.T) {
	s := NewSequencer(Pattern{Name: "empty"})
	assert.Equal(t, Box, s.Pattern())
}
