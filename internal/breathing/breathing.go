// Package breathing sequences the scripted inhale/hold/exhale phases shown
// while a session timer runs.
package breathing

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Phase struct {
	Label   string
	Seconds int
}

func (p Phase) Duration() time.Duration {
	return time.Duration(p.Seconds) * time.Second
}

type Pattern struct {
	Name   string
	Phases []Phase
}

// Cycle is the length of one pass through every phase.
func (p Pattern) Cycle() time.Duration {
	var total time.Duration
	for _, ph := range p.Phases {
		total += ph.Duration()
	}
	return total
}

// String renders the pattern as "4-7-8".
func (p Pattern) String() string {
	parts := make([]string, len(p.Phases))
	for i, ph := range p.Phases {
		parts[i] = strconv.Itoa(ph.Seconds)
	}
	return strings.Join(parts, "-")
}

var (
	Box = Pattern{Name: "Box", Phases: []Phase{
		{"Inhale", 4}, {"Hold", 4}, {"Exhale", 4}, {"Hold", 4},
	}}
	Coherent = Pattern{Name: "Coherent", Phases: []Phase{
		{"Inhale", 5}, {"Exhale", 5},
	}}
	Relaxing = Pattern{Name: "Relaxing", Phases: []Phase{
		{"Inhale", 4}, {"Hold", 7}, {"Exhale", 8},
	}}
)

var patterns = map[string]Pattern{
	"box":      Box,
	"coherent": Coherent,
	"relaxing": Relaxing,
}

// Names lists the preset patterns in menu order.
func Names() []string {
	return []string{"box", "coherent", "relaxing"}
}

// ByName returns a preset pattern; unknown names get Box.
func ByName(name string) (Pattern, bool) {
	p, ok := patterns[strings.ToLower(name)]
	if !ok {
		return Box, false
	}
	return p, true
}

var instructionRe = regexp.MustCompile(`(?i)^\s*(.+?)\s+for\s+(\d+)\b`)

// FromInstructions builds a pattern from lines such as "Inhale for 4". Any
// line that does not parse makes the whole script fall back to Box.
func FromInstructions(lines []string) Pattern {
	if len(lines) == 0 {
		return Box
	}
	phases := make([]Phase, 0, len(lines))
	for _, line := range lines {
		m := instructionRe.FindStringSubmatch(line)
		if m == nil {
			return Box
		}
		secs, err := strconv.Atoi(m[2])
		if err != nil || secs <= 0 {
			return Box
		}
		phases = append(phases, Phase{Label: m[1], Seconds: secs})
	}
	return Pattern{Name: "Guided", Phases: phases}
}

type Sequencer struct {
	pattern Pattern
	cycle   time.Duration
}

func NewSequencer(p Pattern) *Sequencer {
	if p.Cycle() <= 0 {
		p = Box
	}
	return &Sequencer{pattern: p, cycle: p.Cycle()}
}

func (s *Sequencer) Pattern() Pattern { return s.pattern }

// At returns the phase active after elapsed, the time left in that phase and
// the 1-based cycle number.
func (s *Sequencer) At(elapsed time.Duration) (Phase, time.Duration, int) {
	if elapsed < 0 {
		elapsed = 0
	}
	cycle := int(elapsed/s.cycle) + 1
	offset := elapsed % s.cycle
	for _, ph := range s.pattern.Phases {
		d := ph.Duration()
		if offset < d {
			return ph, d - offset, cycle
		}
		offset -= d
	}
	// unreachable with a positive cycle; zero-length phases fall through
	last := s.pattern.Phases[len(s.pattern.Phases)-1]
	return last, 0, cycle
}
