package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day1 = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

func sessionOn(t time.Time, category Category, completed, total float64) Session {
	return Session{
		ID:                t.Format(time.RFC3339Nano),
		ContentID:         "box_breathing",
		StartTime:         t,
		EndTime:           t.Add(time.Duration(completed) * time.Second),
		CompletedDuration: completed,
		TotalDuration:     total,
		Category:          category,
		WasCompleted:      IsCompletion(completed, total),
	}
}

func TestCompletionPercentage(t *testing.T) {
	tests := []struct {
		name      string
		completed float64
		total     float64
		want      float64
	}{
		{"zero total", 100, 0, 0},
		{"partial", 500, 600, 500.0 / 600.0},
		{"capped", 900, 600, 1},
		{"nothing", 0, 600, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Session{CompletedDuration: tt.completed, TotalDuration: tt.total}
			assert.InDelta(t, tt.want, s.CompletionPercentage(), 1e-9)
		})
	}
}

func TestIsCompletion(t *testing.T) {
	assert.True(t, IsCompletion(500, 600))
	assert.True(t, IsCompletion(480, 600))
	assert.False(t, IsCompletion(479, 600))
	assert.True(t, IsCompletion(0, 0))
}

func TestStreakConsecutiveDays(t *testing.T) {
	var p UserProgress
	for i := 0; i < 10; i++ {
		day := day1.AddDate(0, 0, i)
		p.AddSession(sessionOn(day, CategoryBreathing, 300, 300), day)
		assert.Equal(t, i+1, p.CurrentStreak)
		assert.Equal(t, p.CurrentStreak, p.LongestStreak)
	}
}

func TestStreakGapAndSameDay(t *testing.T) {
	var p UserProgress
	streaks := []int{}

	record := func(at time.Time) {
		p.AddSession(sessionOn(at, CategorySleep, 60, 600), at)
		streaks = append(streaks, p.CurrentStreak)
	}

	record(day1)                                 // day 1
	record(day1.AddDate(0, 0, 1))                // day 2
	record(day1.AddDate(0, 0, 1).Add(time.Hour)) // day 2 again
	record(day1.AddDate(0, 0, 3))                // day 4

	assert.Equal(t, []int{1, 2, 2, 1}, streaks)
	assert.Equal(t, 2, p.LongestStreak)
	assert.Equal(t, 4, p.TotalSessions)
}

func TestStreakAcrossMidnight(t *testing.T) {
	var p UserProgress
	late := time.Date(2026, 5, 1, 23, 55, 0, 0, time.UTC)
	early := time.Date(2026, 5, 2, 0, 5, 0, 0, time.UTC)

	p.AddSession(sessionOn(late, CategoryFocus, 60, 60), late)
	p.AddSession(sessionOn(early, CategoryFocus, 60, 60), early)

	assert.Equal(t, 2, p.CurrentStreak)
}

func TestStreakBackdatedSessionZeroes(t *testing.T) {
	var p UserProgress
	now := day1.AddDate(0, 0, 5)

	p.AddSession(sessionOn(day1, CategoryFocus, 60, 60), now)

	assert.Equal(t, 0, p.CurrentStreak)
	assert.Equal(t, 1, p.LongestStreak)
	assert.GreaterOrEqual(t, p.LongestStreak, p.CurrentStreak)
}

func TestStreakYesterdaySessionKept(t *testing.T) {
	var p UserProgress
	yesterday := day1
	now := day1.AddDate(0, 0, 1)

	p.AddSession(sessionOn(yesterday, CategoryFocus, 60, 60), now)

	assert.Equal(t, 1, p.CurrentStreak)
}

func TestLongestStreakNeverDecreases(t *testing.T) {
	var p UserProgress
	offsets := []int{0, 1, 2, 5, 6, 6, 9, 10, 11, 12, 20}
	prevLongest := 0
	for _, off := range offsets {
		at := day1.AddDate(0, 0, off)
		p.AddSession(sessionOn(at, CategoryMeditation, 60, 60), at)
		assert.GreaterOrEqual(t, p.LongestStreak, prevLongest)
		assert.GreaterOrEqual(t, p.LongestStreak, p.CurrentStreak)
		prevLongest = p.LongestStreak
	}
	assert.Equal(t, 4, p.LongestStreak)
	assert.Equal(t, 1, p.CurrentStreak)
}

func TestFavoriteCategories(t *testing.T) {
	var p UserProgress
	add := func(c Category) {
		p.AddSession(sessionOn(day1, c, 60, 60), day1)
	}

	add(CategorySleep)
	assert.Equal(t, []Category{CategorySleep}, p.FavoriteCategories)

	add(CategoryFocus)
	add(CategoryFocus)
	assert.Equal(t, []Category{CategoryFocus, CategorySleep}, p.FavoriteCategories)

	add(CategoryAnxiety)
	add(CategoryBreathing)
	add(CategoryBreathing)
	add(CategoryBreathing)

	// Sleep and anxiety tie on one session each; sleep was seen first.
	assert.Equal(t, []Category{CategoryBreathing, CategoryFocus, CategorySleep}, p.FavoriteCategories)
	assert.LessOrEqual(t, len(p.FavoriteCategories), 3)
}

func TestTotals(t *testing.T) {
	var p UserProgress
	p.AddSession(sessionOn(day1, CategorySleep, 600, 600), day1)
	p.AddSession(sessionOn(day1, CategorySleep, 90, 600), day1)

	assert.Equal(t, 2, p.TotalSessions)
	assert.InDelta(t, 11.5, p.TotalMinutesMeditated, 1e-9)
	assert.Equal(t, 1, p.CompletedCount())
	assert.InDelta(t, 5.75, p.AverageSessionMinutes(), 1e-9)

	stats := p.DayStats(day1)
	assert.Equal(t, 2, stats.SessionsCount)
	assert.Equal(t, "2026-05-01", stats.Date)

	recent := p.RecentSessions(1)
	require.Len(t, recent, 1)
	assert.Equal(t, 90.0, recent[0].CompletedDuration)
}

func TestUserProgressJSONRoundTrip(t *testing.T) {
	var p UserProgress
	p.AddSession(sessionOn(day1, CategorySleep, 600, 600), day1)
	p.AddSession(sessionOn(day1.AddDate(0, 0, 1), CategoryFocus, 100, 600), day1.AddDate(0, 0, 1))

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got UserProgress
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, p, got)
}

func TestDaysBetween(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	a := time.Date(2026, 3, 7, 23, 0, 0, 0, loc)
	b := time.Date(2026, 3, 8, 1, 0, 0, 0, loc)
	assert.Equal(t, 1, DaysBetween(a, b))
	assert.Equal(t, 0, DaysBetween(a, a))
	assert.Equal(t, -1, DaysBetween(b, a))
	assert.Equal(t, 366, DaysBetween(time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC)))
}
