package models

import (
	"slices"
	"time"
)

// CompletionThreshold is the fraction of the target duration a session must
// reach to count as completed.
const CompletionThreshold = 0.8

const maxFavoriteCategories = 3

type Session struct {
	ID                string    `json:"id"`
	ContentID         string    `json:"content_id"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	CompletedDuration float64   `json:"completed_duration"` // in seconds
	TotalDuration     float64   `json:"total_duration"`     // in seconds
	Category          Category  `json:"category"`
	WasCompleted      bool      `json:"was_completed"`
}

// CompletionPercentage returns the completed share of the target duration,
// capped at 1.
func (s Session) CompletionPercentage() float64 {
	if s.TotalDuration <= 0 {
		return 0
	}
	return min(s.CompletedDuration/s.TotalDuration, 1.0)
}

// IsCompletion reports whether completed seconds reach the completion
// threshold of total seconds.
func IsCompletion(completed, total float64) bool {
	return completed >= total*CompletionThreshold
}

type UserProgress struct {
	TotalSessions         int        `json:"total_sessions"`
	TotalMinutesMeditated float64    `json:"total_minutes_meditated"`
	CurrentStreak         int        `json:"current_streak"`
	LongestStreak         int        `json:"longest_streak"`
	LastSessionDate       *time.Time `json:"last_session_date,omitempty"`
	CompletedSessions     []Session  `json:"completed_sessions"`
	FavoriteCategories    []Category `json:"favorite_categories"`
}

// AddSession records a finalized session. now is the wall clock used to
// detect backdated entries.
func (p *UserProgress) AddSession(session Session, now time.Time) {
	p.CompletedSessions = append(p.CompletedSessions, session)
	p.TotalSessions++
	p.TotalMinutesMeditated += session.CompletedDuration / 60

	p.updateStreak(session.StartTime, now)
	p.updateFavoriteCategories()
}

func (p *UserProgress) updateStreak(date, now time.Time) {
	sessionDay := DayOf(date)

	if p.LastSessionDate != nil {
		daysDifference := DaysBetween(DayOf(*p.LastSessionDate), sessionDay)
		switch {
		case daysDifference == 1:
			p.CurrentStreak++
		case daysDifference > 1:
			p.CurrentStreak = 1
		}
		// Same day leaves the streak alone.
	} else {
		p.CurrentStreak = 1
	}

	last := date
	p.LastSessionDate = &last
	p.LongestStreak = max(p.LongestStreak, p.CurrentStreak)

	// A session recorded for a day before yesterday cannot keep a streak alive.
	if DaysBetween(sessionDay, DayOf(now.In(date.Location()))) > 1 {
		p.CurrentStreak = 0
	}
}

func (p *UserProgress) updateFavoriteCategories() {
	counts := make(map[Category]int)
	var order []Category
	for _, s := range p.CompletedSessions {
		if _, seen := counts[s.Category]; !seen {
			order = append(order, s.Category)
		}
		counts[s.Category]++
	}

	slices.SortStableFunc(order, func(a, b Category) int {
		return counts[b] - counts[a]
	})

	if len(order) > maxFavoriteCategories {
		order = order[:maxFavoriteCategories]
	}
	p.FavoriteCategories = order
}

// CompletedCount returns the number of sessions that reached the completion
// threshold.
func (p UserProgress) CompletedCount() int {
	n := 0
	for _, s := range p.CompletedSessions {
		if s.WasCompleted {
			n++
		}
	}
	return n
}

func (p UserProgress) AverageSessionMinutes() float64 {
	if p.TotalSessions == 0 {
		return 0
	}
	return p.TotalMinutesMeditated / float64(p.TotalSessions)
}

// DayStats summarizes the sessions started on one calendar day.
func (p UserProgress) DayStats(day time.Time) DayStats {
	key := day.Format("2006-01-02")
	stats := DayStats{Date: key}
	for _, s := range p.CompletedSessions {
		if s.StartTime.In(day.Location()).Format("2006-01-02") != key {
			continue
		}
		stats.SessionsCount++
		stats.TotalMinutes += s.CompletedDuration / 60
		stats.Sessions = append(stats.Sessions, s)
	}
	return stats
}

// RecentSessions returns up to n sessions, newest first.
func (p UserProgress) RecentSessions(n int) []Session {
	out := make([]Session, 0, n)
	for i := len(p.CompletedSessions) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, p.CompletedSessions[i])
	}
	return out
}

type DayStats struct {
	Date          string    `json:"date"` // YYYY-MM-DD format
	SessionsCount int       `json:"sessions_count"`
	TotalMinutes  float64   `json:"total_minutes"`
	Sessions      []Session `json:"sessions"`
}

// DayOf truncates t to midnight of its calendar day in t's location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts whole calendar days from a to b. DST transitions do not
// shift the count.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
