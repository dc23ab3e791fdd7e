package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"cocoacalm/internal/models"
)

// ExportAllStats renders a plain-text report of the saved progress.
func (s *Storage) ExportAllStats(now time.Time) (string, error) {
	progress, err := s.GetProgress()
	if err != nil {
		return "", err
	}
	return BuildReport(progress, now), nil
}

// WriteReport exports the report into dir and returns the file path.
func (s *Storage) WriteReport(dir string, now time.Time) (string, error) {
	report, err := s.ExportAllStats(now)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	filePath := filepath.Join(dir, fmt.Sprintf("cocoacalm-stats-%s.txt", now.Format("2006-01-02-150405")))
	if err := os.WriteFile(filePath, []byte(report), 0644); err != nil {
		return "", err
	}
	return filePath, nil
}

func BuildReport(progress models.UserProgress, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Cocoa Calm - Progress Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", now.Format("January 2, 2006 3:04 PM"))
	fmt.Fprintf(&b, "=====================================\n\n")

	fmt.Fprintf(&b, "OVERALL\n")
	fmt.Fprintf(&b, "-------\n")
	fmt.Fprintf(&b, "Total Sessions: %d\n", progress.TotalSessions)
	fmt.Fprintf(&b, "Completed Sessions: %d\n", progress.CompletedCount())
	fmt.Fprintf(&b, "Time Meditated: %s\n", FormatMinutes(progress.TotalMinutesMeditated))
	fmt.Fprintf(&b, "Current Streak: %d days\n", progress.CurrentStreak)
	fmt.Fprintf(&b, "Longest Streak: %d days\n", progress.LongestStreak)
	if progress.TotalSessions > 0 {
		fmt.Fprintf(&b, "Average Session: %.1f minutes\n", progress.AverageSessionMinutes())
	}
	if len(progress.FavoriteCategories) > 0 {
		names := make([]string, 0, len(progress.FavoriteCategories))
		for _, c := range progress.FavoriteCategories {
			names = append(names, c.DisplayName())
		}
		fmt.Fprintf(&b, "Favorite Categories: %s\n", strings.Join(names, ", "))
	}
	b.WriteString("\n")

	// Monthly breakdown, newest first
	months := make(map[string][]models.Session)
	for _, session := range progress.CompletedSessions {
		key := session.StartTime.Format("2006-01")
		months[key] = append(months[key], session)
	}
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	slices.Reverse(keys)

	for _, key := range keys {
		sessions := months[key]
		monthTime, _ := time.Parse("2006-01", key)
		minutes := 0.0
		for _, s := range sessions {
			minutes += s.CompletedDuration / 60
		}
		fmt.Fprintf(&b, "%s\n", strings.ToUpper(monthTime.Format("January 2006")))
		fmt.Fprintf(&b, "  Sessions: %d\n", len(sessions))
		fmt.Fprintf(&b, "  Total Time: %s\n", FormatMinutes(minutes))
	}

	today := progress.DayStats(now)
	if today.SessionsCount > 0 {
		fmt.Fprintf(&b, "\nTODAY (%s)\n", now.Format("Monday, January 2, 2006"))
		fmt.Fprintf(&b, "-------------------------------\n")
		for i, session := range today.Sessions {
			status := "partial"
			if session.WasCompleted {
				status = "completed"
			}
			fmt.Fprintf(&b, "  Session %d: %s - %s (%s, %s)\n",
				i+1,
				session.StartTime.Format("3:04 PM"),
				session.EndTime.Format("3:04 PM"),
				FormatMinutes(session.CompletedDuration/60),
				status,
			)
		}
	}

	return b.String()
}

// FormatMinutes renders minutes as "1h 5m" or "5m".
func FormatMinutes(minutes float64) string {
	total := int(minutes)
	hours := total / 60
	mins := total % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
