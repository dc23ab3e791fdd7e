package models

import "time"

type Config struct {
	SessionDuration  int    `yaml:"session_duration" json:"session_duration"`     // Default session duration in minutes
	DailySessionGoal int    `yaml:"daily_session_goal" json:"daily_session_goal"` // Number of sessions goal per day
	BreathingPattern string `yaml:"breathing_pattern" json:"breathing_pattern"`   // box, coherent or relaxing
	ReminderHour     int    `yaml:"reminder_hour" json:"reminder_hour"`           // Hour of the daily reminder (24h format)
}

func DefaultConfig() Config {
	return Config{
		SessionDuration:  10,
		DailySessionGoal: 1,
		BreathingPattern: "box",
		ReminderHour:     8,
	}
}

// ReminderDue reports whether the daily reminder should show: the reminder
// hour has passed and the day's session goal is not met yet.
func (c Config) ReminderDue(now time.Time, sessionsToday int) bool {
	return now.Hour() >= c.ReminderHour && sessionsToday < max(c.DailySessionGoal, 1)
}
