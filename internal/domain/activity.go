package domain

import "time"

// ActivityLog is the per-user, per-day write counter.
type ActivityLog struct {
	UserID     string         `json:"userId"`
	Date       time.Time      `json:"date"`
	EntryCount int            `json:"entryCount"`
	EntryTypes map[string]int `json:"entryTypes"`
}

// Streak is one contiguous run of writing days.
type Streak struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Length    int       `json:"length"`
	IsActive  bool      `json:"isActive"`
}

type StreakInfo struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
}
