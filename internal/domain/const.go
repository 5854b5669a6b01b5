package domain

import "time"

const (
	RequesterIdCtxKey = "daybook-requesterId"
)

const (
	// RequesterIdHeader is set by the upstream authenticator.
	RequesterIdHeader = "X-Daybook-User"
)

// Boundary limits for entry text fields.
const (
	MaxTitleLength   = 200
	MaxContentLength = 50000
)

const (
	DefaultJournalCategory = "General"
)

type EventType string

const (
	EventEntryCreated EventType = "entry.created"
	EventEntryUpdated EventType = "entry.updated"
	EventEntryDeleted EventType = "entry.deleted"
)

// EntryEvent is published after an entry write commits.
type EntryEvent struct {
	Type    EventType `json:"type"`
	EntryID string    `json:"entryId"`
	UserID  string    `json:"userId"`
	At      time.Time `json:"at"`
}
