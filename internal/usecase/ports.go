package usecase

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/totegamma/daybook/internal/domain"
)

// Store is the unit of work boundary. Repositories handed out by a Store share its database
// handle, so everything reached through the Store passed to a Transaction callback commits or
// rolls back together.
type Store interface {
	Entries() EntryRepository
	Tags() MentionRepository
	People() MentionRepository
	Activity() ActivityRepository
	Streaks() StreakRepository
	Attachments() AttachmentRepository

	// Transaction runs fn on a transaction bound Store. A positive timeout bounds the whole unit;
	// fn must issue its statements with the ctx it is handed.
	Transaction(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, tx Store) error) error
}

// EntryRepository persists entries. Reads only ever see live rows.
type EntryRepository interface {
	Create(ctx context.Context, entry domain.NewEntry) error
	Get(ctx context.Context, userID, id string) (domain.Entry, error)
	FindJournal(ctx context.Context, userID string, from, to time.Time) (domain.Entry, bool, error)
	Update(ctx context.Context, userID, id string, patch domain.EntryPatch) error
	SoftDelete(ctx context.Context, userID, id string, at time.Time) error
	List(ctx context.Context, filter domain.EntryFilter) ([]domain.Entry, error)
}

// MentionRepository is the per-user vocabulary of tags or people.
type MentionRepository interface {
	// Upsert inserts the missing names and returns the persisted rows for every name.
	Upsert(ctx context.Context, userID string, names []string) ([]domain.Mention, error)
	List(ctx context.Context, userID string) ([]domain.Mention, error)
	Update(ctx context.Context, userID, id string, patch domain.MentionPatch) (domain.Mention, error)
	Delete(ctx context.Context, userID, id string) error
}

type ActivityRepository interface {
	Increment(ctx context.Context, userID string, day time.Time, entryType domain.EntryType) error
	Range(ctx context.Context, userID string, from, to time.Time) ([]domain.ActivityLog, error)
}

type StreakRepository interface {
	// Active returns the open streak, locked for the rest of the transaction.
	Active(ctx context.Context, userID string) (*domain.Streak, error)
	// Create opens a streak. It reports false when the user already has an open streak.
	Create(ctx context.Context, streak domain.Streak) (bool, error)
	Extend(ctx context.Context, id string, endDate time.Time, length int) error
	Close(ctx context.Context, id string) error
	Longest(ctx context.Context, userID string) (int, error)
}

type AttachmentRepository interface {
	Create(ctx context.Context, attachment domain.Attachment) error
	Get(ctx context.Context, userID, id string) (domain.Attachment, error)
	Delete(ctx context.Context, userID, id string) error
}

// MetadataValidator checks type specific metadata.
type MetadataValidator interface {
	Validate(entryType domain.EntryType, raw json.RawMessage) (map[string]any, error)
}

// EventPublisher fans entry events out to live subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.EntryEvent) error
}

// StatsCache is a byte cache for derived statistics. A zero ttl never expires.
type StatsCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
}

// BlobStore keeps attachment payloads.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}
