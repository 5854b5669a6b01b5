package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/totegamma/daybook/internal/usecase"
)

// Store hands out repositories bound to one gorm handle, either the root pool or a transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Entries() usecase.EntryRepository {
	return NewEntryRepository(s.db)
}

func (s *Store) Tags() usecase.MentionRepository {
	return newTagRepository(s.db)
}

func (s *Store) People() usecase.MentionRepository {
	return newPersonRepository(s.db)
}

func (s *Store) Activity() usecase.ActivityRepository {
	return NewActivityRepository(s.db)
}

func (s *Store) Streaks() usecase.StreakRepository {
	return NewStreakRepository(s.db)
}

func (s *Store) Attachments() usecase.AttachmentRepository {
	return NewAttachmentRepository(s.db)
}

func (s *Store) Transaction(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, tx usecase.Store) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx})
	})
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

var _ usecase.Store = (*Store)(nil)
