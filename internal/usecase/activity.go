package usecase

import (
	"context"
	"time"

	"github.com/totegamma/daybook/internal/domain"
)

// ActivityService maintains the per-day write counters. It holds no state; every call works on
// the Store it is handed so it composes into the caller's transaction.
type ActivityService struct{}

func NewActivityService() *ActivityService {
	return &ActivityService{}
}

// LogActivity counts one written entry of entryType on day. Counts are never decremented.
func (s *ActivityService) LogActivity(ctx context.Context, tx Store, userID string, entryType domain.EntryType, day time.Time) error {
	return tx.Activity().Increment(ctx, userID, day, entryType)
}

// GetHeatmapData returns the raw daily logs within [from, to], ascending by date.
func (s *ActivityService) GetHeatmapData(ctx context.Context, store Store, userID string, from, to time.Time) ([]domain.ActivityLog, error) {
	if to.Before(from) {
		return nil, domain.ValidationError{
			Message: "invalid range",
			Fields:  []domain.FieldError{{Field: "to", Message: "must not be before from"}},
		}
	}
	return store.Activity().Range(ctx, userID, from, to)
}
