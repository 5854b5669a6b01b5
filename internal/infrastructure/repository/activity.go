package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/daybook/internal/domain"
	"github.com/totegamma/daybook/internal/infrastructure/database/models"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Increment bumps the day's counters, creating the row on first write.
func (r *ActivityRepository) Increment(ctx context.Context, userID string, day time.Time, entryType domain.EntryType) error {
	db := r.db.WithContext(ctx)
	day = day.UTC()

	seed := models.ActivityLog{
		ID:         uuid.NewString(),
		UserID:     userID,
		Date:       day,
		EntryTypes: datatypes.NewJSONType(map[string]int{}),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(&seed).Error
	if err != nil {
		return err
	}

	var row models.ActivityLog
	err = db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND date = ?", userID, day).
		Take(&row).Error
	if err != nil {
		return err
	}

	counts := map[string]int{}
	for k, v := range row.EntryTypes.Data() {
		counts[k] = v
	}
	counts[string(entryType)]++

	return db.Model(&models.ActivityLog{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"entry_count": gorm.Expr("entry_count + ?", 1),
			"entry_types": datatypes.NewJSONType(counts),
		}).Error
}

func (r *ActivityRepository) Range(ctx context.Context, userID string, from, to time.Time) ([]domain.ActivityLog, error) {
	var rows []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from.UTC(), to.UTC()).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	logs := make([]domain.ActivityLog, 0, len(rows))
	for _, row := range rows {
		types := row.EntryTypes.Data()
		if types == nil {
			types = map[string]int{}
		}
		logs = append(logs, domain.ActivityLog{
			UserID:     row.UserID,
			Date:       row.Date.UTC(),
			EntryCount: row.EntryCount,
			EntryTypes: types,
		})
	}
	return logs, nil
}
