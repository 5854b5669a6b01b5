package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/daybook/internal/domain"
	"github.com/totegamma/daybook/internal/infrastructure/database/models"
)

type StreakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{db: db}
}

// Active returns the user's open streak or nil. The row stays locked until the surrounding
// transaction ends, which serializes concurrent writers for the same user.
func (r *StreakRepository) Active(ctx context.Context, userID string) (*domain.Streak, error) {
	var row models.Streak
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	streak := toDomainStreak(row)
	return &streak, nil
}

// Create inserts an open streak unless one already exists. Writers that raced past Active's lock
// on a missing row land on the partial unique index and skip the insert.
func (r *StreakRepository) Create(ctx context.Context, streak domain.Streak) (bool, error) {
	row := models.Streak{
		ID:        streak.ID,
		UserID:    streak.UserID,
		StartDate: streak.StartDate.UTC(),
		EndDate:   streak.EndDate.UTC(),
		Length:    streak.Length,
		IsActive:  true,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "user_id"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "is_active"}}},
			DoNothing:   true,
		}).
		Create(&row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *StreakRepository) Extend(ctx context.Context, id string, endDate time.Time, length int) error {
	return r.db.WithContext(ctx).
		Model(&models.Streak{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"end_date": endDate.UTC(),
			"length":   length,
		}).Error
}

func (r *StreakRepository) Close(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.Streak{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *StreakRepository) Longest(ctx context.Context, userID string) (int, error) {
	var longest int
	err := r.db.WithContext(ctx).
		Model(&models.Streak{}).
		Select("COALESCE(MAX(length), 0)").
		Where("user_id = ?", userID).
		Scan(&longest).Error
	return longest, err
}

func toDomainStreak(row models.Streak) domain.Streak {
	return domain.Streak{
		ID:        row.ID,
		UserID:    row.UserID,
		StartDate: row.StartDate.UTC(),
		EndDate:   row.EndDate.UTC(),
		Length:    row.Length,
		IsActive:  row.IsActive,
	}
}
