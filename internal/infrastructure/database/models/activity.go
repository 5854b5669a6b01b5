package models

import (
	"time"

	"gorm.io/datatypes"
)

type ActivityLog struct {
	ID         string                             `json:"id" gorm:"primaryKey;type:text"`
	UserID     string                             `json:"userId" gorm:"type:text;not null;uniqueIndex:idx_activity_user_date,priority:1"`
	Date       time.Time                          `json:"date" gorm:"not null;uniqueIndex:idx_activity_user_date,priority:2"`
	EntryCount int                                `json:"entryCount" gorm:"not null;default:0"`
	EntryTypes datatypes.JSONType[map[string]int] `json:"entryTypes"`
	CreatedAt  time.Time                          `json:"createdAt" gorm:"not null"`
	UpdatedAt  time.Time                          `json:"updatedAt" gorm:"not null"`
}

type Streak struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	UserID    string    `json:"userId" gorm:"type:text;not null;index;uniqueIndex:idx_streaks_one_active,where:is_active"`
	StartDate time.Time `json:"startDate" gorm:"not null"`
	EndDate   time.Time `json:"endDate" gorm:"not null"`
	Length    int       `json:"length" gorm:"not null;default:1"`
	IsActive  bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null"`
}
