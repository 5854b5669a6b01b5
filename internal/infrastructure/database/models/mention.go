package models

import "time"

type Tag struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	UserID    string    `json:"userId" gorm:"type:text;not null;uniqueIndex:idx_tags_user_name,priority:1"`
	Name      string    `json:"name" gorm:"type:text;not null;uniqueIndex:idx_tags_user_name,priority:2"`
	Color     *string   `json:"color" gorm:"type:text"`
	Group     *string   `json:"group" gorm:"column:group_name;type:text"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}

type Person struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	UserID    string    `json:"userId" gorm:"type:text;not null;uniqueIndex:idx_people_user_name,priority:1"`
	Name      string    `json:"name" gorm:"type:text;not null;uniqueIndex:idx_people_user_name,priority:2"`
	Group     *string   `json:"group" gorm:"column:group_name;type:text"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}
