package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Entry struct {
	ID          string         `json:"id" gorm:"primaryKey;type:text"`
	UserID      string         `json:"userId" gorm:"type:text;not null;index:idx_entries_user_created,priority:1"`
	Type        string         `json:"type" gorm:"type:text;not null;index"`
	Title       *string        `json:"title" gorm:"type:varchar(200)"`
	Content     *string        `json:"content" gorm:"type:text"`
	IsStarred   bool           `json:"isStarred" gorm:"not null;default:false"`
	EditorMode  string         `json:"editorMode" gorm:"type:text"`
	Metadata    datatypes.JSON `json:"metadata"`
	Tags        []Tag          `json:"tags" gorm:"many2many:entry_tags;"`
	People      []Person       `json:"people" gorm:"many2many:entry_people;"`
	Attachments []Attachment   `json:"attachments" gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE;"`
	CreatedAt   time.Time      `json:"createdAt" gorm:"not null;index:idx_entries_user_created,priority:2"`
	UpdatedAt   time.Time      `json:"updatedAt" gorm:"not null"`
	DeletedAt   gorm.DeletedAt `json:"deletedAt" gorm:"index"`
}

type EntryTag struct {
	EntryID string `json:"entryId" gorm:"primaryKey;type:text"`
	TagID   string `json:"tagId" gorm:"primaryKey;type:text;index"`
}

type EntryPerson struct {
	EntryID  string `json:"entryId" gorm:"primaryKey;type:text"`
	PersonID string `json:"personId" gorm:"primaryKey;type:text;index"`
}

type Attachment struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text"`
	EntryID     string    `json:"entryId" gorm:"type:text;not null;index"`
	UserID      string    `json:"userId" gorm:"type:text;not null;index"`
	FileName    string    `json:"fileName" gorm:"type:text;not null"`
	ObjectKey   string    `json:"objectKey" gorm:"type:text;not null"`
	ContentType string    `json:"contentType" gorm:"type:text"`
	Size        int64     `json:"size"`
	URL         string    `json:"url" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt" gorm:"not null"`
}
