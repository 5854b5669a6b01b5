package domain

import (
	"time"
)

// EntryType is the closed set of entry kinds.
type EntryType string

const (
	EntryTypeJournal   EntryType = "journal"
	EntryTypeDream     EntryType = "dream"
	EntryTypeHighlight EntryType = "highlight"
	EntryTypeIdea      EntryType = "idea"
	EntryTypeWisdom    EntryType = "wisdom"
	EntryTypeNote      EntryType = "note"
)

// EntryTypes lists every entry type in display order.
var EntryTypes = []EntryType{
	EntryTypeJournal,
	EntryTypeDream,
	EntryTypeHighlight,
	EntryTypeIdea,
	EntryTypeWisdom,
	EntryTypeNote,
}

func (t EntryType) Valid() bool {
	for _, known := range EntryTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Entry is a single journaled item together with its derived relations.
type Entry struct {
	ID          string              `json:"id"`
	UserID      string              `json:"userId"`
	Type        EntryType           `json:"type"`
	Title       *string             `json:"title,omitempty"`
	Content     *string             `json:"content,omitempty"`
	IsStarred   bool                `json:"isStarred"`
	EditorMode  string              `json:"editorMode,omitempty"`
	Metadata    map[string]any      `json:"metadata"`
	Tags        []Tag               `json:"tags"`
	People      []Person            `json:"people"`
	Attachments []AttachmentSummary `json:"attachments"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	DeletedAt   *time.Time          `json:"deletedAt,omitempty"`
}

// NewEntry is the row written by the sync engine.
type NewEntry struct {
	ID         string
	UserID     string
	Type       EntryType
	Title      *string
	Content    *string
	IsStarred  bool
	EditorMode string
	Metadata   map[string]any
	TagIDs     []string
	PersonIDs  []string
	CreatedAt  time.Time
}

// EntryPatch carries the columns an update rewrites. Nil fields are left untouched,
// nil relation slices leave the relation untouched.
type EntryPatch struct {
	Title     *string
	Content   *string
	IsStarred *bool
	Metadata  map[string]any
	TagIDs    []string
	PersonIDs []string
}

// EntryFilter selects entries for the query engine.
type EntryFilter struct {
	UserID    string
	Type      *EntryType
	IsStarred *bool
	Search    string
	TagIDs    []string
	PersonIDs []string
	DateFrom  *time.Time
	DateTo    *time.Time
	Cursor    string
	Limit     int
}

// EntryPage is one page of a cursor-paginated listing.
type EntryPage struct {
	Entries    []Entry `json:"entries"`
	NextCursor *string `json:"nextCursor,omitempty"`
}
