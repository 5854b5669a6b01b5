package domain

import "time"

// Tag is a #mention vocabulary item owned by a user.
type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Color     *string   `json:"color,omitempty"`
	Group     *string   `json:"group,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Person is an @mention vocabulary item owned by a user.
type Person struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Group     *string   `json:"group,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MentionKind distinguishes the two vocabularies.
type MentionKind string

const (
	MentionKindTag    MentionKind = "tag"
	MentionKindPerson MentionKind = "person"
)

// Mention is the kind-agnostic view of a Tag or Person used by the vocabulary store.
type Mention struct {
	ID        string
	UserID    string
	Name      string
	Color     *string
	Group     *string
	CreatedAt time.Time
}

// MentionPatch updates user-editable vocabulary fields.
type MentionPatch struct {
	Color *string
	Group *string
}

func (m Mention) Tag() Tag {
	return Tag{ID: m.ID, UserID: m.UserID, Name: m.Name, Color: m.Color, Group: m.Group, CreatedAt: m.CreatedAt}
}

func (m Mention) Person() Person {
	return Person{ID: m.ID, UserID: m.UserID, Name: m.Name, Group: m.Group, CreatedAt: m.CreatedAt}
}
