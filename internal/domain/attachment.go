package domain

import "time"

// Attachment is an opaque file record hanging off an entry.
type Attachment struct {
	ID          string    `json:"id"`
	EntryID     string    `json:"entryId"`
	UserID      string    `json:"userId"`
	FileName    string    `json:"fileName"`
	ObjectKey   string    `json:"-"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AttachmentSummary is the projection embedded in entry reads.
type AttachmentSummary struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}
