// server/internal/models/common.go
package models

import "time"

// Party holds contact details for a sender or receiver on a delivery.
type Party struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone" json:"phone"`
}

// HistoryEntry is one append-only record in a delivery's status history.
type HistoryEntry struct {
	Status        string    `bson:"status" json:"status"`
	Location      string    `bson:"location,omitempty" json:"location,omitempty"`
	Timestamp     time.Time `bson:"timestamp" json:"timestamp"`
	Notes         string    `bson:"notes,omitempty" json:"notes,omitempty"`
	UpdatedBy     string    `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	UpdatedByRole string    `bson:"updatedByRole,omitempty" json:"updatedByRole,omitempty"` // "admin", "partner", "system"
}

// MediaPointer references an uploaded document (refund evidence) stored on S3.
type MediaPointer struct {
	ID       string `bson:"id" json:"id"`
	URL      string `bson:"url" json:"url"`
	FileName string `bson:"fileName" json:"fileName"`
	FileType string `bson:"fileType" json:"fileType"` // e.g. "image/png", "image/jpeg"
}
