package model

import (
	"time"

	"github.com/google/uuid"
)

// File represents an uploaded binary artifact. When cloud storage is enabled
// the bytes live in the bucket under StorageObjectName and Content stays nil;
// otherwise Content holds the bytes inline.
type File struct {
	ID      uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`

	DisplayName string    `gorm:"type:text" json:"display_name"`
	ByteSize    int64     `gorm:"not null;default:0" json:"byte_size"`
	MimeType    string    `gorm:"type:text" json:"mime_type"`
	Extension   string    `gorm:"type:text" json:"extension"`
	UploadedAt  time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"uploaded_at"`

	Content           []byte  `json:"-"`
	StorageObjectName *string `gorm:"type:text" json:"-"`
}
