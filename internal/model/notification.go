package model

import (
	"time"

	"github.com/google/uuid"
)

var (
	// NotificationKindNewApplication is sent to the company when someone applies
	NotificationKindNewApplication = "new_application"
	// NotificationKindStatusChanged is sent to the applicant when their application moves
	NotificationKindStatusChanged = "status_changed"
)

// Notification is one message delivered to a single recipient as a side
// effect of an application state change. Recipients can only mark it read.
type Notification struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Recipient   User      `gorm:"foreignKey:RecipientID;references:ID" json:"-"`

	Kind    string `gorm:"type:text;not null" json:"kind"`
	Title   string `gorm:"type:text" json:"title"`
	Message string `gorm:"type:text" json:"message"`
	Read    bool   `gorm:"not null;default:false" json:"read"`

	CreatedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"created_at"`
}
