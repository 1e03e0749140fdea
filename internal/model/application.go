package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var (
	// ApplicationStatusPending indicates that the application is waiting for review
	ApplicationStatusPending = "pending"
	// ApplicationStatusReviewing indicates that the company has started reviewing
	ApplicationStatusReviewing = "reviewing"
	// ApplicationStatusAccepted indicates that the applicant got the position
	ApplicationStatusAccepted = "accepted"
	// ApplicationStatusRejected indicates that the application has been rejected
	ApplicationStatusRejected = "rejected"
	// ApplicationStatusWithdrawn indicates that the applicant withdrew the application
	ApplicationStatusWithdrawn = "withdrawn"
)

// allowedTransitions holds for each status the statuses reachable from it.
// Terminal statuses (accepted, rejected, withdrawn) have no outgoing edges.
var allowedTransitions = map[string][]string{
	ApplicationStatusPending:   {ApplicationStatusReviewing, ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusWithdrawn},
	ApplicationStatusReviewing: {ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusWithdrawn},
}

// IsTerminalStatus reports whether no further transition is permitted from status.
func IsTerminalStatus(status string) bool {
	return lo.Contains([]string{
		ApplicationStatusAccepted,
		ApplicationStatusRejected,
		ApplicationStatusWithdrawn,
	}, status)
}

// CanTransition reports whether the state machine permits moving from one
// application status to another.
func CanTransition(from, to string) bool {
	return lo.Contains(allowedTransitions[from], to)
}

// Application represents a job application record
type Application struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// PostID references JobPost.ID
	PostID  uint    `gorm:"not null;index;uniqueIndex:idx_post_applicant" json:"post_id"`
	JobPost JobPost `gorm:"foreignKey:PostID;references:ID" json:"-"`

	// ApplicantID references User.ID
	ApplicantID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_post_applicant" json:"applicant_id"`
	Applicant   User      `gorm:"foreignKey:ApplicantID;references:ID" json:"-"`

	Status      string    `gorm:"type:text;not null" json:"status"`
	AppliedAt   time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"applied_at"`
	LastUpdated time.Time `gorm:"type:timestamp" json:"last_updated"`

	Answers   []ApplicationAnswer   `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"answers"`
	Documents []ApplicationDocument `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"documents"`
	History   []ApplicationEvent    `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"history"`
}

// ApplicationAnswer is one screening question and the applicant's response
type ApplicationAnswer struct {
	ID            uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	ApplicationID uint   `gorm:"not null;index" json:"-"`
	Question      string `gorm:"type:text" json:"question"`
	Response      string `gorm:"type:text" json:"response"`
}

// ApplicationDocument binds a required-document label to an uploaded file
type ApplicationDocument struct {
	ID            uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	ApplicationID uint   `gorm:"not null;index" json:"-"`
	Label         string `gorm:"type:text;not null" json:"label"`
	FileID        uint   `gorm:"not null" json:"file_id"`
	File          File   `gorm:"foreignKey:FileID;references:ID" json:"-"`
}

// ApplicationEvent is one entry of an application's append-only history log.
// Rows are only ever inserted, never updated or deleted.
type ApplicationEvent struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	ApplicationID uint      `gorm:"not null;index" json:"-"`
	Status        string    `gorm:"type:text;not null" json:"status"`
	Feedback      *string   `gorm:"type:text" json:"feedback,omitempty"`
	CreatedAt     time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"created_at"`
}
