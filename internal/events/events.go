// Package events define the bus topics and payloads shared between the
// admission engine and its observers (notification dispatcher, realtime hub).
package events

import (
	"github.com/google/uuid"
)

// ApplicationSubmittedTopic carries ApplicationSubmitted events.
var ApplicationSubmittedTopic = "ApplicationSubmittedEvent"

// ApplicationStatusChangedTopic carries ApplicationStatusChanged events.
var ApplicationStatusChangedTopic = "ApplicationStatusChangedEvent"

// JobPostChangedTopic carries JobPostChanged events.
var JobPostChangedTopic = "JobPostChangedEvent"

// ApplicationSubmitted is published once per successful admission, after the
// transaction committed.
type ApplicationSubmitted struct {
	ApplicationID uint
	PostID        uint
	PostTitle     string
	ApplicantID   uuid.UUID
	CompanyID     uuid.UUID
	JobFilled     bool
}

// ApplicationStatusChanged is published once per successful status transition.
type ApplicationStatusChanged struct {
	ApplicationID uint
	PostID        uint
	PostTitle     string
	ApplicantID   uuid.UUID
	CompanyID     uuid.UUID
	OldStatus     string
	NewStatus     string
	Feedback      *string
}

// JobPostChanged is published when a post is created, edited, closed or deleted.
type JobPostChanged struct {
	PostID    uint
	CompanyID uuid.UUID
}
