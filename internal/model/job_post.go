package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

var (
	// JobStatusActive indicates the post accepts new applications
	JobStatusActive = "active"
	// JobStatusInactive indicates the post is paused or expired
	JobStatusInactive = "inactive"
	// JobStatusFilled indicates the applicant cap has been reached
	JobStatusFilled = "filled"
)

// EditableJobPostInfo is part of job post that can be edited
type EditableJobPostInfo struct {
	Title    string         `gorm:"type:text" json:"title"`
	Desc     string         `gorm:"type:text" json:"desc"`
	Req      string         `gorm:"type:text" json:"req"`
	Location string         `gorm:"type:text" json:"location"`
	Type     string         `gorm:"type:text" json:"type"`
	Salary   string         `gorm:"type:text" json:"salary"`
	Tags     pq.StringArray `gorm:"type:text[]" json:"tags"`
	Expiring *time.Time     `gorm:"type:timestamp" json:"expiring,omitempty"`

	// MaxApplicants caps the number of active applications, 0 means uncapped
	MaxApplicants      int            `gorm:"not null;default:0" json:"max_applicants"`
	RequiredDocuments  pq.StringArray `gorm:"type:text[]" json:"required_documents"`
	ScreeningQuestions pq.StringArray `gorm:"type:text[]" json:"screening_questions"`
}

// JobPost is gorm model for store job post data in DB
type JobPost struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;->" json:"id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index;<-:create" json:"company_id"`
	Company   User      `gorm:"foreignKey:CompanyID;references:ID" json:"-"`

	EditableJobPostInfo

	Status string `gorm:"type:text;not null;default:active" json:"status"`

	// CurrentApplicants is the active slot count: applications in
	// pending/reviewing/accepted. Mutated only by the admission layer.
	CurrentApplicants int `gorm:"not null;default:0" json:"current_applicants"`

	PostTime     time.Time     `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"post_time"`
	Applications []Application `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"applications,omitempty"`
}

// HasDuplicateDocumentLabels reports whether RequiredDocuments contains the
// same label twice. Labels must be unique.
func (j *JobPost) HasDuplicateDocumentLabels() bool {
	return len(lo.Uniq([]string(j.RequiredDocuments))) != len(j.RequiredDocuments)
}

// IsUncapped reports whether the post accepts an unlimited number of applicants.
func (j *JobPost) IsUncapped() bool {
	return j.MaxApplicants == 0
}
