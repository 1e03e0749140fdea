// Package model contain gorm model for recording data to database
package model

import (
	"time"

	"github.com/google/uuid"
)

var (
	// RoleApplicant is the role of job-seeking users
	RoleApplicant = "applicant"
	// RoleCompany is the role of company users that own job posts
	RoleCompany = "company"
	// RoleAdmin is the role of platform administrators
	RoleAdmin = "admin"
)

// User is the gorm model for every account on the platform regardless of role
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Username string    `gorm:"uniqueIndex;not null" json:"username"`
	Email    *string   `json:"email"`
	Tel      *string   `json:"tel"`
	Password string    `gorm:"type:text" json:"-"`
	Role     string    `gorm:"type:text;not null" json:"role"`

	CreatedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"created_at"`
}
