package models

import (
	"time"
)

// User defines the user profile model based on the 'users' table.
// A profile is keyed 1:1 to the authenticated principal; profiles that
// arrive through the OAuth callback have no username or password until
// the one-time setup flow completes.
type User struct {
	ID             int64      `json:"id" db:"id" example:"1"`
	Email          string     `json:"email" db:"email" example:"jdoe@campus.edu.tr"`
	Username       *string    `json:"username,omitempty" db:"username"`
	Password       *string    `json:"-" db:"password"` // Hashed, nil until setup for OAuth arrivals
	FirstName      string     `json:"firstName" db:"first_name" example:"John"`
	LastName       string     `json:"lastName" db:"last_name" example:"Doe"`
	Role           Role       `json:"role" db:"role" example:"STUDENT"`
	Department     *string    `json:"department,omitempty" db:"department"`
	Phone          *string    `json:"phone,omitempty" db:"phone"`
	GraduationYear *int       `json:"graduationYear,omitempty" db:"graduation_year"`
	GPA            *float64   `json:"gpa,omitempty" db:"gpa"`
	ExternalID     *string    `json:"-" db:"external_id"` // Opaque identity-provider subject
	EmailVerified  bool       `json:"emailVerified" db:"email_verified"`
	IsActive       bool       `json:"isActive" db:"is_active" example:"true"`
	SetupComplete  bool       `json:"setupComplete" db:"setup_complete"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

// FullName returns the display name used for denormalized snapshots.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
