// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered user in the system.
// Every recipe, tag and ingredient is owned by exactly one user.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Email is the user's login identifier. It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Name is the display name shown on the profile.
	Name string `gorm:"size:255;not null;default:''"`

	// Password is the bcrypt hash of the user's password.
	// Plaintext passwords are never stored or returned.
	Password string `gorm:"size:255;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserUpdate holds the profile fields to change. Nil fields are left untouched.
// Password must already be hashed when it reaches the repository.
type UserUpdate struct {
	Email    *string
	Name     *string
	Password *string
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Email == nil && u.Name == nil && u.Password == nil
}
