// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core identity in the system: one member of the movie club.
// A user may carry a password credential, one or more linked OAuth accounts,
// or both. PasswordHash is empty for OAuth-only accounts.
type User struct {
	ID           uuid.UUID // The unique identifier for the user.
	Email        string    // Primary contact email, also the login identifier.
	Name         string    // Display name shown in the club UI.
	Image        string    // Avatar URL, usually sourced from an OAuth provider.
	PasswordHash string    // bcrypt hash of the password; empty when the user only signs in via OAuth.
	CreatedAt    time.Time // Timestamp of when this account was created.
	UpdatedAt    time.Time // Timestamp of the last modification to this user's data.
}

// HasPassword reports whether the user can authenticate with a password.
// OAuth-only accounts carry no password credential at all.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
