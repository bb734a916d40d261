package entity

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies an external OAuth identity provider.
type Provider string

const (
	// ProviderGoogle is Google Sign-In.
	ProviderGoogle Provider = "google"
	// ProviderGitHub is GitHub OAuth.
	ProviderGitHub Provider = "github"
)

// Account links an external OAuth identity to a local user.
// The pair (Provider, ProviderAccountID) is unique and resolves to exactly
// one UserID.
type Account struct {
	ID                uuid.UUID  // The unique ID for this account link itself.
	UserID            uuid.UUID  // The local user this external identity belongs to.
	Provider          Provider   // Which provider issued the identity, e.g. "google".
	ProviderAccountID string     // The provider's stable subject identifier for the user.
	AccessToken       string     // Provider access token, if the flow handed one over.
	RefreshToken      string     // Provider refresh token, optional.
	TokenExpiresAt    *time.Time // Expiry of the provider access token, optional.
	CreatedAt         time.Time  // When this identity was linked.
}
