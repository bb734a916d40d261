package service

import (
	"context"

	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"
)

// OAuthIdentity is the provider-asserted identity extracted from a verified
// ID token.
type OAuthIdentity struct {
	Provider      entity.Provider // Which provider asserted the identity.
	Subject       string          // The provider's stable user identifier (e.g. Google's 'sub').
	Email         string
	EmailVerified bool
	Name          string
	Picture       string // Avatar URL, if the provider supplies one.
}

// OAuthVerifier validates a provider-issued ID token and extracts the
// asserted identity. Implementations are provider-specific.
type OAuthVerifier interface {
	// VerifyIDToken checks the token's claims (issuer, audience, expiry,
	// email verification) and returns the identity it asserts.
	VerifyIDToken(ctx context.Context, idToken string) (*OAuthIdentity, error)
}
