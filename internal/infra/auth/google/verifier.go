// Package google verifies Google Sign-In ID tokens.
package google

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/mhtoin/movieclub-start-sub000/config"
	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"
	"github.com/mhtoin/movieclub-start-sub000/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

	// Google rotates its signing keys; cached keys are refetched after this
	// interval, or immediately when a token names an unknown kid.
	jwksCacheTTL = time.Hour
)

// idTokenClaims are the Google ID-token claims this service cares about.
type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

// jwk is a single entry in Google's JWKS document. Only RSA signing keys
// are kept.
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// verifier implements service.OAuthVerifier for Google ID tokens.
type verifier struct {
	clientID string
	jwksURL  string
	client   *http.Client
	logger   *slog.Logger

	keyMutex   sync.RWMutex
	keys       map[string]*rsa.PublicKey
	keysExpiry time.Time
}

// NewVerifier is the constructor for the Google ID-token verifier.
func NewVerifier(cfg *config.Config, logger *slog.Logger) service.OAuthVerifier {
	clientID := ""
	if cfg.GoogleOAuth != nil {
		clientID = cfg.GoogleOAuth.ClientID
	}

	return &verifier{
		clientID: clientID,
		jwksURL:  googleJWKSURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// VerifyIDToken checks the token's RS256 signature against Google's published
// signing keys, then checks its claims and returns the identity it asserts.
// The token comes from the request body, so nothing in it is trusted until
// the signature holds.
func (v *verifier) VerifyIDToken(ctx context.Context, idToken string) (*service.OAuthIdentity, error) {
	claims := new(idTokenClaims)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))

	_, err := parser.ParseWithClaims(idToken, claims, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid header")
		}

		return v.signingKey(ctx, kid)
	})
	if err != nil {
		v.logger.Warn("Google ID token rejected", "error", err)

		return nil, errors.Wrap(err, "invalid ID token")
	}

	if err := v.checkClaims(claims); err != nil {
		v.logger.Warn("Google ID token rejected", "error", err)

		return nil, errors.Wrap(err, "token verification failed")
	}

	return &service.OAuthIdentity{
		Provider:      entity.ProviderGoogle,
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}

func (v *verifier) checkClaims(claims *idTokenClaims) error {
	if claims.Issuer != "https://accounts.google.com" && claims.Issuer != "accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", claims.Issuer)
	}

	audienceOK := false
	for _, aud := range claims.Audience {
		if aud == v.clientID {
			audienceOK = true

			break
		}
	}
	if !audienceOK {
		return errors.Errorf("invalid audience, expected %s", v.clientID)
	}

	if claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
		return errors.New("token expired")
	}

	if claims.Subject == "" {
		return errors.New("missing subject")
	}

	if !claims.EmailVerified {
		return errors.New("email not verified")
	}

	return nil
}

// signingKey returns the cached public key for kid, refetching the JWKS
// document when the cache is stale or the kid is unknown.
func (v *verifier) signingKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.keyMutex.RLock()
	key, ok := v.keys[kid]
	fresh := time.Now().Before(v.keysExpiry)
	v.keyMutex.RUnlock()

	if ok && fresh {
		return key, nil
	}

	if err := v.refreshKeys(ctx); err != nil {
		return nil, err
	}

	v.keyMutex.RLock()
	defer v.keyMutex.RUnlock()

	key, ok = v.keys[kid]
	if !ok {
		return nil, errors.Errorf("no Google signing key for kid %s", kid)
	}

	return key, nil
}

// refreshKeys fetches Google's JWKS document and replaces the cached key set.
func (v *verifier) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create JWKS request")
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to fetch Google signing keys")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return errors.Errorf("JWKS request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var doc struct {
		Keys []jwk `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return errors.Wrap(err, "failed to decode JWKS response")
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}

		pub, err := k.publicKey()
		if err != nil {
			return errors.Wrapf(err, "malformed JWKS key %s", k.Kid)
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("JWKS response contained no RSA keys")
	}

	v.keyMutex.Lock()
	v.keys = keys
	v.keysExpiry = time.Now().Add(jwksCacheTTL)
	v.keyMutex.Unlock()

	return nil
}

// publicKey decodes the base64url modulus and exponent into an RSA public key.
func (k jwk) publicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, errors.Wrap(err, "invalid modulus")
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, errors.Wrap(err, "invalid exponent")
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}

	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}
