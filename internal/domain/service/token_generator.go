package service

// TokenGenerator produces cryptographically random, human-legible
// identifiers. One generation yields a fixed-length string over a restricted
// alphabet; session ids, session secrets and reset-token values each come
// from an independent call.
type TokenGenerator interface {
	// GenerateID returns a fresh 24-character identifier. It never fails;
	// the secure random source is assumed always available.
	GenerateID() string
}
