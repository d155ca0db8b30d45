package domain

import "context"

// Identity is a verified caller identity, produced once per request by the
// IdentityVerifier. It is never persisted directly; records reference UID.
type Identity struct {
	UID   string
	Email string
}

type identityContextKey struct{}

// WithIdentity returns a context carrying the verified identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext returns the authenticated identity from the context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// IdentityVerifier validates a bearer credential and returns the verified
// identity, or ErrUnauthorized. Implementations must support a mode that
// skips revocation/expiry checks for non-production environments.
type IdentityVerifier interface {
	Verify(token string) (Identity, error)
}
