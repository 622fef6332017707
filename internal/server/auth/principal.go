package auth

import (
	"context"

	"github.com/google/uuid"
)

// Principal is the request-scoped identity derived from a verified
// credential. It is immutable for the life of a request and is only
// constructed by a Verifier (or by NewStaticVerifier for single-tenant
// deployments).
type Principal struct {
	UserID uuid.UUID
	Email  string // optional, empty when the token carries no email claim
}

type ctxKey struct{}

// WithPrincipal returns a child context carrying the principal. The transport
// layer calls this once per request after verification.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFromContext extracts the principal placed by WithPrincipal.
// The second return is false when the request never passed verification.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
