package auth

import "context"

var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// RequestIdentity is the per-request identity the middleware attaches
// after validating a bearer token. Each request owns its own value;
// nothing here is shared or mutated across requests.
type RequestIdentity struct {
	Subject     string
	Authorities []string
}

// NewRequestIdentity builds an identity for a verified subject with an
// empty authority set.
func NewRequestIdentity(subject string) *RequestIdentity {
	return &RequestIdentity{
		Subject:     subject,
		Authorities: []string{},
	}
}

// WithIdentity sets the RequestIdentity in the given context
func WithIdentity(ctx context.Context, identity *RequestIdentity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext finds the request identity from the context. The
// second return is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (*RequestIdentity, bool) {
	identity, ok := ctx.Value(identityCtxKey).(*RequestIdentity)
	if !ok || identity == nil || identity.Subject == "" {
		return nil, false
	}
	return identity, true
}
