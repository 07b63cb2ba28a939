// Package auth authenticates users of the board service and attaches an
// identity to every inbound request.
//
// Accounts come from two credential origins: a locally owned password
// and a Google-issued identity token. Both flows end in the same place,
// a stateless HS256 session token with a fixed one hour TTL that the
// rest of the service consumes as a bearer credential. There is no
// session store and no revocation; expiry is the only lifecycle event.
//
// The middleware in middleware/jwtware populates a RequestIdentity when
// a valid token is present and otherwise lets the request through as
// anonymous. Endpoints that require a signed-in user check for the
// identity themselves.
package auth
