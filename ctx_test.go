package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardkit/auth"
)

func TestIdentityRoundTrip(t *testing.T) {
	identity := auth.NewRequestIdentity("walter@example.com")
	require.NotNil(t, identity)
	assert.Equal(t, "walter@example.com", identity.Subject)
	assert.NotNil(t, identity.Authorities)
	assert.Empty(t, identity.Authorities)

	ctx := auth.WithIdentity(context.Background(), identity)

	got, ok := auth.IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, identity, got)
}

func TestIdentityFromContextAnonymous(t *testing.T) {
	got, ok := auth.IdentityFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestIdentityFromContextEmptySubject(t *testing.T) {
	ctx := auth.WithIdentity(context.Background(), &auth.RequestIdentity{})
	got, ok := auth.IdentityFromContext(ctx)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestIdentityFromContextNilIdentity(t *testing.T) {
	ctx := auth.WithIdentity(context.Background(), nil)
	_, ok := auth.IdentityFromContext(ctx)
	assert.False(t, ok)
}
