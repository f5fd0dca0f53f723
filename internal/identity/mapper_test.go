package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vn.io.arda/rolesync/internal/domain"
	"vn.io.arda/rolesync/internal/identity"
)

func TestDeriveCapturedGroup(t *testing.T) {
	m, err := identity.NewMapper(`^(.+)@example\.com$`, "$1")
	require.NoError(t, err)

	user, err := m.Derive("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", user)
}

func TestDeriveIsDeterministic(t *testing.T) {
	m, err := identity.NewMapper(`^(.+)@example\.com$`, "svc_$1")
	require.NoError(t, err)

	first, err := m.Derive("bob@example.com")
	require.NoError(t, err)
	second, err := m.Derive("bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDerivePassthroughDefault(t *testing.T) {
	m, err := identity.NewMapper(`^(.*)$`, "$1")
	require.NoError(t, err)

	user, err := m.Derive("carol@example.org")
	require.NoError(t, err)
	assert.Equal(t, "carol@example.org", user)
}

func TestDeriveMismatchWrapsSentinel(t *testing.T) {
	m, err := identity.NewMapper(`^(.+)@example\.com$`, "$1")
	require.NoError(t, err)

	_, err = m.Derive("mallory@other.org")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIdentityMismatch)
}

func TestDeriveMustMatchFromStart(t *testing.T) {
	m, err := identity.NewMapper(`bob`, "robert")
	require.NoError(t, err)

	// The pattern occurs in the identity but not at the first byte.
	_, err = m.Derive("alice-bob@example.com")
	assert.ErrorIs(t, err, domain.ErrIdentityMismatch)

	// An unanchored pattern matching at the start leaves the tail intact.
	user, err := m.Derive("bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "robert@example.com", user)
}

func TestNewMapperRejectsInvalidPattern(t *testing.T) {
	_, err := identity.NewMapper(`[unclosed`, "$1")
	assert.Error(t, err)
}
