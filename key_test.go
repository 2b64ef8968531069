package fieldseal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewKey_CopiesSecret(t *testing.T) {
	secret := testSecret("v1")
	key := NewKey(secret)

	// Mutating the caller's buffer must not affect the key
	secret[0] = 0xFF
	require.NotEqual(t, secret[0], key.Secret()[0])
}

func TestNewKey_DerivedID(t *testing.T) {
	k1 := NewKey(testSecret("v1"))
	k2 := NewKey(testSecret("v1"))
	k3 := NewKey(testSecret("v2"))

	require.Len(t, k1.ID(), keyIDLength)
	require.Equal(t, k1.ID(), k2.ID(), "equal secrets share an identifier")
	require.NotEqual(t, k1.ID(), k3.ID())
}

func TestNewKeyWithID(t *testing.T) {
	key := NewKeyWithID(testSecret("v1"), "vault:v3")
	require.Equal(t, "vault:v3", key.ID())
}

func TestKey_Clone_IndependentSecret(t *testing.T) {
	key := testKeyFor("v1")
	copied := key.clone()

	copied.secret[0] = 0xFF
	require.NotEqual(t, copied.secret[0], key.secret[0])
	require.Equal(t, key.ID(), copied.ID())
}

func TestKey_WithReference(t *testing.T) {
	key := testKeyFor("v1")
	require.Empty(t, key.Tags().KeyID)

	tagged := key.withReference()
	require.Equal(t, key.ID(), tagged.Tags().KeyID)
	// The original is unchanged
	require.Empty(t, key.Tags().KeyID)
}
