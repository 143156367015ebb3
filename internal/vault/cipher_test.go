package vault

import (
	"epd/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *VaultCipher {
	t.Helper()
	kr, err := NewKeyring(keyringConfig(t.TempDir()), &testutil.MockLogger{})
	require.NoError(t, err)
	c, err := NewVaultCipher(kr)
	require.NoError(t, err)
	return c.(*VaultCipher)
}

func TestVaultCipher_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	plain := []byte(`{"childId":"c1"}`)
	sealed, err := c.Seal(plain)
	require.NoError(t, err)
	assert.NotEqual(t, plain, sealed)

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plain, opened)
}

func TestVaultCipher_NoncePerSeal(t *testing.T) {
	c := newTestCipher(t)

	first, err := c.Seal([]byte("payload"))
	require.NoError(t, err)
	second, err := c.Seal([]byte("payload"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVaultCipher_TamperDetected(t *testing.T) {
	c := newTestCipher(t)

	sealed, err := c.Seal([]byte("payload"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff

	_, err = c.Open(sealed)
	assert.Error(t, err)
}

func TestVaultCipher_TooShort(t *testing.T) {
	c := newTestCipher(t)
	_, err := c.Open([]byte("tiny"))
	assert.Error(t, err)
}

func TestVaultCipher_WrongKey(t *testing.T) {
	a := newTestCipher(t)
	b := newTestCipher(t)

	sealed, err := a.Seal([]byte("payload"))
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.Error(t, err)
}
