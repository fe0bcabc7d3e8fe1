package encryption

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestEncryptor(t *testing.T) *Encryptor {
	t.Helper()

	key := make([]byte, 32)
	iv := make([]byte, 16)
	_, err := rand.Read(key)
	require.NoError(t, err)
	_, err = rand.Read(iv)
	require.NoError(t, err)

	enc, err := New(base64.StdEncoding.EncodeToString(key), base64.StdEncoding.EncodeToString(iv))
	require.NoError(t, err)
	return enc
}

func TestEncryptor_RoundTrip(t *testing.T) {
	enc := newTestEncryptor(t)

	inputs := []string{
		"",
		"a",
		"user@example.com",
		"a-username-with-exactly-32-chars",
		"längre sträng med åäö och unicode ✓",
	}

	for _, plain := range inputs {
		cipherText, err := enc.Encrypt(plain)
		require.NoError(t, err)

		got, err := enc.Decrypt(cipherText)
		require.NoError(t, err)
		require.Equal(t, plain, got)
	}
}

func TestEncryptor_Deterministic(t *testing.T) {
	enc := newTestEncryptor(t)

	first, err := enc.Encrypt("user@example.com")
	require.NoError(t, err)
	second, err := enc.Encrypt("user@example.com")
	require.NoError(t, err)

	// Ciphertext equality is what deactivated-account lookups rely on.
	require.Equal(t, first, second)
}

func TestEncryptor_DecryptRejectsGarbage(t *testing.T) {
	enc := newTestEncryptor(t)

	for _, input := range []string{
		"not base64 at all!!!",
		base64.StdEncoding.EncodeToString([]byte("short")),
		"",
	} {
		_, err := enc.Decrypt(input)
		require.ErrorIs(t, err, ErrInvalidCiphertext)
	}
}

func TestEncryptor_DecryptWithWrongKeyFails(t *testing.T) {
	enc := newTestEncryptor(t)
	other := newTestEncryptor(t)

	cipherText, err := enc.Encrypt("user@example.com")
	require.NoError(t, err)

	got, err := other.Decrypt(cipherText)
	if err == nil {
		// CBC padding can survive a wrong key by chance; the plaintext must
		// still not match.
		require.NotEqual(t, "user@example.com", got)
	} else {
		require.ErrorIs(t, err, ErrInvalidCiphertext)
	}
}

func TestNew_ValidatesKeyMaterial(t *testing.T) {
	iv := base64.StdEncoding.EncodeToString(make([]byte, 16))

	_, err := New("%%%", iv)
	require.Error(t, err)

	_, err = New(base64.StdEncoding.EncodeToString(make([]byte, 10)), iv)
	require.Error(t, err)

	_, err = New(base64.StdEncoding.EncodeToString(make([]byte, 32)), base64.StdEncoding.EncodeToString(make([]byte, 8)))
	require.Error(t, err)
}
