package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncryptor(t *testing.T) *Encryptor {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	enc, err := NewEncryptorFromBase64(key)
	require.NoError(t, err)
	return enc
}

func TestNewEncryptor(t *testing.T) {
	t.Run("valid key size", func(t *testing.T) {
		enc, err := NewEncryptor(make([]byte, 32))
		require.NoError(t, err)
		assert.NotNil(t, enc)
	})

	t.Run("too short", func(t *testing.T) {
		enc, err := NewEncryptor(make([]byte, 16))
		assert.ErrorIs(t, err, ErrInvalidKeySize)
		assert.Nil(t, enc)
	})

	t.Run("invalid base64", func(t *testing.T) {
		enc, err := NewEncryptorFromBase64("not-valid-base64!!!")
		assert.Error(t, err)
		assert.Nil(t, enc)
	})

	t.Run("base64 with trailing newline", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString(make([]byte, 32))
		_, err := NewEncryptorFromBase64(encoded + "\n")
		assert.NoError(t, err)
	})
}

func TestEncryptor_SealOpen(t *testing.T) {
	enc := newTestEncryptor(t)

	sealed, err := enc.Seal("wk-token-1234")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, SealedPrefix))
	assert.NotContains(t, sealed, "wk-token-1234")

	opened, err := enc.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "wk-token-1234", opened)

	again, err := enc.Seal("wk-token-1234")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ between seals")
}

func TestEncryptor_EmptyAndPlaintext(t *testing.T) {
	enc := newTestEncryptor(t)

	sealed, err := enc.Seal("")
	require.NoError(t, err)
	assert.Empty(t, sealed)

	opened, err := enc.Open("legacy-plaintext")
	require.NoError(t, err)
	assert.Equal(t, "legacy-plaintext", opened)
}

func TestEncryptor_Nil(t *testing.T) {
	var enc *Encryptor

	sealed, err := enc.Seal("token")
	require.NoError(t, err)
	assert.Equal(t, "token", sealed)

	_, err = enc.Open(SealedPrefix + "AAAA")
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestEncryptor_WrongKey(t *testing.T) {
	sealed, err := newTestEncryptor(t).Seal("token")
	require.NoError(t, err)

	_, err = newTestEncryptor(t).Open(sealed)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestEncryptor_Malformed(t *testing.T) {
	enc := newTestEncryptor(t)

	_, err := enc.Open(SealedPrefix + "!!!")
	assert.Error(t, err)

	_, err = enc.Open(SealedPrefix + base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestGenerateKey(t *testing.T) {
	key1, err := GenerateKey()
	require.NoError(t, err)
	key2, err := GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, key1, key2)

	decoded, err := base64.StdEncoding.DecodeString(key1)
	require.NoError(t, err)
	assert.Len(t, decoded, KeySize)
}
