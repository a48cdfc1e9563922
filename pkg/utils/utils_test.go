package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret"

	token, err := GenerateToken(secret, "17", "admin", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "17", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "postpilot", claims.Issuer)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", "17", "user", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken("secret-b", token)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", "17", "user", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken("secret", token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-jwt")
	assert.Error(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	plaintext := "social-account-access-token"

	sealed, err := Encrypt([]byte(plaintext), key)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, sealed)

	opened, err := Decrypt(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestEncryptProducesFreshNonce(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	a, err := Encrypt([]byte("same input"), key)
	require.NoError(t, err)
	b, err := Encrypt([]byte("same input"), key)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDecryptWrongKeyFails(t *testing.T) {
	sealed, err := Encrypt([]byte("token"), []byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	_, err = Decrypt(sealed, []byte("fedcba9876543210fedcba9876543210"))
	assert.Error(t, err)
}

func TestDecryptRejectsShortCiphertext(t *testing.T) {
	_, err := Decrypt("YWJj", []byte("0123456789abcdef0123456789abcdef"))
	assert.Error(t, err)
}

func TestEncryptRejectsBadKeyLength(t *testing.T) {
	_, err := Encrypt([]byte("token"), []byte("short"))
	assert.Error(t, err)
}

func TestGenerateRandomKey(t *testing.T) {
	a, err := GenerateRandomKey(32)
	require.NoError(t, err)
	b, err := GenerateRandomKey(32)
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
