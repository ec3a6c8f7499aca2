package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = Params{Time: 1, Memory: 8 * 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

func TestHashPassword(t *testing.T) {
	svc := NewService(testParams)

	hash, err := svc.HashPassword("hunter2hunter")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash.Encoded, "$argon2id$v=19$m=8192,t=1,p=1$"))
	assert.NotContains(t, hash.Encoded, "hunter2hunter")
	assert.NotEqual(t, []byte("hunter2hunter"), hash.Raw)
	assert.Len(t, hash.Raw, 32)

	ok, err := svc.VerifyPassword(hash.Encoded, "hunter2hunter")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyPassword(hash.Encoded, "hunter2hunteR")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_SaltDiffers(t *testing.T) {
	svc := NewService(testParams)

	a, err := svc.HashPassword("same-password")
	require.NoError(t, err)
	b, err := svc.HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a.Encoded, b.Encoded)
}

func TestVerifyPassword_UsesStoredParams(t *testing.T) {
	old := NewService(testParams)
	hash, err := old.HashPassword("password123")
	require.NoError(t, err)

	current := NewService(Params{Time: 3, Memory: 16 * 1024, Threads: 2, SaltLen: 16, KeyLen: 32})
	ok, err := current.VerifyPassword(hash.Encoded, "password123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	svc := NewService(testParams)

	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"plaintext", "plaintext"},
		{"argon2i variant", "$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5"},
		{"wrong version", "$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5"},
		{"garbled version", "$argon2id$v=x$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5"},
		{"garbled params", "$argon2id$v=19$m=x,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5"},
		{"truncated salt", "$argon2id$v=19$m=8192,t=1,p=1$c2Fsd$a2V5"},
		{"salt not base64", "$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5"},
		{"key not base64", "$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0$a2V"},
		{"missing key", "$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := svc.VerifyPassword(tt.encoded, "password123")
			assert.ErrorIs(t, err, ErrMalformedHash)
			assert.False(t, ok)
		})
	}
}

func TestHashPassword_RawMatchesEncoded(t *testing.T) {
	svc := NewService(testParams)

	hash, err := svc.HashPassword("hunter2hunter")
	require.NoError(t, err)

	parts := strings.Split(hash.Encoded, "$")
	require.Len(t, parts, 6)
	assert.Equal(t, base64.RawStdEncoding.EncodeToString(hash.Raw), parts[5])
}

func TestTokens(t *testing.T) {
	svc := NewService(testParams)

	token := svc.Token()
	long := svc.LongToken()

	assert.Len(t, token, 28)
	assert.Len(t, long, 52)
	for _, r := range token + long {
		assert.True(t, strings.ContainsRune(alphanumeric, r), "unexpected rune %q", r)
	}

	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		tok := svc.Token()
		_, dup := seen[tok]
		require.False(t, dup)
		seen[tok] = struct{}{}
	}
}

func TestConfirmationCode(t *testing.T) {
	svc := NewService(testParams)
	require.NotEmpty(t, svc.words)

	dictionary := make(map[string]struct{}, len(svc.words))
	for _, w := range svc.words {
		dictionary[w] = struct{}{}
	}

	code := svc.ConfirmationCode()
	parts := strings.Split(code, "-")
	require.Len(t, parts, 4)
	for _, p := range parts {
		assert.Contains(t, dictionary, p)
	}
	assert.GreaterOrEqual(t, len(code), 7)
}
