package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPasswordService returns a PasswordService with bcrypt cost 4,
// the minimum the library accepts.
func newTestPasswordService() *PasswordService {
	return newPasswordServiceWithCost(4)
}

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("pw")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"), "Hash() does not look like a bcrypt hash: %q", hash)
	assert.NotContains(t, hash, "pw")
}

func TestHash_SamePasswordProducesDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")

	assert.NotEqual(t, hash1, hash2, "salt must be random")
}

func TestHash_PasswordLengthLimit(t *testing.T) {
	ps := newTestPasswordService()

	_, err := ps.Hash(strings.Repeat("a", 73))
	assert.Error(t, err, "73 bytes must be rejected")

	_, err = ps.Hash(strings.Repeat("a", 72))
	assert.NoError(t, err, "72 bytes is the bcrypt maximum")
}

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()
	hash, err := ps.Hash("the-real-password")
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		password string
		wantErr  bool
		mismatch bool
	}{
		{name: "correct", hash: hash, password: "the-real-password"},
		{name: "wrong", hash: hash, password: "the-wrong-password", wantErr: true, mismatch: true},
		{name: "empty", hash: hash, password: "", wantErr: true, mismatch: true},
		{name: "garbage hash", hash: "not-a-valid-bcrypt-hash", password: "pw", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ps.Verify(tt.hash, tt.password)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.mismatch, errors.Is(err, ErrPasswordMismatch))
		})
	}
}

func TestHashVerify_RoundTrip(t *testing.T) {
	ps := newTestPasswordService()

	cases := []struct {
		name     string
		password string
	}{
		{"simple alphanumeric", "hello123"},
		{"special characters", "p@$$w0rd!#%"},
		{"unicode", "пароль-密码"},
		{"whitespace", "  leading and trailing  "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hash, err := ps.Hash(tc.password)
			require.NoError(t, err)
			assert.NoError(t, ps.Verify(hash, tc.password))
		})
	}
}

func TestBurnTime_DoesNotPanic(t *testing.T) {
	ps := newTestPasswordService()
	assert.NotPanics(t, func() { ps.BurnTime("anything") })
}
