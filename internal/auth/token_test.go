package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, exp, err := tm.GenerateToken("principal-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	subject, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "principal-1", subject)
}

func TestParseExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Millisecond)

	token, _, err := tm.GenerateToken("principal-1")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = tm.ParseToken(token)
	require.Error(t, err)
}

func TestParseTokenWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, _, err := issuer.GenerateToken("principal-1")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	require.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tm.ParseToken(input)
		require.Error(t, err, "input %q", input)
	}
}

func TestParseTamperedToken(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, _, err := tm.GenerateToken("principal-1")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = tm.ParseToken(tampered)
	require.Error(t, err)
}
