package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/taskscope/internal/models"
)

func TestGenerateSigningKey(t *testing.T) {
	privatePEM, publicPEM, err := GenerateSigningKey()
	require.NoError(t, err)
	require.Contains(t, privatePEM, "BEGIN EC PRIVATE KEY")
	require.Contains(t, publicPEM, "BEGIN PUBLIC KEY")
	require.NoError(t, VerifyKeyPair(privatePEM, publicPEM))

	verifier, err := NewJWTVerifier(publicPEM)
	require.NoError(t, err)

	caller := testCaller(models.RoleAdmin)
	token, err := IssueToken(privatePEM, caller, time.Minute)
	require.NoError(t, err)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, caller, got)
}

func TestVerifyKeyPair_mismatch(t *testing.T) {
	privatePEM, _ := generateKeyPairPEM(t)
	_, otherPublicPEM := generateKeyPairPEM(t)

	require.ErrorContains(t, VerifyKeyPair(privatePEM, otherPublicPEM), "public keys do not match")
	require.Error(t, VerifyKeyPair("not a key", otherPublicPEM))
	require.Error(t, VerifyKeyPair(privatePEM, "not a key"))
}
