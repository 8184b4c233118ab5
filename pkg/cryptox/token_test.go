package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	for _, size := range []int{TokenSize128, TokenSize256, 24} {
		token, err := GenerateToken(size)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		other, err := GenerateToken(size)
		require.NoError(t, err)
		require.NotEqual(t, token, other, "tokens should be unique")
	}

	_, err := GenerateToken(0)
	require.Error(t, err)
}

func TestNewTicketFingerprintMatches(t *testing.T) {
	ticket, fp, err := NewTicket()
	require.NoError(t, err)
	require.Len(t, ticket, 43)
	require.Equal(t, FingerprintToken(ticket), fp)
	require.NotEqual(t, ticket, fp)
}

func TestFingerprintToken(t *testing.T) {
	require.Equal(t, FingerprintToken("a"), FingerprintToken("a"))
	require.NotEqual(t, FingerprintToken("a"), FingerprintToken("b"))
	require.Len(t, FingerprintToken("a"), 43)
}

func TestSecretsEqual(t *testing.T) {
	require.True(t, SecretsEqual("cron-secret", "cron-secret"))
	require.False(t, SecretsEqual("cron-secret", "cron-secreT"))
	require.False(t, SecretsEqual("", "x"))
}
