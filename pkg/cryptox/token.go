package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

const (
	// TokenSize128 is 16 bytes of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 is 32 bytes of entropy (43 chars base64url). Used for
	// invitation tickets.
	TokenSize256 = 32
)

// GenerateToken returns size random bytes as an unpadded base64url string.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken is the deterministic SHA-256 digest stored in place of a
// ticket, so rows can be looked up without keeping the ticket itself.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// NewTicket generates an acceptance ticket and its fingerprint.
func NewTicket() (ticket, fingerprint string, err error) {
	ticket, err = GenerateToken(TokenSize256)
	if err != nil {
		return "", "", err
	}
	return ticket, FingerprintToken(ticket), nil
}

// SecretsEqual compares two shared secrets in constant time.
func SecretsEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
