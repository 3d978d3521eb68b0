package random

import (
	"crypto/rand"
	"encoding/base64"
)

// Random provides random token generation that can be mocked for testing
type Random interface {
	// Token returns n random bytes encoded as unpadded base64url
	Token(n int) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// TokenLength returns the encoded length of a token built from n bytes
func TokenLength(n int) int {
	return base64.RawURLEncoding.EncodedLen(n)
}

// Token returns n bytes from crypto/rand encoded as unpadded base64url
func (r *CryptoRandom) Token(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	// crypto/rand.Read never returns an error on supported platforms
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
