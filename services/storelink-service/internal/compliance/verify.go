package compliance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// Secret is the shared app secret used to sign webhook bodies.
// Build it once at startup; it is never mutated afterwards.
type Secret struct {
	key []byte
}

func NewSecret(raw string) (Secret, error) {
	if raw == "" {
		return Secret{}, errors.New("webhook secret is empty")
	}
	return Secret{key: []byte(raw)}, nil
}

func (s Secret) IsZero() bool { return len(s.key) == 0 }

// Sign returns base64(HMAC-SHA256(secret, body)), the value the platform puts
// in the signature header.
func Sign(rawBody []byte, secret Secret) string {
	mac := hmac.New(sha256.New, secret.key)
	mac.Write(rawBody)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signatureHeader is the signature of rawBody.
// rawBody must be the bytes exactly as received.
func Verify(rawBody []byte, signatureHeader string, secret Secret) bool {
	if signatureHeader == "" || secret.IsZero() {
		return false
	}
	expected := Sign(rawBody, secret)
	return hmac.Equal([]byte(signatureHeader), []byte(expected))
}
