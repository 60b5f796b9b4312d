package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSecret(t *testing.T, raw string) Secret {
	t.Helper()
	s, err := NewSecret(raw)
	require.NoError(t, err)
	return s
}

func TestVerifyRoundTrip(t *testing.T) {
	secret := mustSecret(t, "hush")
	bodies := [][]byte{
		[]byte(`{"shop_id":42,"shop_domain":"demo.myshopify.com"}`),
		[]byte(""),
		[]byte("not json at all"),
		{0x00, 0xff, 0x10},
	}
	for _, body := range bodies {
		assert.True(t, Verify(body, Sign(body, secret), secret), "body %q", body)
	}
}

func TestVerifyKnownVector(t *testing.T) {
	// echo -n 'hello' | openssl dgst -sha256 -hmac secret -binary | base64
	secret := mustSecret(t, "secret")
	assert.Equal(t, "iKqz7ejTrflNJquQ07r9SiCDBww7zOnAFO4EpEOEfAs=", Sign([]byte("hello"), secret))
}

func TestVerifyRejectsBodyMutation(t *testing.T) {
	secret := mustSecret(t, "hush")
	body := []byte(`{"shop_id":42}`)
	sig := Sign(body, secret)
	for i := range body {
		mutated := append([]byte(nil), body...)
		mutated[i] ^= 0x01
		assert.False(t, Verify(mutated, sig, secret), "byte %d", i)
	}
}

func TestVerifyRejectsHeaderMutation(t *testing.T) {
	secret := mustSecret(t, "hush")
	body := []byte(`{"shop_id":42}`)
	sig := Sign(body, secret)
	for i := range sig {
		mutated := []byte(sig)
		mutated[i] ^= 0x01
		assert.False(t, Verify(body, string(mutated), secret), "byte %d", i)
	}
}

func TestVerifyRejectsEmptyAndWrongSecret(t *testing.T) {
	secret := mustSecret(t, "hush")
	body := []byte(`{}`)
	assert.False(t, Verify(body, "", secret))
	assert.False(t, Verify(body, Sign(body, mustSecret(t, "other")), secret))
	assert.False(t, Verify(body, Sign(body, secret), Secret{}))

	_, err := NewSecret("")
	assert.Error(t, err)
}
