// internal/utils/crypto_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event":"charge.success","data":{"reference":"BEAT_MP3_12_1716720000"}}`)

	signature := SignWebhookPayload(secret, body)
	assert.True(t, VerifyWebhookSignature(secret, body, signature))

	// Any byte of the body changing invalidates the signature.
	tampered := append([]byte{}, body...)
	tampered[len(tampered)-2] = 'X'
	assert.False(t, VerifyWebhookSignature(secret, tampered, signature))

	// Wrong secret, empty and garbage signatures all fail.
	assert.False(t, VerifyWebhookSignature("other_secret", body, signature))
	assert.False(t, VerifyWebhookSignature(secret, body, ""))
	assert.False(t, VerifyWebhookSignature(secret, body, "deadbeef"))
}

func TestGenerateRandomString(t *testing.T) {
	a, err := GenerateRandomString(16)
	assert.NoError(t, err)
	assert.Len(t, a, 16)

	b, err := GenerateRandomString(16)
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}
