// internal/services/fulfillment_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beathaus/beathaus-backend/internal/config"
	"github.com/beathaus/beathaus-backend/internal/utils"
)

// The service under test gets no database handle: every case below must be
// decided before any record is touched.
func newSignatureOnlyFulfillment(secret string) *FulfillmentService {
	paystack := NewPaystackClient(config.PaystackConfig{SecretKey: secret, Timeout: 1})
	return NewFulfillmentService(nil, paystack, nil)
}

func TestHandleEventRejectsBadSignature(t *testing.T) {
	svc := newSignatureOnlyFulfillment("sk_test_abc")
	body := []byte(`{"event":"charge.success","data":{"reference":"BEAT_MP3_12_1716720000","status":"success"}}`)

	err := svc.HandleEvent(body, "not-the-right-signature")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	err = svc.HandleEvent(body, "")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHandleEventRejectsTamperedBody(t *testing.T) {
	secret := "sk_test_abc"
	svc := newSignatureOnlyFulfillment(secret)

	original := []byte(`{"event":"charge.success","data":{"amount":520000}}`)
	signature := utils.SignWebhookPayload(secret, original)

	tampered := []byte(`{"event":"charge.success","data":{"amount":1}}`)
	err := svc.HandleEvent(tampered, signature)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHandleEventIgnoresUnknownEventTypes(t *testing.T) {
	secret := "sk_test_abc"
	svc := newSignatureOnlyFulfillment(secret)

	body := []byte(`{"event":"transfer.success","data":{"reference":"TRF_1"}}`)
	err := svc.HandleEvent(body, utils.SignWebhookPayload(secret, body))
	assert.NoError(t, err)
}

func TestHandleEventAcksUnparseableBody(t *testing.T) {
	secret := "sk_test_abc"
	svc := newSignatureOnlyFulfillment(secret)

	// Correctly signed garbage is acknowledged, not retried forever.
	body := []byte(`this is not json`)
	err := svc.HandleEvent(body, utils.SignWebhookPayload(secret, body))
	assert.NoError(t, err)
}

func TestIsSuccessStatus(t *testing.T) {
	assert.True(t, isSuccessStatus("success"))
	assert.True(t, isSuccessStatus("successful"))
	assert.False(t, isSuccessStatus("failed"))
	assert.False(t, isSuccessStatus("abandoned"))
	assert.False(t, isSuccessStatus(""))
}
