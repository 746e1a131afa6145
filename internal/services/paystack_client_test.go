// internal/services/paystack_client_test.go
package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beathaus/beathaus-backend/internal/config"
	"github.com/beathaus/beathaus-backend/internal/utils"
)

func paystackConfig(baseURL string) config.PaystackConfig {
	return config.PaystackConfig{
		SecretKey: "sk_test_abc",
		BaseURL:   baseURL,
		Timeout:   2,
	}
}

func TestInitializeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))

		var req InitializeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(520000), req.Amount)
		assert.Equal(t, "KES", req.Currency)
		assert.Equal(t, "BEAT_MP3_12_1716720000", req.Reference)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]string{
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code":       "abc123",
				"reference":         req.Reference,
			},
		})
	}))
	defer server.Close()

	client := NewPaystackClient(paystackConfig(server.URL))
	resp, err := client.Initialize(&InitializeRequest{
		Email:     "buyer@example.com",
		Amount:    520000,
		Currency:  "KES",
		Reference: "BEAT_MP3_12_1716720000",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc123", resp.Data.AuthorizationURL)
	assert.Equal(t, "abc123", resp.Data.AccessCode)
}

func TestInitializeGatewayFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer server.Close()

	client := NewPaystackClient(paystackConfig(server.URL))
	_, err := client.Initialize(&InitializeRequest{Email: "buyer@example.com", Amount: 100})
	assert.ErrorIs(t, err, ErrGateway)
}

func TestInitializeUnreachableGateway(t *testing.T) {
	client := NewPaystackClient(paystackConfig("http://127.0.0.1:1"))
	_, err := client.Initialize(&InitializeRequest{Email: "buyer@example.com", Amount: 100})
	assert.ErrorIs(t, err, ErrGateway)
}

func TestVerifySignature(t *testing.T) {
	client := NewPaystackClient(paystackConfig("http://unused"))
	body := []byte(`{"event":"charge.success"}`)

	good := utils.SignWebhookPayload("sk_test_abc", body)
	assert.True(t, client.VerifySignature(body, good))
	assert.False(t, client.VerifySignature(body, "bogus"))
	assert.False(t, client.VerifySignature(body, ""))
}

func TestParseEvent(t *testing.T) {
	body := []byte(`{
		"event": "charge.success",
		"data": {
			"reference": "BEAT_MP3_12_1716720000",
			"status": "success",
			"amount": 520000,
			"currency": "KES",
			"metadata": {"payment_id": 12, "user_id": 3, "item_type": "beat", "item_id": 9, "file_type": "mp3"}
		}
	}`)

	event, err := ParseEvent(body)
	require.NoError(t, err)
	assert.Equal(t, "charge.success", event.Event)
	assert.Equal(t, uint(12), event.Data.Metadata.PaymentID)
	assert.Equal(t, int64(520000), event.Data.Amount)
	assert.Equal(t, "KES", event.Data.Currency)
}
