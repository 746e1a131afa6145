// internal/handlers/purchase_test.go
package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/beathaus/beathaus-backend/internal/config"
	"github.com/beathaus/beathaus-backend/internal/services"
	"github.com/beathaus/beathaus-backend/internal/utils"
)

const webhookSecret = "sk_test_webhook"

func newWebhookRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	paystack := services.NewPaystackClient(config.PaystackConfig{SecretKey: webhookSecret, Timeout: 1})
	fulfillment := services.NewFulfillmentService(nil, paystack, nil)
	handler := NewPurchaseHandler(nil, nil, fulfillment, nil)

	router := gin.New()
	router.POST("/v1/webhooks/paystack", handler.Webhook)
	return router
}

func postWebhook(router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, "/v1/webhooks/paystack", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("x-paystack-signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	router := newWebhookRouter()
	body := []byte(`{"event":"charge.success","data":{"status":"success"}}`)

	w := postWebhook(router, body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookRejectsForgedSignature(t *testing.T) {
	router := newWebhookRouter()
	body := []byte(`{"event":"charge.success","data":{"status":"success"}}`)

	w := postWebhook(router, body, "0011deadbeef")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookRejectsTamperedBody(t *testing.T) {
	router := newWebhookRouter()

	signed := []byte(`{"event":"charge.success","data":{"amount":520000}}`)
	signature := utils.SignWebhookPayload(webhookSecret, signed)

	tampered := []byte(`{"event":"charge.success","data":{"amount":1}}`)
	w := postWebhook(router, tampered, signature)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookAcksIrrelevantEvent(t *testing.T) {
	router := newWebhookRouter()

	body := []byte(`{"event":"subscription.create","data":{}}`)
	w := postWebhook(router, body, utils.SignWebhookPayload(webhookSecret, body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
}
