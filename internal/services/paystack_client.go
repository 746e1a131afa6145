// internal/services/paystack_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/beathaus/beathaus-backend/internal/config"
	"github.com/beathaus/beathaus-backend/internal/utils"
)

// PaystackClient wraps the two gateway touchpoints this system uses:
// outbound transaction initialization and inbound webhook authentication.
type PaystackClient struct {
	cfg    config.PaystackConfig
	client *http.Client
}

type InitializeRequest struct {
	Email       string                 `json:"email"`
	Amount      int64                  `json:"amount"` // settlement currency minor units
	Currency    string                 `json:"currency"`
	Reference   string                 `json:"reference"`
	CallbackURL string                 `json:"callback_url,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type InitializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// WebhookEvent is the notification body posted by the gateway.
type WebhookEvent struct {
	Event string           `json:"event"`
	Data  WebhookEventData `json:"data"`
}

type WebhookEventData struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    int64           `json:"amount"` // minor units
	Currency  string          `json:"currency"`
	Metadata  WebhookMetadata `json:"metadata"`
}

type WebhookMetadata struct {
	PaymentID uint   `json:"payment_id"`
	UserID    uint   `json:"user_id"`
	ItemType  string `json:"item_type"`
	ItemID    uint   `json:"item_id"`
	FileType  string `json:"file_type"`
}

func NewPaystackClient(cfg config.PaystackConfig) *PaystackClient {
	return &PaystackClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// Initialize opens a hosted checkout session and returns the gateway
// response. Transport failures and gateway-reported failures both surface as
// ErrGateway so callers can treat the pending payment as retryable.
func (p *PaystackClient) Initialize(req *InitializeRequest) (*InitializeResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode initialize request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, p.cfg.BaseURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build initialize request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	var initResp InitializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&initResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrGateway, err)
	}

	if resp.StatusCode != http.StatusOK || !initResp.Status || initResp.Data.AuthorizationURL == "" {
		return nil, fmt.Errorf("%w: %s", ErrGateway, initResp.Message)
	}

	return &initResp, nil
}

// VerifySignature authenticates an inbound webhook body against the
// x-paystack-signature header (hex HMAC-SHA512 under the secret key).
func (p *PaystackClient) VerifySignature(body []byte, signature string) bool {
	return utils.VerifyWebhookSignature(p.cfg.SecretKey, body, signature)
}

// ParseEvent decodes a verified webhook body.
func ParseEvent(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to decode webhook event: %w", err)
	}
	return &event, nil
}
