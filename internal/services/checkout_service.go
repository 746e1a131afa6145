// internal/services/checkout_service.go
package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/beathaus/beathaus-backend/internal/models"
)

// CheckoutService is the payment-intent manager: it prices a purchase,
// records a pending Payment, and opens a hosted checkout session with the
// gateway.
type CheckoutService struct {
	db       *gorm.DB
	pricing  *PricingService
	paystack *PaystackClient
}

// CheckoutRequest is the purchase intent from the client. FileType names the
// license tier for beat purchases; soundpacks always settle to the pack tier
// so the field is ignored (and cleared before validation) for them.
type CheckoutRequest struct {
	ItemType     string `json:"item_type" validate:"required,item_type"`
	ItemID       uint   `json:"item_id" validate:"required"`
	FileType     string `json:"file_type" validate:"required_if=ItemType beat,omitempty,beat_file_type"`
	DiscountCode string `json:"discount_code,omitempty"`
	CallbackURL  string `json:"callback_url,omitempty"`
}

type CheckoutSession struct {
	PaymentURL string  `json:"payment_url"`
	AccessCode string  `json:"access_code"`
	Reference  string  `json:"reference"`
	PaymentID  uint    `json:"payment_id"`
	FileType   string  `json:"file_type"`
	AmountUSD  float64 `json:"amount_usd"`
	AmountKES  float64 `json:"amount_kes"`
	Currency   string  `json:"currency"`
}

func NewCheckoutService(db *gorm.DB, pricing *PricingService, paystack *PaystackClient) *CheckoutService {
	return &CheckoutService{
		db:       db,
		pricing:  pricing,
		paystack: paystack,
	}
}

// InitiateCheckout resolves the price, persists a pending Payment BEFORE the
// gateway is contacted, then asks the gateway for a checkout URL. A gateway
// failure leaves the Payment pending with no reference: the buyer simply
// retries, nothing needs rolling back.
func (s *CheckoutService) InitiateCheckout(buyer *models.User, req *CheckoutRequest) (*CheckoutSession, error) {
	itemType := models.ItemType(req.ItemType)
	fileType := models.FileType(req.FileType)
	if itemType == models.ItemTypeSoundPack {
		fileType = models.FileTypePack
	}

	quote, err := s.pricing.ResolvePrice(itemType, req.ItemID, fileType, req.DiscountCode)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		UserID:   buyer.ID,
		Amount:   quote.FinalPrice,
		Currency: "USD",
		Method:   "paystack",
		Status:   models.PaymentStatusPending,
		FileType: quote.FileType,
	}
	if itemType == models.ItemTypeBeat {
		payment.BeatID = &req.ItemID
	} else {
		payment.SoundPackID = &req.ItemID
	}
	if quote.AppliedDiscount != nil {
		payment.DiscountID = &quote.AppliedDiscount.ID
	}

	if err := s.db.Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	reference := BuildReference(itemType, quote.FileType, payment.ID, time.Now())

	initResp, err := s.paystack.Initialize(&InitializeRequest{
		Email:       buyer.Email,
		Amount:      quote.SettledMinor,
		Currency:    quote.Currency,
		Reference:   reference,
		CallbackURL: req.CallbackURL,
		Metadata: map[string]interface{}{
			"user_id":    buyer.ID,
			"item_type":  string(itemType),
			"item_id":    req.ItemID,
			"file_type":  string(quote.FileType),
			"payment_id": payment.ID,
			"price_usd":  quote.FinalPrice,
			"price_kes":  quote.SettledPrice,
		},
	})
	if err != nil {
		// Payment stays pending without a reference; the buyer can retry.
		logrus.WithError(err).WithField("payment_id", payment.ID).Error("Gateway initialize failed")
		return nil, err
	}

	if err := s.db.Model(payment).Update("transaction_ref", reference).Error; err != nil {
		return nil, fmt.Errorf("failed to store gateway reference: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"item_type":  itemType,
		"item_id":    req.ItemID,
		"file_type":  quote.FileType,
		"amount_usd": quote.FinalPrice,
		"amount_kes": quote.SettledPrice,
	}).Info("Checkout initiated")

	return &CheckoutSession{
		PaymentURL: initResp.Data.AuthorizationURL,
		AccessCode: initResp.Data.AccessCode,
		Reference:  reference,
		PaymentID:  payment.ID,
		FileType:   string(quote.FileType),
		AmountUSD:  quote.FinalPrice,
		AmountKES:  quote.SettledPrice,
		Currency:   quote.Currency,
	}, nil
}

// BuildReference encodes item type, file tier, payment id and timestamp into
// the gateway reference string, e.g. "BEAT_MP3_12_1716720000".
func BuildReference(itemType models.ItemType, fileType models.FileType, paymentID uint, now time.Time) string {
	return fmt.Sprintf("%s_%s_%d_%d",
		strings.ToUpper(string(itemType)),
		strings.ToUpper(string(fileType)),
		paymentID,
		now.Unix(),
	)
}

// ParseReference recovers the payment id embedded in a reference string.
// Used as the webhook fallback when metadata is missing.
func ParseReference(reference string) (uint, bool) {
	parts := strings.Split(reference, "_")
	if len(parts) != 4 {
		return 0, false
	}
	id, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
