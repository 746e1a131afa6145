// internal/services/fulfillment_pipeline_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/beathaus/beathaus-backend/internal/config"
	"github.com/beathaus/beathaus-backend/internal/models"
	"github.com/beathaus/beathaus-backend/internal/utils"
)

const pipelineSecret = "sk_test_pipeline"

func newFulfillmentWithDB(t *testing.T, db *gorm.DB) *FulfillmentService {
	t.Helper()

	storage, err := NewStorageService(&config.Config{})
	require.NoError(t, err)
	paystack := NewPaystackClient(config.PaystackConfig{SecretKey: pipelineSecret, Timeout: 1})
	return NewFulfillmentService(db, paystack, NewContractService(storage))
}

func signedChargeEvent(event, status string, paymentID uint, amountMinor int64) ([]byte, string) {
	body := []byte(fmt.Sprintf(
		`{"event":%q,"data":{"reference":"","status":%q,"amount":%d,"currency":"KES","metadata":{"payment_id":%d}}}`,
		event, status, amountMinor, paymentID,
	))
	return body, utils.SignWebhookPayload(pipelineSecret, body)
}

func TestHandleEventFulfillsBeatPurchaseExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	svc := newFulfillmentWithDB(t, db)

	producer := createUser(t, db, "Kaha", "kaha@example.com", models.RoleProducer)
	buyer := createUser(t, db, "Wanjiru", "wanjiru@example.com", models.RoleBuyer)
	beat := createBeat(t, db, producer.ID, "Nairobi Nights", map[models.FileType]float64{
		models.FileTypeMP3: 50,
	})
	require.NoError(t, db.Create(&models.ContractTemplate{
		BeatID:       beat.ID,
		FileType:     models.FileTypeMP3,
		ContractType: "non-exclusive lease",
		Terms:        "Up to 5,000 streams.",
	}).Error)

	code := "LAUNCH20"
	discount := &models.Discount{Code: &code, Percentage: 20, IsActive: true}
	require.NoError(t, db.Create(discount).Error)

	payment := &models.Payment{
		UserID:     buyer.ID,
		Amount:     40,
		Currency:   "USD",
		Method:     "paystack",
		Status:     models.PaymentStatusPending,
		FileType:   models.FileTypeMP3,
		BeatID:     &beat.ID,
		DiscountID: &discount.ID,
	}
	require.NoError(t, db.Create(payment).Error)

	body, signature := signedChargeEvent("charge.success", "success", payment.ID, 520000)
	require.NoError(t, svc.HandleEvent(body, signature))

	var got models.Payment
	require.NoError(t, db.First(&got, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusSuccess, got.Status)
	assert.InDelta(t, 5200.0, got.PaidAmount, 0.001)
	assert.Equal(t, "KES", got.PaidCurrency)
	assert.NotNil(t, got.PaidAt)

	var sale models.Sale
	require.NoError(t, db.Where("buyer_id = ? AND beat_id = ?", buyer.ID, beat.ID).First(&sale).Error)
	assert.Equal(t, producer.ID, sale.ProducerID)
	assert.Equal(t, models.FileTypeMP3, sale.FileType)
	require.NotNil(t, sale.ContractID)

	var contract models.Contract
	require.NoError(t, db.First(&contract, *sale.ContractID).Error)
	assert.Equal(t, "non-exclusive lease", contract.ContractType)
	assert.NotEmpty(t, contract.ContractURL)

	require.NoError(t, db.First(discount, discount.ID).Error)
	assert.Equal(t, 1, discount.UsedCount)

	// The gateway redelivers the same event. Nothing may change.
	require.NoError(t, svc.HandleEvent(body, signature))

	var saleCount, contractCount int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&saleCount).Error)
	require.NoError(t, db.Model(&models.Contract{}).Count(&contractCount).Error)
	assert.Equal(t, int64(1), saleCount)
	assert.Equal(t, int64(1), contractCount)

	require.NoError(t, db.First(discount, discount.ID).Error)
	assert.Equal(t, 1, discount.UsedCount)
}

func TestHandleEventExclusivePurchaseFlipsCatalogFlag(t *testing.T) {
	db := newTestDB(t)
	svc := newFulfillmentWithDB(t, db)

	producer := createUser(t, db, "Kaha", "kaha@example.com", models.RoleProducer)
	first := createUser(t, db, "Wanjiru", "wanjiru@example.com", models.RoleBuyer)
	second := createUser(t, db, "Otieno", "otieno@example.com", models.RoleBuyer)
	beat := createBeat(t, db, producer.ID, "Last Matatu", map[models.FileType]float64{
		models.FileTypeExclusive: 300,
	})

	payment := &models.Payment{
		UserID:   first.ID,
		Amount:   300,
		Currency: "USD",
		Method:   "paystack",
		Status:   models.PaymentStatusPending,
		FileType: models.FileTypeExclusive,
		BeatID:   &beat.ID,
	}
	require.NoError(t, db.Create(payment).Error)

	body, signature := signedChargeEvent("charge.success", "success", payment.ID, 3900000)
	require.NoError(t, svc.HandleEvent(body, signature))

	require.NoError(t, db.First(beat, beat.ID).Error)
	assert.True(t, beat.IsSoldExclusive)

	// A second exclusive payment was pending when the first one won. Its
	// delivery must roll back without granting anything.
	late := &models.Payment{
		UserID:   second.ID,
		Amount:   300,
		Currency: "USD",
		Method:   "paystack",
		Status:   models.PaymentStatusPending,
		FileType: models.FileTypeExclusive,
		BeatID:   &beat.ID,
	}
	require.NoError(t, db.Create(late).Error)

	body, signature = signedChargeEvent("charge.success", "success", late.ID, 3900000)
	err := svc.HandleEvent(body, signature)
	assert.ErrorIs(t, err, ErrExclusiveSold)

	require.NoError(t, db.First(late, late.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, late.Status)

	var saleCount int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&saleCount).Error)
	assert.Equal(t, int64(1), saleCount)
}

func TestHandleEventMarksPendingPaymentFailed(t *testing.T) {
	db := newTestDB(t)
	svc := newFulfillmentWithDB(t, db)

	producer := createUser(t, db, "Kaha", "kaha@example.com", models.RoleProducer)
	buyer := createUser(t, db, "Wanjiru", "wanjiru@example.com", models.RoleBuyer)
	beat := createBeat(t, db, producer.ID, "Nairobi Nights", map[models.FileType]float64{
		models.FileTypeMP3: 50,
	})

	payment := &models.Payment{
		UserID:   buyer.ID,
		Amount:   50,
		Currency: "USD",
		Method:   "paystack",
		Status:   models.PaymentStatusPending,
		FileType: models.FileTypeMP3,
		BeatID:   &beat.ID,
	}
	require.NoError(t, db.Create(payment).Error)

	body, signature := signedChargeEvent("charge.failed", "failed", payment.ID, 650000)
	require.NoError(t, svc.HandleEvent(body, signature))

	require.NoError(t, db.First(payment, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)

	var saleCount int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&saleCount).Error)
	assert.Equal(t, int64(0), saleCount)
}

func TestMarkFailedNeverOverwritesSuccess(t *testing.T) {
	db := newTestDB(t)
	svc := newFulfillmentWithDB(t, db)

	buyer := createUser(t, db, "Wanjiru", "wanjiru@example.com", models.RoleBuyer)
	payment := &models.Payment{
		UserID:   buyer.ID,
		Amount:   50,
		Currency: "USD",
		Method:   "paystack",
		Status:   models.PaymentStatusSuccess,
		FileType: models.FileTypeMP3,
	}
	require.NoError(t, db.Create(payment).Error)

	// A failure delivery raced the success and lost: it still holds the
	// payment as it looked before the success committed.
	stale := *payment
	stale.Status = models.PaymentStatusPending
	require.NoError(t, svc.markFailed(&stale, "failed"))

	require.NoError(t, db.First(payment, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusSuccess, payment.Status)
}
