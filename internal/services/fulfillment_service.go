// internal/services/fulfillment_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/beathaus/beathaus-backend/internal/models"
)

// FulfillmentService processes gateway webhook notifications. It is the only
// code path that moves a Payment out of pending, and everything it grants on
// success (sale record, contract, exclusivity flip, discount consumption)
// happens inside a single database transaction.
type FulfillmentService struct {
	db        *gorm.DB
	paystack  *PaystackClient
	contracts *ContractService
}

func NewFulfillmentService(db *gorm.DB, paystack *PaystackClient, contracts *ContractService) *FulfillmentService {
	return &FulfillmentService{
		db:        db,
		paystack:  paystack,
		contracts: contracts,
	}
}

// HandleEvent authenticates and processes one webhook delivery. The returned
// error is ErrInvalidSignature for rejected deliveries; anything else the
// handler acknowledges with 200 so the gateway does not retry forever, with
// genuine processing failures logged for the operator.
//
// Redelivery of an already-processed event is a no-op: a Payment whose status
// is already success acknowledges without touching any record.
func (s *FulfillmentService) HandleEvent(rawBody []byte, signature string) error {
	// Signature check happens before the body is even parsed. An unsigned or
	// forged delivery never reaches a database query.
	if !s.paystack.VerifySignature(rawBody, signature) {
		return ErrInvalidSignature
	}

	event, err := ParseEvent(rawBody)
	if err != nil {
		logrus.WithError(err).Warn("Webhook body unparseable, acknowledging")
		return nil
	}

	if event.Event != "charge.success" && event.Event != "charge.failed" {
		logrus.WithField("event", event.Event).Debug("Ignoring webhook event type")
		return nil
	}

	payment, err := s.resolvePayment(&event.Data)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithFields(logrus.Fields{
				"reference":  event.Data.Reference,
				"payment_id": event.Data.Metadata.PaymentID,
			}).Warn("Webhook references unknown payment, acknowledging")
			return nil
		}
		return err
	}

	if payment.Status == models.PaymentStatusSuccess {
		logrus.WithField("payment_id", payment.ID).Info("Webhook redelivery for fulfilled payment, no-op")
		return nil
	}

	if isSuccessStatus(event.Data.Status) {
		return s.fulfill(payment, &event.Data)
	}

	return s.markFailed(payment, event.Data.Status)
}

// resolvePayment locates the Payment for a webhook delivery. Primary key is
// metadata.payment_id; the gateway reference is the fallback for deliveries
// where metadata was stripped, and the id embedded in the reference string
// itself is the last resort.
func (s *FulfillmentService) resolvePayment(data *WebhookEventData) (*models.Payment, error) {
	var payment models.Payment

	if data.Metadata.PaymentID != 0 {
		if err := s.db.First(&payment, data.Metadata.PaymentID).Error; err == nil {
			return &payment, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("database error: %w", err)
		}
	}

	if data.Reference != "" {
		if err := s.db.Where("transaction_ref = ?", data.Reference).First(&payment).Error; err == nil {
			return &payment, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("database error: %w", err)
		}

		if id, ok := ParseReference(data.Reference); ok {
			if err := s.db.First(&payment, id).Error; err != nil {
				return nil, err
			}
			return &payment, nil
		}
	}

	return nil, gorm.ErrRecordNotFound
}

func isSuccessStatus(status string) bool {
	return status == "success" || status == "successful"
}

// fulfill runs the success pipeline in one transaction: payment completion,
// sale creation, contract generation for beat purchases, discount
// consumption, and the exclusivity flip. Any step failing rolls the whole
// delivery back so the gateway retry starts from a clean pending payment.
func (s *FulfillmentService) fulfill(payment *models.Payment, data *WebhookEventData) error {
	now := time.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Re-read under the transaction; a concurrent delivery may have won.
		var current models.Payment
		if err := tx.First(&current, payment.ID).Error; err != nil {
			return err
		}
		if current.Status == models.PaymentStatusSuccess {
			return nil
		}

		var buyer models.User
		if err := tx.First(&buyer, current.UserID).Error; err != nil {
			return fmt.Errorf("buyer lookup failed: %w", err)
		}

		updates := map[string]interface{}{
			"status":        models.PaymentStatusSuccess,
			"paid_amount":   float64(data.Amount) / 100,
			"paid_currency": data.Currency,
			"paid_at":       now,
		}
		if err := tx.Model(&current).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to complete payment: %w", err)
		}

		sale := &models.Sale{
			BuyerID:    current.UserID,
			FileType:   current.FileType,
			Amount:     current.Amount,
			DiscountID: current.DiscountID,
		}

		if current.BeatID != nil {
			if err := s.fulfillBeat(tx, &current, &buyer, sale, now); err != nil {
				return err
			}
		} else if current.SoundPackID != nil {
			var pack models.SoundPack
			if err := tx.First(&pack, *current.SoundPackID).Error; err != nil {
				return fmt.Errorf("soundpack lookup failed: %w", err)
			}
			sale.SoundPackID = current.SoundPackID
			sale.ProducerID = pack.ProducerID

			exists, err := saleExists(tx, "buyer_id = ? AND soundpack_id = ?", current.UserID, *current.SoundPackID)
			if err != nil {
				return err
			}
			if !exists {
				if err := tx.Create(sale).Error; err != nil {
					return fmt.Errorf("failed to record sale: %w", err)
				}
			}
		} else {
			return fmt.Errorf("payment %d references no item", current.ID)
		}

		if current.DiscountID != nil {
			if err := tx.Model(&models.Discount{}).
				Where("id = ?", *current.DiscountID).
				UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
				return fmt.Errorf("failed to consume discount: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		logrus.WithError(err).WithField("payment_id", payment.ID).Error("Fulfillment failed")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"user_id":    payment.UserID,
		"file_type":  payment.FileType,
	}).Info("Payment fulfilled")
	return nil
}

// fulfillBeat handles the beat-specific half of fulfillment: exclusivity
// re-check, sale row, contract instantiation from the producer's template,
// and the catalog flip for exclusive purchases.
func (s *FulfillmentService) fulfillBeat(tx *gorm.DB, payment *models.Payment, buyer *models.User, sale *models.Sale, now time.Time) error {
	var beat models.Beat
	if err := tx.First(&beat, *payment.BeatID).Error; err != nil {
		return fmt.Errorf("beat lookup failed: %w", err)
	}

	// The pricing check ran before checkout, but exclusivity can be lost
	// between checkout and webhook. Re-check under the transaction.
	if payment.FileType == models.FileTypeExclusive && beat.IsSoldExclusive {
		return ErrExclusiveSold
	}

	sale.BeatID = payment.BeatID
	sale.ProducerID = beat.ProducerID

	// The buyer may already hold this tier from an earlier payment; the
	// unique index on (buyer_id, beat_id, file_type) backs this check under
	// concurrency.
	exists, err := saleExists(tx, "buyer_id = ? AND beat_id = ? AND file_type = ?",
		buyer.ID, beat.ID, payment.FileType)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := tx.Create(sale).Error; err != nil {
		return fmt.Errorf("failed to record sale: %w", err)
	}

	var template models.ContractTemplate
	err = tx.Where("beat_id = ? AND file_type = ?", beat.ID, payment.FileType).First(&template).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("contract template lookup failed: %w", err)
	}

	if err == nil {
		var producer models.User
		if err := tx.First(&producer, beat.ProducerID).Error; err != nil {
			return fmt.Errorf("producer lookup failed: %w", err)
		}

		contractURL, err := s.contracts.Generate(&ContractData{
			Template:  &template,
			Beat:      &beat,
			Buyer:     buyer,
			Producer:  &producer,
			FileType:  payment.FileType,
			Amount:    payment.Amount,
			Currency:  payment.Currency,
			PaymentID: payment.ID,
			IssuedAt:  now,
		})
		if err != nil {
			// No contract, no grant. The rollback keeps the payment pending
			// so the gateway redelivery retries the whole pipeline.
			return err
		}

		contract := &models.Contract{
			ContractType: template.ContractType,
			Terms:        template.Terms,
			Price:        payment.Amount,
			Status:       models.ContractStatusActive,
			StartDate:    now,
			FileType:     payment.FileType,
			BeatID:       beat.ID,
			BuyerID:      buyer.ID,
			TemplateID:   &template.ID,
			ContractURL:  contractURL,
		}
		if err := tx.Create(contract).Error; err != nil {
			return fmt.Errorf("failed to record contract: %w", err)
		}

		if err := tx.Model(sale).Update("contract_id", contract.ID).Error; err != nil {
			return fmt.Errorf("failed to link contract: %w", err)
		}
	}

	if payment.FileType == models.FileTypeExclusive {
		if err := tx.Model(&beat).Update("is_sold_exclusive", true).Error; err != nil {
			return fmt.Errorf("failed to mark beat exclusive-sold: %w", err)
		}
	}

	return nil
}

func saleExists(tx *gorm.DB, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := tx.Model(&models.Sale{}).Where(query, args...).Count(&count).Error; err != nil {
		return false, fmt.Errorf("sale lookup failed: %w", err)
	}
	return count > 0, nil
}

func (s *FulfillmentService) markFailed(payment *models.Payment, gatewayStatus string) error {
	// Only a pending payment may move to failed. A success committed by a
	// concurrent delivery is terminal and must not be overwritten.
	res := s.db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, models.PaymentStatusPending).
		Update("status", models.PaymentStatusFailed)
	if res.Error != nil {
		return fmt.Errorf("failed to mark payment failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		logrus.WithField("payment_id", payment.ID).Info("Failure event for non-pending payment, no-op")
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"payment_id":     payment.ID,
		"gateway_status": gatewayStatus,
	}).Info("Payment marked failed")
	return nil
}
