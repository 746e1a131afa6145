// internal/handlers/purchase.go
package handlers

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/beathaus/beathaus-backend/internal/models"
	"github.com/beathaus/beathaus-backend/internal/services"
	"github.com/beathaus/beathaus-backend/internal/utils"
)

type PurchaseHandler struct {
	db          *gorm.DB
	checkout    *services.CheckoutService
	fulfillment *services.FulfillmentService
	auth        *services.AuthService
}

func NewPurchaseHandler(db *gorm.DB, checkout *services.CheckoutService, fulfillment *services.FulfillmentService, auth *services.AuthService) *PurchaseHandler {
	return &PurchaseHandler{
		db:          db,
		checkout:    checkout,
		fulfillment: fulfillment,
		auth:        auth,
	}
}

// Checkout prices the purchase and opens a hosted gateway session.
func (h *PurchaseHandler) Checkout(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	buyer, err := h.auth.GetUser(userID)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}
	// Soundpacks always settle to the pack tier; whatever the client sent is
	// irrelevant and must not trip the beat tier validation.
	if req.ItemType == string(models.ItemTypeSoundPack) {
		req.FileType = ""
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	session, err := h.checkout.InitiateCheckout(buyer, &req)
	if err != nil {
		if errors.Is(err, services.ErrGateway) {
			utils.BadGatewayResponse(c, "Payment gateway unavailable, please retry")
			return
		}
		respondServiceError(c, err, "Item")
		return
	}

	utils.CreatedResponse(c, session)
}

// Webhook receives gateway notifications. The raw body is read before any
// parsing because the signature covers the exact bytes on the wire.
func (h *PurchaseHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequestResponse(c, "Unreadable body", nil)
		return
	}

	signature := c.GetHeader("x-paystack-signature")

	if err := h.fulfillment.HandleEvent(body, signature); err != nil {
		if errors.Is(err, services.ErrInvalidSignature) {
			utils.BadRequestResponse(c, "Invalid signature", nil)
			return
		}
		// Processing failure: 500 so the gateway redelivers.
		utils.InternalErrorResponse(c, "Webhook processing failed")
		return
	}

	utils.SuccessResponse(c, gin.H{"ok": true})
}

// purchaseRecord is one row of a buyer's purchase history.
type purchaseRecord struct {
	ID          uint      `json:"id"`
	ItemType    string    `json:"item_type"`
	ItemID      uint      `json:"item_id"`
	Title       string    `json:"title"`
	FileType    string    `json:"file_type"`
	Amount      float64   `json:"amount"`
	ContractURL string    `json:"contract_url,omitempty"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// History lists the buyer's completed purchases, newest first.
func (h *PurchaseHandler) History(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	query := h.db.Model(&models.Sale{}).Where("buyer_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalErrorResponse(c, "Failed to load purchase history")
		return
	}

	var sales []models.Sale
	err := utils.ApplyPagination(query.
		Preload("Beat").Preload("SoundPack").Preload("Contract").
		Order("created_at desc"), params).
		Find(&sales).Error
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to load purchase history")
		return
	}

	records := make([]purchaseRecord, 0, len(sales))
	for _, sale := range sales {
		record := purchaseRecord{
			ID:          sale.ID,
			FileType:    string(sale.FileType),
			Amount:      sale.Amount,
			PurchasedAt: sale.CreatedAt,
		}
		switch {
		case sale.BeatID != nil:
			record.ItemType = string(models.ItemTypeBeat)
			record.ItemID = *sale.BeatID
			if sale.Beat != nil {
				record.Title = sale.Beat.Title
			}
		case sale.SoundPackID != nil:
			record.ItemType = string(models.ItemTypeSoundPack)
			record.ItemID = *sale.SoundPackID
			if sale.SoundPack != nil {
				record.Title = sale.SoundPack.Name
			}
		}
		if sale.Contract != nil {
			record.ContractURL = sale.Contract.ContractURL
		}
		records = append(records, record)
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(records, total, params))
}
