// internal/handlers/discount.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/beathaus/beathaus-backend/internal/services"
	"github.com/beathaus/beathaus-backend/internal/utils"
)

type DiscountHandler struct {
	discounts *services.DiscountService
}

func NewDiscountHandler(discounts *services.DiscountService) *DiscountHandler {
	return &DiscountHandler{discounts: discounts}
}

// ListActive returns discounts currently redeemable.
func (h *DiscountHandler) ListActive(c *gin.Context) {
	discounts, err := h.discounts.ListActive()
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to list discounts")
		return
	}

	utils.SuccessResponse(c, discounts)
}

// Validate checks a code against an item and quotes the discounted price.
func (h *DiscountHandler) Validate(c *gin.Context) {
	var req services.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	result, err := h.discounts.Validate(&req)
	if err != nil {
		respondServiceError(c, err, "Item")
		return
	}

	utils.SuccessResponse(c, result)
}

// Create registers a new discount (producer only).
func (h *DiscountHandler) Create(c *gin.Context) {
	var req services.CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	discount, err := h.discounts.Create(&req)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateCode) {
			utils.ConflictResponse(c, "Discount code already exists")
			return
		}
		if errors.Is(err, services.ErrItemNotFound) {
			utils.NotFoundResponse(c, "Item")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, discount)
}
