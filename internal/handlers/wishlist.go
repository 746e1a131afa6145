// internal/handlers/wishlist.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/beathaus/beathaus-backend/internal/models"
	"github.com/beathaus/beathaus-backend/internal/services"
	"github.com/beathaus/beathaus-backend/internal/utils"
)

type WishlistHandler struct {
	wishlist *services.WishlistService
}

func NewWishlistHandler(wishlist *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist}
}

func (h *WishlistHandler) List(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	entries, err := h.wishlist.List(userID)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to load wishlist")
		return
	}

	utils.SuccessResponse(c, entries)
}

// Add saves an item; re-adding an already-saved item succeeds unchanged.
func (h *WishlistHandler) Add(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req struct {
		ItemType string `json:"item_type" validate:"required,item_type"`
		ItemID   uint   `json:"item_id" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	entry, err := h.wishlist.Add(userID, models.ItemType(req.ItemType), req.ItemID)
	if err != nil {
		respondServiceError(c, err, "Item")
		return
	}

	utils.CreatedResponse(c, entry)
}

func (h *WishlistHandler) Remove(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	entryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.wishlist.Remove(userID, entryID); err != nil {
		respondServiceError(c, err, "Wishlist entry")
		return
	}

	utils.SuccessResponse(c, gin.H{"removed": true})
}
