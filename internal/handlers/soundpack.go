// internal/handlers/soundpack.go
package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/beathaus/beathaus-backend/internal/services"
	"github.com/beathaus/beathaus-backend/internal/utils"
)

type SoundPackHandler struct {
	packs  *services.SoundPackService
	access *services.AccessService
	auth   *services.AuthService
}

func NewSoundPackHandler(packs *services.SoundPackService, access *services.AccessService, auth *services.AuthService) *SoundPackHandler {
	return &SoundPackHandler{packs: packs, access: access, auth: auth}
}

func (h *SoundPackHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	listings, total, err := h.packs.List(params)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to list sound packs")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(listings, total, params))
}

func (h *SoundPackHandler) Get(c *gin.Context) {
	packID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	listing, err := h.packs.Get(packID)
	if err != nil {
		respondServiceError(c, err, "Sound pack")
		return
	}

	utils.SuccessResponse(c, listing)
}

// Create handles the multipart producer upload: archive, optional cover.
func (h *SoundPackHandler) Create(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	producer, err := h.auth.GetUser(userID)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	price, priceErr := strconv.ParseFloat(c.PostForm("price"), 64)
	if name == "" || priceErr != nil || price <= 0 {
		utils.BadRequestResponse(c, "name and a positive price are required", nil)
		return
	}

	req := &services.CreateSoundPackRequest{
		Name:        name,
		Description: c.PostForm("description"),
		Price:       price,
	}

	file, header, err := c.Request.FormFile("archive")
	if err != nil {
		utils.BadRequestResponse(c, "archive file is required", nil)
		return
	}
	req.Archive = file
	req.ArchiveHeader = header

	if cover, coverHeader, err := c.Request.FormFile("cover"); err == nil {
		req.Cover = cover
		req.CoverHeader = coverHeader
	}

	pack, err := h.packs.Create(producer, req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, pack)
}

func (h *SoundPackHandler) Update(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	packID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateSoundPackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}
	if req.Price != nil && *req.Price <= 0 {
		utils.BadRequestResponse(c, "price must be positive", nil)
		return
	}

	pack, err := h.packs.Update(userID, packID, &req)
	if err != nil {
		respondServiceError(c, err, "Sound pack")
		return
	}

	utils.SuccessResponse(c, pack)
}

func (h *SoundPackHandler) Delete(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	packID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.packs.Delete(userID, packID); err != nil {
		respondServiceError(c, err, "Sound pack")
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}

// DownloadFile gates the pack archive behind ownership or purchase.
func (h *SoundPackHandler) DownloadFile(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	packID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	grant, err := h.access.AuthorizeSoundPackFile(userID, packID)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			utils.ForbiddenResponse(c, "Purchase required for this file")
			return
		}
		respondServiceError(c, err, "Sound pack")
		return
	}

	utils.SuccessResponse(c, grant)
}
