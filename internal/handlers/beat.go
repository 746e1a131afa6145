// internal/handlers/beat.go
package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/beathaus/beathaus-backend/internal/models"
	"github.com/beathaus/beathaus-backend/internal/services"
	"github.com/beathaus/beathaus-backend/internal/utils"
)

type BeatHandler struct {
	beats  *services.BeatService
	access *services.AccessService
	auth   *services.AuthService
}

func NewBeatHandler(beats *services.BeatService, access *services.AccessService, auth *services.AuthService) *BeatHandler {
	return &BeatHandler{beats: beats, access: access, auth: auth}
}

// List serves the public catalog page.
func (h *BeatHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	listings, total, err := h.beats.List(params)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to list beats")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(listings, total, params))
}

// Get serves one beat with its purchasable tiers.
func (h *BeatHandler) Get(c *gin.Context) {
	beatID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	listing, err := h.beats.Get(beatID)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			utils.NotFoundResponse(c, "Beat")
			return
		}
		utils.InternalErrorResponse(c, "Failed to load beat")
		return
	}

	utils.SuccessResponse(c, listing)
}

// FileOptions lists purchasable tiers; the exclusive tier is hidden once sold.
func (h *BeatHandler) FileOptions(c *gin.Context) {
	beatID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	options, err := h.beats.FileOptions(beatID)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			utils.NotFoundResponse(c, "Beat")
			return
		}
		utils.InternalErrorResponse(c, "Failed to load file options")
		return
	}

	utils.SuccessResponse(c, gin.H{"beat_id": beatID, "file_options": options})
}

// Create handles the multipart producer upload: per-tier files, prices,
// contract terms, optional cover/preview and launch discount.
func (h *BeatHandler) Create(c *gin.Context) {
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

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		utils.BadRequestResponse(c, "title is required", nil)
		return
	}

	req := &services.CreateBeatRequest{
		Title:       title,
		Description: c.PostForm("description"),
		Genre:       c.PostForm("genre"),
		Key:         c.PostForm("key"),
	}
	if bpm, err := strconv.Atoi(c.PostForm("bpm")); err == nil {
		req.BPM = bpm
	}
	if tags := c.PostForm("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if t := strings.TrimSpace(tag); t != "" {
				req.Tags = append(req.Tags, t)
			}
		}
	}

	var formErr error
	req.MP3, formErr = tierFromForm(c, "mp3")
	if formErr != nil {
		utils.BadRequestResponse(c, "mp3 file and mp3_price are required", nil)
		return
	}
	req.WAV, formErr = tierFromForm(c, "wav")
	if formErr != nil {
		utils.BadRequestResponse(c, "wav file and wav_price are required", nil)
		return
	}
	if trackout, err := tierFromForm(c, "trackout"); err == nil {
		req.Trackout = &trackout
	}

	req.ExclusiveAvailable = c.DefaultPostForm("exclusive_available", "true") == "true"
	if req.ExclusiveAvailable {
		price, err := strconv.ParseFloat(c.PostForm("exclusive_price"), 64)
		if err != nil || price <= 0 {
			utils.BadRequestResponse(c, "exclusive_price is required when the exclusive tier is offered", nil)
			return
		}
		req.ExclusivePrice = price
		req.ExclusiveTerms = c.PostForm("exclusive_terms")
	}

	if file, header, err := c.Request.FormFile("cover"); err == nil {
		req.Cover = &services.TierUpload{File: file, Header: header}
	}
	if file, header, err := c.Request.FormFile("preview"); err == nil {
		req.Preview = &services.TierUpload{File: file, Header: header}
	}

	if pct, err := strconv.ParseFloat(c.PostForm("discount_percentage"), 64); err == nil && pct > 0 {
		req.DiscountPercentage = pct
		req.DiscountCode = c.PostForm("discount_code")
		if raw := c.PostForm("discount_end_date"); raw != "" {
			if end, err := time.Parse(time.RFC3339, raw); err == nil {
				req.DiscountEndDate = &end
			}
		}
	}

	beat, err := h.beats.Create(producer, req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, beat)
}

type updateBeatBody struct {
	Title              *string            `json:"title,omitempty"`
	Description        *string            `json:"description,omitempty"`
	Genre              *string            `json:"genre,omitempty"`
	BPM                *int               `json:"bpm,omitempty"`
	Key                *string            `json:"key,omitempty"`
	Tags               []string           `json:"tags,omitempty"`
	TierPrices         map[string]float64 `json:"tier_prices,omitempty"`
	TierTerms          map[string]string  `json:"tier_terms,omitempty"`
	ExclusiveAvailable *bool              `json:"exclusive_available,omitempty"`
}

// Update mutates metadata and tier prices; owner only.
func (h *BeatHandler) Update(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	beatID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var body updateBeatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	req := &services.UpdateBeatRequest{
		Title:              body.Title,
		Description:        body.Description,
		Genre:              body.Genre,
		BPM:                body.BPM,
		Key:                body.Key,
		Tags:               body.Tags,
		ExclusiveAvailable: body.ExclusiveAvailable,
	}
	if len(body.TierPrices) > 0 {
		req.TierPrices = map[models.FileType]float64{}
		for ft, price := range body.TierPrices {
			fileType := models.FileType(ft)
			if !models.ValidBeatFileType(fileType) || price <= 0 {
				utils.BadRequestResponse(c, "invalid tier price for "+ft, nil)
				return
			}
			req.TierPrices[fileType] = price
		}
	}
	if len(body.TierTerms) > 0 {
		req.TierTerms = map[models.FileType]string{}
		for ft, terms := range body.TierTerms {
			fileType := models.FileType(ft)
			if !models.ValidBeatFileType(fileType) {
				utils.BadRequestResponse(c, "invalid tier "+ft, nil)
				return
			}
			req.TierTerms[fileType] = terms
		}
	}

	beat, err := h.beats.Update(userID, beatID, req)
	if err != nil {
		respondServiceError(c, err, "Beat")
		return
	}

	utils.SuccessResponse(c, beat)
}

// Delete removes a beat; owner only.
func (h *BeatHandler) Delete(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	beatID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.beats.Delete(userID, beatID); err != nil {
		respondServiceError(c, err, "Beat")
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}

// DownloadFile is the post-purchase delivery gate: producers get their own
// files, buyers get exactly the tiers they bought.
func (h *BeatHandler) DownloadFile(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	beatID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fileType := models.FileType(c.Param("file_type"))

	grant, err := h.access.AuthorizeBeatFile(userID, beatID, fileType)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			utils.NotFoundResponse(c, "Beat")
		case errors.Is(err, services.ErrFileTierUnavailable):
			utils.BadRequestResponse(c, "File tier not available", nil)
		case errors.Is(err, services.ErrForbidden):
			utils.ForbiddenResponse(c, "Purchase required for this file")
		default:
			utils.InternalErrorResponse(c, "Failed to authorize file access")
		}
		return
	}

	utils.SuccessResponse(c, grant)
}

func tierFromForm(c *gin.Context, tier string) (services.TierUpload, error) {
	var upload services.TierUpload

	file, header, err := c.Request.FormFile(tier + "_file")
	if err != nil {
		return upload, err
	}

	price, err := strconv.ParseFloat(c.PostForm(tier+"_price"), 64)
	if err != nil || price <= 0 {
		return upload, errors.New("invalid price")
	}

	upload = services.TierUpload{
		File:   file,
		Header: header,
		Price:  price,
		Terms:  c.PostForm(tier + "_terms"),
	}
	return upload, nil
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}

// respondServiceError maps the shared service sentinels onto HTTP statuses.
func respondServiceError(c *gin.Context, err error, resource string) {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		utils.NotFoundResponse(c, resource)
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, services.ErrFileTierUnavailable):
		utils.BadRequestResponse(c, "File tier not available", nil)
	case errors.Is(err, services.ErrExclusiveSold):
		utils.BadRequestResponse(c, "Exclusive rights already sold", nil)
	case errors.Is(err, services.ErrDiscountInvalid):
		utils.BadRequestResponse(c, "Discount invalid or not applicable", nil)
	default:
		utils.InternalErrorResponse(c, "")
	}
}
