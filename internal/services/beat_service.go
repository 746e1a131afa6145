// internal/services/beat_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/beathaus/beathaus-backend/internal/models"
	"github.com/beathaus/beathaus-backend/internal/utils"
)

// BeatService manages the beat catalog: producer uploads with per-tier files,
// prices, and contract templates, plus the public listing projections.
type BeatService struct {
	db      *gorm.DB
	storage *StorageService
}

// TierUpload is one license tier submitted with a beat: its delivery file
// (nil means reuse an existing or derived file) and price.
type TierUpload struct {
	File   multipart.File
	Header *multipart.FileHeader
	Price  float64
	Terms  string
}

type CreateBeatRequest struct {
	Title       string
	Description string
	Genre       string
	BPM         int
	Key         string
	Tags        []string

	// mp3 and wav are required at upload; trackout is optional.
	MP3      TierUpload
	WAV      TierUpload
	Trackout *TierUpload

	// Exclusive tier shares the mp3 delivery file; only price and terms vary.
	ExclusivePrice     float64
	ExclusiveTerms     string
	ExclusiveAvailable bool

	Cover   *TierUpload
	Preview *TierUpload

	// Optional launch discount created with the beat.
	DiscountPercentage float64
	DiscountCode       string
	DiscountEndDate    *time.Time
}

type UpdateBeatRequest struct {
	Title       *string
	Description *string
	Genre       *string
	BPM         *int
	Key         *string
	Tags        []string

	TierPrices map[models.FileType]float64
	TierTerms  map[models.FileType]string

	ExclusiveAvailable *bool
}

// BeatListing is the public catalog projection: delivery file URLs never
// leave the service through this shape.
type BeatListing struct {
	ID                 uint           `json:"id"`
	Title              string         `json:"title"`
	Description        string         `json:"description,omitempty"`
	Genre              string         `json:"genre,omitempty"`
	BPM                int            `json:"bpm,omitempty"`
	Key                string         `json:"key,omitempty"`
	Tags               []string       `json:"tags,omitempty"`
	Price              float64        `json:"price"`
	CoverURL           string         `json:"cover_url,omitempty"`
	PreviewURL         string         `json:"preview_url,omitempty"`
	ExclusiveAvailable bool           `json:"exclusive_available"`
	IsSoldExclusive    bool           `json:"is_sold_exclusive"`
	Producer           ProducerRef    `json:"producer"`
	FileOptions        []FileOption   `json:"file_options,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

type ProducerRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// FileOption is one purchasable tier as shown to buyers.
type FileOption struct {
	FileType string  `json:"file_type"`
	Price    float64 `json:"price"`
}

func NewBeatService(db *gorm.DB, storage *StorageService) *BeatService {
	return &BeatService{db: db, storage: storage}
}

// Create stores the beat with its tier files, contract templates and optional
// launch discount in one transaction. Uploads happen first so a storage
// failure costs nothing but orphaned objects, never a half-created beat.
func (s *BeatService) Create(producer *models.User, req *CreateBeatRequest) (*models.Beat, error) {
	if req.MP3.File == nil || req.WAV.File == nil {
		return nil, fmt.Errorf("mp3 and wav files are required")
	}

	audioOpts := s.storage.GetDefaultUploadOptions("beats")

	mp3Result, err := s.storage.UploadFile(req.MP3.File, req.MP3.Header, audioOpts)
	if err != nil {
		return nil, fmt.Errorf("mp3 upload failed: %w", err)
	}
	wavResult, err := s.storage.UploadFile(req.WAV.File, req.WAV.Header, audioOpts)
	if err != nil {
		return nil, fmt.Errorf("wav upload failed: %w", err)
	}

	var trackoutURL string
	if req.Trackout != nil && req.Trackout.File != nil {
		result, err := s.storage.UploadFile(req.Trackout.File, req.Trackout.Header, audioOpts)
		if err != nil {
			return nil, fmt.Errorf("trackout upload failed: %w", err)
		}
		trackoutURL = result.URL
	}

	var coverURL, previewURL string
	if req.Cover != nil && req.Cover.File != nil {
		result, err := s.storage.UploadFile(req.Cover.File, req.Cover.Header, s.storage.GetDefaultUploadOptions("covers"))
		if err != nil {
			return nil, fmt.Errorf("cover upload failed: %w", err)
		}
		coverURL = result.URL
	}
	if req.Preview != nil && req.Preview.File != nil {
		result, err := s.storage.UploadFile(req.Preview.File, req.Preview.Header, s.storage.GetDefaultUploadOptions("previews"))
		if err != nil {
			return nil, fmt.Errorf("preview upload failed: %w", err)
		}
		previewURL = result.URL
	}

	beat := &models.Beat{
		Title:              req.Title,
		Description:        req.Description,
		Genre:              req.Genre,
		BPM:                req.BPM,
		Key:                req.Key,
		Tags:               pq.StringArray(req.Tags),
		Price:              req.MP3.Price,
		CoverURL:           coverURL,
		PreviewURL:         previewURL,
		ExclusiveAvailable: req.ExclusiveAvailable,
		ProducerID:         producer.ID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(beat).Error; err != nil {
			return fmt.Errorf("failed to create beat: %w", err)
		}

		type tierSpec struct {
			fileType models.FileType
			fileURL  string
			price    float64
			terms    string
		}

		tiers := []tierSpec{
			{models.FileTypeMP3, mp3Result.URL, req.MP3.Price, req.MP3.Terms},
			{models.FileTypeWAV, wavResult.URL, req.WAV.Price, req.WAV.Terms},
		}
		if trackoutURL != "" && req.Trackout != nil {
			tiers = append(tiers, tierSpec{models.FileTypeTrackout, trackoutURL, req.Trackout.Price, req.Trackout.Terms})
		}
		if req.ExclusiveAvailable {
			// Exclusive delivers the same master as the mp3 tier; rights
			// transfer is what the buyer pays for.
			tiers = append(tiers, tierSpec{models.FileTypeExclusive, mp3Result.URL, req.ExclusivePrice, req.ExclusiveTerms})
		}

		for _, tier := range tiers {
			file := &models.BeatFile{
				BeatID:   beat.ID,
				FileType: tier.fileType,
				FileURL:  tier.fileURL,
				Price:    tier.price,
			}
			if err := tx.Create(file).Error; err != nil {
				return fmt.Errorf("failed to create %s tier: %w", tier.fileType, err)
			}

			template := &models.ContractTemplate{
				BeatID:       beat.ID,
				FileType:     tier.fileType,
				ContractType: contractTypeFor(tier.fileType),
				Terms:        tier.terms,
				Price:        tier.price,
			}
			if err := tx.Create(template).Error; err != nil {
				return fmt.Errorf("failed to create %s contract template: %w", tier.fileType, err)
			}
		}

		if req.DiscountPercentage > 0 {
			discount := &models.Discount{
				Percentage: req.DiscountPercentage,
				Name:       fmt.Sprintf("%s launch discount", req.Title),
				Scope:      models.DiscountScopeBeat,
				ItemID:     &beat.ID,
				EndDate:    req.DiscountEndDate,
				IsActive:   true,
			}
			if req.DiscountCode != "" {
				discount.Code = &req.DiscountCode
			}
			if err := tx.Create(discount).Error; err != nil {
				return fmt.Errorf("failed to create launch discount: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"beat_id":     beat.ID,
		"producer_id": producer.ID,
		"title":       beat.Title,
	}).Info("Beat created")

	return beat, nil
}

// Update mutates beat metadata and tier prices. File replacement goes through
// Create-style uploads per tier.
func (s *BeatService) Update(producerID uint, beatID uint, req *UpdateBeatRequest) (*models.Beat, error) {
	var beat models.Beat
	if err := s.db.First(&beat, beatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if beat.ProducerID != producerID {
		return nil, ErrForbidden
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Genre != nil {
			updates["genre"] = *req.Genre
		}
		if req.BPM != nil {
			updates["bpm"] = *req.BPM
		}
		if req.Key != nil {
			updates["key"] = *req.Key
		}
		if req.Tags != nil {
			updates["tags"] = pq.StringArray(req.Tags)
		}
		if req.ExclusiveAvailable != nil {
			updates["exclusive_available"] = *req.ExclusiveAvailable
		}
		if price, ok := req.TierPrices[models.FileTypeMP3]; ok {
			// Catalog price mirrors the mp3 tier.
			updates["price"] = price
		}
		if len(updates) > 0 {
			if err := tx.Model(&beat).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update beat: %w", err)
			}
		}

		for fileType, price := range req.TierPrices {
			if err := tx.Model(&models.BeatFile{}).
				Where("beat_id = ? AND file_type = ?", beatID, fileType).
				Update("price", price).Error; err != nil {
				return fmt.Errorf("failed to update %s price: %w", fileType, err)
			}
			if err := tx.Model(&models.ContractTemplate{}).
				Where("beat_id = ? AND file_type = ?", beatID, fileType).
				Update("price", price).Error; err != nil {
				return fmt.Errorf("failed to update %s template price: %w", fileType, err)
			}
		}
		for fileType, terms := range req.TierTerms {
			if err := tx.Model(&models.ContractTemplate{}).
				Where("beat_id = ? AND file_type = ?", beatID, fileType).
				Update("terms", terms).Error; err != nil {
				return fmt.Errorf("failed to update %s terms: %w", fileType, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&beat, beatID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &beat, nil
}

func (s *BeatService) Delete(producerID uint, beatID uint) error {
	var beat models.Beat
	if err := s.db.First(&beat, beatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}
	if beat.ProducerID != producerID {
		return ErrForbidden
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("beat_id = ?", beatID).Delete(&models.BeatFile{}).Error; err != nil {
			return fmt.Errorf("failed to delete beat files: %w", err)
		}
		if err := tx.Delete(&beat).Error; err != nil {
			return fmt.Errorf("failed to delete beat: %w", err)
		}
		return nil
	})
}

// List returns the public catalog page. Search matches title; genre filters
// exactly.
func (s *BeatService) List(params utils.PaginationParams) ([]BeatListing, int64, error) {
	query := s.db.Model(&models.Beat{}).Preload("Producer")

	if params.Search != "" {
		query = query.Where("title ILIKE ?", "%"+params.Search+"%")
	}
	if params.Genre != "" {
		query = query.Where("genre = ?", params.Genre)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "price", "title", "bpm"})
	query = utils.ApplyPagination(query, params)

	var beats []models.Beat
	if err := query.Find(&beats).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	listings := make([]BeatListing, 0, len(beats))
	for i := range beats {
		listings = append(listings, s.toListing(&beats[i], nil))
	}

	return listings, total, nil
}

// Get returns one beat's public projection with its purchasable tiers.
func (s *BeatService) Get(beatID uint) (*BeatListing, error) {
	var beat models.Beat
	if err := s.db.Preload("Producer").First(&beat, beatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	options, err := s.FileOptions(beatID)
	if err != nil {
		return nil, err
	}

	listing := s.toListing(&beat, options)
	return &listing, nil
}

// FileOptions lists the purchasable tiers of a beat. The exclusive tier
// disappears from the options once sold or when the producer withheld it.
func (s *BeatService) FileOptions(beatID uint) ([]FileOption, error) {
	var beat models.Beat
	if err := s.db.First(&beat, beatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var files []models.BeatFile
	if err := s.db.Where("beat_id = ?", beatID).Order("price asc").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	options := make([]FileOption, 0, len(files))
	for _, file := range files {
		if file.FileType == models.FileTypeExclusive &&
			(beat.IsSoldExclusive || !beat.ExclusiveAvailable) {
			continue
		}
		options = append(options, FileOption{
			FileType: string(file.FileType),
			Price:    file.Price,
		})
	}

	return options, nil
}

func (s *BeatService) toListing(beat *models.Beat, options []FileOption) BeatListing {
	return BeatListing{
		ID:                 beat.ID,
		Title:              beat.Title,
		Description:        beat.Description,
		Genre:              beat.Genre,
		BPM:                beat.BPM,
		Key:                beat.Key,
		Tags:               []string(beat.Tags),
		Price:              beat.Price,
		CoverURL:           beat.CoverURL,
		PreviewURL:         beat.PreviewURL,
		ExclusiveAvailable: beat.ExclusiveAvailable && !beat.IsSoldExclusive,
		IsSoldExclusive:    beat.IsSoldExclusive,
		Producer: ProducerRef{
			ID:   beat.Producer.ID,
			Name: beat.Producer.Name,
		},
		FileOptions: options,
		CreatedAt:   beat.CreatedAt,
	}
}

func contractTypeFor(fileType models.FileType) string {
	switch fileType {
	case models.FileTypeExclusive:
		return "exclusive_rights"
	case models.FileTypeTrackout:
		return "premium_lease"
	case models.FileTypeWAV:
		return "standard_lease"
	default:
		return "basic_lease"
	}
}
