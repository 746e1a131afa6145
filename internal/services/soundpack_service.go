// internal/services/soundpack_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/beathaus/beathaus-backend/internal/models"
	"github.com/beathaus/beathaus-backend/internal/utils"
)

type SoundPackService struct {
	db      *gorm.DB
	storage *StorageService
}

type CreateSoundPackRequest struct {
	Name        string
	Description string
	Price       float64

	Archive       multipart.File
	ArchiveHeader *multipart.FileHeader
	Cover         multipart.File
	CoverHeader   *multipart.FileHeader
}

type UpdateSoundPackRequest struct {
	Name        *string
	Description *string
	Price       *float64
}

// SoundPackListing is the public projection; the archive URL stays private.
type SoundPackListing struct {
	ID          uint        `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Price       float64     `json:"price"`
	CoverURL    string      `json:"cover_url,omitempty"`
	Producer    ProducerRef `json:"producer"`
	CreatedAt   time.Time   `json:"created_at"`
}

func NewSoundPackService(db *gorm.DB, storage *StorageService) *SoundPackService {
	return &SoundPackService{db: db, storage: storage}
}

func (s *SoundPackService) Create(producer *models.User, req *CreateSoundPackRequest) (*models.SoundPack, error) {
	if req.Archive == nil {
		return nil, fmt.Errorf("pack archive is required")
	}

	archiveResult, err := s.storage.UploadFile(req.Archive, req.ArchiveHeader, s.storage.GetDefaultUploadOptions("soundpacks"))
	if err != nil {
		return nil, fmt.Errorf("archive upload failed: %w", err)
	}

	var coverURL string
	if req.Cover != nil {
		result, err := s.storage.UploadFile(req.Cover, req.CoverHeader, s.storage.GetDefaultUploadOptions("covers"))
		if err != nil {
			return nil, fmt.Errorf("cover upload failed: %w", err)
		}
		coverURL = result.URL
	}

	pack := &models.SoundPack{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CoverURL:    coverURL,
		FileURL:     archiveResult.URL,
		ProducerID:  producer.ID,
	}

	if err := s.db.Create(pack).Error; err != nil {
		return nil, fmt.Errorf("failed to create soundpack: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"soundpack_id": pack.ID,
		"producer_id":  producer.ID,
		"name":         pack.Name,
	}).Info("Sound pack created")

	return pack, nil
}

func (s *SoundPackService) Update(producerID uint, packID uint, req *UpdateSoundPackRequest) (*models.SoundPack, error) {
	var pack models.SoundPack
	if err := s.db.First(&pack, packID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if pack.ProducerID != producerID {
		return nil, ErrForbidden
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if len(updates) > 0 {
		if err := s.db.Model(&pack).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update soundpack: %w", err)
		}
	}

	return &pack, nil
}

func (s *SoundPackService) Delete(producerID uint, packID uint) error {
	var pack models.SoundPack
	if err := s.db.First(&pack, packID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}
	if pack.ProducerID != producerID {
		return ErrForbidden
	}

	if err := s.db.Delete(&pack).Error; err != nil {
		return fmt.Errorf("failed to delete soundpack: %w", err)
	}
	return nil
}

func (s *SoundPackService) List(params utils.PaginationParams) ([]SoundPackListing, int64, error) {
	query := s.db.Model(&models.SoundPack{}).Preload("Producer")

	if params.Search != "" {
		query = query.Where("name ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "price", "name"})
	query = utils.ApplyPagination(query, params)

	var packs []models.SoundPack
	if err := query.Find(&packs).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	listings := make([]SoundPackListing, 0, len(packs))
	for i := range packs {
		listings = append(listings, toSoundPackListing(&packs[i]))
	}

	return listings, total, nil
}

func (s *SoundPackService) Get(packID uint) (*SoundPackListing, error) {
	var pack models.SoundPack
	if err := s.db.Preload("Producer").First(&pack, packID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	listing := toSoundPackListing(&pack)
	return &listing, nil
}

func toSoundPackListing(pack *models.SoundPack) SoundPackListing {
	return SoundPackListing{
		ID:          pack.ID,
		Name:        pack.Name,
		Description: pack.Description,
		Price:       pack.Price,
		CoverURL:    pack.CoverURL,
		Producer: ProducerRef{
			ID:   pack.Producer.ID,
			Name: pack.Producer.Name,
		},
		CreatedAt: pack.CreatedAt,
	}
}
