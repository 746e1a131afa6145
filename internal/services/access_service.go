// internal/services/access_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/beathaus/beathaus-backend/internal/models"
)

// AccessService decides who may download which delivery file. Ownership wins
// outright; everyone else needs an exact sale record for the requested tier.
type AccessService struct {
	db *gorm.DB
}

// FileGrant is a successful authorization: the file to serve plus the
// buyer's contract document when one was issued with the sale.
type FileGrant struct {
	FileURL     string `json:"file_url"`
	FileType    string `json:"file_type"`
	ContractURL string `json:"contract_url,omitempty"`
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// AuthorizeBeatFile gates access to one delivery file of a beat.
// The producer who owns the beat gets every tier without a sale record and
// without a contract. Any other user needs a Sale matching the exact
// (buyer, beat, file_type) triple; owning a higher tier grants nothing.
func (s *AccessService) AuthorizeBeatFile(userID uint, beatID uint, fileType models.FileType) (*FileGrant, error) {
	if !models.ValidBeatFileType(fileType) {
		return nil, ErrFileTierUnavailable
	}

	var beat models.Beat
	if err := s.db.First(&beat, beatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var file models.BeatFile
	if err := s.db.Where("beat_id = ? AND file_type = ?", beatID, fileType).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileTierUnavailable
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if beat.ProducerID == userID {
		return &FileGrant{
			FileURL:  file.FileURL,
			FileType: string(fileType),
		}, nil
	}

	var sale models.Sale
	err := s.db.Where("buyer_id = ? AND beat_id = ? AND file_type = ?", userID, beatID, fileType).
		First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	grant := &FileGrant{
		FileURL:  file.FileURL,
		FileType: string(fileType),
	}

	if sale.ContractID != nil {
		var contract models.Contract
		if err := s.db.First(&contract, *sale.ContractID).Error; err == nil {
			grant.ContractURL = contract.ContractURL
		}
	}

	return grant, nil
}

// AuthorizeSoundPackFile gates the single archive of a sound pack: owner or
// buyer with a sale record.
func (s *AccessService) AuthorizeSoundPackFile(userID uint, packID uint) (*FileGrant, error) {
	var pack models.SoundPack
	if err := s.db.First(&pack, packID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if pack.ProducerID == userID {
		return &FileGrant{FileURL: pack.FileURL, FileType: string(models.FileTypePack)}, nil
	}

	var sale models.Sale
	err := s.db.Where("buyer_id = ? AND soundpack_id = ?", userID, packID).First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &FileGrant{FileURL: pack.FileURL, FileType: string(models.FileTypePack)}, nil
}
