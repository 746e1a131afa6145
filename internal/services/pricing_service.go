// internal/services/pricing_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/beathaus/beathaus-backend/internal/models"
)

// PricingService resolves what a purchase costs: base tier price, at most
// one discount, then conversion into the settlement currency.
type PricingService struct {
	db       *gorm.DB
	currency *CurrencyService
}

// PriceQuote is the fully resolved price for one (item, file tier) purchase.
type PriceQuote struct {
	Item            models.Purchasable
	FileType        models.FileType
	BasePrice       float64
	FinalPrice      float64 // base currency, discount applied
	SettledPrice    float64 // settlement currency
	SettledMinor    int64   // settlement currency minor units, as charged
	Currency        string
	AppliedDiscount *models.Discount
}

func NewPricingService(db *gorm.DB, currency *CurrencyService) *PricingService {
	return &PricingService{
		db:       db,
		currency: currency,
	}
}

// ResolvePrice looks up the purchasable item and tier, validates and applies
// an optional discount code, and converts the result. A supplied but unknown
// or inapplicable code is a hard ErrDiscountInvalid, never silently ignored.
func (s *PricingService) ResolvePrice(itemType models.ItemType, itemID uint, fileType models.FileType, discountCode string) (*PriceQuote, error) {
	item, basePrice, fileType, err := s.resolveBasePrice(itemType, itemID, fileType)
	if err != nil {
		return nil, err
	}

	finalPrice := basePrice
	var applied *models.Discount
	if discountCode != "" {
		discount, err := s.lookupDiscount(discountCode)
		if err != nil {
			return nil, err
		}
		if !discount.IsValid(time.Now()) || !discount.AppliesTo(itemType, itemID) {
			return nil, ErrDiscountInvalid
		}
		finalPrice = discount.Apply(basePrice)
		applied = discount
	}

	settled, minor := s.currency.ToSettlement(finalPrice)

	return &PriceQuote{
		Item:            item,
		FileType:        fileType,
		BasePrice:       basePrice,
		FinalPrice:      finalPrice,
		SettledPrice:    settled,
		SettledMinor:    minor,
		Currency:        s.currency.SettlementCurrency(),
		AppliedDiscount: applied,
	}, nil
}

// LookupItem fetches a purchasable by type without pricing it. Used by the
// wishlist and discount validation paths.
func (s *PricingService) LookupItem(itemType models.ItemType, itemID uint) (models.Purchasable, error) {
	switch itemType {
	case models.ItemTypeBeat:
		var beat models.Beat
		if err := s.db.First(&beat, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrItemNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		return &beat, nil
	case models.ItemTypeSoundPack:
		var pack models.SoundPack
		if err := s.db.First(&pack, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrItemNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		return &pack, nil
	default:
		return nil, ErrItemNotFound
	}
}

func (s *PricingService) resolveBasePrice(itemType models.ItemType, itemID uint, fileType models.FileType) (models.Purchasable, float64, models.FileType, error) {
	item, err := s.LookupItem(itemType, itemID)
	if err != nil {
		return nil, 0, fileType, err
	}

	switch it := item.(type) {
	case *models.Beat:
		if !models.ValidBeatFileType(fileType) {
			return nil, 0, fileType, ErrFileTierUnavailable
		}
		if fileType == models.FileTypeExclusive && it.IsSoldExclusive {
			return nil, 0, fileType, ErrExclusiveSold
		}

		var file models.BeatFile
		if err := s.db.Where("beat_id = ? AND file_type = ?", itemID, fileType).First(&file).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, fileType, ErrFileTierUnavailable
			}
			return nil, 0, fileType, fmt.Errorf("database error: %w", err)
		}
		return it, file.Price, fileType, nil

	case *models.SoundPack:
		// Sound packs are single-file: the tier collapses to "pack".
		return it, it.Price, models.FileTypePack, nil
	}

	return nil, 0, fileType, ErrItemNotFound
}

func (s *PricingService) lookupDiscount(code string) (*models.Discount, error) {
	var discount models.Discount
	if err := s.db.Where("code = ?", code).First(&discount).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiscountInvalid
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &discount, nil
}
