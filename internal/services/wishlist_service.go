// internal/services/wishlist_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/beathaus/beathaus-backend/internal/models"
)

type WishlistService struct {
	db      *gorm.DB
	pricing *PricingService
}

// WishlistEntry is one saved item with a catalog snapshot for display.
type WishlistEntry struct {
	ID       uint    `json:"id"`
	ItemType string  `json:"item_type"`
	ItemID   uint    `json:"item_id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	CoverURL string  `json:"cover_url,omitempty"`
}

func NewWishlistService(db *gorm.DB, pricing *PricingService) *WishlistService {
	return &WishlistService{db: db, pricing: pricing}
}

// Add saves an item for later. Adding an already-saved item succeeds without
// creating a duplicate.
func (s *WishlistService) Add(userID uint, itemType models.ItemType, itemID uint) (*models.Wishlist, error) {
	if _, err := s.pricing.LookupItem(itemType, itemID); err != nil {
		return nil, err
	}

	var existing models.Wishlist
	err := s.db.Where("user_id = ? AND item_type = ? AND item_id = ?", userID, itemType, itemID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	entry := &models.Wishlist{
		UserID:   userID,
		ItemType: itemType,
		ItemID:   itemID,
	}
	if err := s.db.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to add wishlist entry: %w", err)
	}
	return entry, nil
}

// List returns the user's saved items with catalog snapshots. Items deleted
// from the catalog since saving are skipped.
func (s *WishlistService) List(userID uint) ([]WishlistEntry, error) {
	var rows []models.Wishlist
	if err := s.db.Where("user_id = ?", userID).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	entries := make([]WishlistEntry, 0, len(rows))
	for _, row := range rows {
		entry := WishlistEntry{
			ID:       row.ID,
			ItemType: string(row.ItemType),
			ItemID:   row.ItemID,
		}

		switch row.ItemType {
		case models.ItemTypeBeat:
			var beat models.Beat
			if err := s.db.First(&beat, row.ItemID).Error; err != nil {
				continue
			}
			entry.Title = beat.Title
			entry.Price = beat.Price
			entry.CoverURL = beat.CoverURL
		case models.ItemTypeSoundPack:
			var pack models.SoundPack
			if err := s.db.First(&pack, row.ItemID).Error; err != nil {
				continue
			}
			entry.Title = pack.Name
			entry.Price = pack.Price
			entry.CoverURL = pack.CoverURL
		default:
			continue
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// Remove deletes one wishlist entry. Only the owner may remove it.
func (s *WishlistService) Remove(userID uint, entryID uint) error {
	var entry models.Wishlist
	if err := s.db.First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}
	if entry.UserID != userID {
		return ErrForbidden
	}

	if err := s.db.Delete(&entry).Error; err != nil {
		return fmt.Errorf("failed to remove wishlist entry: %w", err)
	}
	return nil
}
