// internal/services/discount_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/beathaus/beathaus-backend/internal/models"
)

type DiscountService struct {
	db      *gorm.DB
	pricing *PricingService
}

type CreateDiscountRequest struct {
	Code        string     `json:"code,omitempty"`
	Percentage  float64    `json:"percentage" validate:"required,gt=0,lte=100"`
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Scope       string     `json:"applicable_to" validate:"required,oneof=global beat soundpack"`
	ItemID      *uint      `json:"item_id,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	MaxUses     *int       `json:"max_uses,omitempty"`
}

// ValidateRequest asks whether a code applies to an item and what the
// discounted price would be.
type ValidateRequest struct {
	Code     string `json:"code" validate:"required"`
	ItemType string `json:"item_type" validate:"required,item_type"`
	ItemID   uint   `json:"item_id" validate:"required"`
}

type ValidateResult struct {
	Valid           bool    `json:"valid"`
	Percentage      float64 `json:"percentage,omitempty"`
	OriginalPrice   float64 `json:"original_price,omitempty"`
	DiscountedPrice float64 `json:"discounted_price,omitempty"`
}

var ErrDuplicateCode = errors.New("discount code already exists")

func NewDiscountService(db *gorm.DB, pricing *PricingService) *DiscountService {
	return &DiscountService{db: db, pricing: pricing}
}

func (s *DiscountService) Create(req *CreateDiscountRequest) (*models.Discount, error) {
	scope := models.DiscountScope(req.Scope)
	if scope != models.DiscountScopeGlobal {
		if req.ItemID == nil {
			return nil, fmt.Errorf("item_id is required for %s-scoped discounts", scope)
		}
		if _, err := s.pricing.LookupItem(models.ItemType(scope), *req.ItemID); err != nil {
			return nil, err
		}
	}

	discount := &models.Discount{
		Percentage:  req.Percentage,
		Name:        req.Name,
		Description: req.Description,
		Scope:       scope,
		ItemID:      req.ItemID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		MaxUses:     req.MaxUses,
		IsActive:    true,
	}
	if req.Code != "" {
		var existing models.Discount
		err := s.db.Where("code = ?", req.Code).First(&existing).Error
		if err == nil {
			return nil, ErrDuplicateCode
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("database error: %w", err)
		}
		discount.Code = &req.Code
	}

	if err := s.db.Create(discount).Error; err != nil {
		return nil, fmt.Errorf("failed to create discount: %w", err)
	}
	return discount, nil
}

// ListActive returns discounts currently inside their validity window with
// uses remaining. The window filter runs in SQL; the remaining-uses check
// needs the row so it runs in Go.
func (s *DiscountService) ListActive() ([]models.Discount, error) {
	now := time.Now()

	var discounts []models.Discount
	err := s.db.
		Where("is_active = ?", true).
		Where("start_date IS NULL OR start_date <= ?", now).
		Where("end_date IS NULL OR end_date >= ?", now).
		Order("created_at desc").
		Find(&discounts).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	active := discounts[:0]
	for _, d := range discounts {
		if d.MaxUses == nil || d.UsedCount < *d.MaxUses {
			active = append(active, d)
		}
	}
	return active, nil
}

// Validate prices an item under a code without committing anything.
func (s *DiscountService) Validate(req *ValidateRequest) (*ValidateResult, error) {
	itemType := models.ItemType(req.ItemType)

	item, err := s.pricing.LookupItem(itemType, req.ItemID)
	if err != nil {
		return nil, err
	}

	var discount models.Discount
	if err := s.db.Where("code = ?", req.Code).First(&discount).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ValidateResult{Valid: false}, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !discount.IsValid(time.Now()) || !discount.AppliesTo(itemType, req.ItemID) {
		return &ValidateResult{Valid: false}, nil
	}

	base := item.BasePrice()
	return &ValidateResult{
		Valid:           true,
		Percentage:      discount.Percentage,
		OriginalPrice:   base,
		DiscountedPrice: discount.Apply(base),
	}, nil
}
