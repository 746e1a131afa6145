// internal/models/discount.go
package models

import (
	"math"
	"time"
)

type Discount struct {
	BaseModel
	// Code is nullable: global promotions can run without a redeemable code.
	Code        *string       `json:"code,omitempty" gorm:"uniqueIndex;size:40"`
	Percentage  float64       `json:"percentage" gorm:"type:decimal(5,2);not null;default:0"`
	Name        string        `json:"name,omitempty" gorm:"size:100"`
	Description string        `json:"description,omitempty" gorm:"type:text"`
	Scope       DiscountScope `json:"applicable_to" gorm:"column:applicable_to;type:varchar(20);not null;default:'global'"`
	ItemID      *uint         `json:"item_id,omitempty"`
	StartDate   *time.Time    `json:"start_date,omitempty"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
	MaxUses     *int          `json:"max_uses,omitempty"`
	UsedCount   int           `json:"used_count" gorm:"default:0"`
	IsActive    bool          `json:"is_active" gorm:"default:true"`
}

// IsValid reports whether the discount may be redeemed at the given instant.
// Pure predicate: no persistence, no side effects.
func (d *Discount) IsValid(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if d.StartDate != nil && now.Before(*d.StartDate) {
		return false
	}
	if d.EndDate != nil && now.After(*d.EndDate) {
		return false
	}
	if d.MaxUses != nil && d.UsedCount >= *d.MaxUses {
		return false
	}
	return true
}

// AppliesTo checks scope: global discounts match everything, item-scoped
// discounts match only their single item.
func (d *Discount) AppliesTo(itemType ItemType, itemID uint) bool {
	if d.Scope == DiscountScopeGlobal {
		return true
	}
	if string(d.Scope) != string(itemType) {
		return false
	}
	return d.ItemID != nil && *d.ItemID == itemID
}

// Apply returns the discounted price rounded to two decimals.
func (d *Discount) Apply(price float64) float64 {
	return math.Round(price*(1-d.Percentage/100)*100) / 100
}
