// internal/models/payment.go
package models

import (
	"time"
)

// Payment is one checkout attempt. It is created in pending state before the
// gateway is contacted and transitions exactly once to success or failed via
// the webhook pipeline. Success is terminal: no fulfillment-relevant field
// may change afterwards.
type Payment struct {
	BaseModel
	UserID uint    `json:"user_id" gorm:"not null;index"`
	Amount float64 `json:"amount" gorm:"type:decimal(10,2);not null"`
	// Currency is the catalog display currency the amount is denominated in.
	Currency string        `json:"currency" gorm:"size:10;default:'USD'"`
	Method   string        `json:"method" gorm:"size:50;not null"`
	Status   PaymentStatus `json:"status" gorm:"type:varchar(30);default:'pending';index"`
	// TransactionRef is the gateway correlation reference. Assigned only
	// after a successful gateway initialize call.
	TransactionRef *string `json:"transaction_ref,omitempty" gorm:"uniqueIndex;size:200"`

	// Settlement details reported back by the gateway on completion.
	PaidAmount   float64    `json:"paid_amount,omitempty" gorm:"type:decimal(12,2)"`
	PaidCurrency string     `json:"paid_currency,omitempty" gorm:"size:10"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`

	FileType    FileType `json:"file_type" gorm:"type:varchar(20)"`
	Metadata    JSONB    `json:"metadata,omitempty" gorm:"type:jsonb"`
	BeatID      *uint    `json:"beat_id,omitempty" gorm:"index"`
	SoundPackID *uint    `json:"soundpack_id,omitempty" gorm:"column:soundpack_id;index"`
	DiscountID  *uint    `json:"discount_id,omitempty"`

	// Relationships
	User      User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Beat      *Beat      `json:"beat,omitempty" gorm:"foreignKey:BeatID"`
	SoundPack *SoundPack `json:"soundpack,omitempty" gorm:"foreignKey:SoundPackID"`
	Discount  *Discount  `json:"discount,omitempty" gorm:"foreignKey:DiscountID"`
}
