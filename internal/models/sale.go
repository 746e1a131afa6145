// internal/models/sale.go
package models

// Sale is the immutable fulfillment record created exactly once per
// successful payment per (buyer, item, file_type). The partial unique
// indexes in database.createIndexes are the real guarantee against
// concurrent duplicate webhook deliveries.
type Sale struct {
	BaseModel
	BuyerID     uint     `json:"buyer_id" gorm:"not null;index"`
	ProducerID  uint     `json:"producer_id" gorm:"index"`
	BeatID      *uint    `json:"beat_id,omitempty" gorm:"index"`
	SoundPackID *uint    `json:"soundpack_id,omitempty" gorm:"column:soundpack_id;index"`
	FileType    FileType `json:"file_type" gorm:"type:varchar(20)"`
	Amount      float64  `json:"amount" gorm:"type:decimal(10,2);not null"`
	DiscountID  *uint    `json:"discount_id,omitempty"`
	ContractID  *uint    `json:"contract_id,omitempty"`

	// Relationships
	Buyer     User       `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Beat      *Beat      `json:"beat,omitempty" gorm:"foreignKey:BeatID"`
	SoundPack *SoundPack `json:"soundpack,omitempty" gorm:"foreignKey:SoundPackID"`
	Contract  *Contract  `json:"contract,omitempty" gorm:"foreignKey:ContractID"`
}
