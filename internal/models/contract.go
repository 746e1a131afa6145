// internal/models/contract.go
package models

import (
	"time"
)

// ContractTemplate holds the terms a producer sets per file tier at upload
// time. Fulfillment instantiates a Contract from it on purchase.
type ContractTemplate struct {
	BaseModel
	BeatID       uint     `json:"beat_id" gorm:"not null;index:idx_contract_templates_beat_type,unique"`
	FileType     FileType `json:"file_type" gorm:"type:varchar(20);not null;index:idx_contract_templates_beat_type,unique"`
	ContractType string   `json:"contract_type" gorm:"size:50;not null"`
	Terms        string   `json:"terms,omitempty" gorm:"type:text"`
	Price        float64  `json:"price" gorm:"type:decimal(10,2);default:0"`

	Beat Beat `json:"-" gorm:"foreignKey:BeatID"`
}

// Contract grants a buyer rights over a specific (beat, file_type). At most
// one per (buyer, beat, file_type).
type Contract struct {
	BaseModel
	ContractType string         `json:"contract_type" gorm:"size:50;not null"`
	Terms        string         `json:"terms,omitempty" gorm:"type:text"`
	Price        float64        `json:"price" gorm:"type:decimal(10,2);not null;default:0"`
	Status       ContractStatus `json:"status" gorm:"type:varchar(30);default:'active'"`
	StartDate    time.Time      `json:"start_date"`
	EndDate      *time.Time     `json:"end_date,omitempty"`
	FileType     FileType       `json:"file_type" gorm:"type:varchar(20)"`
	BeatID       uint           `json:"beat_id" gorm:"not null;index"`
	BuyerID      uint           `json:"buyer_id" gorm:"not null;index"`
	TemplateID   *uint          `json:"contract_template_id,omitempty"`
	// ContractURL points at the generated PDF in object storage.
	ContractURL string `json:"contract_url,omitempty" gorm:"size:255"`

	// Relationships
	Beat     Beat              `json:"beat,omitempty" gorm:"foreignKey:BeatID"`
	Buyer    User              `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Template *ContractTemplate `json:"template,omitempty" gorm:"foreignKey:TemplateID"`
}
