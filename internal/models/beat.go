// internal/models/beat.go
package models

import (
	"github.com/lib/pq"
)

type Beat struct {
	BaseModel
	Title       string         `json:"title" gorm:"size:180;not null"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	Genre       string         `json:"genre,omitempty" gorm:"size:80;index"`
	BPM         int            `json:"bpm,omitempty"`
	Key         string         `json:"key,omitempty" gorm:"size:20"`
	Tags        pq.StringArray `json:"tags,omitempty" gorm:"type:text[]"`
	// Price mirrors the mp3 tier price for catalog listings.
	Price              float64 `json:"price" gorm:"type:decimal(10,2);not null;default:0"`
	CoverURL           string  `json:"cover_url,omitempty" gorm:"size:255"`
	PreviewURL         string  `json:"preview_url,omitempty" gorm:"size:255"`
	ExclusiveAvailable bool    `json:"exclusive_available" gorm:"default:true"`
	IsSoldExclusive    bool    `json:"is_sold_exclusive" gorm:"default:false"`
	ProducerID         uint    `json:"producer_id" gorm:"not null;index"`

	// Relationships
	Producer          User               `json:"producer,omitempty" gorm:"foreignKey:ProducerID"`
	Files             []BeatFile         `json:"files,omitempty" gorm:"foreignKey:BeatID;constraint:OnDelete:CASCADE"`
	ContractTemplates []ContractTemplate `json:"contract_templates,omitempty" gorm:"foreignKey:BeatID"`
	Sales             []Sale             `json:"sales,omitempty" gorm:"foreignKey:BeatID"`
	Payments          []Payment          `json:"payments,omitempty" gorm:"foreignKey:BeatID"`
}

func (b *Beat) ItemID() uint       { return b.ID }
func (b *Beat) BasePrice() float64 { return b.Price }
func (b *Beat) ProducerRef() uint  { return b.ProducerID }
func (b *Beat) Kind() ItemType     { return ItemTypeBeat }

// BeatFile is one purchasable license tier of a beat. Exactly one row per
// (beat_id, file_type); the uniqueness constraint lives in database DDL.
type BeatFile struct {
	BaseModel
	BeatID   uint     `json:"beat_id" gorm:"not null;index:idx_beat_files_beat_type,unique"`
	FileType FileType `json:"file_type" gorm:"type:varchar(20);not null;index:idx_beat_files_beat_type,unique"`
	FileURL  string   `json:"file_url" gorm:"size:255;not null"`
	Price    float64  `json:"price" gorm:"type:decimal(10,2);not null;default:0"`

	Beat Beat `json:"-" gorm:"foreignKey:BeatID"`
}
