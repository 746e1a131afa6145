// internal/models/soundpack.go
package models

type SoundPack struct {
	BaseModel
	Name        string  `json:"name" gorm:"size:180;not null"`
	Description string  `json:"description,omitempty" gorm:"type:text"`
	Price       float64 `json:"price" gorm:"type:decimal(10,2);not null;default:0"`
	CoverURL    string  `json:"cover_url,omitempty" gorm:"size:255"`
	FileURL     string  `json:"file_url,omitempty" gorm:"size:255"`
	ProducerID  uint    `json:"producer_id" gorm:"not null;index"`

	// Relationships
	Producer User      `json:"producer,omitempty" gorm:"foreignKey:ProducerID"`
	Sales    []Sale    `json:"sales,omitempty" gorm:"foreignKey:SoundPackID"`
	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:SoundPackID"`
}

func (SoundPack) TableName() string { return "soundpacks" }

func (p *SoundPack) ItemID() uint       { return p.ID }
func (p *SoundPack) BasePrice() float64 { return p.Price }
func (p *SoundPack) ProducerRef() uint  { return p.ProducerID }
func (p *SoundPack) Kind() ItemType     { return ItemTypeSoundPack }
