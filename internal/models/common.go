// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type Role string

const (
	RoleProducer Role = "producer"
	RoleBuyer    Role = "buyer"
)

// NormalizeRole maps an external role claim onto the two roles this system
// knows about. Unknown or empty claims resolve to buyer, never to producer.
func NormalizeRole(claim string) Role {
	switch strings.ToLower(strings.TrimSpace(claim)) {
	case "producer", "admin", "seller":
		return RoleProducer
	default:
		return RoleBuyer
	}
}

type ItemType string

const (
	ItemTypeBeat      ItemType = "beat"
	ItemTypeSoundPack ItemType = "soundpack"
)

type FileType string

const (
	FileTypeMP3       FileType = "mp3"
	FileTypeWAV       FileType = "wav"
	FileTypeTrackout  FileType = "trackout"
	FileTypeExclusive FileType = "exclusive"
	// FileTypePack marks single-file sound pack purchases so the
	// (buyer, item, file_type) sale triple stays well-defined.
	FileTypePack FileType = "pack"
)

func ValidBeatFileType(ft FileType) bool {
	switch ft {
	case FileTypeMP3, FileTypeWAV, FileTypeTrackout, FileTypeExclusive:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type DiscountScope string

const (
	DiscountScopeGlobal    DiscountScope = "global"
	DiscountScopeBeat      DiscountScope = "beat"
	DiscountScopeSoundPack DiscountScope = "soundpack"
)

type ContractStatus string

const (
	ContractStatusActive  ContractStatus = "active"
	ContractStatusExpired ContractStatus = "expired"
)

// Purchasable is the common surface of sellable catalog items. Pricing,
// discount and access-control code works against this interface instead of
// switching on concrete item types.
type Purchasable interface {
	ItemID() uint
	BasePrice() float64
	ProducerRef() uint
	Kind() ItemType
}
