// internal/models/wishlist.go
package models

type Wishlist struct {
	BaseModel
	UserID   uint     `json:"user_id" gorm:"not null;index:idx_wishlists_user_item,unique"`
	ItemType ItemType `json:"item_type" gorm:"type:varchar(20);not null;index:idx_wishlists_user_item,unique"`
	ItemID   uint     `json:"item_id" gorm:"not null;index:idx_wishlists_user_item,unique"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
