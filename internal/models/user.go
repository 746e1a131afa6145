// internal/models/user.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name         string `json:"name" gorm:"size:120;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;size:150;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`
	Role         Role   `json:"role" gorm:"type:varchar(20);default:'buyer'"`
	Bio          string `json:"bio,omitempty" gorm:"type:text"`
	ProfileImage string `json:"profile_image,omitempty" gorm:"size:255"`

	// Relationships
	Beats      []Beat      `json:"beats,omitempty" gorm:"foreignKey:ProducerID"`
	SoundPacks []SoundPack `json:"soundpacks,omitempty" gorm:"foreignKey:ProducerID"`
	Payments   []Payment   `json:"payments,omitempty" gorm:"foreignKey:UserID"`
	Sales      []Sale      `json:"sales,omitempty" gorm:"foreignKey:BuyerID"`
	Wishlists  []Wishlist  `json:"wishlists,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) IsProducer() bool {
	return u.Role == RoleProducer
}
